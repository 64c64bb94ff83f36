package vault

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zeebo/blake3"

	"filevault/huffman"
	"filevault/metadata"
	"filevault/search"
)

// Result describes one file compression.
type Result struct {
	Source   string
	Artifact string
	Stats    huffman.Stats
	Record   metadata.Record
	Err      error
}

// Digest is the hex BLAKE3-256 of data, as stored in metadata records.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ArtifactPath is where CompressFile writes src when no destination is
// given.
func (v *Vault) ArtifactPath(src string) string {
	return src + v.cfg.Compression.Extension
}

// CompressFile encodes src into dst (ArtifactPath(src) when dst is empty)
// and registers the file's metadata under target. A zero target skips
// registration.
func (v *Vault) CompressFile(src, dst string, target search.Source) (Result, error) {
	if dst == "" {
		dst = v.ArtifactPath(src)
	}
	res := Result{Source: src, Artifact: dst}

	data, err := os.ReadFile(src)
	if err != nil {
		return res, errors.Wrap(err, "vault: read source")
	}
	info, err := os.Stat(src)
	if err != nil {
		return res, errors.Wrap(err, "vault: stat source")
	}
	artifact, stats := huffman.Compress(data)
	if err := os.WriteFile(dst, artifact, 0o644); err != nil {
		return res, errors.Wrap(err, "vault: write artifact")
	}
	res.Stats = stats

	path, err := filepath.Abs(src)
	if err != nil {
		path = src
	}
	rec := metadata.New(filepath.Base(src), path, int64(len(data)))
	rec.ModifiedAt = info.ModTime().UTC()
	rec.Compressed = true
	rec.Ratio = stats.Ratio()
	rec.Digest = Digest(data)
	res.Record = rec

	v.logger.Info("compressed file",
		"source", src,
		"artifact", dst,
		"original_size", stats.OriginalSize,
		"compressed_size", stats.CompressedSize,
		"ratio", rec.Ratio,
	)
	if target == 0 {
		return res, nil
	}
	return res, v.Register(rec, target)
}

// DecompressFile restores the artifact src into dst. An empty dst strips the
// configured extension from src. When an index holds a record for the
// restored filename, its digest is checked against the output.
func (v *Vault) DecompressFile(src, dst string) (int, error) {
	if dst == "" {
		ext := v.cfg.Compression.Extension
		if !strings.HasSuffix(src, ext) || len(src) == len(ext) {
			return 0, errors.Newf("vault: %s lacks the %s extension and no destination was given", src, ext)
		}
		dst = strings.TrimSuffix(src, ext)
	}
	artifact, err := os.ReadFile(src)
	if err != nil {
		return 0, errors.Wrap(err, "vault: read artifact")
	}
	data, err := huffman.Decode(artifact)
	if err != nil {
		return 0, errors.Wrapf(err, "vault: decode %s", src)
	}

	if rec, ok := v.lookup(filepath.Base(dst)); ok && rec.Digest != "" && rec.Digest != Digest(data) {
		return 0, errors.Wrapf(ErrDigestMismatch, "%s", rec.Filename)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return 0, errors.Wrap(err, "vault: write output")
	}
	v.logger.Info("decompressed file", "artifact", src, "output", dst, "size", len(data))
	return len(data), nil
}

// CompressFiles compresses every path on up to compression.workers
// goroutines. Results are in the order of paths; a failure affects only its
// own entry. Once ctx is done, files not yet started fail with ctx.Err().
func (v *Vault) CompressFiles(ctx context.Context, paths []string, target search.Source) []Result {
	results := make([]Result, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := min(v.cfg.Compression.Workers, len(paths))
	start := time.Now()
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := v.CompressFile(paths[i], "", target)
				res.Err = err
				results[i] = res
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(paths); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	for i := next; i < len(paths); i++ {
		results[i] = Result{Source: paths[i], Err: ctx.Err()}
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			v.logger.Warn("compression failed", "source", res.Source, "error", res.Err)
		}
	}
	v.logger.Info("batch compression finished",
		"files", len(paths), "failed", failed, "workers", workers, "elapsed", time.Since(start))
	return results
}

func (v *Vault) lookup(filename string) (metadata.Record, bool) {
	if rec, ok := v.btree.Search(filename); ok {
		return rec, true
	}
	return v.rbtree.Search(filename)
}
