package vault

import (
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"filevault/btree"
	"filevault/metadata"
	"filevault/rbtree"
	"filevault/search"
	"filevault/snapshot"
)

const (
	btreeSnapshot  = "btree.snap"
	rbtreeSnapshot = "rbtree.snap"
)

// Save writes a snapshot of each index into storage.index_dir.
func (v *Vault) Save() error {
	dir := v.cfg.Storage.IndexDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "vault: create index directory")
	}
	degree := v.btree.Degree()
	if degree > math.MaxUint16 {
		return errors.Newf("vault: degree %d does not fit a snapshot header", degree)
	}

	h, err := snapshot.WriteFile(filepath.Join(dir, btreeSnapshot),
		snapshot.Header{Kind: snapshot.KindBTree, Degree: uint16(degree)}, v.btree.All())
	if err != nil {
		return err
	}
	v.logger.Info("saved index", "index", "btree", "id", h.ID, "records", v.btree.Len())

	h, err = snapshot.WriteFile(filepath.Join(dir, rbtreeSnapshot),
		snapshot.Header{Kind: snapshot.KindRBTree}, v.rbtree.All())
	if err != nil {
		return err
	}
	v.logger.Info("saved index", "index", "rbtree", "id", h.ID, "records", v.rbtree.Len())
	return nil
}

// Load replaces the contents of both indexes with the snapshots in
// storage.index_dir. A missing snapshot leaves its index empty. The indexes
// are only swapped in once both snapshots have been read.
func (v *Vault) Load() error {
	dir := v.cfg.Storage.IndexDir

	bt, err := btree.New(v.btree.Degree())
	if err != nil {
		return err
	}
	rb := rbtree.New()

	r, err := readSnapshot(filepath.Join(dir, btreeSnapshot), snapshot.KindBTree)
	if err != nil {
		return err
	}
	if r != nil {
		if d := int(r.Header().Degree); d >= 2 {
			if bt, err = btree.New(d); err != nil {
				return err
			}
		}
		if err := restore(r, bt.Insert); err != nil {
			return err
		}
		v.logger.Info("loaded index", "index", "btree", "id", r.Header().ID, "records", r.Len())
	}

	r, err = readSnapshot(filepath.Join(dir, rbtreeSnapshot), snapshot.KindRBTree)
	if err != nil {
		return err
	}
	if r != nil {
		if err := restore(r, rb.Insert); err != nil {
			return err
		}
		v.logger.Info("loaded index", "index", "rbtree", "id", r.Header().ID, "records", r.Len())
	}

	v.btree, v.rbtree = bt, rb
	v.search = search.New(bt, rb, v.cfg.Search.History)
	return nil
}

func readSnapshot(path string, kind snapshot.Kind) (*snapshot.Reader, error) {
	r, err := snapshot.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "vault: %s", path)
	}
	if r.Header().Kind != kind {
		return nil, errors.Wrapf(snapshot.ErrCorrupt, "%s holds a %s snapshot", path, r.Header().Kind)
	}
	return r, nil
}

func restore(r *snapshot.Reader, insert func(metadata.Record) (bool, error)) error {
	for rec, err := range r.All() {
		if err != nil {
			return err
		}
		if _, err := insert(rec); err != nil {
			return err
		}
	}
	return nil
}
