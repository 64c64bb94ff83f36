// Package vault is the file workflow on top of the codec and the indexes:
// compress and restore files, keep their metadata in the B-Tree and
// Red-Black tree indexes, and persist both indexes as snapshots.
package vault

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"filevault/btree"
	"filevault/config"
	"filevault/metadata"
	"filevault/rbtree"
	"filevault/search"
)

var (
	ErrNoTarget       = errors.New("vault: no index selected")
	ErrDigestMismatch = errors.New("vault: restored content does not match its digest")
)

type Options struct {
	Config config.Config
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Vault owns one B-Tree and one Red-Black tree index. Every method except
// Load is safe for concurrent use; Load swaps the indexes out and must run
// alone.
type Vault struct {
	cfg    config.Config
	logger *slog.Logger

	btree  *btree.Btree
	rbtree *rbtree.Tree
	search *search.Coordinator
}

func New(opts Options) (*Vault, error) {
	cfg := opts.Config
	cfg.Normalize()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bt, err := btree.New(cfg.Storage.BTreeDegree)
	if err != nil {
		return nil, err
	}
	rb := rbtree.New()
	return &Vault{
		cfg:    cfg,
		logger: logger,
		btree:  bt,
		rbtree: rb,
		search: search.New(bt, rb, cfg.Search.History),
	}, nil
}

func (v *Vault) Config() config.Config { return v.cfg }

func (v *Vault) BTree() *btree.Btree { return v.btree }

func (v *Vault) RBTree() *rbtree.Tree { return v.rbtree }

func (v *Vault) Coordinator() *search.Coordinator { return v.search }

// DefaultTarget is the index selection configured for new records.
func (v *Vault) DefaultTarget() search.Source {
	target, _ := search.ParseSource(v.cfg.Storage.DefaultIndex)
	return target
}

// Register stores rec in the selected indexes. The record is validated
// before either index is touched.
func (v *Vault) Register(rec metadata.Record, target search.Source) error {
	if target&search.SourceBoth == 0 {
		return ErrNoTarget
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if target&search.SourceBTree != 0 {
		if _, err := v.btree.Insert(rec); err != nil {
			return err
		}
	}
	if target&search.SourceRBTree != 0 {
		if _, err := v.rbtree.Insert(rec); err != nil {
			return err
		}
	}
	v.logger.Debug("registered record", "filename", rec.Filename, "target", target)
	return nil
}

// Remove deletes filename from the selected indexes and reports whether any
// of them held it.
func (v *Vault) Remove(filename string, target search.Source) bool {
	var removed bool
	if target&search.SourceBTree != 0 && v.btree.Delete(filename) {
		removed = true
	}
	if target&search.SourceRBTree != 0 && v.rbtree.Delete(filename) {
		removed = true
	}
	if removed {
		v.logger.Debug("removed record", "filename", filename, "target", target)
	}
	return removed
}

// Tag adds category to the record in each selected index that holds
// filename. It fails with *metadata.KeyNotFoundError only when none does.
func (v *Vault) Tag(filename, category string, target search.Source) error {
	add := func(r *metadata.Record) {
		if !r.HasCategory(category) {
			r.Categories = append(r.Categories, category)
		}
	}
	var errs []error
	tagged := false
	if target&search.SourceBTree != 0 {
		if err := v.btree.Update(filename, add); err == nil {
			tagged = true
		} else {
			errs = append(errs, err)
		}
	}
	if target&search.SourceRBTree != 0 {
		if err := v.rbtree.Update(filename, add); err == nil {
			tagged = true
		} else {
			errs = append(errs, err)
		}
	}
	if !tagged {
		if len(errs) == 0 {
			return ErrNoTarget
		}
		return errs[0]
	}
	return nil
}
