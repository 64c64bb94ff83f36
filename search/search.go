// Package search queries the B-Tree and Red-Black tree indexes through one
// entry point and merges what they return.
package search

import (
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"filevault/metadata"
)

// Source selects the indexes a query runs against. Values combine as a bit
// set.
type Source uint8

const (
	SourceBTree Source = 1 << iota
	SourceRBTree

	SourceBoth = SourceBTree | SourceRBTree
)

func (s Source) String() string {
	switch s {
	case SourceBTree:
		return "btree"
	case SourceRBTree:
		return "rbtree"
	case SourceBoth:
		return "both"
	}
	return fmt.Sprintf("Source(%d)", uint8(s))
}

// ParseSource maps "btree", "rbtree" or "both" to a Source.
func ParseSource(s string) (Source, bool) {
	switch strings.ToLower(s) {
	case "btree", "b":
		return SourceBTree, true
	case "rbtree", "rb", "redblack":
		return SourceRBTree, true
	case "both", "all", "":
		return SourceBoth, true
	}
	return 0, false
}

// Index is what the coordinator needs from a tree.
type Index interface {
	Search(filename string) (metadata.Record, bool)
	All() iter.Seq[metadata.Record]
}

// Hit is one record found by a query. Source names the index that produced
// it; when both indexes agree the B-Tree is credited. Latency is the time
// spent in that index.
type Hit struct {
	Record  metadata.Record
	Source  Source
	Latency time.Duration
}

// Query is one entry of the search history.
type Query struct {
	Kind    string
	Term    string
	Sources Source
	Hits    int
	At      time.Time
}

// Coordinator fans a query out to the selected indexes. It is safe for
// concurrent use.
type Coordinator struct {
	indexes [2]Index

	mu      sync.Mutex
	history []Query
	limit   int
}

// New returns a coordinator over the two indexes that remembers the last
// historySize queries. Either index may be nil, in which case queries
// against it return nothing.
func New(btree, rbtree Index, historySize int) *Coordinator {
	return &Coordinator{indexes: [2]Index{btree, rbtree}, limit: max(historySize, 0)}
}

// selected yields the requested indexes in B-Tree, Red-Black order.
func (c *Coordinator) selected(sources Source) iter.Seq2[Source, Index] {
	return func(yield func(Source, Index) bool) {
		for i, src := range []Source{SourceBTree, SourceRBTree} {
			if sources&src == 0 || c.indexes[i] == nil {
				continue
			}
			if !yield(src, c.indexes[i]) {
				return
			}
		}
	}
}

// Search looks filename up in the requested indexes. It returns at most one
// hit; an InconsistencyError if the indexes hold different records for it.
func (c *Coordinator) Search(filename string, sources Source) ([]Hit, error) {
	var m merger
	for src, idx := range c.selected(sources) {
		start := time.Now()
		rec, ok := idx.Search(filename)
		elapsed := time.Since(start)
		if ok {
			m.add(Hit{Record: rec, Source: src, Latency: elapsed})
		}
	}
	return c.finish("exact", filename, sources, m)
}

// SearchPartial returns every record whose filename contains term, in
// ascending filename order.
func (c *Coordinator) SearchPartial(term string, sources Source) ([]Hit, error) {
	return c.scan("partial", term, sources, func(r metadata.Record) bool {
		return strings.Contains(r.Filename, term)
	})
}

// SearchCategory returns every record tagged with category.
func (c *Coordinator) SearchCategory(category string, sources Source) ([]Hit, error) {
	return c.scan("category", category, sources, func(r metadata.Record) bool {
		return r.HasCategory(category)
	})
}

func (c *Coordinator) scan(kind, term string, sources Source, match func(metadata.Record) bool) ([]Hit, error) {
	var m merger
	for src, idx := range c.selected(sources) {
		start := time.Now()
		var found []metadata.Record
		for rec := range idx.All() {
			if match(rec) {
				found = append(found, rec)
			}
		}
		elapsed := time.Since(start)
		for _, rec := range found {
			m.add(Hit{Record: rec, Source: src, Latency: elapsed})
		}
	}
	return c.finish(kind, term, sources, m)
}

func (c *Coordinator) finish(kind, term string, sources Source, m merger) ([]Hit, error) {
	hits := m.sorted()
	c.record(Query{Kind: kind, Term: term, Sources: sources, Hits: len(hits), At: time.Now()})
	if len(m.conflicts) > 0 {
		return hits, &InconsistencyError{Filenames: m.conflicts}
	}
	return hits, nil
}

func (c *Coordinator) record(q Query) {
	if c.limit == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == c.limit {
		c.history = append(c.history[:0], c.history[1:]...)
	}
	c.history = append(c.history, q)
}

// History returns the remembered queries, oldest first.
func (c *Coordinator) History() []Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Query, len(c.history))
	copy(out, c.history)
	return out
}
