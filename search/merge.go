package search

import (
	"fmt"
	"slices"
	"strings"
)

// InconsistencyError reports filenames for which the indexes returned
// records that differ. The hits accompanying it keep the first record seen.
type InconsistencyError struct {
	Filenames []string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("indexes disagree on %d record(s): %s",
		len(e.Filenames), strings.Join(e.Filenames, ", "))
}

// merger deduplicates hits by filename. The first hit for a filename wins
// and a later one that differs is recorded as a conflict.
type merger struct {
	hits      []Hit
	seen      map[string]int
	conflicts []string
}

func (m *merger) add(h Hit) {
	if m.seen == nil {
		m.seen = make(map[string]int)
	}
	i, ok := m.seen[h.Record.Filename]
	if !ok {
		m.seen[h.Record.Filename] = len(m.hits)
		m.hits = append(m.hits, h)
		return
	}
	if !m.hits[i].Record.Equal(h.Record) && !slices.Contains(m.conflicts, h.Record.Filename) {
		m.conflicts = append(m.conflicts, h.Record.Filename)
	}
}

func (m *merger) sorted() []Hit {
	slices.SortFunc(m.hits, func(a, b Hit) int {
		return strings.Compare(a.Record.Filename, b.Record.Filename)
	})
	slices.Sort(m.conflicts)
	return m.hits
}
