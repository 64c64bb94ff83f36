package huffman

import (
	"math"
	"slices"
)

// FrequencyTable maps a byte value to the number of times it occurs. Only
// symbols that occur at least once are present.
type FrequencyTable map[byte]uint64

// Analyze counts every byte of data in a single pass.
func Analyze(data []byte) FrequencyTable {
	var counts [256]uint64
	for _, b := range data {
		counts[b]++
	}
	freq := make(FrequencyTable)
	for sym, count := range counts {
		if count > 0 {
			freq[byte(sym)] = count
		}
	}
	return freq
}

// Total is the number of symbols counted, i.e. the input length.
func (f FrequencyTable) Total() uint64 {
	var total uint64
	for _, count := range f {
		total += count
	}
	return total
}

// Symbols returns the distinct symbols in ascending order.
func (f FrequencyTable) Symbols() []byte {
	syms := make([]byte, 0, len(f))
	for sym := range f {
		syms = append(syms, sym)
	}
	slices.Sort(syms)
	return syms
}

// SymbolShare is one row of an Analysis.
type SymbolShare struct {
	Symbol  byte
	Count   uint64
	Percent float64
}

// Analysis summarizes a frequency table for display.
type Analysis struct {
	Total    uint64
	Distinct int
	// Entropy is the Shannon entropy in bits per symbol.
	Entropy float64
	// Potential estimates the achievable space saving in percent from the
	// entropy, (1 - entropy/8) * 100, clamped to [0, 100].
	Potential float64
	// Symbols is ordered by descending count, ties by ascending symbol.
	Symbols []SymbolShare
}

func Summarize(freq FrequencyTable) Analysis {
	a := Analysis{
		Total:    freq.Total(),
		Distinct: len(freq),
	}
	if a.Total == 0 {
		return a
	}
	total := float64(a.Total)
	for _, sym := range freq.Symbols() {
		count := freq[sym]
		p := float64(count) / total
		a.Entropy -= p * math.Log2(p)
		a.Symbols = append(a.Symbols, SymbolShare{
			Symbol:  sym,
			Count:   count,
			Percent: math.Round(p*10000) / 100,
		})
	}
	slices.SortStableFunc(a.Symbols, func(x, y SymbolShare) int {
		switch {
		case x.Count > y.Count:
			return -1
		case x.Count < y.Count:
			return 1
		}
		return 0
	})
	a.Potential = max(0, min(100, (1-a.Entropy/8)*100))
	return a
}
