package huffman

import (
	"bytes"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-faker/faker/v4"
	"github.com/google/go-cmp/cmp"
)

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	random := make([]byte, 64<<10)
	for i := range random {
		random[i] = byte(rng.UintN(256))
	}
	allSymbols := make([]byte, 256*3)
	for i := range allSymbols {
		allSymbols[i] = byte(i)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"single byte", []byte{'x'}},
		{"repeated byte", bytes.Repeat([]byte{0}, 1000)},
		{"two symbols", []byte("abababababbbbbba")},
		{"text", []byte(faker.Paragraph())},
		{"random binary", random},
		{"every symbol", allSymbols},
		{"skewed", append(bytes.Repeat([]byte{'a'}, 4096), 'b', 'c', 'd')},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifact := Encode(tt.data)
			got, err := Decode(artifact)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(tt.data))
			}
		})
	}
}

func TestRoundTripFibonacciWeights(t *testing.T) {
	// Fibonacci counts produce the deepest possible tree for their size.
	var data []byte
	a, b := 1, 1
	for sym := 0; sym < 20; sym++ {
		data = append(data, bytes.Repeat([]byte{byte(sym)}, a)...)
		a, b = b, a+b
	}
	codes := NewCodeTable(BuildTree(Analyze(data)))
	if got := len(codes[0]); got != 19 {
		t.Errorf("rarest symbol code length = %d, want 19", got)
	}
	got, err := Decode(Encode(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("round trip mismatch")
	}
}

func TestAnalyze(t *testing.T) {
	data := []byte("abracadabra")
	freq := Analyze(data)
	want := FrequencyTable{'a': 5, 'b': 2, 'r': 2, 'c': 1, 'd': 1}
	if diff := cmp.Diff(want, freq); diff != "" {
		t.Errorf("Analyze mismatch (-want +got):\n%s", diff)
	}
	if freq.Total() != uint64(len(data)) {
		t.Errorf("Total = %d, want %d", freq.Total(), len(data))
	}
	if len(Analyze(nil)) != 0 {
		t.Error("empty input produced a non-empty table")
	}
}

func TestSummarize(t *testing.T) {
	a := Summarize(Analyze([]byte("aabb")))
	if a.Total != 4 || a.Distinct != 2 {
		t.Fatalf("Total/Distinct = %d/%d, want 4/2", a.Total, a.Distinct)
	}
	if math.Abs(a.Entropy-1) > 1e-9 {
		t.Errorf("Entropy = %v, want 1", a.Entropy)
	}
	if math.Abs(a.Potential-87.5) > 1e-9 {
		t.Errorf("Potential = %v, want 87.5", a.Potential)
	}
	if a.Symbols[0].Symbol != 'a' || a.Symbols[0].Percent != 50 {
		t.Errorf("first share = %+v", a.Symbols[0])
	}

	empty := Summarize(Analyze(nil))
	if empty.Total != 0 || empty.Symbols != nil {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestCodeLengthsAreOptimal(t *testing.T) {
	codes := NewCodeTable(BuildTree(FrequencyTable{'a': 5, 'b': 2, 'c': 1, 'd': 1}))
	la, lb, lc, ld := len(codes['a']), len(codes['b']), len(codes['c']), len(codes['d'])
	if !(la <= lb && lb <= lc && lc == ld) {
		t.Errorf("code lengths a=%d b=%d c=%d d=%d violate a <= b <= c == d", la, lb, lc, ld)
	}
	limit := int(math.Ceil(math.Log2(4))) + 1
	for sym, code := range codes {
		if len(code) > limit {
			t.Errorf("code for %c has %d bits, limit %d", sym, len(code), limit)
		}
	}
}

func TestTieBreakIsDeterministic(t *testing.T) {
	freq := FrequencyTable{'a': 5, 'b': 2, 'c': 1, 'd': 1}
	got := map[byte]string{}
	for sym, code := range NewCodeTable(BuildTree(freq)) {
		got[sym] = code.String()
	}
	// c and d merge first (c on the left), then b (lower symbol than the
	// c/d subtree) goes left of that pair, then the weight-4 subtree goes
	// left of a.
	want := map[byte]string{'a': "1", 'b': "00", 'c': "010", 'd': "011"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}

	first := Encode([]byte("the quick brown fox jumps over the lazy dog"))
	for range 10 {
		if !bytes.Equal(first, Encode([]byte("the quick brown fox jumps over the lazy dog"))) {
			t.Fatal("Encode is not deterministic")
		}
	}
}

func TestCodesArePrefixFree(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	for trial := range 50 {
		freq := FrequencyTable{}
		for range 1 + rng.IntN(256) {
			freq[byte(rng.UintN(256))] = 1 + rng.Uint64N(1000)
		}
		codes := NewCodeTable(BuildTree(freq))
		if len(codes) != len(freq) {
			t.Fatalf("trial %d: %d codes for %d symbols", trial, len(codes), len(freq))
		}
		for x, cx := range codes {
			for y, cy := range codes {
				if x != y && strings.HasPrefix(cy.String(), cx.String()) {
					t.Fatalf("trial %d: code %s of %d is a prefix of %s of %d", trial, cx, x, cy, y)
				}
			}
		}
	}
}

func TestSingleSymbol(t *testing.T) {
	root := BuildTree(FrequencyTable{'z': 9})
	if !root.IsLeaf() {
		t.Fatal("single symbol tree is not a leaf")
	}
	codes := NewCodeTable(root)
	if got := codes['z'].String(); got != "0" {
		t.Errorf("code = %q, want \"0\"", got)
	}
	// 9 data bits plus 9 shape bits
	artifact := Encode(bytes.Repeat([]byte{'z'}, 9))
	if len(artifact) != headerSize+3 {
		t.Errorf("artifact length = %d, want %d", len(artifact), headerSize+3)
	}
}

func TestEmptyArtifact(t *testing.T) {
	artifact := Encode(nil)
	if len(artifact) != headerSize {
		t.Fatalf("artifact length = %d, want %d", len(artifact), headerSize)
	}
	if BuildTree(Analyze(nil)) != nil {
		t.Error("empty table built a tree")
	}
}

func TestDecodeErrors(t *testing.T) {
	valid := Encode([]byte("hello, huffman"))

	corrupt := func(mutate func([]byte) []byte) []byte {
		return mutate(bytes.Clone(valid))
	}

	formatCases := map[string][]byte{
		"short header": valid[:5],
		"bad magic": corrupt(func(b []byte) []byte {
			b[0] = 'X'
			return b
		}),
		"pad above seven": corrupt(func(b []byte) []byte {
			b[12] = 8
			return b
		}),
		"no payload": valid[:headerSize],
		"shape cut short": valid[:headerSize+1],
		"empty with payload": append(Encode(nil), 0xff),
	}
	for name, artifact := range formatCases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(artifact)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("Decode error = %v, want *FormatError", err)
			}
		})
	}

	t.Run("truncated data", func(t *testing.T) {
		long := Encode([]byte(strings.Repeat("abcdefgh", 64)))
		cut := bytes.Clone(long[:len(long)-16])
		cut[12] = 0
		_, err := Decode(cut)
		var te *TruncatedDataError
		if !errors.As(err, &te) {
			t.Fatalf("Decode error = %v, want *TruncatedDataError", err)
		}
		if te.Want != 512 || te.Decoded >= te.Want {
			t.Errorf("TruncatedDataError = %+v", te)
		}
	})

	t.Run("inflated length", func(t *testing.T) {
		b := bytes.Clone(valid)
		b[4] = 0x7f
		_, err := Decode(b)
		var te *TruncatedDataError
		if !errors.As(err, &te) {
			t.Fatalf("Decode error = %v, want *TruncatedDataError", err)
		}
	})
}

func TestStatsRatio(t *testing.T) {
	tests := []struct {
		stats Stats
		want  float64
	}{
		{Stats{}, 0},
		{Stats{OriginalSize: 100, CompressedSize: 25}, 75},
		{Stats{OriginalSize: 3, CompressedSize: 1}, 66.67},
		{Stats{OriginalSize: 10, CompressedSize: 15}, -50},
	}
	for _, tt := range tests {
		if got := tt.stats.Ratio(); got != tt.want {
			t.Errorf("%+v.Ratio() = %v, want %v", tt.stats, got, tt.want)
		}
	}

	text := []byte(strings.Repeat("aaaaaaab", 512))
	_, stats := Compress(text)
	if stats.Ratio() <= 50 {
		t.Errorf("skewed text ratio = %v, want > 50", stats.Ratio())
	}
}

func TestTreeString(t *testing.T) {
	s := BuildTree(FrequencyTable{'a': 2, 'b': 1}).String()
	for _, want := range []string{"* (3)", "'a' (2)", "'b' (1)"} {
		if !strings.Contains(s, want) {
			t.Errorf("tree rendering missing %q:\n%s", want, s)
		}
	}
	var empty *Node
	if empty.String() != "(empty)" {
		t.Errorf("nil tree renders as %q", empty.String())
	}
}
