package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"filevault/metadata"
)

func sample() metadata.Record {
	return metadata.Record{
		Filename:   "notes.txt",
		Path:       "/home/user/notes.txt",
		Size:       4096,
		CreatedAt:  time.Date(2024, 3, 1, 9, 30, 0, 123456789, time.UTC),
		ModifiedAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
		Compressed: true,
		Ratio:      37.25,
		Categories: []string{"work", "text"},
		Digest:     "af1349b9",
	}
}

func TestRecordRoundtrip(t *testing.T) {
	for _, rec := range []metadata.Record{sample(), {Filename: "bare"}} {
		data, err := Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		var got metadata.Record
		if err := Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if diff := cmp.Diff(rec, got); diff != "" {
			t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDeterministic(t *testing.T) {
	a, err := Marshal(sample())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(sample())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("same record encoded to different bytes")
	}
}

func TestUsesJSONFieldNames(t *testing.T) {
	data, err := Marshal(sample())
	if err != nil {
		t.Fatal(err)
	}
	diag, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	for _, field := range []string{`"filename"`, `"created_at"`, `"digest"`} {
		if !strings.Contains(diag, field) {
			t.Errorf("diagnostic %s lacks %s", diag, field)
		}
	}
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, name := range []string{"a", "b", "c"} {
		if err := enc.Encode(metadata.Record{Filename: name}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	dec := NewDecoder(&buf)
	var got []string
	for range 3 {
		var rec metadata.Record
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		got = append(got, rec.Filename)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("stream mismatch (-want +got):\n%s", diff)
	}
}
