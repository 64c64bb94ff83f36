package rbtree

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"

	"filevault/metadata"
)

func record(name string) metadata.Record {
	return metadata.Record{Filename: name, Path: "/data/" + name, Size: 1}
}

func key(i int) string {
	return fmt.Sprintf("%03d", i)
}

// checkInvariants verifies BST order, the red rules and uniform black
// height, and that the parent links agree with the child links.
func checkInvariants(t *testing.T, tree *Tree) {
	t.Helper()
	tree.mu.RLock()
	defer tree.mu.RUnlock()

	if tree.nodes[sentinel].color != black {
		t.Fatal("sentinel is not black")
	}
	if tree.root == sentinel {
		if tree.size != 0 {
			t.Fatalf("empty tree reports %d records", tree.size)
		}
		return
	}
	if tree.nodes[tree.root].color != black {
		t.Fatal("root is red")
	}
	if tree.nodes[tree.root].parent != sentinel {
		t.Fatal("root has a parent")
	}

	count := 0
	var walk func(h handle, lo, hi *string) int
	walk = func(h handle, lo, hi *string) int {
		if h == sentinel {
			return 1
		}
		count++
		n := tree.nodes[h]
		if (lo != nil && n.key <= *lo) || (hi != nil && n.key >= *hi) {
			t.Fatalf("key %q out of order", n.key)
		}
		for _, c := range []handle{n.left, n.right} {
			if c == sentinel {
				continue
			}
			if tree.nodes[c].parent != h {
				t.Fatalf("child %q does not point back to %q", tree.nodes[c].key, n.key)
			}
			if n.color == red && tree.nodes[c].color == red {
				t.Fatalf("red node %q has red child %q", n.key, tree.nodes[c].key)
			}
		}
		left := walk(n.left, lo, &n.key)
		right := walk(n.right, &n.key, hi)
		if left != right {
			t.Fatalf("black heights %d and %d below %q", left, right, n.key)
		}
		if n.color == black {
			return left + 1
		}
		return left
	}
	walk(tree.root, nil, nil)
	if count != tree.size {
		t.Fatalf("tree holds %d nodes but reports %d", count, tree.size)
	}
}

func TestDeleteScenario(t *testing.T) {
	tree := New()
	for _, k := range []int{50, 20, 70, 10, 30, 60, 80, 5} {
		if _, err := tree.Insert(record(key(k))); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
		checkInvariants(t, tree)
	}
	if !tree.Delete(key(20)) {
		t.Fatal("Delete(20) reported a miss")
	}
	if _, ok := tree.Search(key(20)); ok {
		t.Error("Search(20) found a deleted key")
	}
	checkInvariants(t, tree)
	for _, k := range []int{50, 70, 10, 30, 60, 80, 5} {
		if _, ok := tree.Search(key(k)); !ok {
			t.Errorf("Search(%d) lost a key", k)
		}
	}
}

func TestAscendingInsertsStayBalanced(t *testing.T) {
	tree := New()
	for i := range 1023 {
		tree.Insert(record(key(i)))
	}
	checkInvariants(t, tree)
	// a red-black tree of n nodes is at most 2*log2(n+1) tall
	if h := tree.Height(); h > 20 {
		t.Errorf("Height() = %d for 1023 sorted inserts", h)
	}
}

func TestRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 13))
	tree := New()
	want := map[string]int64{}

	for op := range 5000 {
		k := key(rng.IntN(300))
		if rng.IntN(5) < 2 {
			_, present := want[k]
			if got := tree.Delete(k); got != present {
				t.Fatalf("op %d: Delete(%s) = %v, want %v", op, k, got, present)
			}
			delete(want, k)
		} else {
			rec := record(k)
			rec.Size = int64(op)
			tree.Insert(rec)
			want[k] = rec.Size
		}
		if op%50 == 0 {
			checkInvariants(t, tree)
		}
	}
	checkInvariants(t, tree)

	for i := range 300 {
		k := key(i)
		got, ok := tree.Search(k)
		size, present := want[k]
		if ok != present || (ok && got.Size != size) {
			t.Fatalf("Search(%s) = %v/%d, want %v/%d", k, ok, got.Size, present, size)
		}
	}
	if tree.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", tree.Len(), len(want))
	}
}

func TestReinsertKeepsShape(t *testing.T) {
	tree := New()
	for _, k := range []int{4, 2, 6, 1, 3, 5, 7} {
		tree.Insert(record(key(k)))
	}
	color.NoColor = true
	v := &Visualizer{Tree: tree}
	before := v.Visualize()

	updated := record(key(3))
	updated.Compressed, updated.Ratio = true, 12.5
	inserted, err := tree.Insert(updated)
	if err != nil || inserted {
		t.Fatalf("re-Insert = %v, %v; want false, nil", inserted, err)
	}
	if after := v.Visualize(); after != before {
		t.Errorf("shape changed on update:\n%s\n---\n%s", before, after)
	}
	got, _ := tree.Search(key(3))
	if diff := cmp.Diff(updated, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestArenaReusesSlots(t *testing.T) {
	tree := New()
	for i := range 100 {
		tree.Insert(record(key(i)))
	}
	slots := len(tree.nodes)
	for i := range 50 {
		tree.Delete(key(i))
	}
	for i := range 50 {
		tree.Insert(record(key(i + 500)))
	}
	if len(tree.nodes) != slots {
		t.Errorf("arena grew from %d to %d slots", slots, len(tree.nodes))
	}
	checkInvariants(t, tree)
}

func TestDrainToEmpty(t *testing.T) {
	tree := New()
	rng := rand.New(rand.NewPCG(5, 8))
	perm := rng.Perm(200)
	for _, i := range perm {
		tree.Insert(record(key(i)))
	}
	rng.Shuffle(len(perm), func(i, j int) { perm[i], perm[j] = perm[j], perm[i] })
	for _, i := range perm {
		if !tree.Delete(key(i)) {
			t.Fatalf("Delete(%d) missed", i)
		}
	}
	checkInvariants(t, tree)
	if tree.Len() != 0 || tree.Height() != 0 {
		t.Errorf("drained tree: Len=%d Height=%d", tree.Len(), tree.Height())
	}
	if tree.Delete(key(1)) {
		t.Error("Delete on an empty tree reported success")
	}
}

func TestFindAndUpdate(t *testing.T) {
	tree := New()
	tree.Insert(record("notes.txt"))

	err := tree.Update("notes.txt", func(r *metadata.Record) {
		r.Categories = append(r.Categories, "work")
		r.Filename = "renamed.txt"
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := tree.Find("notes.txt")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !got.HasCategory("work") || got.Filename != "notes.txt" {
		t.Errorf("updated record = %+v", got)
	}

	var nf *metadata.KeyNotFoundError
	if _, err := tree.Find("missing"); !errors.As(err, &nf) {
		t.Errorf("Find(missing) error = %v", err)
	}
	if err := tree.Update("missing", func(*metadata.Record) {}); !errors.As(err, &nf) {
		t.Errorf("Update(missing) error = %v", err)
	}
}

func TestAll(t *testing.T) {
	tree := New()
	var want []string
	for _, i := range rand.New(rand.NewPCG(1, 1)).Perm(64) {
		tree.Insert(record(key(i)))
		want = append(want, key(i))
	}
	slices.Sort(want)
	var got []string
	for rec := range tree.All() {
		got = append(got, rec.Filename)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}

	got = got[:0]
	for rec := range tree.All() {
		got = append(got, rec.Filename)
		if len(got) == 5 {
			break
		}
	}
	if diff := cmp.Diff(want[:5], got); diff != "" {
		t.Errorf("early stop mismatch (-want +got):\n%s", diff)
	}
}

func TestRange(t *testing.T) {
	tree := New()
	for i := range 50 {
		tree.Insert(record(key(i * 2)))
	}
	var got []string
	for rec := range tree.Range(key(9), key(17)) {
		got = append(got, rec.Filename)
	}
	if diff := cmp.Diff([]string{key(10), key(12), key(14), key(16)}, got); diff != "" {
		t.Errorf("Range mismatch (-want +got):\n%s", diff)
	}
	for range tree.Range(key(20), key(10)) {
		t.Fatal("inverted range yielded a record")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tree := New()
	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 250 {
				tree.Insert(record(key(w*250 + i)))
				tree.Search(key(i))
			}
		}()
	}
	wg.Wait()
	checkInvariants(t, tree)
	if tree.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", tree.Len())
	}
}

func TestVisualize(t *testing.T) {
	color.NoColor = true
	tree := New()
	v := &Visualizer{Tree: tree}
	if v.Visualize() != "(empty)" {
		t.Errorf("empty tree renders %q", v.Visualize())
	}
	for _, k := range []string{"b", "a", "c"} {
		tree.Insert(record(k))
	}
	want := strings.Join([]string{
		"└── b (B)",
		"    ├── a (R)",
		"    └── c (R)",
	}, "\n")
	if got := v.Visualize(); got != want {
		t.Errorf("Visualize() =\n%s\nwant\n%s", got, want)
	}
}
