package querydb

import (
	"sync"
	"testing"

	"github.com/dkbb/dkbb-ls/internal/text"
)

func TestCompileUnknownSourceErrors(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	if _, err := db.Compile("missing.deck"); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestCompileGeometryDiagnostic(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	db.SetSource("a.deck", []byte("*NODE 1 0 0 0\n*END\n"))

	diags, err := db.Compile("a.deck")
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	if len(diags) != 1 || diags[0].Message != "here a geo!" {
		t.Fatalf("diags = %+v", diags)
	}
}

// P5: compiling twice at the same revision produces the same accumulated
// multiset.
func TestCompileIdempotent(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	db.SetSource("a.deck", []byte("*MAT_FOO\n1 2 3\n"))

	first, err := db.Compile("a.deck")
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	second, err := db.Compile("a.deck")
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("first = %v, second = %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("first[%d] = %+v, second[%d] = %+v", i, first[i], i, second[i])
		}
	}
}

// P4-adjacent: repeated parse() calls at the same revision return the
// memoised, pointer-identical Program.
func TestProgramMemoisedAcrossCalls(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	db.SetSource("a.deck", []byte("*MAT_FOO\n1 2 3\n"))

	p1, err := db.Program("a.deck")
	if err != nil {
		t.Fatalf("Program error = %v", err)
	}
	p2, err := db.Program("a.deck")
	if err != nil {
		t.Fatalf("Program error = %v", err)
	}
	if p1 != p2 {
		t.Fatal("expected memoised Program to be pointer-identical across calls")
	}
}

func TestSetDiffWholeDocumentReplace(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	db.SetSource("a.deck", []byte("*NODE 1 0 0 0\n*END\n"))

	if err := db.SetDiff("a.deck", Diff{Edits: []Edit{{NewText: []byte("*PART\npart1\n\n")}}}); err != nil {
		t.Fatalf("SetDiff error = %v", err)
	}

	diags, err := db.Compile("a.deck")
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("diags = %+v, want none for *PART", diags)
	}
}

func TestSetDiffIncrementalEditRunsReparser(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	db.SetSource("a.deck", []byte("*NODE 1 0 0 0\n*END\n"))

	rng := text.Span{Start: 7, End: 8}
	if err := db.SetDiff("a.deck", Diff{Edits: []Edit{{Range: &rng, NewText: []byte("9")}}}); err != nil {
		t.Fatalf("SetDiff error = %v", err)
	}

	diags, err := db.Compile("a.deck")
	if err != nil {
		t.Fatalf("Compile error = %v", err)
	}

	found := false
	for _, d := range diags {
		if d.Message == "don't edit geometry yet, naughty!" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected geometry-edit diagnostic, got %+v", diags)
	}
}

func TestCompileConcurrentCallsCoalesce(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	db.SetSource("a.deck", []byte("*MAT_FOO\n1 2 3\n"))

	const n = 16
	results := make([][]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			diags, err := db.Compile("a.deck")
			if err != nil {
				t.Errorf("Compile error = %v", err)
				return
			}
			msgs := make([]string, len(diags))
			for j, d := range diags {
				msgs[j] = d.Message
			}
			results[i] = msgs
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if len(results[i]) != len(results[0]) {
			t.Fatalf("result[%d] = %v, result[0] = %v", i, results[i], results[0])
		}
	}
}

func TestCloseDropsDocument(t *testing.T) {
	t.Parallel()
	db := NewDB(0)
	db.SetSource("a.deck", []byte("*PART\n\n\n"))
	db.Close("a.deck")

	if _, err := db.Compile("a.deck"); err == nil {
		t.Fatal("expected error after Close")
	}
}
