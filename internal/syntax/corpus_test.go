package syntax

import (
	"testing"

	"github.com/dkbb/dkbb-ls/internal/testutil"
	"github.com/dkbb/dkbb-ls/internal/text"
)

// TestCorpusLosslessnessAndErrorContainment runs P1 and P3, plus the
// offset -> point -> offset round trip of P2, over a corpus of realistic
// fixture decks, rather than only the hand-picked unit inputs in
// parser_test.go — a stand-in for the property-style fuzz coverage
// SPEC_FULL.md §8 describes without requiring `go test -fuzz` to run.
func TestCorpusLosslessnessAndErrorContainment(t *testing.T) {
	t.Parallel()

	files, err := testutil.CorpusFiles("smoke")
	if err != nil {
		t.Fatalf("CorpusFiles: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected at least one corpus file")
	}

	for _, path := range files {
		src := testutil.ReadFile(t, path)
		p := ParseSource(src)

		if got := p.Green.Text(); got != string(src) {
			t.Fatalf("%s: losslessness violated: got %d bytes, want %d", path, len(got), len(src))
		}

		root := p.Red()
		for _, e := range p.Errors {
			if !root.Span().ContainsSpan(e.Range) {
				t.Fatalf("%s: error range %s escapes root span %s", path, e.Range, root.Span())
			}
		}

		li := text.NewLineIndex(src)
		for off := text.ByteOffset(0); off <= text.ByteOffset(len(src)); off++ {
			pt, err := li.OffsetToPoint(off)
			if err != nil {
				t.Fatalf("%s: OffsetToPoint(%d): %v", path, off, err)
			}
			back, err := li.PointToOffset(pt)
			if err != nil {
				t.Fatalf("%s: PointToOffset(%v): %v", path, pt, err)
			}
			if back != off {
				t.Fatalf("%s: round-trip offset %d -> %v -> %d", path, off, pt, back)
			}
		}
	}
}
