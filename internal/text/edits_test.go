package text

import "testing"

func TestApplyEditsSingle(t *testing.T) {
	t.Parallel()

	src := []byte("hello world")
	edits := []ByteEdit{
		{Span: Span{Start: 6, End: 11}, NewText: []byte("there")},
	}

	got, err := ApplyEdits(src, edits)
	if err != nil {
		t.Fatalf("ApplyEdits error = %v", err)
	}
	if string(got) != "hello there" {
		t.Fatalf("ApplyEdits = %q, want %q", got, "hello there")
	}
}

func TestApplyEditsMultipleOutOfOrder(t *testing.T) {
	t.Parallel()

	src := []byte("0123456789")
	edits := []ByteEdit{
		{Span: Span{Start: 8, End: 10}, NewText: []byte("XX")},
		{Span: Span{Start: 0, End: 2}, NewText: []byte("AA")},
		{Span: Span{Start: 4, End: 6}, NewText: []byte("BB")},
	}

	got, err := ApplyEdits(src, edits)
	if err != nil {
		t.Fatalf("ApplyEdits error = %v", err)
	}
	if string(got) != "AA23BB67XX" {
		t.Fatalf("ApplyEdits = %q, want %q", got, "AA23BB67XX")
	}
}

func TestApplyEditsEmpty(t *testing.T) {
	t.Parallel()

	src := []byte("unchanged")
	got, err := ApplyEdits(src, nil)
	if err != nil {
		t.Fatalf("ApplyEdits error = %v", err)
	}
	if string(got) != "unchanged" {
		t.Fatalf("ApplyEdits = %q, want unchanged copy", got)
	}
}

func TestApplyEditsInsertionAtTouchingBoundaries(t *testing.T) {
	t.Parallel()

	src := []byte("abcdef")
	edits := []ByteEdit{
		{Span: Span{Start: 3, End: 3}, NewText: []byte("-")},
		{Span: Span{Start: 3, End: 3}, NewText: []byte("+")},
	}

	// Two empty insertions at the same point don't overlap (touching is allowed),
	// but their relative order after sorting is by (Start, End) only.
	got, err := ApplyEdits(src, edits)
	if err != nil {
		t.Fatalf("ApplyEdits error = %v", err)
	}
	if len(got) != len(src)+2 {
		t.Fatalf("ApplyEdits length = %d, want %d", len(got), len(src)+2)
	}
}

func TestValidateEditsOverlapRejected(t *testing.T) {
	t.Parallel()

	edits := []ByteEdit{
		{Span: Span{Start: 0, End: 5}},
		{Span: Span{Start: 3, End: 8}},
	}
	if err := ValidateEdits(10, edits); err == nil {
		t.Fatal("expected overlap error")
	}
}

func TestValidateEditsTouchingAllowed(t *testing.T) {
	t.Parallel()

	edits := []ByteEdit{
		{Span: Span{Start: 0, End: 5}},
		{Span: Span{Start: 5, End: 8}},
	}
	if err := ValidateEdits(10, edits); err != nil {
		t.Fatalf("ValidateEdits error = %v, want nil for touching spans", err)
	}
}

func TestValidateEditsExceedsSourceLength(t *testing.T) {
	t.Parallel()

	edits := []ByteEdit{
		{Span: Span{Start: 0, End: 20}},
	}
	if err := ValidateEdits(10, edits); err == nil {
		t.Fatal("expected error for edit exceeding source length")
	}
}

func TestValidateEditsInvalidSourceLength(t *testing.T) {
	t.Parallel()

	if err := ValidateEdits(-1, nil); err == nil {
		t.Fatal("expected error for invalid source length")
	}
}

func TestApplyEditsRejectsOverlap(t *testing.T) {
	t.Parallel()

	src := []byte("0123456789")
	edits := []ByteEdit{
		{Span: Span{Start: 0, End: 5}, NewText: []byte("A")},
		{Span: Span{Start: 4, End: 6}, NewText: []byte("B")},
	}
	if _, err := ApplyEdits(src, edits); err == nil {
		t.Fatal("expected overlap error")
	}
}
