package text

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
)

// ByteEdit is the range-based half of a querydb Diff edit: a Span of the
// prior document text to delete, replaced by NewText. A whole-document
// replacement (a Diff.Edit with a nil Range) never becomes a ByteEdit; it
// is applied directly, bypassing this splice path entirely.
type ByteEdit struct {
	Span    Span
	NewText []byte
}

// ValidateEdits checks a didChange batch's edit spans against the document's
// current length and rejects overlaps before any splicing happens, so a
// malformed Diff input is caught up front rather than producing a corrupted
// document. Touching spans are allowed (two edits may share a boundary).
func ValidateEdits(srcLen ByteOffset, edits []ByteEdit) error {
	_, err := validatedSortedEdits(srcLen, edits)
	return err
}

// ApplyEdits splices a Diff's range-based edits into src and returns the
// resulting document text. Edits may arrive in any order (LSP does not
// require a didChange batch to be pre-sorted); they are validated and
// sorted first so the splice below runs once, left to right.
func ApplyEdits(src []byte, edits []ByteEdit) ([]byte, error) {
	if len(edits) == 0 {
		return slices.Clone(src), nil
	}

	sorted, err := validatedSortedEdits(ByteOffset(len(src)), edits)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	cursor := ByteOffset(0)
	for _, e := range sorted {
		out.Write(src[cursor:e.Span.Start])
		out.Write(e.NewText)
		cursor = e.Span.End
	}
	out.Write(src[cursor:])
	return out.Bytes(), nil
}

func validatedSortedEdits(srcLen ByteOffset, edits []ByteEdit) ([]ByteEdit, error) {
	if !srcLen.IsValid() {
		return nil, fmt.Errorf("invalid source length: %d", srcLen)
	}
	for _, e := range edits {
		if err := e.Span.Validate(); err != nil {
			return nil, fmt.Errorf("invalid edit span %s: %w", e.Span, err)
		}
		if e.Span.End > srcLen {
			return nil, fmt.Errorf("edit span %s exceeds source length %d", e.Span, srcLen)
		}
	}

	sorted := sortByteEdits(edits)

	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1]
		cur := sorted[i]
		if cur.Span.Start < prev.Span.End {
			return nil, fmt.Errorf("overlapping edits: %s and %s", prev.Span, cur.Span)
		}
	}
	return sorted, nil
}

func sortByteEdits(edits []ByteEdit) []ByteEdit {
	sorted := slices.Clone(edits)
	slices.SortFunc(sorted, compareByteEdits)
	return sorted
}

func compareByteEdits(a, b ByteEdit) int {
	if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.Span.End, b.Span.End)
}
