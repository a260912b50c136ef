// Package session drives live snippet editing sessions: it materializes
// a normalized node tree into a document, keeps every node sharing a
// tabstop identifier mirrored as the user types, exposes jump
// navigation over the tabstop ring, and stacks nested sessions.
//
// The engine never touches a real editor. It runs against the Document
// and Anchors interfaces below; pkg/document provides an in-memory
// reference implementation.
package session

// AnchorID is the handle an anchor service returns for a tracked range.
type AnchorID int

// Growth controls whether an edit exactly at an anchor's boundary is
// absorbed into or excluded from its range.
type Growth int

const (
	// GrowLeft absorbs insertions at the anchor's start and excludes
	// insertions at its end.
	GrowLeft Growth = iota
	// GrowRight absorbs insertions at the anchor's end and excludes
	// insertions at its start.
	GrowRight
	// GrowExpand absorbs insertions at both boundaries.
	GrowExpand
)

func (g Growth) String() string {
	switch g {
	case GrowLeft:
		return "left"
	case GrowRight:
		return "right"
	case GrowExpand:
		return "expand"
	default:
		return "unknown"
	}
}

// Document is the text facade the engine writes through. Positions are
// byte offsets. The engine folds the insertion line's indent into
// multi-line snippet text itself, before writing; style normalization
// of user-typed inserts is the document's concern.
type Document interface {
	CursorPosition() int
	SetCursor(pos int)
	InsertTextAt(pos int, text string)
	ReadText(start, end int) string
}

// Anchors is the anchor service the engine tracks node regions with.
// Anchors survive arbitrary edits elsewhere in the document and only
// invalidate when their own covered text is destroyed.
type Anchors interface {
	// Create returns a new empty-range anchor at pos.
	Create(pos int) (AnchorID, error)

	// Range returns the anchor's current extent. It fails when the
	// anchor no longer resolves.
	Range(id AnchorID) (start, end int, err error)

	// SetText replaces the anchor's covered text; afterwards its range
	// covers exactly the new text.
	SetText(id AnchorID, text string) error

	// SetGrowth sets the anchor's boundary behaviour.
	SetGrowth(id AnchorID, g Growth) error

	// Delete discards the anchor.
	Delete(id AnchorID) error
}
