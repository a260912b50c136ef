// Package position converts between byte offsets and line/column places
// in document text. Columns are reported both as byte columns and as
// grapheme-cluster columns, since what an editor shows the user is
// grapheme based.
package position

import (
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// Place is a 1-indexed line and column position in a text.
type Place struct {
	Line      int
	Character int
}

// PlaceOf returns the 1-indexed line and byte column of offset in text.
// Offsets past the end clamp to the last position.
func PlaceOf(text string, offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	line := 1
	col := 1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Place{Line: line, Character: col}
}

// OffsetOf returns the byte offset of a 1-indexed place in text. Places
// past the end of a line clamp to the line end; lines past the end
// clamp to the text end.
func OffsetOf(text string, place Place) int {
	offset := 0
	for line := 1; line < place.Line; line++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
	}

	lineEnd := len(text)
	if next := strings.IndexByte(text[offset:], '\n'); next >= 0 {
		lineEnd = offset + next
	}

	offset += place.Character - 1
	if offset > lineEnd {
		offset = lineEnd
	}
	return offset
}

// LineAt returns the full text of the line containing offset, without
// its trailing newline.
func LineAt(text string, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	start := strings.LastIndexByte(text[:offset], '\n') + 1
	end := len(text)
	if next := strings.IndexByte(text[start:], '\n'); next >= 0 {
		end = start + next
	}
	return text[start:end]
}

// GraphemeColumn returns the 1-indexed grapheme-cluster column for a
// byte column within line. Combining sequences and other multi-byte
// clusters count as one column each.
func GraphemeColumn(line string, byteCol int) int {
	if byteCol < 1 {
		return 1
	}
	prefix := line
	if byteCol-1 < len(line) {
		prefix = line[:byteCol-1]
	}
	n, err := textseg.TokenCount([]byte(prefix), textseg.ScanGraphemeClusters)
	if err != nil {
		// grapheme segmentation never fails on valid UTF-8; fall back
		// to the byte column for anything else
		return byteCol
	}
	return n + 1
}
