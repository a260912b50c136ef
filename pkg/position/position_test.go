package position_test

import (
	"testing"

	"github.com/walteh/gosnip/pkg/position"
)

func TestPlaceOf(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		wantLine int
		wantCol  int
	}{
		{
			name:     "empty_text",
			text:     "",
			offset:   0,
			wantLine: 1,
			wantCol:  1,
		},
		{
			name:     "single_line_start",
			text:     "hello world",
			offset:   0,
			wantLine: 1,
			wantCol:  1,
		},
		{
			name:     "single_line_middle",
			text:     "hello world",
			offset:   6,
			wantLine: 1,
			wantCol:  7,
		},
		{
			name:     "second_line",
			text:     "hello\nworld",
			offset:   8,
			wantLine: 2,
			wantCol:  3,
		},
		{
			name:     "offset_on_newline",
			text:     "ab\ncd",
			offset:   2,
			wantLine: 1,
			wantCol:  3,
		},
		{
			name:     "offset_past_end_clamps",
			text:     "ab",
			offset:   99,
			wantLine: 1,
			wantCol:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := position.PlaceOf(tt.text, tt.offset)
			if got.Line != tt.wantLine || got.Character != tt.wantCol {
				t.Errorf("PlaceOf() = (%d:%d), want (%d:%d)", got.Line, got.Character, tt.wantLine, tt.wantCol)
			}
		})
	}
}

func TestOffsetOfRoundTrip(t *testing.T) {
	text := "first line\nsecond\n\nfourth line here"
	for offset := 0; offset <= len(text); offset++ {
		place := position.PlaceOf(text, offset)
		if got := position.OffsetOf(text, place); got != offset {
			t.Errorf("round trip at %d: got %d (place %v)", offset, got, place)
		}
	}
}

func TestLineAt(t *testing.T) {
	text := "aa\nbbb\ncccc"

	tests := []struct {
		offset int
		want   string
	}{
		{0, "aa"},
		{2, "aa"},
		{3, "bbb"},
		{5, "bbb"},
		{7, "cccc"},
		{11, "cccc"},
	}

	for _, tt := range tests {
		if got := position.LineAt(text, tt.offset); got != tt.want {
			t.Errorf("LineAt(%d) = %q, want %q", tt.offset, got, tt.want)
		}
	}
}

func TestGraphemeColumn(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		byteCol int
		want    int
	}{
		{
			name:    "ascii",
			line:    "hello",
			byteCol: 4,
			want:    4,
		},
		{
			name:    "two_byte_rune_counts_once",
			line:    "héllo", // é is 2 bytes
			byteCol: 4,       // after "hé"
			want:    3,
		},
		{
			name:    "combining_sequence_counts_once",
			line:    "e\u0301x", // e + combining acute = 1 grapheme
			byteCol: 4, // after the full cluster
			want:    2,
		},
		{
			name:    "column_one",
			line:    "abc",
			byteCol: 1,
			want:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := position.GraphemeColumn(tt.line, tt.byteCol); got != tt.want {
				t.Errorf("GraphemeColumn(%q, %d) = %d, want %d", tt.line, tt.byteCol, got, tt.want)
			}
		})
	}
}
