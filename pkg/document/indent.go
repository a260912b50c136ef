package document

import (
	"strconv"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/walteh/gosnip/pkg/position"
)

// continueIndent rewrites a multi-line insert so every line after the
// first continues the leading indentation of the line the insert lands
// on. Single-line inserts pass through untouched.
func (b *Buffer) continueIndent(pos int, text string) string {
	if !strings.Contains(text, "\n") {
		return text
	}

	indent := leadingIndent(position.LineAt(b.text, pos))
	indent = normalizeIndent(indent, b.indent)
	if indent == "" {
		return text
	}
	return strings.ReplaceAll(text, "\n", "\n"+indent)
}

func leadingIndent(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

// normalizeIndent rewrites an indent run to the style the editorconfig
// definition asks for: tabs become size-wide space runs under "space",
// and size-wide space runs collapse to tabs under "tab". A nil
// definition keeps the indent verbatim.
func normalizeIndent(indent string, def *editorconfig.Definition) string {
	if def == nil || indent == "" {
		return indent
	}

	size := indentSize(def)
	switch def.IndentStyle {
	case editorconfig.IndentStyleSpaces:
		return strings.ReplaceAll(indent, "\t", strings.Repeat(" ", size))
	case editorconfig.IndentStyleTab:
		return strings.ReplaceAll(indent, strings.Repeat(" ", size), "\t")
	default:
		return indent
	}
}

func indentSize(def *editorconfig.Definition) int {
	if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
		return n
	}
	if def.TabWidth > 0 {
		return def.TabWidth
	}
	return 4
}
