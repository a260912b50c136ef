package snippet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/gosnip/pkg/snippet"
)

func text(s string) snippet.Node {
	return snippet.NewText(s)
}

func tabstop(id string, placeholder ...snippet.Node) snippet.Node {
	return snippet.Node{Kind: snippet.KindTabstop, ID: id, Placeholder: placeholder}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected []snippet.Node
	}{
		{
			name:     "plain_text",
			body:     "hello world",
			expected: []snippet.Node{text("hello world")},
		},
		{
			name:     "empty_body",
			body:     "",
			expected: []snippet.Node{text("")},
		},
		{
			name:     "short_tabstop",
			body:     "fn $1()",
			expected: []snippet.Node{text("fn "), tabstop("1"), text("()")},
		},
		{
			name:     "short_tabstop_at_end",
			body:     "end $0",
			expected: []snippet.Node{text("end "), tabstop("0")},
		},
		{
			name:     "brace_tabstop",
			body:     "${1}",
			expected: []snippet.Node{tabstop("1")},
		},
		{
			name:     "tabstop_with_placeholder",
			body:     "${1:name}",
			expected: []snippet.Node{tabstop("1", text("name"))},
		},
		{
			name:     "nested_placeholder",
			body:     "${1:${2:inner}}",
			expected: []snippet.Node{tabstop("1", tabstop("2", text("inner")))},
		},
		{
			name:     "empty_placeholder",
			body:     "${1:}",
			expected: []snippet.Node{tabstop("1", text(""))},
		},
		{
			name: "mixed_placeholder_content",
			body: "${1:a $2 b}",
			expected: []snippet.Node{
				tabstop("1", text("a "), tabstop("2"), text(" b")),
			},
		},
		{
			name: "choice_list",
			body: "${1|red,green,blue|}",
			expected: []snippet.Node{
				{Kind: snippet.KindTabstop, ID: "1", Choices: []string{"red", "green", "blue"}},
			},
		},
		{
			name: "choice_with_escaped_separators",
			body: `${1|a\,b,c\|d|}`,
			expected: []snippet.Node{
				{Kind: snippet.KindTabstop, ID: "1", Choices: []string{"a,b", "c|d"}},
			},
		},
		{
			name: "transform",
			body: "${1/foo(.*)/bar$1/gi}",
			expected: []snippet.Node{
				{Kind: snippet.KindTabstop, ID: "1", Transform: &snippet.Transform{
					Pattern: "foo(.*)",
					Format:  "bar$1",
					Options: "gi",
				}},
			},
		},
		{
			name: "transform_with_escaped_slash",
			body: `${2/a\/b//}`,
			expected: []snippet.Node{
				{Kind: snippet.KindTabstop, ID: "2", Transform: &snippet.Transform{
					Pattern: "a/b",
				}},
			},
		},
		{
			name:     "short_variable",
			body:     "file: $TM_FILENAME!",
			expected: []snippet.Node{text("file: "), {Kind: snippet.KindVariable, Name: "TM_FILENAME"}, text("!")},
		},
		{
			name:     "brace_variable",
			body:     "${TM_FILENAME}",
			expected: []snippet.Node{{Kind: snippet.KindVariable, Name: "TM_FILENAME"}},
		},
		{
			name: "variable_with_placeholder",
			body: "${name:default}",
			expected: []snippet.Node{
				{Kind: snippet.KindVariable, Name: "name", Placeholder: []snippet.Node{text("default")}},
			},
		},
		{
			name: "variable_with_transform",
			body: "${name/up/down/g}",
			expected: []snippet.Node{
				{Kind: snippet.KindVariable, Name: "name", Transform: &snippet.Transform{
					Pattern: "up",
					Format:  "down",
					Options: "g",
				}},
			},
		},
		{
			name:     "escaped_dollar_and_braces",
			body:     `\$\{1\}`,
			expected: []snippet.Node{text("${1}")},
		},
		{
			name:     "escaped_backslash",
			body:     `a\\b`,
			expected: []snippet.Node{text(`a\b`)},
		},
		{
			name:     "trailing_bare_dollar",
			body:     "price: 5$",
			expected: []snippet.Node{text("price: 5$")},
		},
		{
			name:     "trailing_escape_flushed",
			body:     `tail\`,
			expected: []snippet.Node{text(`tail\`)},
		},
		{
			name:     "dollar_before_space",
			body:     "a $ b",
			expected: []snippet.Node{text("a $ b")},
		},
		{
			name:     "double_dollar_tabstop",
			body:     "$$1",
			expected: []snippet.Node{text("$"), tabstop("1")},
		},
		{
			name:     "closing_brace_at_top_level_is_literal",
			body:     "if x {}",
			expected: []snippet.Node{text("if x {}")},
		},
		{
			name:     "distinct_zero_padded_ids",
			body:     "$1 $01",
			expected: []snippet.Node{tabstop("1"), text(" "), tabstop("01")},
		},
		{
			name: "multiline_body",
			body: "for ${1:i} {\n\t$0\n}",
			expected: []snippet.Node{
				text("for "), tabstop("1", text("i")), text(" {\n\t"), tabstop("0"), text("\n}"),
			},
		},
		{
			name:     "unicode_text",
			body:     "héllo ${1:wörld}",
			expected: []snippet.Node{text("héllo "), tabstop("1", text("wörld"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := snippet.Parse(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantState string
	}{
		{
			name:      "unterminated_brace",
			body:      "${",
			wantState: "after-${",
		},
		{
			name:      "unterminated_brace_tabstop",
			body:      "${1",
			wantState: "dollar-tabstop",
		},
		{
			name:      "unterminated_brace_variable",
			body:      "${name",
			wantState: "dollar-var",
		},
		{
			name:      "invalid_brace_start",
			body:      "${!}",
			wantState: "after-${",
		},
		{
			name:      "unterminated_choice_list",
			body:      "${1|a,b",
			wantState: "choice-list",
		},
		{
			name:      "choice_list_missing_close_brace",
			body:      "${1|a,b|x",
			wantState: "choice-list",
		},
		{
			name:      "unterminated_transform_pattern",
			body:      "${1/abc",
			wantState: "transform-pattern",
		},
		{
			name:      "unterminated_transform_format",
			body:      "${1/a/b",
			wantState: "transform-format",
		},
		{
			name:      "unterminated_transform_options",
			body:      "${1/a/b/g",
			wantState: "transform-options",
		},
		{
			name:      "placeholder_open_at_eof",
			body:      "${1:abc",
			wantState: "text",
		},
		{
			name:      "nested_placeholder_open_at_eof",
			body:      "${1:${2:x}",
			wantState: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := snippet.Parse(tt.body)
			require.Error(t, err)

			var serr *snippet.SyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.wantState, serr.State)
			assert.NotEmpty(t, serr.Reason)
		})
	}
}

func TestTabstopIDs(t *testing.T) {
	tree, err := snippet.Parse("${1:${3:x}} $2 $1")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3", "2"}, snippet.TabstopIDs(tree))
}

func TestRenderAll(t *testing.T) {
	tree, err := snippet.Parse("for ${1:i} in ${2:${1:xs}}")
	require.NoError(t, err)

	assert.Equal(t, "for i in xs", snippet.RenderAll(tree))
}
