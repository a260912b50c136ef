// Package snippet implements parsing and normalization of the LSP-style
// snippet grammar: $1 / ${1} tabstops, ${1:placeholder} defaults,
// ${1|a,b|} choices, ${1/regex/format/flags} transforms and $NAME /
// ${NAME} variables, with backslash escapes.
package snippet

import (
	"strings"
)

// Kind discriminates the node variants of a parsed snippet body.
type Kind int

const (
	// KindText is a literal text fragment.
	KindText Kind = iota
	// KindTabstop is a numbered fill-in point, optionally with a
	// placeholder, a choice list or a transform.
	KindTabstop
	// KindVariable is a named variable, optionally with a placeholder or
	// a transform.
	KindVariable
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTabstop:
		return "tabstop"
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// FinalTabstopID is the identifier of the designated final tabstop. The
// normalizer guarantees a tabstop with this identifier exists, and the
// visit order always puts it last.
const FinalTabstopID = "0"

// Transform carries the three raw parts of a ${n/regex/format/flags}
// transform. The parts are opaque to the engine and never evaluated.
type Transform struct {
	Pattern string `json:"pattern"`
	Format  string `json:"format"`
	Options string `json:"options,omitempty"`
}

// Node is one parsed unit of a snippet body. Which fields are meaningful
// depends on Kind:
//
//   - KindText: Text holds the literal content.
//   - KindTabstop: ID holds the identifier (as written, so "1" and "01"
//     stay distinct), plus optional Placeholder, Choices and Transform.
//   - KindVariable: Name holds the variable name, plus optional Value,
//     Placeholder and Transform.
//
// After normalization every tabstop and variable node has exactly one of
// Value or Placeholder set.
type Node struct {
	Kind Kind `json:"kind"`

	// Text is the literal content of a KindText node.
	Text string `json:"text,omitempty"`

	// ID is the tabstop identifier of a KindTabstop node.
	ID string `json:"id,omitempty"`

	// Name is the variable name of a KindVariable node.
	Name string `json:"name,omitempty"`

	// Value is the resolved text of a tabstop or variable. A nil Value
	// means "unset", which is distinct from an empty string.
	Value *string `json:"value,omitempty"`

	// Placeholder is the default child content shown until overwritten.
	Placeholder []Node `json:"placeholder,omitempty"`

	// Choices is the ordered choice list of a ${n|a,b|} tabstop.
	Choices []string `json:"choices,omitempty"`

	// Transform is the raw transform, if any.
	Transform *Transform `json:"transform,omitempty"`
}

// NewText creates a literal text node.
func NewText(text string) Node {
	return Node{Kind: KindText, Text: text}
}

// HasValue reports whether the node carries resolved text.
func (n *Node) HasValue() bool {
	return n.Value != nil
}

// SetValue sets the node's resolved text and drops any placeholder, so
// the one-of-value-or-placeholder invariant holds.
func (n *Node) SetValue(text string) {
	n.Value = &text
	n.Placeholder = nil
}

// Render returns the text the node expands to: its value if resolved,
// otherwise the concatenated rendering of its placeholder.
func (n *Node) Render() string {
	if n.Kind == KindText {
		return n.Text
	}
	if n.Value != nil {
		return *n.Value
	}
	return RenderAll(n.Placeholder)
}

// RenderAll concatenates the rendering of a node list.
func RenderAll(nodes []Node) string {
	var sb strings.Builder
	for i := range nodes {
		sb.WriteString(nodes[i].Render())
	}
	return sb.String()
}

// Walk visits every node in the tree depth-first, recursing into
// placeholders. The visitor may mutate the node in place; returning
// false stops the walk.
func Walk(nodes []Node, fn func(n *Node) bool) bool {
	for i := range nodes {
		if !fn(&nodes[i]) {
			return false
		}
		if len(nodes[i].Placeholder) > 0 {
			if !Walk(nodes[i].Placeholder, fn) {
				return false
			}
		}
	}
	return true
}

// TabstopIDs returns the distinct tabstop identifiers appearing anywhere
// in the tree, in depth-first discovery order.
func TabstopIDs(nodes []Node) []string {
	var ids []string
	seen := map[string]bool{}
	Walk(nodes, func(n *Node) bool {
		if n.Kind == KindTabstop && !seen[n.ID] {
			seen[n.ID] = true
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}
