package session

import (
	"strings"

	"github.com/walteh/gosnip/pkg/snippet"
)

// node is one arena entry. The tree structure is index based: children
// holds arena indices, and the side table in Session maps tabstop
// identifiers to the indices of every node sharing that id. Same-id
// nodes are related, never aliased.
type node struct {
	kind snippet.Kind

	// id is the tabstop identifier, name the variable name.
	id   string
	name string

	// text is the node's own resolved text; hasText distinguishes an
	// empty value from "content lives in children".
	text    string
	hasText bool

	choices []string

	children []int
	parent   int

	anchor AnchorID

	// alive turns false when a placeholder subtree is consumed.
	alive bool
}

// buildArena flattens a normalized tree into depth-first index order
// and records the tabstop side table. It rejects trees violating the
// value-or-placeholder invariant, which indicates the caller skipped
// normalization.
func buildArena(tree []snippet.Node) (nodes []node, roots []int, byID map[string][]int, err error) {
	byID = map[string][]int{}

	var add func(n *snippet.Node, parent int) (int, error)
	add = func(n *snippet.Node, parent int) (int, error) {
		idx := len(nodes)
		nd := node{
			kind:    n.Kind,
			id:      n.ID,
			name:    n.Name,
			choices: n.Choices,
			parent:  parent,
			anchor:  -1,
			alive:   true,
		}

		switch n.Kind {
		case snippet.KindText:
			nd.text = n.Text
			nd.hasText = true
		case snippet.KindTabstop, snippet.KindVariable:
			if n.HasValue() == (len(n.Placeholder) > 0) {
				return 0, configErr("node %q has %d of value/placeholder set, want exactly one (tree not normalized?)",
					n.ID+n.Name, boolCount(n.HasValue(), len(n.Placeholder) > 0))
			}
			if n.HasValue() {
				nd.text = *n.Value
				nd.hasText = true
			}
		}

		nodes = append(nodes, nd)
		if n.Kind == snippet.KindTabstop {
			byID[n.ID] = append(byID[n.ID], idx)
		}

		for i := range n.Placeholder {
			child, cerr := add(&n.Placeholder[i], idx)
			if cerr != nil {
				return 0, cerr
			}
			nodes[idx].children = append(nodes[idx].children, child)
		}
		return idx, nil
	}

	for i := range tree {
		idx, aerr := add(&tree[i], -1)
		if aerr != nil {
			return nil, nil, nil, aerr
		}
		roots = append(roots, idx)
	}
	return nodes, roots, byID, nil
}

func boolCount(bs ...bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// currentText renders a node from the live arena: its own text when
// set, otherwise the concatenation of its children.
func currentText(nodes []node, idx int) string {
	n := &nodes[idx]
	if n.hasText {
		return n.text
	}
	var sb strings.Builder
	for _, c := range n.children {
		if nodes[c].alive {
			sb.WriteString(currentText(nodes, c))
		}
	}
	return sb.String()
}

// liveTabstopIDs filters ids down to those that still have at least one
// alive node.
func liveTabstopIDs(nodes []node, byID map[string][]int, ids []string) []string {
	var live []string
	for _, id := range ids {
		for _, idx := range byID[id] {
			if nodes[idx].alive {
				live = append(live, id)
				break
			}
		}
	}
	return live
}
