package snippet

import (
	"os"
	"strings"
)

// Normalize post-processes a parsed tree in place and returns it:
//
//   - variables resolve through lookup first, then the built-in
//     catalogue, then the OS environment; an unresolved variable keeps
//     its placeholder, or gains an empty value if it has none
//   - tabstops whose identifier is a lookup key take that entry as
//     their value, overriding any placeholder
//   - bare mirror tabstops (written $1 with no placeholder of their
//     own) take the rendered content of their reference node, so both
//     occurrences in "${1:i} $1" initially show "i"; cyclic defaults
//     like "${1:$2} ${2:$1}" resolve to empty text, each default
//     consulted at most once per chain
//   - if no node anywhere carries the final tabstop identifier, an
//     empty final tabstop is appended at the top level
//
// Resolved variables are written back into lookup so repeats reuse one
// value; the random generators (RANDOM, RANDOM_HEX, UUID) are never
// cached, so each reference stays independent. lookup may be nil.
func Normalize(tree []Node, lookup map[string]string, vc *VarContext) []Node {
	if lookup == nil {
		lookup = map[string]string{}
	}
	normalizeNodes(tree, lookup, vc)
	resolveMirrors(tree)

	hasFinal := false
	Walk(tree, func(n *Node) bool {
		if n.Kind == KindTabstop && n.ID == FinalTabstopID {
			hasFinal = true
			return false
		}
		return true
	})
	if !hasFinal {
		final := Node{Kind: KindTabstop, ID: FinalTabstopID}
		final.SetValue("")
		tree = append(tree, final)
	}
	return tree
}

func normalizeNodes(nodes []Node, lookup map[string]string, vc *VarContext) {
	for i := range nodes {
		n := &nodes[i]
		switch n.Kind {
		case KindText:
			// literal, nothing to resolve
		case KindTabstop:
			if v, ok := lookup[n.ID]; ok {
				n.SetValue(v)
			} else if len(n.Placeholder) > 0 {
				normalizeNodes(n.Placeholder, lookup, vc)
			} else if len(n.Choices) > 0 {
				// choice content is offered interactively, not rendered
				n.SetValue("")
			}
			// bare mirrors stay unresolved until resolveMirrors
		case KindVariable:
			normalizeVariable(n, lookup, vc)
		}
	}
}

// resolveMirrors fills in every still-unresolved bare tabstop with the
// rendered content of its reference node, the first same-id node that
// carries a value or placeholder. The visiting set guards against
// cyclic defaults: a default already being consulted on the current
// chain renders as empty text.
func resolveMirrors(tree []Node) {
	refs := map[string]*Node{}
	Walk(tree, func(n *Node) bool {
		if n.Kind == KindTabstop && (n.HasValue() || len(n.Placeholder) > 0) {
			if _, ok := refs[n.ID]; !ok {
				refs[n.ID] = n
			}
		}
		return true
	})

	var render func(n *Node, visiting map[string]bool) string
	var resolve func(id string, visiting map[string]bool) string

	resolve = func(id string, visiting map[string]bool) string {
		ref, ok := refs[id]
		if !ok || visiting[id] {
			return ""
		}
		visiting[id] = true
		defer delete(visiting, id)
		return render(ref, visiting)
	}
	render = func(n *Node, visiting map[string]bool) string {
		if n.Kind == KindText {
			return n.Text
		}
		if n.HasValue() {
			return *n.Value
		}
		if n.Kind == KindTabstop && len(n.Placeholder) == 0 {
			return resolve(n.ID, visiting)
		}
		var sb strings.Builder
		for i := range n.Placeholder {
			sb.WriteString(render(&n.Placeholder[i], visiting))
		}
		return sb.String()
	}

	Walk(tree, func(n *Node) bool {
		if n.Kind == KindTabstop && !n.HasValue() && len(n.Placeholder) == 0 {
			n.SetValue(resolve(n.ID, map[string]bool{}))
		}
		return true
	})
}

func normalizeVariable(n *Node, lookup map[string]string, vc *VarContext) {
	if v, ok := lookup[n.Name]; ok {
		n.SetValue(v)
		return
	}
	if ev, ok := evaluators[n.Name]; ok {
		v := ev.eval(vc)
		if ev.cache {
			lookup[n.Name] = v
		}
		n.SetValue(v)
		return
	}
	if v, ok := os.LookupEnv(n.Name); ok {
		lookup[n.Name] = v
		n.SetValue(v)
		return
	}
	// unresolved: placeholder content, if any, is used as-is
	if len(n.Placeholder) > 0 {
		normalizeNodes(n.Placeholder, lookup, vc)
		return
	}
	n.SetValue("")
}
