package snippet

import (
	"unicode"
)

// parseState identifies the active state of the parsing machine. The
// names mirror what the parser is waiting for, and are what SyntaxError
// reports as the failing construct.
type parseState int

const (
	stateText parseState = iota
	stateDollar
	stateBrace
	stateTabstop
	stateVariable
	stateBraceTabstop
	stateBraceVariable
	stateChoice
	stateChoiceEnd
	statePattern
	stateFormat
	stateOptions
)

func (s parseState) String() string {
	switch s {
	case stateText:
		return "text"
	case stateDollar:
		return "after-$"
	case stateBrace:
		return "after-${"
	case stateTabstop, stateBraceTabstop:
		return "dollar-tabstop"
	case stateVariable, stateBraceVariable:
		return "dollar-var"
	case stateChoice, stateChoiceEnd:
		return "choice-list"
	case statePattern:
		return "transform-pattern"
	case stateFormat:
		return "transform-format"
	case stateOptions:
		return "transform-options"
	default:
		return "unknown"
	}
}

// level is one open placeholder nesting depth. The root level has no
// owner; every other level folds its accumulated nodes into the owner's
// placeholder when the matching unescaped '}' arrives.
type level struct {
	owner Node
	root  bool
	nodes []Node
	text  []rune
}

func (lv *level) flushText() {
	if len(lv.text) > 0 {
		lv.nodes = append(lv.nodes, NewText(string(lv.text)))
		lv.text = lv.text[:0]
	}
}

func (lv *level) emit(n Node) {
	lv.flushText()
	lv.nodes = append(lv.nodes, n)
}

// parser is a single-pass, no-backtracking machine over the body's code
// points. Each state consumes one rune at a time; short-form constructs
// ($1, $NAME) re-dispatch the terminating rune so nothing is lost.
type parser struct {
	state  parseState
	esc    bool
	levels []*level

	// scratch for the construct under construction
	ident   []rune
	choices []string
	choice  []rune
	trParts [3][]rune
	trKind  Kind
	trName  string
}

// Parse converts a snippet body into a raw node tree. It fails with a
// *SyntaxError on malformed input: an unterminated ${, an unterminated
// choice list or transform, or a placeholder left open at end of input.
func Parse(body string) ([]Node, error) {
	p := &parser{
		state:  stateText,
		levels: []*level{{root: true}},
	}
	for _, r := range body {
		if err := p.step(r); err != nil {
			return nil, err
		}
	}
	return p.finish()
}

func (p *parser) cur() *level {
	return p.levels[len(p.levels)-1]
}

func isVarStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isVarRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (p *parser) step(r rune) error {
	switch p.state {
	case stateText:
		return p.stepText(r)
	case stateDollar:
		return p.stepDollar(r)
	case stateBrace:
		return p.stepBrace(r)
	case stateTabstop:
		if unicode.IsDigit(r) {
			p.ident = append(p.ident, r)
			return nil
		}
		p.cur().emit(Node{Kind: KindTabstop, ID: string(p.ident)})
		p.state = stateText
		return p.step(r)
	case stateVariable:
		if isVarRune(r) {
			p.ident = append(p.ident, r)
			return nil
		}
		p.cur().emit(Node{Kind: KindVariable, Name: string(p.ident)})
		p.state = stateText
		return p.step(r)
	case stateBraceTabstop:
		return p.stepBraceTabstop(r)
	case stateBraceVariable:
		return p.stepBraceVariable(r)
	case stateChoice:
		return p.stepChoice(r)
	case stateChoiceEnd:
		if r == '}' {
			p.cur().emit(Node{Kind: KindTabstop, ID: string(p.ident), Choices: p.choices})
			p.choices = nil
			p.state = stateText
			return nil
		}
		return syntaxErr(stateChoiceEnd, "expected '}' after closing '|'")
	case statePattern, stateFormat:
		p.stepTransformPart(r)
		return nil
	case stateOptions:
		if r == '}' {
			p.cur().emit(p.transformNode())
			p.state = stateText
			return nil
		}
		p.trParts[2] = append(p.trParts[2], r)
		return nil
	}
	return syntaxErr(p.state, "unexpected parser state")
}

func (p *parser) stepText(r rune) error {
	lv := p.cur()
	if p.esc {
		// the escaped rune is taken verbatim, the backslash dropped
		lv.text = append(lv.text, r)
		p.esc = false
		return nil
	}
	switch r {
	case '\\':
		p.esc = true
	case '$':
		p.state = stateDollar
	case '}':
		if !lv.root {
			p.closeLevel()
			return nil
		}
		lv.text = append(lv.text, r)
	default:
		lv.text = append(lv.text, r)
	}
	return nil
}

func (p *parser) stepDollar(r rune) error {
	switch {
	case unicode.IsDigit(r):
		p.ident = []rune{r}
		p.state = stateTabstop
	case r == '{':
		p.state = stateBrace
	case isVarStart(r):
		p.ident = []rune{r}
		p.state = stateVariable
	default:
		// not a construct: the '$' was literal text
		p.cur().text = append(p.cur().text, '$')
		p.state = stateText
		return p.step(r)
	}
	return nil
}

func (p *parser) stepBrace(r rune) error {
	switch {
	case unicode.IsDigit(r):
		p.ident = []rune{r}
		p.state = stateBraceTabstop
	case isVarStart(r):
		p.ident = []rune{r}
		p.state = stateBraceVariable
	default:
		return syntaxErr(stateBrace, "expected tabstop number or variable name after '${'")
	}
	return nil
}

func (p *parser) stepBraceTabstop(r rune) error {
	switch {
	case unicode.IsDigit(r):
		p.ident = append(p.ident, r)
	case r == '}':
		p.cur().emit(Node{Kind: KindTabstop, ID: string(p.ident)})
		p.state = stateText
	case r == ':':
		p.pushLevel(Node{Kind: KindTabstop, ID: string(p.ident)})
		p.state = stateText
	case r == '|':
		p.choices = nil
		p.choice = p.choice[:0]
		p.state = stateChoice
	case r == '/':
		p.beginTransform(KindTabstop)
	default:
		return syntaxErr(stateBraceTabstop, "expected ':', '|', '/' or '}' after tabstop number")
	}
	return nil
}

func (p *parser) stepBraceVariable(r rune) error {
	switch {
	case isVarRune(r):
		p.ident = append(p.ident, r)
	case r == '}':
		p.cur().emit(Node{Kind: KindVariable, Name: string(p.ident)})
		p.state = stateText
	case r == ':':
		p.pushLevel(Node{Kind: KindVariable, Name: string(p.ident)})
		p.state = stateText
	case r == '/':
		p.beginTransform(KindVariable)
	default:
		return syntaxErr(stateBraceVariable, "expected ':', '/' or '}' after variable name")
	}
	return nil
}

func (p *parser) stepChoice(r rune) error {
	if p.esc {
		p.choice = append(p.choice, r)
		p.esc = false
		return nil
	}
	switch r {
	case '\\':
		p.esc = true
	case ',':
		p.choices = append(p.choices, string(p.choice))
		p.choice = p.choice[:0]
	case '|':
		p.choices = append(p.choices, string(p.choice))
		p.choice = p.choice[:0]
		p.state = stateChoiceEnd
	default:
		p.choice = append(p.choice, r)
	}
	return nil
}

// stepTransformPart accumulates pattern/format characters. Backslashes
// are preserved (the pattern is an opaque regex) except before '/',
// which escapes the part delimiter.
func (p *parser) stepTransformPart(r rune) {
	part := 0
	if p.state == stateFormat {
		part = 1
	}
	if p.esc {
		if r != '/' {
			p.trParts[part] = append(p.trParts[part], '\\')
		}
		p.trParts[part] = append(p.trParts[part], r)
		p.esc = false
		return
	}
	switch r {
	case '\\':
		p.esc = true
	case '/':
		if p.state == statePattern {
			p.state = stateFormat
		} else {
			p.state = stateOptions
		}
	default:
		p.trParts[part] = append(p.trParts[part], r)
	}
}

func (p *parser) beginTransform(kind Kind) {
	p.trKind = kind
	p.trName = string(p.ident)
	p.trParts = [3][]rune{}
	p.state = statePattern
}

func (p *parser) transformNode() Node {
	tr := &Transform{
		Pattern: string(p.trParts[0]),
		Format:  string(p.trParts[1]),
		Options: string(p.trParts[2]),
	}
	if p.trKind == KindVariable {
		return Node{Kind: KindVariable, Name: p.trName, Transform: tr}
	}
	return Node{Kind: KindTabstop, ID: p.trName, Transform: tr}
}

func (p *parser) pushLevel(owner Node) {
	p.levels = append(p.levels, &level{owner: owner})
}

func (p *parser) closeLevel() {
	lv := p.cur()
	p.levels = p.levels[:len(p.levels)-1]
	lv.flushText()
	if len(lv.nodes) == 0 {
		lv.nodes = []Node{NewText("")}
	}
	owner := lv.owner
	owner.Placeholder = lv.nodes
	p.cur().emit(owner)
}

// finish flushes pending state at end of input. A trailing bare '$' and
// a trailing escape backslash become literal text; every other non-text
// state is an unterminated construct.
func (p *parser) finish() ([]Node, error) {
	if p.esc {
		switch p.state {
		case stateText:
			p.cur().text = append(p.cur().text, '\\')
		case stateChoice:
			return nil, syntaxErr(stateChoice, "unterminated choice list")
		default:
			return nil, syntaxErr(p.state, "unterminated transform")
		}
	}

	switch p.state {
	case stateText:
		// done below
	case stateDollar:
		p.cur().text = append(p.cur().text, '$')
	case stateTabstop:
		p.cur().emit(Node{Kind: KindTabstop, ID: string(p.ident)})
	case stateVariable:
		p.cur().emit(Node{Kind: KindVariable, Name: string(p.ident)})
	case stateBrace, stateBraceTabstop, stateBraceVariable:
		return nil, syntaxErr(p.state, "unterminated '${'")
	case stateChoice, stateChoiceEnd:
		return nil, syntaxErr(p.state, "unterminated choice list")
	case statePattern, stateFormat, stateOptions:
		return nil, syntaxErr(p.state, "unterminated transform")
	}

	if len(p.levels) > 1 {
		return nil, syntaxErr(stateText, "placeholder left open at end of input")
	}

	root := p.levels[0]
	root.flushText()
	if len(root.nodes) == 0 {
		root.nodes = []Node{NewText("")}
	}
	return root.nodes, nil
}
