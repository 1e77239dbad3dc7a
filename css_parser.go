package meeseeks

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// This file is a hand-written CSS selector tokenizer and recursive-
// descent parser. It builds a forward Chain of compound stages rather
// than a single backward-walking closure, so CSS, XPath and
// user-defined matchers can share one evaluation driver (see
// selector.go, driver.go).

// cssParser holds the source text and the current scan position.
type cssParser struct {
	s string
	i int
}

// CompileCSS parses a CSS selector (or comma-separated selector group)
// into a Query usable with All/One/Select. Grammar failures surface as
// *SyntaxError; structural failures (bad pseudo-class arguments, a bad
// an+b formula, an unknown pseudo-class) as *ValidationError.
func CompileCSS(selector string) (Query, error) {
	p := &cssParser{s: selector}
	chains, err := p.parseSelectorChains()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, &SyntaxError{Grammar: GrammarCSS, Pos: p.i, Msg: err.Error()}
	}
	p.skipSpace()
	if p.i < len(p.s) {
		return nil, &SyntaxError{Grammar: GrammarCSS, Pos: p.i, Msg: fmt.Sprintf("unexpected %q", p.s[p.i:])}
	}
	g := make(group, len(chains))
	for i, c := range chains {
		for _, stage := range c {
			if err := stage.Validate(); err != nil {
				return nil, err
			}
		}
		g[i] = c
	}
	return g, nil
}

// MustCompileCSS is like CompileCSS but panics on error, for selectors
// known valid at compile time (package-level constants and the like).
func MustCompileCSS(selector string) Query {
	q, err := CompileCSS(selector)
	if err != nil {
		panic(err)
	}
	return q
}

// The scanner layer below works byte-at-a-time over the selector
// source. Multi-byte runes only ever appear inside identifiers and
// strings, where their bytes are copied through untouched, so byte
// arithmetic is safe.

// accept consumes c if it is the next byte.
func (p *cssParser) accept(c byte) bool {
	if p.i < len(p.s) && p.s[p.i] == c {
		p.i++
		return true
	}
	return false
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f'
}

// isNameByte reports whether c can appear in an identifier. Initial
// bytes additionally exclude digits and '-'.
func isNameByte(c byte, initial bool) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', c == '_', c >= 0x80:
		return true
	case initial:
		return false
	default:
		return c == '-' || '0' <= c && c <= '9'
	}
}

// skipSpace advances past whitespace and /* */ comments, reporting
// whether anything was consumed.
func (p *cssParser) skipSpace() bool {
	start := p.i
	for p.i < len(p.s) {
		c := p.s[p.i]
		if isSpaceByte(c) {
			p.i++
			continue
		}
		if c != '/' || !strings.HasPrefix(p.s[p.i:], "/*") {
			break
		}
		end := strings.Index(p.s[p.i+2:], "*/")
		if end < 0 {
			break
		}
		p.i += end + 4
	}
	return p.i > start
}

const hexAlphabet = "0123456789abcdef"

// readEscape consumes a backslash escape. Up to six hex digits denote
// a code point, with one whitespace character allowed to terminate the
// digit run; any other escaped byte stands for itself. Line breaks
// cannot be escaped (parseString consumes backslash-newline
// continuations before getting here).
func (p *cssParser) readEscape() (string, error) {
	p.i++ // the backslash
	if p.i >= len(p.s) {
		return "", fmt.Errorf("backslash at end of selector")
	}
	switch p.s[p.i] {
	case '\r', '\n', '\f':
		return "", fmt.Errorf("cannot escape a line break")
	}
	v, digits := 0, 0
	for p.i < len(p.s) && digits < 6 {
		c := p.s[p.i]
		if 'A' <= c && c <= 'F' {
			c += 'a' - 'A'
		}
		d := strings.IndexByte(hexAlphabet, c)
		if d < 0 {
			break
		}
		v = v*16 + d
		p.i++
		digits++
	}
	if digits == 0 {
		lit := p.s[p.i]
		p.i++
		return string(lit), nil
	}
	if p.i < len(p.s) {
		switch p.s[p.i] {
		case '\r':
			p.i++
			p.accept('\n')
		case ' ', '\t', '\n', '\f':
			p.i++
		}
	}
	return string(rune(v)), nil
}

// parseName scans an identifier body: name characters and escapes.
func (p *cssParser) parseName() (string, error) {
	var b strings.Builder
	for p.i < len(p.s) {
		c := p.s[p.i]
		if isNameByte(c, false) {
			b.WriteByte(c)
			p.i++
			continue
		}
		if c != '\\' {
			break
		}
		esc, err := p.readEscape()
		if err != nil {
			return "", err
		}
		b.WriteString(esc)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("expected a name")
	}
	return b.String(), nil
}

// parseIdentifier scans an identifier, which may open with a single
// '-' and must then begin with a name-start character or an escape.
func (p *cssParser) parseIdentifier() (string, error) {
	dash := p.accept('-')
	if p.i >= len(p.s) {
		return "", fmt.Errorf("expected an identifier, got EOF")
	}
	if c := p.s[p.i]; c != '\\' && !isNameByte(c, true) {
		return "", fmt.Errorf("expected an identifier, got %q", c)
	}
	name, err := p.parseName()
	if err != nil {
		return "", err
	}
	if dash {
		name = "-" + name
	}
	return name, nil
}

// parseString scans a quoted string starting at its opening quote.
func (p *cssParser) parseString() (string, error) {
	quote := p.s[p.i]
	p.i++
	var b strings.Builder
	for p.i < len(p.s) {
		switch c := p.s[p.i]; c {
		case quote:
			p.i++
			return b.String(), nil
		case '\r', '\n', '\f':
			return "", fmt.Errorf("string contains an unescaped line break")
		case '\\':
			if p.stringContinuation() {
				continue
			}
			esc, err := p.readEscape()
			if err != nil {
				return "", err
			}
			b.WriteString(esc)
		default:
			b.WriteByte(c)
			p.i++
		}
	}
	return "", fmt.Errorf("unterminated string")
}

// stringContinuation consumes a backslash-newline pair, which denotes
// nothing inside a string, and reports whether one was present.
func (p *cssParser) stringContinuation() bool {
	if p.i+1 >= len(p.s) {
		return false
	}
	switch p.s[p.i+1] {
	case '\n', '\f':
		p.i += 2
		return true
	case '\r':
		p.i += 2
		p.accept('\n')
		return true
	}
	return false
}

// parseRegex scans a regular expression argument; it ends at the first
// ')' or ']' that does not close a bracket opened inside the pattern.
// That closing byte is left unconsumed.
func (p *cssParser) parseRegex() (*regexp.Regexp, error) {
	depth := 0
	for j := p.i; j < len(p.s); j++ {
		switch p.s[j] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		}
		if depth < 0 {
			if j == p.i {
				return nil, fmt.Errorf("empty regular expression")
			}
			rx, err := regexp.Compile(p.s[p.i:j])
			p.i = j
			return rx, err
		}
	}
	return nil, fmt.Errorf("unterminated regular expression")
}

// openParen consumes a '(' and any space after it.
func (p *cssParser) openParen() bool {
	if !p.accept('(') {
		return false
	}
	p.skipSpace()
	return true
}

// closeParen consumes optional space and a ')'; on failure the scan
// position is left untouched.
func (p *cssParser) closeParen() bool {
	save := p.i
	p.skipSpace()
	if p.accept(')') {
		return true
	}
	p.i = save
	return false
}

var (
	errExpectedParenthesis        = fmt.Errorf("expected '(' but didn't find it")
	errExpectedClosingParenthesis = fmt.Errorf("expected ')' but didn't find it")
)

func (p *cssParser) parseIDSelector() (Selector, error) {
	if p.i >= len(p.s) || p.s[p.i] != '#' {
		return nil, fmt.Errorf("expected id selector (#id)")
	}
	p.i++
	id, err := p.parseName()
	if err != nil {
		return nil, err
	}
	return IDSelector(id), nil
}

func (p *cssParser) parseClassSelector() (Selector, error) {
	if p.i >= len(p.s) || p.s[p.i] != '.' {
		return nil, fmt.Errorf("expected class selector (.class)")
	}
	p.i++
	class, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	return ClassSelector(class), nil
}

// parseAttributeSelector parses [name], [name=val], [name~=val] and so
// on, including the non-standard != and #= operators.
func (p *cssParser) parseAttributeSelector() (Selector, error) {
	if p.i >= len(p.s) || p.s[p.i] != '[' {
		return nil, fmt.Errorf("expected attribute selector ([attribute])")
	}
	p.i++
	p.skipSpace()
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i >= len(p.s) {
		return nil, fmt.Errorf("unexpected EOF in attribute selector")
	}
	if p.s[p.i] == ']' {
		p.i++
		return AttrSelector{Name: name, Op: AttrPresent}, nil
	}
	if p.i+2 >= len(p.s) {
		return nil, fmt.Errorf("unexpected EOF in attribute selector")
	}
	op := p.s[p.i : p.i+2]
	if op[0] == '=' {
		op = "="
	} else if op[1] != '=' {
		return nil, fmt.Errorf("expected equality operator, found %q instead", op)
	}
	p.i += len(op)
	p.skipSpace()
	if p.i >= len(p.s) {
		return nil, fmt.Errorf("unexpected EOF in attribute selector")
	}
	var val string
	var rx *regexp.Regexp
	if op == "#=" {
		rx, err = p.parseRegex()
	} else {
		switch p.s[p.i] {
		case '\'', '"':
			val, err = p.parseString()
		default:
			val, err = p.parseIdentifier()
		}
	}
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.i >= len(p.s) || p.s[p.i] != ']' {
		return nil, fmt.Errorf("expected ']' to close attribute selector")
	}
	p.i++

	switch op {
	case "=":
		return AttrSelector{Name: name, Op: AttrEquals, Value: val}, nil
	case "!=":
		return AttrSelector{Name: name, Op: AttrNotEquals, Value: val}, nil
	case "~=":
		return AttrSelector{Name: name, Op: AttrIncludes, Value: val}, nil
	case "|=":
		return AttrSelector{Name: name, Op: AttrDashMatch, Value: val}, nil
	case "^=":
		return AttrSelector{Name: name, Op: AttrPrefix, Value: val}, nil
	case "$=":
		return AttrSelector{Name: name, Op: AttrSuffix, Value: val}, nil
	case "*=":
		return AttrSelector{Name: name, Op: AttrSubstring, Value: val}, nil
	case "#=":
		return AttrSelector{Name: name, Op: AttrRegex, Regex: rx}, nil
	default:
		return nil, fmt.Errorf("attribute operator %q is not supported", op)
	}
}

// parsePseudoclassSelector parses :name or :name(args).
func (p *cssParser) parsePseudoclassSelector() (Selector, error) {
	if p.i >= len(p.s) || p.s[p.i] != ':' {
		return nil, fmt.Errorf("expected pseudo-class selector (:pseudoclass)")
	}
	p.i++
	if p.i < len(p.s) && p.s[p.i] == ':' {
		p.i++
	}
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	name = strings.ToLower(name)

	switch name {
	case "not":
		if !p.openParen() {
			return nil, errExpectedParenthesis
		}
		inner, err := p.parseSimpleSelectorGroup()
		if err != nil {
			return nil, err
		}
		if !p.closeParen() {
			return nil, errExpectedClosingParenthesis
		}
		return NotSelector{Inner: inner}, nil

	case "has", "haschild":
		if !p.openParen() {
			return nil, errExpectedParenthesis
		}
		children := false
		if p.i < len(p.s) && p.s[p.i] == '>' {
			children = true
			p.i++
			p.skipSpace()
		}
		if name == "haschild" {
			children = true
		}
		chains, err := p.parseSelectorChains()
		if err != nil {
			return nil, err
		}
		if !p.closeParen() {
			return nil, errExpectedClosingParenthesis
		}
		opts := make([]Selector, len(chains))
		for i, c := range chains {
			opts[i] = HasSelector{Inner: c, Children: children}
		}
		if len(opts) == 1 {
			return opts[0], nil
		}
		return selectorUnion(opts), nil

	case "contains", "containsown":
		val, err := p.parsePseudoclassStringArg()
		if err != nil {
			return nil, err
		}
		return ContainsSelector{Own: name == "containsown", Value: val}, nil

	case "matches", "matchesown":
		if !p.openParen() {
			return nil, errExpectedParenthesis
		}
		rx, err := p.parseRegex()
		if err != nil {
			return nil, err
		}
		if !p.closeParen() {
			return nil, errExpectedClosingParenthesis
		}
		return MatchesRegexSelector{Own: name == "matchesown", Regex: rx}, nil

	case "nth-child", "nth-last-child", "nth-of-type", "nth-last-of-type":
		if !p.openParen() {
			return nil, errExpectedParenthesis
		}
		a, b, err := p.parseNth()
		if err != nil {
			return nil, &ValidationError{Reason: ReasonBadNth, Msg: err.Error()}
		}
		if !p.closeParen() {
			return nil, errExpectedClosingParenthesis
		}
		return NthSelector{
			A: a, B: b,
			Last:   name == "nth-last-child" || name == "nth-last-of-type",
			OfType: name == "nth-of-type" || name == "nth-last-of-type",
		}, nil

	case "first-child":
		return p.noArgs(name, FirstLastOnlySelector{Kind: KindFirst})
	case "last-child":
		return p.noArgs(name, FirstLastOnlySelector{Kind: KindLast})
	case "first-of-type":
		return p.noArgs(name, FirstLastOnlySelector{Kind: KindFirst, OfType: true})
	case "last-of-type":
		return p.noArgs(name, FirstLastOnlySelector{Kind: KindLast, OfType: true})
	case "only-child":
		return p.noArgs(name, FirstLastOnlySelector{Kind: KindOnly})
	case "only-of-type":
		return p.noArgs(name, FirstLastOnlySelector{Kind: KindOnly, OfType: true})
	case "input":
		return p.noArgs(name, InputSelector{})
	case "empty":
		return p.noArgs(name, EmptyElementSelector{})
	case "root":
		return p.noArgs(name, RootSelector{})
	default:
		return nil, &ValidationError{Reason: ReasonUnknownPseudoClass, Msg: fmt.Sprintf("unknown pseudo-class :%s", name)}
	}
}

// noArgs rejects an argument list after a pseudo-class that takes none
// (e.g. ":last-of-type(2)").
func (p *cssParser) noArgs(name string, s Selector) (Selector, error) {
	if p.i < len(p.s) && p.s[p.i] == '(' {
		return nil, &ValidationError{Reason: ReasonBadArgs, Msg: fmt.Sprintf(":%s does not accept arguments", name)}
	}
	return s, nil
}

func (p *cssParser) parsePseudoclassStringArg() (string, error) {
	if !p.openParen() {
		return "", errExpectedParenthesis
	}
	if p.i == len(p.s) {
		return "", fmt.Errorf("unmatched '('")
	}
	var val string
	var err error
	switch p.s[p.i] {
	case '\'', '"':
		val, err = p.parseString()
	default:
		val, err = p.parseIdentifier()
	}
	if err != nil {
		return "", err
	}
	if !p.closeParen() {
		return "", errExpectedClosingParenthesis
	}
	return val, nil
}

func (p *cssParser) parseInteger() (int, error) {
	n, digits := 0, 0
	for p.i < len(p.s) && '0' <= p.s[p.i] && p.s[p.i] <= '9' {
		n = n*10 + int(p.s[p.i]-'0')
		p.i++
		digits++
	}
	if digits == 0 {
		return 0, fmt.Errorf("expected a number")
	}
	return n, nil
}

// parseNth parses the an+b argument :nth-child and its siblings take.
func (p *cssParser) parseNth() (a, b int, err error) {
	if p.i >= len(p.s) {
		return 0, 0, fmt.Errorf("unexpected EOF while parsing an+b expression")
	}
	switch p.s[p.i] {
	case '-':
		p.i++
		return p.parseNthA(true)
	case '+':
		p.i++
		return p.parseNthA(false)
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return p.parseNthA(false)
	case 'n', 'N':
		p.i++
		return p.parseNthReadN(1)
	case 'o', 'O', 'e', 'E':
		id, err := p.parseName()
		if err != nil {
			return 0, 0, err
		}
		switch strings.ToLower(id) {
		case "odd":
			return 2, 1, nil
		case "even":
			return 2, 0, nil
		default:
			return 0, 0, fmt.Errorf("expected 'odd' or 'even', but found %q instead", id)
		}
	default:
		return 0, 0, fmt.Errorf("unexpected character while parsing an+b expression")
	}
}

func (p *cssParser) parseNthA(negative bool) (a, b int, err error) {
	if p.i >= len(p.s) {
		return 0, 0, fmt.Errorf("unexpected EOF while parsing an+b expression")
	}
	switch p.s[p.i] {
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		a, err = p.parseInteger()
		if err != nil {
			return 0, 0, err
		}
		if negative {
			a = -a
		}
		if p.i < len(p.s) && (p.s[p.i] == 'n' || p.s[p.i] == 'N') {
			p.i++
			return p.parseNthReadN(a)
		}
		return 0, a, nil
	case 'n', 'N':
		p.i++
		if negative {
			return p.parseNthReadN(-1)
		}
		return p.parseNthReadN(1)
	default:
		return 0, 0, fmt.Errorf("unexpected character while parsing an+b expression")
	}
}

func (p *cssParser) parseNthReadN(a int) (int, int, error) {
	p.skipSpace()
	if p.i >= len(p.s) {
		return a, 0, nil
	}
	switch p.s[p.i] {
	case '+':
		p.i++
		p.skipSpace()
		b, err := p.parseInteger()
		return a, b, err
	case '-':
		p.i++
		p.skipSpace()
		b, err := p.parseInteger()
		return a, -b, err
	default:
		return a, 0, nil
	}
}

// parseCompound parses a simple selector sequence (an optional type/
// wildcard selector followed by any number of id/class/attribute/
// pseudo-class filters) into one compound chain stage.
func (p *cssParser) parseCompound() (*compound, error) {
	c := &compound{}
	if p.i >= len(p.s) {
		return nil, fmt.Errorf("expected selector, found EOF instead")
	}
	switch p.s[p.i] {
	case '*':
		p.i++
		c.tag = elementWildcard{}
	case '#', '.', '[', ':':
		// No type selector; fall through to the filter loop.
	default:
		tag, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		c.tag = TagSelector{Tag: tag}
	}

loop:
	for p.i < len(p.s) {
		var (
			f   Selector
			err error
		)
		switch p.s[p.i] {
		case '#':
			f, err = p.parseIDSelector()
		case '.':
			f, err = p.parseClassSelector()
		case '[':
			f, err = p.parseAttributeSelector()
		case ':':
			f, err = p.parsePseudoclassSelector()
		default:
			break loop
		}
		if err != nil {
			return nil, err
		}
		c.filters = append(c.filters, f)
	}
	return c, nil
}

// parseSimpleSelectorGroup parses a comma-separated list of compound
// selectors with no combinators, as required inside :not(...).
func (p *cssParser) parseSimpleSelectorGroup() (Selector, error) {
	first, err := p.parseCompound()
	if err != nil {
		return nil, err
	}
	opts := []Selector{first}
	for {
		p.skipSpace()
		if p.i >= len(p.s) || p.s[p.i] != ',' {
			break
		}
		p.i++
		p.skipSpace()
		next, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		opts = append(opts, next)
	}
	if len(opts) == 1 {
		return opts[0], nil
	}
	return selectorUnion(opts), nil
}

// parseSelector parses one combinator-joined chain of compounds.
func (p *cssParser) parseSelector() (Chain, error) {
	p.skipSpace()
	first, err := p.parseCompound()
	if err != nil {
		return nil, err
	}
	chain := Chain{first}

	for {
		var comb Combinator
		hasComb := false
		if p.skipSpace() {
			comb, hasComb = Descendants, true
		}
		if p.i >= len(p.s) {
			break
		}
		switch p.s[p.i] {
		case '>':
			comb, hasComb = Children, true
			p.i++
			p.skipSpace()
		case '+':
			comb, hasComb = NextSibling, true
			p.i++
			p.skipSpace()
		case '~':
			comb, hasComb = NextSiblings, true
			p.i++
			p.skipSpace()
		case ',', ')':
			return chain, nil
		}
		if !hasComb {
			break
		}
		next, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		last := chain[len(chain)-1].(*compound)
		last.next, last.hasNext = comb, true
		chain = append(chain, next)
	}
	return chain, nil
}

// parseSelectorChains parses a comma-separated list of combinator
// chains, as used by :has(...) and the top-level selector group.
func (p *cssParser) parseSelectorChains() ([]Chain, error) {
	first, err := p.parseSelector()
	if err != nil {
		return nil, err
	}
	chains := []Chain{first}
	for p.i < len(p.s) {
		if p.s[p.i] != ',' {
			break
		}
		p.i++
		next, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		chains = append(chains, next)
	}
	return chains, nil
}

// selectorUnion matches if any of its alternatives match; it has no
// combinator of its own; used to implement comma-separated simple
// selector lists inside :not(...) and :has(...).
type selectorUnion []Selector

func (u selectorUnion) Match(doc *Document, id int, ctx *Context) bool {
	for _, s := range u {
		if s.Match(doc, id, ctx) {
			return true
		}
	}
	return false
}
func (selectorUnion) Combinator() (Combinator, bool) { return NoCombinator, false }
func (selectorUnion) Filters() []Selector            { return nil }
func (u selectorUnion) Validate() error {
	for _, s := range u {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
