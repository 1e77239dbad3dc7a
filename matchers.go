package meeseeks

import (
	"regexp"
	"strings"
)

// This file implements the Selector capability for the engine's
// built-in primitive matchers: tag, attribute, id/class, structural
// pseudo-classes, node kinds. All of them work on Document+id walks
// rather than node pointers.

// elementWildcard matches any element node; it is the compiled form of
// "*". A compound selector written without a type selector gets no tag
// matcher at all and is constrained by its filters alone.
type elementWildcard struct{ Terminal }

func (elementWildcard) Match(doc *Document, id int, _ *Context) bool {
	k, err := doc.Kind(id)
	return err == nil && k == KindElement
}

// TagSelector matches elements with a given tag name. HTML tags are
// already lowercased by the builder; XML tags are compared verbatim.
type TagSelector struct {
	Terminal
	Tag string
}

func (s TagSelector) Match(doc *Document, id int, _ *Context) bool {
	k, err := doc.Kind(id)
	if err != nil || k != KindElement {
		return false
	}
	tag := doc.Tag(id)
	if doc.IsXML() {
		return tag == s.Tag
	}
	return strings.EqualFold(tag, s.Tag)
}

// AttrOp enumerates the attribute-value comparison operators,
// including the non-standard != and #= extensions.
type AttrOp int

const (
	AttrPresent    AttrOp = iota // [name]
	AttrEquals                   // [name=val]
	AttrNotEquals                // [name!=val] (extension)
	AttrIncludes                 // [name~=val]
	AttrDashMatch                // [name|=val]
	AttrPrefix                   // [name^=val]
	AttrSuffix                   // [name$=val]
	AttrSubstring                // [name*=val]
	AttrRegex                    // [name#=val] (extension)
)

// AttrSelector matches an element by attribute name/operator/value.
// Name comparison is case-insensitive in HTML documents, case-sensitive
// in XML documents.
type AttrSelector struct {
	Terminal
	Name  string
	Op    AttrOp
	Value string
	Regex *regexp.Regexp // only for AttrRegex
}

func (s AttrSelector) nameEqual(doc *Document, name string) bool {
	if doc.IsXML() {
		return name == s.Name
	}
	return strings.EqualFold(name, s.Name)
}

func (s AttrSelector) Match(doc *Document, id int, _ *Context) bool {
	k, err := doc.Kind(id)
	if err != nil || k != KindElement {
		return false
	}
	if s.Op == AttrNotEquals {
		for _, a := range doc.Attrs(id) {
			if s.nameEqual(doc, a.Name) && a.Value == s.Value {
				return false
			}
		}
		return true
	}
	for _, a := range doc.Attrs(id) {
		if !s.nameEqual(doc, a.Name) {
			continue
		}
		if s.matchValue(a.Value) {
			return true
		}
	}
	return false
}

func (s AttrSelector) matchValue(v string) bool {
	switch s.Op {
	case AttrPresent:
		return true
	case AttrEquals:
		return v == s.Value
	case AttrIncludes:
		// A value that itself contains whitespace can never appear as
		// a whitespace-separated list entry.
		if containsWhitespace(s.Value) {
			return false
		}
		return includesWord(v, s.Value)
	case AttrDashMatch:
		if v == s.Value {
			return true
		}
		return len(v) > len(s.Value) && strings.HasPrefix(v, s.Value) && v[len(s.Value)] == '-'
	case AttrPrefix:
		return v != "" && strings.HasPrefix(v, s.Value)
	case AttrSuffix:
		return v != "" && strings.HasSuffix(v, s.Value)
	case AttrSubstring:
		return v != "" && strings.Contains(v, s.Value)
	case AttrRegex:
		return s.Regex != nil && s.Regex.MatchString(v)
	default:
		return false
	}
}

func containsWhitespace(s string) bool {
	return strings.IndexAny(s, " \t\r\n\f") != -1
}

// includesWord reports whether s is a whitespace-separated list that
// includes word.
func includesWord(s, word string) bool {
	for s != "" {
		i := strings.IndexAny(s, " \t\r\n\f")
		if i == -1 {
			return s == word
		}
		if s[:i] == word {
			return true
		}
		s = s[i+1:]
	}
	return false
}

// IDSelector is sugar over an attribute matcher on "id".
func IDSelector(id string) Selector {
	return AttrSelector{Name: "id", Op: AttrEquals, Value: id}
}

// ClassSelector is sugar over a whitespace-list attribute matcher on
// "class".
func ClassSelector(class string) Selector {
	return AttrSelector{Name: "class", Op: AttrIncludes, Value: class}
}

// RootSelector matches iff the candidate is a root element.
type RootSelector struct{ Terminal }

func (RootSelector) Match(doc *Document, id int, _ *Context) bool {
	k, err := doc.Kind(id)
	if err != nil || k != KindElement {
		return false
	}
	_, hasParent := doc.Parent(id)
	return !hasParent
}

// sameType reports whether sibling and candidate share a tag and
// namespace (used by the *-of-type family of pseudo-classes).
func sameType(doc *Document, candidate, sibling int) bool {
	return doc.Tag(sibling) == doc.Tag(candidate) && doc.Namespace(sibling) == doc.Namespace(candidate)
}

// elementSiblingsFiltered returns id's parent's element-kind children,
// optionally restricted to the same tag+namespace as id.
func elementSiblingsFiltered(doc *Document, id int, ofType bool) (sibs []int, ok bool) {
	parent, hasParent := doc.Parent(id)
	if !hasParent {
		return nil, false
	}
	for _, c := range doc.Children(parent) {
		if k, err := doc.Kind(c); err != nil || k != KindElement {
			continue
		}
		if ofType && !sameType(doc, id, c) {
			continue
		}
		sibs = append(sibs, c)
	}
	return sibs, true
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// NthSelector implements :nth-child/:nth-last-child/:nth-of-type/
// :nth-last-of-type, matching position an+b (1-based) among filtered
// siblings.
type NthSelector struct {
	Terminal
	A, B   int
	Last   bool
	OfType bool
}

func (s NthSelector) Match(doc *Document, id int, _ *Context) bool {
	if k, err := doc.Kind(id); err != nil || k != KindElement {
		return false
	}
	sibs, ok := elementSiblingsFiltered(doc, id, s.OfType)
	if !ok {
		return false
	}
	i := indexOf(sibs, id)
	if i == -1 {
		return false
	}
	pos := i + 1
	if s.Last {
		pos = len(sibs) - i
	}
	pos -= s.B
	if s.A == 0 {
		return pos == 0
	}
	return pos%s.A == 0 && pos/s.A >= 0
}

// FirstLastOnlySelector implements :first-child/:last-child/
// :only-child and their -of-type variants.
type FirstLastOnlySelector struct {
	Terminal
	Kind   firstLastKind
	OfType bool
}

type firstLastKind int

const (
	KindFirst firstLastKind = iota
	KindLast
	KindOnly
)

func (s FirstLastOnlySelector) Match(doc *Document, id int, _ *Context) bool {
	if k, err := doc.Kind(id); err != nil || k != KindElement {
		return false
	}
	sibs, ok := elementSiblingsFiltered(doc, id, s.OfType)
	if !ok || len(sibs) == 0 {
		return false
	}
	switch s.Kind {
	case KindFirst:
		return sibs[0] == id
	case KindLast:
		return sibs[len(sibs)-1] == id
	case KindOnly:
		return len(sibs) == 1 && sibs[0] == id
	default:
		return false
	}
}

// NotSelector implements :not(S): matches iff the candidate does not
// satisfy the (simple, combinator-free) inner selector.
type NotSelector struct {
	Terminal
	Inner Selector
}

func (s NotSelector) Match(doc *Document, id int, ctx *Context) bool {
	if k, err := doc.Kind(id); err != nil || k != KindElement {
		return false
	}
	return !s.Inner.Match(doc, id, ctx)
}

func (s NotSelector) Validate() error {
	if _, hasNext := s.Inner.Combinator(); hasNext {
		return &ValidationError{Reason: ReasonBadArgs, Msg: "only simple selectors are allowed inside :not()"}
	}
	return s.Inner.Validate()
}

// HasSelector implements :has(S): matches iff some node in candidates
// (descendants, or children when the inner selector opened with an
// explicit combinator) matches the compiled inner chain.
type HasSelector struct {
	Terminal
	Inner    Chain
	Children bool // true => :has(> S), restrict to direct children
}

func (s HasSelector) Match(doc *Document, id int, ctx *Context) bool {
	if k, err := doc.Kind(id); err != nil || k != KindElement {
		return false
	}
	scope := doc.Descendants(id).Slice()
	candidates := scope
	if s.Children {
		candidates = doc.Children(id)
	}
	return len(runChainWithin(doc, candidates, scope, s.Inner, ctx)) > 0
}

func (s HasSelector) Validate() error {
	for _, stage := range s.Inner {
		if err := stage.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ContainsSelector matches elements whose (own or full) text content
// contains a substring, case-insensitively; it backs the non-standard
// :contains() and :containsown() pseudo-classes.
type ContainsSelector struct {
	Terminal
	Own   bool
	Value string
}

func (s ContainsSelector) Match(doc *Document, id int, _ *Context) bool {
	if k, err := doc.Kind(id); err != nil || k != KindElement {
		return false
	}
	var text string
	if s.Own {
		text = OwnText(doc, id)
	} else {
		text = Text(doc, id)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(s.Value))
}

// MatchesRegexSelector matches elements whose (own or full) text
// content matches a regular expression; it backs the non-standard
// :matches() and :matchesown() pseudo-classes.
type MatchesRegexSelector struct {
	Terminal
	Own   bool
	Regex *regexp.Regexp
}

func (s MatchesRegexSelector) Match(doc *Document, id int, _ *Context) bool {
	if k, err := doc.Kind(id); err != nil || k != KindElement {
		return false
	}
	var text string
	if s.Own {
		text = OwnText(doc, id)
	} else {
		text = Text(doc, id)
	}
	return s.Regex.MatchString(text)
}

// NodeKindSelector matches nodes of one of a set of kinds, the same
// distinction XPath's comment()/text()/node() node tests draw. Compiled
// XPath queries do not use it (antchfx/xpath runs their node tests
// against xpathNavigator.NodeType); it is a standalone Selector.
type NodeKindSelector struct {
	Terminal
	Kinds []NodeKind
}

func (s NodeKindSelector) Match(doc *Document, id int, _ *Context) bool {
	k, err := doc.Kind(id)
	if err != nil {
		return false
	}
	for _, want := range s.Kinds {
		if k == want {
			return true
		}
	}
	return false
}

// InputSelector implements :input, matching the usual set of HTML form
// control elements.
type InputSelector struct{ Terminal }

func (InputSelector) Match(doc *Document, id int, _ *Context) bool {
	k, err := doc.Kind(id)
	if err != nil || k != KindElement {
		return false
	}
	switch strings.ToLower(doc.Tag(id)) {
	case "input", "textarea", "select", "button":
		return true
	default:
		return false
	}
}

// EmptyElementSelector implements :empty, matching elements with no
// element or text children (comments and processing instructions do
// not count as content).
type EmptyElementSelector struct{ Terminal }

func (EmptyElementSelector) Match(doc *Document, id int, _ *Context) bool {
	k, err := doc.Kind(id)
	if err != nil || k != KindElement {
		return false
	}
	for _, c := range doc.Children(id) {
		if ck, err := doc.Kind(c); err == nil && (ck == KindElement || ck == KindText) {
			return false
		}
	}
	return true
}

// CommentContaining is a small user-defined matcher: it satisfies the
// Selector capability directly via MatchFunc, demonstrating that
// built-ins and user matchers interoperate uniformly.
func CommentContaining(substr string) Selector {
	return MatchFunc(func(doc *Document, id int, _ *Context) bool {
		k, err := doc.Kind(id)
		return err == nil && k == KindComment && strings.Contains(doc.Content(id), substr)
	})
}
