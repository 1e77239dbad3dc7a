package meeseeks

// Combinator describes which nodes a chained selector's next stage
// must be applied to, relative to a node the current stage matched.
type Combinator int

const (
	// NoCombinator marks a terminal selector: it alone decides the match.
	NoCombinator Combinator = iota
	// Descendants selects every strict descendant of the matched node.
	Descendants
	// Children selects the matched node's direct children.
	Children
	// NextSibling selects the first following element sibling.
	NextSibling
	// NextSiblings selects every following element sibling.
	NextSiblings
)

// Selector is the capability every matcher in the engine conforms to:
// CSS compound selectors, XPath steps, and user-defined matchers alike.
// It is intentionally narrow so the driver can treat all three
// uniformly without a type hierarchy.
type Selector interface {
	// Match reports whether node id satisfies the selector, here and now.
	Match(doc *Document, id int, ctx *Context) bool

	// Combinator reports which nodes the next selector in a chain
	// should be applied to, relative to a node this selector matched.
	// The second return value is false for a terminal selector.
	Combinator() (Combinator, bool)

	// Filters returns extra selectors that must also match a candidate
	// node before it is accepted (co-requisites of a compound selector).
	Filters() []Selector

	// Validate performs structural, compile-time validation.
	Validate() error
}

// Terminal is embedded by matchers that have no combinator, no extra
// filters, and nothing to validate, so each one only needs to
// implement Match.
type Terminal struct{}

func (Terminal) Combinator() (Combinator, bool) { return NoCombinator, false }
func (Terminal) Filters() []Selector            { return nil }
func (Terminal) Validate() error                { return nil }

// MatchFunc adapts a plain function to the Selector capability, for
// simple user-defined matchers.
type MatchFunc func(doc *Document, id int, ctx *Context) bool

func (f MatchFunc) Match(doc *Document, id int, ctx *Context) bool { return f(doc, id, ctx) }
func (MatchFunc) Combinator() (Combinator, bool)                   { return NoCombinator, false }
func (MatchFunc) Filters() []Selector                              { return nil }
func (MatchFunc) Validate() error                                  { return nil }

// Context is threaded through selection. Nodes, Position and Last hold
// an axis step's node-set, position and size when set via WithAxisStep;
// compiled XPath queries neither read nor set them, since their
// predicates are evaluated inside antchfx/xpath. It is copy-on-write:
// With* returns a derived context, never mutating the receiver, so the
// driver never mutates a caller's context in place.
type Context struct {
	Accumulator Accumulator
	Nodes       []int
	Position    int
	Last        int
	extra       map[string]any
}

// NewContext returns an empty context with no accumulator and no
// user keys.
func NewContext() *Context { return &Context{} }

// WithAccumulator returns a derived context using acc as the active
// accumulator.
func (c *Context) WithAccumulator(acc Accumulator) *Context {
	next := c.clone()
	next.Accumulator = acc
	return next
}

// WithAxisStep returns a derived context with the XPath predicate
// state (nodes/position/last) set for one axis step.
func (c *Context) WithAxisStep(nodes []int, position, last int) *Context {
	next := c.clone()
	next.Nodes = nodes
	next.Position = position
	next.Last = last
	return next
}

// With returns a derived context with key bound to val.
func (c *Context) With(key string, val any) *Context {
	next := c.clone()
	if next.extra == nil {
		next.extra = map[string]any{}
	}
	next.extra[key] = val
	return next
}

// Get looks up a user key.
func (c *Context) Get(key string) (any, bool) {
	if c == nil || c.extra == nil {
		return nil, false
	}
	v, ok := c.extra[key]
	return v, ok
}

func (c *Context) clone() *Context {
	if c == nil {
		return &Context{}
	}
	next := *c
	if c.extra != nil {
		next.extra = make(map[string]any, len(c.extra))
		for k, v := range c.extra {
			next.extra[k] = v
		}
	}
	return &next
}

// compound is one compiled CSS compound selector: an optional tag/
// wildcard matcher plus zero or more filters (attribute, class, id,
// pseudo-class), and the combinator connecting it to the next compound
// in its chain (terminal when this is the chain's last stage). Stages
// produce forward next-stage candidates rather than matching backward
// from a candidate, so CSS, XPath and user matchers share one driver.
type compound struct {
	tag     Selector // nil when no type/universal selector was written; filters alone constrain the node
	filters []Selector
	next    Combinator
	hasNext bool
}

func (c *compound) Match(doc *Document, id int, ctx *Context) bool {
	if c.tag != nil && !c.tag.Match(doc, id, ctx) {
		return false
	}
	for _, f := range c.filters {
		if !f.Match(doc, id, ctx) {
			return false
		}
	}
	return true
}

func (c *compound) Combinator() (Combinator, bool) { return c.next, c.hasNext }
func (c *compound) Filters() []Selector            { return c.filters }

func (c *compound) Validate() error {
	if c.tag != nil {
		if err := c.tag.Validate(); err != nil {
			return err
		}
	}
	for _, f := range c.filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Chain is an ordered, left-to-right sequence of compiled selector
// stages (compound CSS selectors, or any other Selector values) linked
// by combinators: the leftmost stage is matched against the full walk
// (or an anchored subtree), and each stage's Combinator() tells the
// engine which nodes the following stage's candidates are drawn from.
type Chain []Selector

// combinatorCandidates computes the next stage's candidate ids, given
// a node that the current stage matched.
func combinatorCandidates(doc *Document, c Combinator, matched int) []int {
	switch c {
	case Descendants:
		return doc.Descendants(matched).Slice()
	case Children:
		return doc.Children(matched)
	case NextSibling:
		if id, ok := doc.nextElementSibling(matched); ok {
			return []int{id}
		}
		return nil
	case NextSiblings:
		return doc.followingElementSiblings(matched)
	default:
		return nil
	}
}
