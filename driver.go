package meeseeks

import "sort"

// Query is the uniform entry point the selection driver walks: a
// compiled CSS selector group, a compiled XPath expression, or a bare
// user-defined Selector, all conforming to the same contract so the
// driver never needs to know which front-end produced them.
type Query interface {
	selectIDs(doc *Document, scope []int, ctx *Context) ([]int, error)
}

// AsQuery wraps a single Selector (e.g. a user-defined matcher) as a
// one-stage Chain, so it plugs into All/One/Select like any compiled
// CSS or XPath selector.
func AsQuery(s Selector) Query { return Chain{s} }

func (c Chain) selectIDs(doc *Document, scope []int, ctx *Context) ([]int, error) {
	return runChain(doc, scope, scope, c, ctx), nil
}

// group is a selector-list / comma-group union: the document-order,
// deduplicated union of each member query's matches.
type group []Query

func (g group) selectIDs(doc *Document, scope []int, ctx *Context) ([]int, error) {
	return unionQueries(doc, scope, []Query(g), ctx)
}

func unionQueries(doc *Document, scope []int, qs []Query, ctx *Context) ([]int, error) {
	seen := make(map[int]bool)
	var out []int
	for _, q := range qs {
		ids, err := q.selectIDs(doc, scope, ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	sort.Ints(out) // ids are assigned in document-order pre-order, so this is document order.
	return out, nil
}

// runChain walks chain left to right starting from candidates,
// computing each stage's next candidates from its Combinator.
// Combinator candidates are confined to scope, so a selection anchored
// at one Result's subtree behaves as though the subtree root had no
// parent: sibling combinators cannot step out of the subtree.
func runChain(doc *Document, candidates, scope []int, chain Chain, ctx *Context) []int {
	if len(chain) == 0 {
		return nil
	}
	inScope := make(map[int]bool, len(scope))
	for _, s := range scope {
		inScope[s] = true
	}
	for i, stage := range chain {
		var matched []int
	candidateLoop:
		for _, c := range candidates {
			if !stage.Match(doc, c, ctx) {
				continue
			}
			for _, f := range stage.Filters() {
				if !f.Match(doc, c, ctx) {
					continue candidateLoop
				}
			}
			matched = append(matched, c)
		}
		comb, hasNext := stage.Combinator()
		if !hasNext || i == len(chain)-1 {
			return matched
		}
		seen := make(map[int]bool)
		var next []int
		for _, m := range matched {
			for _, n := range combinatorCandidates(doc, comb, m) {
				if inScope[n] && !seen[n] {
					seen[n] = true
					next = append(next, n)
				}
			}
		}
		sort.Ints(next)
		candidates = next
	}
	return nil
}

// runChainWithin is runChain with distinct first-stage candidates and
// confinement scope, used by :has() (matchers.go): ":has(> a b)" starts
// its first stage at the direct children but later stages still descend
// through the whole subtree.
func runChainWithin(doc *Document, candidates, scope []int, chain Chain, ctx *Context) []int {
	return runChain(doc, candidates, scope, chain, ctx)
}

// Result is a handle to one matched node: a (document, id) pair.
// Results never outlive their document.
type Result struct {
	Doc *Document
	ID  int
}

// Accumulator folds matched results during a selection walk.
type Accumulator interface {
	Include(r Result) Accumulator
	Complete() bool
	Value() any
}

// oneAccumulator keeps only the first match and signals completion
// immediately. Select evaluates the queries in full before folding, so
// completion stops the fold after the first result, not the walk.
type oneAccumulator struct {
	result Result
	has    bool
}

// OneAccumulator returns a new "first match only" accumulator.
func OneAccumulator() Accumulator { return &oneAccumulator{} }

func (a *oneAccumulator) Include(r Result) Accumulator {
	if !a.has {
		a.result, a.has = r, true
	}
	return a
}
func (a *oneAccumulator) Complete() bool { return a.has }
func (a *oneAccumulator) Value() any {
	if !a.has {
		return nil
	}
	return a.result
}

// allAccumulator keeps every match, in document order, and never
// short-circuits.
type allAccumulator struct {
	results []Result
}

// AllAccumulator returns a new "every match" accumulator.
func AllAccumulator() Accumulator { return &allAccumulator{} }

func (a *allAccumulator) Include(r Result) Accumulator {
	a.results = append(a.results, r)
	return a
}
func (a *allAccumulator) Complete() bool { return false }
func (a *allAccumulator) Value() any     { return append([]Result{}, a.results...) }

// Queryable is anything the selection driver can walk: raw markup
// (parsed on demand in HTML mode), a built Document, or a single
// Result (which restricts the walk to that node's subtree).
type Queryable struct {
	doc   *Document
	scope []int
}

// FromMarkup parses raw HTML markup on demand and returns a Queryable
// over the whole resulting document.
func FromMarkup(markup string) (Queryable, error) {
	doc, err := ParseHTML(markup)
	if err != nil {
		return Queryable{}, err
	}
	return FromDocument(doc), nil
}

// FromDocument returns a Queryable over the whole of doc.
func FromDocument(doc *Document) Queryable {
	return Queryable{doc: doc, scope: doc.Walk().Slice()}
}

// FromResult returns a Queryable restricted to r's node and its
// descendants; selectors apply their combinators as though that node
// had no parent.
func FromResult(r Result) Queryable {
	scope := append([]int{r.ID}, r.Doc.Descendants(r.ID).Slice()...)
	sort.Ints(scope)
	return Queryable{doc: r.Doc, scope: scope}
}

func (q Queryable) run(query Query, ctx *Context) ([]int, error) {
	return query.selectIDs(q.doc, q.scope, ctx)
}

// All returns every match for the union of the given queries, in
// document order, deduplicated by id.
func All(q Queryable, queries []Query, ctx *Context) ([]Result, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	ids, err := q.run(group(queries), ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(ids))
	for i, id := range ids {
		out[i] = Result{Doc: q.doc, ID: id}
	}
	return out, nil
}

// One returns the first match in document order, or nil if there is
// none. It is always equal to the first element of All's result.
func One(q Queryable, queries []Query, ctx *Context) (*Result, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	ids, err := q.run(group(queries), ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &Result{Doc: q.doc, ID: ids[0]}, nil
}

// Select drives the walk through ctx's accumulator, returning its
// final value. It fails with ErrNoAccumulator if ctx carries none.
func Select(q Queryable, queries []Query, ctx *Context) (any, error) {
	if ctx == nil || ctx.Accumulator == nil {
		return nil, ErrNoAccumulator
	}
	ids, err := q.run(group(queries), ctx)
	if err != nil {
		return nil, err
	}
	acc := ctx.Accumulator
	for _, id := range ids {
		acc = acc.Include(Result{Doc: q.doc, ID: id})
		if acc.Complete() {
			break
		}
	}
	return acc.Value(), nil
}
