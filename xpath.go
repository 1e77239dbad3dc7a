package meeseeks

import (
	"fmt"
	"sort"

	"github.com/antchfx/xpath"
)

// This file is the XPath front-end's compile-time wrapping: it turns
// github.com/antchfx/xpath's own compile/evaluate errors into this
// engine's error kinds and enforces the node-set-result contract
// All/One/Select need. The imported library implements the grammar,
// axes, node tests, predicates, functions and operators; see
// xpath_navigator.go for the adapter that lets it walk a Document
// instead of a pointer tree.

// XPathQuery is a compiled XPath expression, usable with All/One/Select
// like any compiled CSS selector group (it implements Query).
type XPathQuery struct {
	expr *xpath.Expr
	src  string
}

// CompileXPath compiles an XPath expression. Grammar errors surface as
// *SyntaxError with Grammar set to GrammarXPath.
func CompileXPath(expression string) (*XPathQuery, error) {
	expr, err := xpath.Compile(expression)
	if err != nil {
		return nil, &SyntaxError{Grammar: GrammarXPath, Pos: -1, Msg: err.Error()}
	}
	return &XPathQuery{expr: expr, src: expression}, nil
}

// MustCompileXPath is like CompileXPath but panics on error, for
// expressions known at compile time to be valid.
func MustCompileXPath(expression string) *XPathQuery {
	q, err := CompileXPath(expression)
	if err != nil {
		panic(err)
	}
	return q
}

// selectIDs evaluates the expression against a navigator rooted at
// whatever scope the caller is querying (the whole document, or one
// Result's subtree), intersects the returned node-set with that scope,
// and returns it deduplicated in document order.
//
// A top-level expression that does not evaluate to a node-set (a bare
// number, string or boolean expression) is a type error here rather
// than being coerced: it has no meaningful Result representation.
func (q *XPathQuery) selectIDs(doc *Document, scope []int, _ *Context) (ids []int, err error) {
	// antchfx/xpath reports runtime type misuse (e.g. a function called
	// with the wrong argument type) by panicking rather than returning
	// an error from Evaluate; recover it as an XPathTypeError instead
	// of letting it escape the selection.
	defer func() {
		if p := recover(); p != nil {
			ids, err = nil, &XPathTypeError{Msg: fmt.Sprintf("%v", p)}
		}
	}()

	nav := newXPathNavigator(doc, xpathRootFor(doc, scope))
	v := q.expr.Evaluate(nav)
	iter, ok := v.(*xpath.NodeIterator)
	if !ok {
		return nil, &XPathTypeError{
			Msg: fmt.Sprintf("xpath %q: expected a node-set result, got %T", q.src, v),
		}
	}

	inScope := make(map[int]bool, len(scope))
	for _, id := range scope {
		inScope[id] = true
	}

	seen := make(map[int]bool)
	var out []int
	for iter.MoveNext() {
		cur, ok := iter.Current().(*xpathNavigator)
		// Attribute nodes have no id of their own in this document
		// store (attributes live inline on their owning element), so
		// a node-set result that selects attributes directly (e.g.
		// "//@id") cannot be represented as a Result; such matches
		// are dropped rather than raising a spurious type error.
		if !ok || cur.current == virtualRoot || cur.attr != -1 {
			continue
		}
		id := cur.current
		if !inScope[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Ints(out) // ids are pre-order assigned, so this is document order.
	return out, nil
}

// xpathRootFor picks the navigator's anchor root for a given scope.
// scope is either the whole document's id range (FromDocument) or one
// Result's id plus its descendants (FromResult). Since ids
// are assigned in pre-order, a subtree's root is always its scope's
// minimum id; the whole-document case is detected by scope covering
// every id and gets the synthetic virtualRoot so "/" and "//" behave
// as a single-rooted document even over a multi-root forest.
func xpathRootFor(doc *Document, scope []int) int {
	if len(scope) == 0 || len(scope) == doc.Len() {
		return virtualRoot
	}
	root := scope[0]
	for _, id := range scope[1:] {
		if id < root {
			root = id
		}
	}
	return root
}

var _ Query = (*XPathQuery)(nil)
