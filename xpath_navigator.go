package meeseeks

import (
	"strings"

	"github.com/antchfx/xpath"
)

// This file adapts Document to github.com/antchfx/xpath's NodeNavigator
// capability so the imported XPath engine can walk a flat id-indexed
// node table instead of a pointer tree. Everything grammar-side (axes,
// node tests, functions, operators) lives in the imported library; the
// adapter's job is cursor movement and exposing each node kind's name,
// type and string-value.

// virtualRoot is the synthetic node above every real root id, letting
// antchfx/xpath treat a (possibly multi-root) forest document as a
// single-rooted tree the way XPath's data model expects. A Queryable
// restricted to one Result's subtree instead anchors the navigator
// directly at that node's id, so MoveToParent cannot escape the
// subtree.
const virtualRoot = -1

// xpathNavigator walks a Document for antchfx/xpath. It tracks the
// current node id (or virtualRoot) and, when positioned on an
// attribute, the attribute's index within the current element.
type xpathNavigator struct {
	doc     *Document
	root    int
	current int
	attr    int // -1 when not positioned on an attribute
}

func newXPathNavigator(doc *Document, root int) *xpathNavigator {
	return &xpathNavigator{doc: doc, root: root, current: root, attr: -1}
}

// childrenOf returns the navigable children of id, treating virtualRoot
// as having the document's root list as children.
func (n *xpathNavigator) childrenOf(id int) []int {
	if id == virtualRoot {
		return n.doc.RootIDs()
	}
	return n.doc.Children(id)
}

// parentOf returns id's navigable parent, stopping at the navigator's
// anchor root rather than escaping into the rest of the document.
func (n *xpathNavigator) parentOf(id int) (int, bool) {
	if id == n.root {
		return 0, false
	}
	if p, ok := n.doc.Parent(id); ok {
		return p, true
	}
	if n.root == virtualRoot {
		return virtualRoot, true
	}
	return 0, false
}

func (n *xpathNavigator) NodeType() xpath.NodeType {
	if n.current == virtualRoot {
		return xpath.RootNode
	}
	if n.attr != -1 {
		return xpath.AttributeNode
	}
	switch k, err := n.doc.Kind(n.current); {
	case err != nil:
		return xpath.RootNode
	case k == KindElement:
		return xpath.ElementNode
	case k == KindText, k == KindData:
		return xpath.TextNode
	case k == KindComment:
		return xpath.CommentNode
	default:
		// antchfx/xpath has no node type for processing instructions
		// or doctypes; RootNode keeps them out of element/text/comment
		// node tests.
		return xpath.RootNode
	}
}

func (n *xpathNavigator) LocalName() string {
	if n.current == virtualRoot {
		return ""
	}
	if n.attr != -1 {
		if attrs := n.doc.Attrs(n.current); n.attr < len(attrs) {
			return attrs[n.attr].Name
		}
		return ""
	}
	if k, err := n.doc.Kind(n.current); err != nil || k != KindElement {
		return ""
	}
	return n.doc.Tag(n.current)
}

func (n *xpathNavigator) Prefix() string {
	if n.current == virtualRoot || n.attr != -1 {
		return ""
	}
	return n.doc.Namespace(n.current)
}

func (n *xpathNavigator) Value() string {
	if n.current == virtualRoot {
		return xpathInnerText(n.doc, n.doc.RootIDs())
	}
	if n.attr != -1 {
		if attrs := n.doc.Attrs(n.current); n.attr < len(attrs) {
			return attrs[n.attr].Value
		}
		return ""
	}
	k, err := n.doc.Kind(n.current)
	if err != nil {
		return ""
	}
	switch k {
	case KindElement:
		return xpathInnerText(n.doc, []int{n.current})
	case KindDoctype:
		name, _, _ := n.doc.Doctype(n.current)
		return name
	default:
		return n.doc.Content(n.current)
	}
}

func (n *xpathNavigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *xpathNavigator) MoveToRoot() {
	n.current = n.root
	n.attr = -1
}

func (n *xpathNavigator) MoveToParent() bool {
	if n.attr != -1 {
		n.attr = -1
		return true
	}
	p, ok := n.parentOf(n.current)
	if !ok {
		return false
	}
	n.current = p
	return true
}

func (n *xpathNavigator) MoveToNextAttribute() bool {
	if n.current == virtualRoot {
		return false
	}
	if n.attr+1 >= len(n.doc.Attrs(n.current)) {
		return false
	}
	n.attr++
	return true
}

func (n *xpathNavigator) MoveToChild() bool {
	if n.attr != -1 {
		return false
	}
	kids := n.childrenOf(n.current)
	if len(kids) == 0 {
		return false
	}
	n.current = kids[0]
	return true
}

func (n *xpathNavigator) MoveToFirst() bool {
	if n.attr != -1 {
		return false
	}
	p, ok := n.parentOf(n.current)
	if !ok {
		return false
	}
	kids := n.childrenOf(p)
	if len(kids) == 0 {
		return false
	}
	n.current = kids[0]
	return true
}

func (n *xpathNavigator) MoveToNext() bool {
	if n.attr != -1 {
		return false
	}
	p, ok := n.parentOf(n.current)
	if !ok {
		return false
	}
	kids := n.childrenOf(p)
	i := indexOf(kids, n.current)
	if i == -1 || i+1 >= len(kids) {
		return false
	}
	n.current = kids[i+1]
	return true
}

func (n *xpathNavigator) MoveToPrevious() bool {
	if n.attr != -1 {
		return false
	}
	p, ok := n.parentOf(n.current)
	if !ok {
		return false
	}
	kids := n.childrenOf(p)
	i := indexOf(kids, n.current)
	if i <= 0 {
		return false
	}
	n.current = kids[i-1]
	return true
}

func (n *xpathNavigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*xpathNavigator)
	if !ok || o.doc != n.doc || o.root != n.root {
		return false
	}
	n.current = o.current
	n.attr = o.attr
	return true
}

func (n *xpathNavigator) String() string { return n.Value() }

var _ xpath.NodeNavigator = &xpathNavigator{}

// xpathInnerText concatenates the Text/Data content reachable under
// ids, skipping comments, doctypes and processing instructions, for
// XPath's string-value of an element (or the synthetic root).
func xpathInnerText(doc *Document, ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		xpathWriteText(doc, id, &b)
	}
	return b.String()
}

func xpathWriteText(doc *Document, id int, b *strings.Builder) {
	k, err := doc.Kind(id)
	if err != nil {
		return
	}
	switch k {
	case KindText, KindData:
		b.WriteString(doc.Content(id))
	case KindComment, KindPI, KindDoctype:
		return
	default:
		for _, c := range doc.Children(id) {
			xpathWriteText(doc, c, b)
		}
	}
}
