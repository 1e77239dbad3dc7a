package meeseeks

import (
	"strings"

	"golang.org/x/net/html"
)

// ParseHTML parses raw HTML markup (via golang.org/x/net/html, the
// external tokenizer/tree-constructor boundary) and builds a Document
// from it.
func ParseHTML(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	tuples, err := tupleFromHTMLChildren(root)
	if err != nil {
		return nil, err
	}
	if len(tuples) == 0 {
		tuples = []TupleNode{&TupleElement{Tag: "html"}}
	}
	return BuildForest(tuples, false)
}

// tupleFromHTMLChildren converts the children of an *html.Node
// (typically the synthetic DocumentNode html.Parse returns) into our
// tuple-tree grammar, one root per child.
func tupleFromHTMLChildren(n *html.Node) ([]TupleNode, error) {
	var out []TupleNode
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t, skip, err := tupleFromHTMLNode(c)
		if err != nil {
			return nil, err
		}
		if !skip {
			out = append(out, t)
		}
	}
	return out, nil
}

func tupleFromHTMLNode(n *html.Node) (TupleNode, bool, error) {
	switch n.Type {
	case html.TextNode:
		return TupleText(n.Data), false, nil

	case html.CommentNode:
		return &TupleElement{
			Tag:      SentinelComment,
			Children: []TupleNode{TupleText(n.Data)},
		}, false, nil

	case html.DoctypeNode:
		name, public, system := n.Data, "", ""
		for _, a := range n.Attr {
			switch a.Key {
			case "public":
				public = a.Val
			case "system":
				system = a.Val
			}
		}
		return &TupleElement{
			Tag: SentinelDoctype,
			Attrs: []Attribute{
				{Name: "name", Value: name},
				{Name: "public", Value: public},
				{Name: "system", Value: system},
			},
		}, false, nil

	case html.ElementNode:
		elem := &TupleElement{
			Tag:       n.Data,
			Namespace: n.Namespace,
			Attrs:     make([]Attribute, len(n.Attr)),
		}
		for i, a := range n.Attr {
			elem.Attrs[i] = Attribute{Name: a.Key, Value: a.Val}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			t, skip, err := tupleFromHTMLNode(c)
			if err != nil {
				return nil, false, err
			}
			if !skip {
				elem.Children = append(elem.Children, t)
			}
		}
		return elem, false, nil

	case html.DocumentNode:
		// Only reachable for a nested document fragment; flatten by
		// skipping the wrapper and returning nothing useful here since
		// ParseHTML only calls this on element/text/comment/doctype
		// children of the top-level document.
		return nil, true, nil

	default:
		return nil, true, nil
	}
}
