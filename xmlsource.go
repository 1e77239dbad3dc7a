package meeseeks

import (
	"encoding/xml"
	"io"
	"strings"
)

// ParseXML parses raw XML markup (tokenized via the standard library's
// encoding/xml) and builds a Document from it.
func ParseXML(markup string) (*Document, error) {
	roots, err := tupleFromXML(markup)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, &MalformedTreeError{Reason: "empty xml document"}
	}
	return BuildForest(roots, true)
}

// tupleFromXML decodes markup into our tuple-tree grammar, one root
// per top-level node (normally a single element, possibly preceded by
// a processing instruction or comment).
func tupleFromXML(markup string) ([]TupleNode, error) {
	dec := xml.NewDecoder(strings.NewReader(markup))

	var roots []TupleNode
	var stack []*TupleElement

	attach := func(n TupleNode) {
		if len(stack) == 0 {
			roots = append(roots, n)
			return
		}
		top := stack[len(stack)-1]
		top.Children = append(top.Children, n)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: err.Error()}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elem := &TupleElement{Tag: t.Name.Local, Namespace: t.Name.Space}
			for _, a := range t.Attr {
				elem.Attrs = append(elem.Attrs, Attribute{Name: a.Name.Local, Value: a.Value})
			}
			attach(elem)
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &ParseError{Reason: "unbalanced end element </" + t.Name.Local + ">"}
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			attach(TupleText(string(t)))

		case xml.Comment:
			attach(&TupleElement{Tag: SentinelComment, Children: []TupleNode{TupleText(string(t))}})

		case xml.ProcInst:
			attach(&TupleElement{
				Tag:      SentinelPI,
				Attrs:    []Attribute{{Name: "target", Value: t.Target}},
				Children: []TupleNode{TupleText(string(t.Inst))},
			})

		case xml.Directive:
			// encoding/xml hands directives over raw and unparsed; only
			// <!DOCTYPE ...> maps to a node kind here, other directives
			// (<!ELEMENT ...> and friends) are dropped.
			content := strings.TrimSpace(string(t))
			rest, ok := strings.CutPrefix(content, "DOCTYPE")
			if !ok {
				continue
			}
			name := strings.TrimSpace(rest)
			if i := strings.IndexAny(name, " \t\r\n"); i != -1 {
				name = name[:i]
			}
			attach(&TupleElement{
				Tag:   SentinelDoctype,
				Attrs: []Attribute{{Name: "name", Value: name}},
			})
		}
	}

	if len(stack) != 0 {
		return nil, &ParseError{Reason: "unclosed element in xml document"}
	}
	return roots, nil
}
