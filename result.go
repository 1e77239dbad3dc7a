package meeseeks

import (
	"strings"
	"unicode"
)

// Attr returns the value of attribute name on r's node and whether it
// was present. Names compare case-insensitively in HTML documents and
// case-sensitively in XML documents.
func (r Result) Attr(name string) (string, bool) {
	for _, a := range r.Doc.Attrs(r.ID) {
		if attrNameEqual(r.Doc, a.Name, name) {
			return a.Value, true
		}
	}
	return "", false
}

func attrNameEqual(doc *Document, have, want string) bool {
	if doc.IsXML() {
		return have == want
	}
	return strings.EqualFold(have, want)
}

// Attrs returns every attribute of r's node, in source order.
func (r Result) Attrs() []Attribute {
	return r.Doc.Attrs(r.ID)
}

// Tag returns r's node's element tag, or "" if it is not an element.
func (r Result) Tag() string {
	return r.Doc.Tag(r.ID)
}

// Kind returns r's node kind.
func (r Result) Kind() NodeKind {
	k, _ := r.Doc.Kind(r.ID)
	return k
}

// OwnText returns the concatenation of r's node's direct Text children
// only, whitespace-collapsed.
func (r Result) OwnText() string { return OwnText(r.Doc, r.ID) }

// Text returns the concatenation of every Text descendant of r's node,
// in document order, whitespace-collapsed.
func (r Result) Text() string { return Text(r.Doc, r.ID) }

// OwnText gathers id's direct Text children only, collapsing whitespace.
func OwnText(doc *Document, id int) string {
	var b strings.Builder
	for _, c := range doc.Children(id) {
		if k, err := doc.Kind(c); err == nil && k == KindText {
			b.WriteString(doc.Content(c))
		}
	}
	return collapseWhitespace(b.String())
}

// Text gathers every Text descendant of id, in document order,
// collapsing whitespace.
func Text(doc *Document, id int) string {
	var b strings.Builder
	writeText(doc, id, &b)
	return collapseWhitespace(b.String())
}

func writeText(doc *Document, id int, b *strings.Builder) {
	if k, err := doc.Kind(id); err == nil && k == KindText {
		b.WriteString(doc.Content(id))
		return
	}
	for _, c := range doc.Children(id) {
		writeText(doc, c, b)
	}
}

// collapseWhitespace reduces every run of whitespace to a single space
// and trims the result, matching how text content is normally presented
// once pulled out of markup.
func collapseWhitespace(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSpace(b.String())
}

// Dataset returns r's node's data-* attributes, keyed by their
// lowerCamelCase name with the "data-" prefix stripped (e.g.
// "data-x-val" becomes "xVal"), mirroring the DOM's dataset projection.
// Attributes whose suffix is not a valid identifier (lowercase letters,
// digits and hyphens only) are ignored; non-elements have no dataset
// and yield nil.
func (r Result) Dataset() map[string]string {
	if k, err := r.Doc.Kind(r.ID); err != nil || k != KindElement {
		return nil
	}
	out := map[string]string{}
	for _, a := range r.Doc.Attrs(r.ID) {
		name := a.Name
		if r.Doc.IsXML() {
			if !strings.HasPrefix(name, "data-") {
				continue
			}
		} else if !strings.HasPrefix(strings.ToLower(name), "data-") {
			continue
		}
		suffix := name[len("data-"):]
		if !validDatasetSuffix(suffix) {
			continue
		}
		out[datasetKey(suffix)] = a.Value
	}
	return out
}

// validDatasetSuffix reports whether a data- attribute suffix is a
// dataset identifier: lowercase letters, digits and hyphens, non-empty.
func validDatasetSuffix(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'a' <= c && c <= 'z' || '0' <= c && c <= '9' || c == '-' {
			continue
		}
		return false
	}
	return true
}

// datasetKey converts a dash-separated attribute suffix into
// lowerCamelCase ("x-val" -> "xVal").
func datasetKey(suffix string) string {
	parts := strings.Split(suffix, "-")
	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i == 0 {
			b.WriteString(p)
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// Data returns a Data node's content (script/style, or a literal
// CDATA section), or, for a comment whose content begins with
// "[CDATA[" and ends with "]]", the interior between those markers.
// The substring detection exists because HTML5 parsers lower CDATA
// sections into comments; it is deliberately not nesting-aware, so an
// unterminated "[CDATA[" followed by "]]" anywhere later in the same
// comment is still treated as CDATA. For any other node it falls back
// to the collapsed-whitespace content of the node itself plus every
// Data descendant, concatenated.
func (r Result) Data() (string, bool) {
	k, err := r.Doc.Kind(r.ID)
	if err != nil {
		return "", false
	}
	switch k {
	case KindData:
		content := r.Doc.Content(r.ID)
		if r.Doc.DataSubtype(r.ID) == DataCDATA {
			content = stripCDATAMarkers(content)
		}
		return content, true
	case KindComment:
		content := r.Doc.Content(r.ID)
		if strings.HasPrefix(content, "[CDATA[") && strings.HasSuffix(content, "]]") {
			return stripCDATAMarkers(content), true
		}
		return collapseWhitespace(content), true
	default:
		return collapseWhitespace(r.Doc.Content(r.ID) + dataDescendantsContent(r.Doc, r.ID)), true
	}
}

func stripCDATAMarkers(s string) string {
	s = strings.TrimPrefix(s, "[CDATA[")
	s = strings.TrimSuffix(s, "]]")
	return s
}

// dataDescendantsContent concatenates the content of every Data
// descendant of id, in document order.
func dataDescendantsContent(doc *Document, id int) string {
	var b strings.Builder
	it := doc.Descendants(id)
	for d, ok := it.Next(); ok; d, ok = it.Next() {
		if k, err := doc.Kind(d); err == nil && k == KindData {
			b.WriteString(doc.Content(d))
		}
	}
	return b.String()
}

// Tree renders r's node and its descendants as a TupleNode, the same
// grammar Build consumes, letting a Result round-trip into a
// standalone sub-document.
func (r Result) Tree() TupleNode {
	return nodeToTuple(r.Doc, r.ID)
}

func nodeToTuple(doc *Document, id int) TupleNode {
	k, err := doc.Kind(id)
	if err != nil {
		return TupleText("")
	}
	switch k {
	case KindText:
		return TupleText(doc.Content(id))
	case KindComment:
		return &TupleElement{Tag: SentinelComment, Children: []TupleNode{TupleText(doc.Content(id))}}
	case KindPI:
		return &TupleElement{
			Tag:      SentinelPI,
			Attrs:    []Attribute{{Name: "target", Value: doc.PITarget(id)}},
			Children: []TupleNode{TupleText(doc.Content(id))},
		}
	case KindDoctype:
		name, public, system := doc.Doctype(id)
		return &TupleElement{Tag: SentinelDoctype, Attrs: []Attribute{
			{Name: "name", Value: name},
			{Name: "public", Value: public},
			{Name: "system", Value: system},
		}}
	case KindData:
		if doc.DataSubtype(id) == DataCDATA {
			return &TupleElement{Tag: SentinelCDATA, Children: []TupleNode{TupleText(doc.Content(id))}}
		}
		// Script/style content: the enclosing element already names the
		// subtype, and Build turns its text children back into Data nodes.
		return TupleText(doc.Content(id))
	default:
		children := make([]TupleNode, 0, len(doc.Children(id)))
		for _, c := range doc.Children(id) {
			children = append(children, nodeToTuple(doc, c))
		}
		return &TupleElement{
			Tag:       doc.Tag(id),
			Namespace: doc.Namespace(id),
			Attrs:     append([]Attribute{}, doc.Attrs(id)...),
			Children:  children,
		}
	}
}
