package meeseeks

import "strings"

// TupleNode is the external parser boundary's node grammar: a node
// is either literal text or an element carrying a tag, an ordered
// attribute list, and ordered children. Special tag values map to the
// Doctype, Comment, ProcessingInstruction and Data(cdata) node kinds;
// see the sentinel constants below.
type TupleNode interface {
	isTupleNode()
}

// TupleText is the string-node case of the tuple-tree grammar.
type TupleText string

func (TupleText) isTupleNode() {}

// TupleElement is the (tag, attrs, children) case of the tuple-tree
// grammar.
type TupleElement struct {
	Tag       string
	Namespace string
	Attrs     []Attribute
	Children  []TupleNode
}

func (*TupleElement) isTupleNode() {}

// Sentinel tag values recognized by the builder. They are
// implementation-chosen and must not collide with real tag names,
// which is why they carry a leading hyphen (not a legal HTML/XML name
// start character).
const (
	SentinelDoctype = "-doctype"
	SentinelComment = "-comment"
	SentinelPI      = "-pi"
	SentinelCDATA   = "-cdata"
)

// Mode selects which external parser builds the tuple-tree from raw
// markup.
type Mode int

const (
	ModeHTML Mode = iota
	ModeXML
)

// Build constructs a Document from a tuple-tree in a single
// depth-first pass, assigning ids in pre-order. xml selects
// case-sensitive tag/attribute handling for the resulting document.
func Build(root TupleNode, xml bool) (*Document, error) {
	b := &builder{xml: xml, seen: map[*TupleElement]bool{}}
	id, err := b.visit(root, noParent)
	if err != nil {
		return nil, err
	}
	doc := &Document{nodes: b.nodes, roots: []int{id}, xml: xml}
	doc.order = append(doc.order, id)
	doc.collectDescendants(id, &doc.order)
	return doc, nil
}

// BuildForest is like Build but accepts several top-level tuple-tree
// roots, as produced by a full-document parse (e.g. a DOCTYPE followed
// by an <html> element).
func BuildForest(roots []TupleNode, xml bool) (*Document, error) {
	b := &builder{xml: xml, seen: map[*TupleElement]bool{}}
	doc := &Document{xml: xml}
	for _, r := range roots {
		id, err := b.visit(r, noParent)
		if err != nil {
			return nil, err
		}
		doc.roots = append(doc.roots, id)
	}
	doc.nodes = b.nodes
	for _, r := range doc.roots {
		doc.order = append(doc.order, r)
		doc.collectDescendants(r, &doc.order)
	}
	return doc, nil
}

type builder struct {
	nodes []node
	xml   bool
	seen  map[*TupleElement]bool
}

func (b *builder) alloc(n node) int {
	n.id = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return n.id
}

func (b *builder) visit(t TupleNode, parent int) (int, error) {
	switch v := t.(type) {
	case nil:
		return 0, &MalformedTreeError{Reason: "nil tuple node"}
	case TupleText:
		return b.alloc(node{parent: parent, kind: KindText, content: string(v)}), nil
	case *TupleElement:
		if v == nil {
			return 0, &MalformedTreeError{Reason: "nil element"}
		}
		if b.seen[v] {
			return 0, &MalformedTreeError{Reason: "cycle in tuple-tree"}
		}
		b.seen[v] = true
		defer delete(b.seen, v)
		return b.visitElement(v, parent)
	default:
		return 0, &MalformedTreeError{Reason: "unrecognized tuple node type"}
	}
}

func (b *builder) visitElement(v *TupleElement, parent int) (int, error) {
	switch v.Tag {
	case SentinelDoctype:
		name, pub, sys := "", "", ""
		for _, a := range v.Attrs {
			switch a.Name {
			case "name":
				name = a.Value
			case "public":
				pub = a.Value
			case "system":
				sys = a.Value
			}
		}
		return b.alloc(node{parent: parent, kind: KindDoctype, doctypeName: name, publicID: pub, systemID: sys}), nil

	case SentinelComment:
		content, err := firstTextContent(v)
		if err != nil {
			return 0, err
		}
		return b.alloc(node{parent: parent, kind: KindComment, content: content}), nil

	case SentinelPI:
		target := ""
		for _, a := range v.Attrs {
			if a.Name == "target" {
				target = a.Value
			}
		}
		content, err := firstTextContent(v)
		if err != nil {
			return 0, err
		}
		return b.alloc(node{parent: parent, kind: KindPI, piTarget: target, content: content}), nil

	case SentinelCDATA:
		content, err := firstTextContent(v)
		if err != nil {
			return 0, err
		}
		return b.alloc(node{parent: parent, kind: KindData, dataSubtype: DataCDATA, content: content}), nil

	default:
		return b.visitRegularElement(v, parent)
	}
}

// firstTextContent returns the content of an element's sole expected
// text child, tolerating an empty children list as "".
func firstTextContent(v *TupleElement) (string, error) {
	if len(v.Children) == 0 {
		return "", nil
	}
	if len(v.Children) != 1 {
		return "", &MalformedTreeError{Reason: "expected a single text child"}
	}
	text, ok := v.Children[0].(TupleText)
	if !ok {
		return "", &MalformedTreeError{Reason: "expected text content"}
	}
	return string(text), nil
}

func (b *builder) visitRegularElement(v *TupleElement, parent int) (int, error) {
	tag := v.Tag
	if !b.xml {
		tag = strings.ToLower(tag)
	}

	attrs := make([]Attribute, len(v.Attrs))
	copy(attrs, v.Attrs)

	id := b.alloc(node{parent: parent, kind: KindElement, tag: tag, namespace: v.Namespace, attrs: attrs})

	rawText := isRawTextTag(tag)
	var children []int
	for _, c := range v.Children {
		if text, ok := c.(TupleText); ok && rawText {
			children = append(children, b.alloc(node{
				parent:      id,
				kind:        KindData,
				dataSubtype: rawTextSubtype(tag),
				content:     string(text),
			}))
			continue
		}
		childID, err := b.visit(c, id)
		if err != nil {
			return 0, err
		}
		children = append(children, childID)
	}
	b.nodes[id].children = children
	return id, nil
}

// isRawTextTag reports whether an element's direct text content should
// become a Data node rather than a plain Text node.
func isRawTextTag(tag string) bool {
	return tag == "script" || tag == "style"
}

func rawTextSubtype(tag string) DataSubtype {
	if tag == "style" {
		return DataStyle
	}
	return DataScript
}
