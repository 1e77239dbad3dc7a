package meeseeks

// NodeKind tags the variant a node record carries, per the document
// store's tagged-union node representation.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
	KindData
	KindComment
	KindDoctype
	KindPI
)

func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindData:
		return "data"
	case KindComment:
		return "comment"
	case KindDoctype:
		return "doctype"
	case KindPI:
		return "pi"
	default:
		return "unknown"
	}
}

// DataSubtype distinguishes the three flavors of Data node.
type DataSubtype int

const (
	DataScript DataSubtype = iota
	DataStyle
	DataCDATA
)

// Attribute is a single (name, value) pair. Elements keep these in an
// ordered slice, preserving source order and duplicates.
type Attribute struct {
	Name  string
	Value string
}

// noParent marks a node with no parent (it is a root).
const noParent = -1

// node is one row of the document's flat node table.
type node struct {
	id     int
	parent int // noParent for roots
	kind   NodeKind

	// Element
	namespace string
	tag       string
	attrs     []Attribute
	children  []int

	// Text, Comment, Data, PI content
	content string

	// Data
	dataSubtype DataSubtype

	// Doctype
	doctypeName string
	publicID    string
	systemID    string

	// ProcessingInstruction
	piTarget string
}

// Document is an immutable, flat id-indexed table of nodes built once
// from a tuple-tree (see Build). Node ids are dense over [0, N) and
// never change for the document's lifetime.
type Document struct {
	nodes []node
	roots []int
	xml   bool // true when built in XML parse mode (case-sensitive names)
	order []int
}

// IsXML reports whether the document was built in XML mode (affects
// name case-sensitivity for tag/attribute matching).
func (d *Document) IsXML() bool { return d.xml }

// Len returns the number of nodes in the document.
func (d *Document) Len() int { return len(d.nodes) }

// RootIDs returns the ordered list of top-level node ids.
func (d *Document) RootIDs() []int {
	out := make([]int, len(d.roots))
	copy(out, d.roots)
	return out
}

func (d *Document) valid(id int) bool { return id >= 0 && id < len(d.nodes) }

// get returns the node record for id. It fails with ErrUnknownNode if
// id is outside [0, N); reaching this indicates a store invariant
// violation rather than ordinary misuse, since every id the engine
// hands out comes from the document's own traversal helpers.
func (d *Document) get(id int) (*node, error) {
	if !d.valid(id) {
		return nil, ErrUnknownNode
	}
	return &d.nodes[id], nil
}

// Kind returns the kind of node id.
func (d *Document) Kind(id int) (NodeKind, error) {
	n, err := d.get(id)
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

// Parent returns the parent id of id, or (-1, false) if id is a root.
func (d *Document) Parent(id int) (int, bool) {
	n, err := d.get(id)
	if err != nil {
		return -1, false
	}
	if n.parent == noParent {
		return -1, false
	}
	return n.parent, true
}

// Tag returns the element tag of id, or "" if id is not an element.
func (d *Document) Tag(id int) string {
	n, err := d.get(id)
	if err != nil || n.kind != KindElement {
		return ""
	}
	return n.tag
}

// Namespace returns the element namespace of id, or "".
func (d *Document) Namespace(id int) string {
	n, err := d.get(id)
	if err != nil || n.kind != KindElement {
		return ""
	}
	return n.namespace
}

// Attrs returns the ordered attribute list of an element, or nil for
// non-elements.
func (d *Document) Attrs(id int) []Attribute {
	n, err := d.get(id)
	if err != nil || n.kind != KindElement {
		return nil
	}
	return n.attrs
}

// Content returns the literal content of a Text, Comment, Data or PI
// node, or "" otherwise.
func (d *Document) Content(id int) string {
	n, err := d.get(id)
	if err != nil {
		return ""
	}
	switch n.kind {
	case KindText, KindComment, KindData, KindPI:
		return n.content
	default:
		return ""
	}
}

// DataSubtype returns the subtype of a Data node (meaningless otherwise).
func (d *Document) DataSubtype(id int) DataSubtype {
	n, err := d.get(id)
	if err != nil {
		return 0
	}
	return n.dataSubtype
}

// Doctype returns the (name, publicID, systemID) triple of a Doctype
// node.
func (d *Document) Doctype(id int) (name, public, system string) {
	n, err := d.get(id)
	if err != nil || n.kind != KindDoctype {
		return "", "", ""
	}
	return n.doctypeName, n.publicID, n.systemID
}

// PITarget returns the target of a ProcessingInstruction node.
func (d *Document) PITarget(id int) string {
	n, err := d.get(id)
	if err != nil || n.kind != KindPI {
		return ""
	}
	return n.piTarget
}

// Children returns the ordered child ids of id (empty for non-elements).
func (d *Document) Children(id int) []int {
	n, err := d.get(id)
	if err != nil {
		return nil
	}
	out := make([]int, len(n.children))
	copy(out, n.children)
	return out
}

// IDIter is a small restartable pull-iterator over a precomputed,
// document-order (or explicitly reversed) slice of ids.
type IDIter struct {
	ids []int
	pos int
}

func newIDIter(ids []int) *IDIter { return &IDIter{ids: ids} }

// Next returns the next id and true, or (0, false) when exhausted.
func (it *IDIter) Next() (int, bool) {
	if it == nil || it.pos >= len(it.ids) {
		return 0, false
	}
	id := it.ids[it.pos]
	it.pos++
	return id, true
}

// Reset rewinds the iterator to its start, making it restartable.
func (it *IDIter) Reset() { it.pos = 0 }

// Slice materializes the remaining ids as a plain slice, without
// consuming the iterator's position.
func (it *IDIter) Slice() []int {
	out := make([]int, len(it.ids)-it.pos)
	copy(out, it.ids[it.pos:])
	return out
}

// Walk returns a document-order iterator over every node id.
func (d *Document) Walk() *IDIter { return newIDIter(d.order) }

// Descendants returns a document-order iterator over every strict
// descendant of id.
func (d *Document) Descendants(id int) *IDIter {
	var out []int
	d.collectDescendants(id, &out)
	return newIDIter(out)
}

func (d *Document) collectDescendants(id int, out *[]int) {
	for _, c := range d.Children(id) {
		*out = append(*out, c)
		d.collectDescendants(c, out)
	}
}

// Ancestors returns an iterator from id's immediate parent up to (and
// including) its root.
func (d *Document) Ancestors(id int) *IDIter {
	var out []int
	cur, ok := d.Parent(id)
	for ok {
		out = append(out, cur)
		cur, ok = d.Parent(cur)
	}
	return newIDIter(out)
}

// Siblings returns the ordered child list of id's parent, including id
// itself; empty for roots.
func (d *Document) Siblings(id int) []int {
	parent, ok := d.Parent(id)
	if !ok {
		return nil
	}
	return d.Children(parent)
}

// FollowingSiblings returns the elements of Siblings(id) strictly after
// id, in document order.
func (d *Document) FollowingSiblings(id int) *IDIter {
	sibs := d.Siblings(id)
	for i, s := range sibs {
		if s == id {
			return newIDIter(append([]int{}, sibs[i+1:]...))
		}
	}
	return newIDIter(nil)
}

// PrecedingSiblings returns the elements of Siblings(id) strictly
// before id, in reverse document order (nearest first).
func (d *Document) PrecedingSiblings(id int) *IDIter {
	sibs := d.Siblings(id)
	for i, s := range sibs {
		if s == id {
			rev := make([]int, i)
			for j := 0; j < i; j++ {
				rev[j] = sibs[i-1-j]
			}
			return newIDIter(rev)
		}
	}
	return newIDIter(nil)
}

// nextElementSibling returns the first element-kind sibling strictly
// after id, if any.
func (d *Document) nextElementSibling(id int) (int, bool) {
	it := d.FollowingSiblings(id)
	for next, ok := it.Next(); ok; next, ok = it.Next() {
		if k, err := d.Kind(next); err == nil && k == KindElement {
			return next, true
		}
	}
	return 0, false
}

// followingElementSiblings returns every element-kind sibling strictly
// after id, in document order.
func (d *Document) followingElementSiblings(id int) []int {
	var out []int
	it := d.FollowingSiblings(id)
	for next, ok := it.Next(); ok; next, ok = it.Next() {
		if k, err := d.Kind(next); err == nil && k == KindElement {
			out = append(out, next)
		}
	}
	return out
}
