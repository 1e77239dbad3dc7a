package meeseeks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAssignsPreOrderIDs(t *testing.T) {
	tree := &TupleElement{
		Tag: "div",
		Children: []TupleNode{
			&TupleElement{Tag: "p", Children: []TupleNode{TupleText("a")}},
			&TupleElement{Tag: "p", Children: []TupleNode{TupleText("b")}},
		},
	}
	doc, err := Build(tree, false)
	require.NoError(t, err)
	assert.Equal(t, 5, doc.Len()) // div, p, text(a), p, text(b)
	assert.Equal(t, []int{0}, doc.RootIDs())
	assert.Equal(t, "div", doc.Tag(0))
	assert.Equal(t, "p", doc.Tag(1))
	assert.Equal(t, "a", doc.Content(2))
	assert.Equal(t, "p", doc.Tag(3))
	assert.Equal(t, "b", doc.Content(4))
}

func TestBuildLowercasesHTMLTagsButNotXML(t *testing.T) {
	tree := &TupleElement{Tag: "DIV"}

	html, err := Build(tree, false)
	require.NoError(t, err)
	assert.Equal(t, "div", html.Tag(0))

	xml, err := Build(&TupleElement{Tag: "DIV"}, true)
	require.NoError(t, err)
	assert.Equal(t, "DIV", xml.Tag(0))
}

func TestBuildScriptStyleBecomeDataNodes(t *testing.T) {
	tree := &TupleElement{
		Tag:      "script",
		Children: []TupleNode{TupleText("var x = 1;")},
	}
	doc, err := Build(tree, false)
	require.NoError(t, err)

	kids := doc.Children(0)
	require.Len(t, kids, 1)
	kind, err := doc.Kind(kids[0])
	require.NoError(t, err)
	assert.Equal(t, KindData, kind)
	assert.Equal(t, DataScript, doc.DataSubtype(kids[0]))
	assert.Equal(t, "var x = 1;", doc.Content(kids[0]))
}

func TestBuildSentinelTags(t *testing.T) {
	doctype := &TupleElement{Tag: SentinelDoctype, Attrs: []Attribute{{Name: "name", Value: "html"}}}
	doc, err := Build(doctype, false)
	require.NoError(t, err)
	kind, err := doc.Kind(0)
	require.NoError(t, err)
	assert.Equal(t, KindDoctype, kind)
	name, _, _ := doc.Doctype(0)
	assert.Equal(t, "html", name)
}

func TestBuildRejectsCycles(t *testing.T) {
	elem := &TupleElement{Tag: "div"}
	elem.Children = []TupleNode{elem} // self-reference

	_, err := Build(elem, false)
	require.Error(t, err)
	var malformed *MalformedTreeError
	assert.ErrorAs(t, err, &malformed)
}

func TestBuildRejectsInvalidShape(t *testing.T) {
	_, err := Build(nil, false)
	require.Error(t, err)
}

// Tree() of a built document reproduces the element structure of the
// tuple-tree it was built from.
func TestBuildTreeRoundTrip(t *testing.T) {
	tree := &TupleElement{
		Tag:   "div",
		Attrs: []Attribute{{Name: "id", Value: "a"}},
		Children: []TupleNode{
			&TupleElement{Tag: "p", Children: []TupleNode{TupleText("hi")}},
		},
	}
	doc, err := Build(tree, false)
	require.NoError(t, err)

	r := Result{Doc: doc, ID: 0}
	got, ok := r.Tree().(*TupleElement)
	require.True(t, ok)
	assert.Equal(t, "div", got.Tag)
	assert.Equal(t, tree.Attrs, got.Attrs)
	require.Len(t, got.Children, 1)
}
