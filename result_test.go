package meeseeks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstResult(t *testing.T, markup, selector string) Result {
	t.Helper()
	doc, err := ParseHTML(markup)
	require.NoError(t, err)
	r, err := One(FromDocument(doc), []Query{MustCompileCSS(selector)}, nil)
	require.NoError(t, err)
	require.NotNil(t, r)
	return *r
}

func TestResultTextVsOwnText(t *testing.T) {
	r := firstResult(t, `<div>Hello, <b>World!</b></div>`, "div")
	assert.Equal(t, "Hello, World!", r.Text())
	assert.Equal(t, "Hello,", r.OwnText())
}

// Whitespace runs collapse to a single space; ends are trimmed.
func TestResultTextCollapsesWhitespace(t *testing.T) {
	r := firstResult(t, "<p>  a\n\tb   c  </p>", "p")
	assert.Equal(t, "a b c", r.Text())
}

func TestResultData(t *testing.T) {
	r := firstResult(t, `<script id="x">Hi</script>`, "#x")
	data, ok := r.Data()
	assert.True(t, ok)
	assert.Equal(t, "Hi", data)
}

// CDATA detection in Data() is substring-based and tolerant of an
// unterminated section. HTML5 parsers lower "<![CDATA[...]]>" into a
// comment whose content is the literal "[CDATA[...]]" text; Data()
// reproduces that here via a comment constructed with the same shape.
func TestResultDataCDATAUnterminatedQuirk(t *testing.T) {
	r := firstResult(t, `<div><!--[CDATA[ a ]] stray ]]--></div>`, "div")

	comment, err := One(FromResult(r), []Query{AsQuery(NodeKindSelector{Kinds: []NodeKind{KindComment}})}, nil)
	require.NoError(t, err)
	require.NotNil(t, comment)

	data, ok := comment.Data()
	assert.True(t, ok)
	assert.Equal(t, " a ]] stray ", data, "markers stripped without validating nesting")
}

func TestResultDataOnPlainComment(t *testing.T) {
	r := firstResult(t, `<div><!-- just a note --></div>`, "div")
	comment, err := One(FromResult(r), []Query{AsQuery(NodeKindSelector{Kinds: []NodeKind{KindComment}})}, nil)
	require.NoError(t, err)
	require.NotNil(t, comment)

	data, ok := comment.Data()
	assert.True(t, ok)
	assert.Equal(t, "just a note", data)
}

func TestResultDataset(t *testing.T) {
	r := firstResult(t, `<div data-x-val="1" data-y-val="2"></div>`, "div")
	assert.Equal(t, map[string]string{"xVal": "1", "yVal": "2"}, r.Dataset())
}

func TestResultDatasetIgnoresInvalidSuffixes(t *testing.T) {
	doc, err := Build(&TupleElement{
		Tag: "div",
		Attrs: []Attribute{
			{Name: "data-ok-one", Value: "1"},
			{Name: "data-Bad", Value: "2"},
			{Name: "data-under_score", Value: "3"},
			{Name: "data-", Value: "4"},
			{Name: "plain", Value: "5"},
		},
	}, true)
	require.NoError(t, err)

	r := Result{Doc: doc, ID: 0}
	assert.Equal(t, map[string]string{"okOne": "1"}, r.Dataset())
}

func TestResultDatasetAbsentForNonElements(t *testing.T) {
	r := firstResult(t, `<div>text</div>`, "div")
	text, err := One(FromResult(r), []Query{AsQuery(NodeKindSelector{Kinds: []NodeKind{KindText}})}, nil)
	require.NoError(t, err)
	require.NotNil(t, text)
	assert.Nil(t, text.Dataset())
}

// Attribute name comparison is case-insensitive in HTML,
// case-sensitive in XML.
func TestResultAttrCaseSensitivity(t *testing.T) {
	html := firstResult(t, `<div DATA-Foo="bar"></div>`, "div")
	v, ok := html.Attr("data-foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", v)

	xmlDoc, err := ParseXML(`<root Data-Foo="bar"></root>`)
	require.NoError(t, err)
	r, err := One(FromDocument(xmlDoc), []Query{MustCompileCSS("root")}, nil)
	require.NoError(t, err)
	require.NotNil(t, r)
	_, ok = r.Attr("data-foo")
	assert.False(t, ok, "XML attribute names are case-sensitive")
	v, ok = r.Attr("Data-Foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", v)
}

func TestResultTreeRoundTrip(t *testing.T) {
	r := firstResult(t, `<div id="a" class="b"><p>hi</p></div>`, "#a")
	tree := r.Tree()
	elem, ok := tree.(*TupleElement)
	require.True(t, ok)
	assert.Equal(t, "div", elem.Tag)
	require.Len(t, elem.Children, 1)
}

func TestResultHTMLDoctype(t *testing.T) {
	cases := []struct {
		name, public, system string
		want                 string
	}{
		{"html", "", "", "<!DOCTYPE html>"},
		{
			"html",
			"-//W3C//DTD HTML 4.01//EN",
			"http://www.w3.org/TR/html4/strict.dtd",
			`<!DOCTYPE html PUBLIC "-//W3C//DTD HTML 4.01//EN" "http://www.w3.org/TR/html4/strict.dtd">`,
		},
		{
			"html",
			"",
			"about:legacy-compat",
			`<!DOCTYPE html SYSTEM "about:legacy-compat">`,
		},
	}
	for _, c := range cases {
		doc, err := Build(&TupleElement{Tag: SentinelDoctype, Attrs: []Attribute{
			{Name: "name", Value: c.name},
			{Name: "public", Value: c.public},
			{Name: "system", Value: c.system},
		}}, false)
		require.NoError(t, err)
		assert.Equal(t, c.want, Result{Doc: doc, ID: 0}.HTML())
	}
}

func TestResultHTMLVoidElement(t *testing.T) {
	r := firstResult(t, `<div><img src="x.png"></div>`, "div")
	assert.Equal(t, `<div><img src="x.png"></div>`, r.HTML())
}
