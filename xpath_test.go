package meeseeks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xpathTexts(t *testing.T, markup, expr string) []string {
	t.Helper()
	doc, err := ParseHTML(markup)
	require.NoError(t, err)
	q, err := CompileXPath(expr)
	require.NoError(t, err)
	results, err := All(FromDocument(doc), []Query{q}, nil)
	require.NoError(t, err)
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text()
	}
	return out
}

// A positional predicate: //li[2] selects the second li.
func TestXPathPositionalPredicate(t *testing.T) {
	got := xpathTexts(t, `<ul><li>a<li>b<li>c</ul>`, "//li[2]")
	assert.Equal(t, []string{"b"}, got)
}

// An attribute-equality predicate.
func TestXPathAttributePredicate(t *testing.T) {
	doc, err := ParseHTML(`<a x="1"><b x="2"></b><b x="3"></b></a>`)
	require.NoError(t, err)
	q, err := CompileXPath(`//b[@x="3"]`)
	require.NoError(t, err)
	r, err := One(FromDocument(doc), []Query{q}, nil)
	require.NoError(t, err)
	require.NotNil(t, r)
	val, ok := r.Attr("x")
	assert.True(t, ok)
	assert.Equal(t, "3", val)
}

func TestXPathAxes(t *testing.T) {
	markup := `<div id="root"><p id="a">1</p><p id="b">2</p><p id="c">3</p></div>`

	got := xpathTexts(t, markup, "//p[1]/following-sibling::p")
	assert.Equal(t, []string{"2", "3"}, got)

	got = xpathTexts(t, markup, "//p[3]/preceding-sibling::p")
	assert.Equal(t, []string{"1", "2"}, got)

	got = xpathTexts(t, markup, `//*[@id="b"]/parent::div`)
	assert.Len(t, got, 1)
}

func TestXPathFunctions(t *testing.T) {
	markup := `<ul><li>a</li><li>b</li><li>c</li></ul>`

	doc, err := ParseHTML(markup)
	require.NoError(t, err)

	q, err := CompileXPath("count(//li)")
	require.NoError(t, err)
	_, err = All(FromDocument(doc), []Query{q}, nil)
	assert.Error(t, err, "count() returns a number, not a node-set")

	got := xpathTexts(t, markup, `//li[position()=last()]`)
	assert.Equal(t, []string{"c"}, got)

	got = xpathTexts(t, markup, `//li[contains(text(), "b")]`)
	assert.Equal(t, []string{"b"}, got)

	got = xpathTexts(t, markup, `//*[starts-with(name(), "l")]`)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

// XPath "|" union is idempotent.
func TestXPathUnionIdempotence(t *testing.T) {
	markup := `<div><p>1</p><p>2</p></div>`
	got := xpathTexts(t, markup, "//p | //p")
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestXPathUnionOfDistinctSteps(t *testing.T) {
	markup := `<div><h1>Title</h1><p>body</p></div>`
	got := xpathTexts(t, markup, "//h1 | //p")
	assert.Equal(t, []string{"Title", "body"}, got)
}

func TestXPathNodeTests(t *testing.T) {
	doc, err := ParseHTML(`<div><!--note-->text<span>x</span></div>`)
	require.NoError(t, err)

	q, err := CompileXPath("//div/comment()")
	require.NoError(t, err)
	results, err := All(FromDocument(doc), []Query{q}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KindComment, results[0].Kind())

	q, err = CompileXPath("//div/text()")
	require.NoError(t, err)
	results, err = All(FromDocument(doc), []Query{q}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "text", results[0].Text())
}

func TestXPathAnchoredAtResult(t *testing.T) {
	doc, err := ParseHTML(`<div id="a"><p>x</p></div><div id="b"><p>y</p></div>`)
	require.NoError(t, err)

	a, err := One(FromDocument(doc), []Query{MustCompileCSS(`#a`)}, nil)
	require.NoError(t, err)
	require.NotNil(t, a)

	q, err := CompileXPath("//p")
	require.NoError(t, err)
	results, err := All(FromResult(*a), []Query{q}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "x", results[0].Text())
}

func TestXPathSyntaxError(t *testing.T) {
	_, err := CompileXPath("//li[")
	require.Error(t, err)
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, GrammarXPath, synErr.Grammar)
}

func TestXPathTypeErrorOnScalarResult(t *testing.T) {
	doc, err := ParseHTML(`<p>x</p>`)
	require.NoError(t, err)
	q, err := CompileXPath("1 + 1")
	require.NoError(t, err)
	_, err = All(FromDocument(doc), []Query{q}, nil)
	require.Error(t, err)
	var typeErr *XPathTypeError
	assert.ErrorAs(t, err, &typeErr)
}
