package meeseeks

import (
	"errors"
	"strings"
	"testing"
)

// Table-driven selector tests: a markup fragment, a selector, and the
// expected matches' opening tags.

type cssTest struct {
	markup, selector string
	want             []string
}

func openTag(r Result) string {
	if r.Kind() != KindElement {
		return ""
	}
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(r.Tag())
	for _, a := range r.Attrs() {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(a.Value)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	return b.String()
}

var cssTests = []cssTest{
	{
		`<body><address>This address...</address></body>`,
		"address",
		[]string{"<address>"},
	},
	{
		`<p id="foo"><p id="bar">`,
		"#foo",
		[]string{`<p id="foo">`},
	},
	{
		`<ul><li id="t1"><p id="t1">`,
		"li#t1",
		[]string{`<li id="t1">`},
	},
	{
		`<ul><li class="t1"><li class="t2">`,
		".t1",
		[]string{`<li class="t1">`},
	},
	{
		`<p class="t1 t2">`,
		"p.t1.t2",
		[]string{`<p class="t1 t2">`},
	},
	{
		`<div class="test">`,
		"div.teST",
		nil,
	},
	{
		`<p><p title="title">`,
		"p[title]",
		[]string{`<p title="title">`},
	},
	{
		`<address><address title="foo"><address title="bar">`,
		`address[title="foo"]`,
		[]string{`<address title="foo">`},
	},
	{
		`<p title="tot foo bar">`,
		`[title~=foo]`,
		[]string{`<p title="tot foo bar">`},
	},
	{
		`<p lang="en-us">`,
		`[lang|=en]`,
		[]string{`<p lang="en-us">`},
	},
	{
		`<p value="foobarbaz">`,
		`[value^=foo]`,
		[]string{`<p value="foobarbaz">`},
	},
	{
		`<p value="foobarbaz">`,
		`[value$=baz]`,
		[]string{`<p value="foobarbaz">`},
	},
	{
		`<p value="foobarbaz">`,
		`[value*=arba]`,
		[]string{`<p value="foobarbaz">`},
	},
	{
		`<p value="foo">`,
		`[value!=bar]`,
		[]string{`<p value="foo">`},
	},
	{
		`<div><p id="a"><p id="b"></div>`,
		"div > p",
		[]string{`<p id="a">`, `<p id="b">`},
	},
	{
		`<div><p id="a"><span><p id="b"></span></div>`,
		"div p",
		[]string{`<p id="a">`, `<p id="b">`},
	},
	{
		`<p id="a"><p id="b"><p id="c">`,
		"#a + p",
		[]string{`<p id="b">`},
	},
	{
		`<p id="a"><p id="b"><p id="c">`,
		"#a ~ p",
		[]string{`<p id="b">`, `<p id="c">`},
	},
	{
		`<ul><li>one<li>two<li>three</ul>`,
		"li:first-child",
		[]string{`<li>`},
	},
	{
		`<ul><li>one<li>two<li>three</ul>`,
		"li:last-child",
		[]string{`<li>`},
	},
	{
		`<ul><li>one</ul>`,
		"li:only-child",
		[]string{`<li>`},
	},
	{
		`<ul><li>one<li>two<li>three<li>four</ul>`,
		"li:nth-child(2n)",
		[]string{`<li>`, `<li>`},
	},
	{
		`<ul><li>one<li>two<li>three</ul>`,
		"li:nth-child(odd)",
		[]string{`<li>`, `<li>`},
	},
	{
		`<div><p id="a">text</p><p id="b"></p></div>`,
		"p:empty",
		[]string{`<p id="b">`},
	},
	{
		`<ul><li class="a">one<li class="b">two</ul>`,
		"li:not(.a)",
		[]string{`<li class="b">`},
	},
	{
		`<div id="a"><p>hi</p></div><div id="b"></div>`,
		"div:has(p)",
		[]string{`<div id="a">`},
	},
	{
		`<p>Hello, World!</p><p>Goodbye</p>`,
		`p:contains("world")`,
		[]string{`<p>`},
	},
	{
		`<html><body><p>x</p></body></html>`,
		":root",
		[]string{`<html>`},
	},
	{
		// The universal selector matches elements only, never text or
		// comment nodes.
		`<p>text<!--comment--></p>`,
		"p *",
		nil,
	},
	{
		`<div id="a"><span><p>deep</p></span></div><div id="b"><p>direct</p></div>`,
		"div:has(> span p)",
		[]string{`<div id="a">`},
	},
}

func TestCSS(t *testing.T) {
	for _, test := range cssTests {
		doc, err := ParseHTML(test.markup)
		if err != nil {
			t.Errorf("ParseHTML(%q): %v", test.markup, err)
			continue
		}
		query, err := CompileCSS(test.selector)
		if err != nil {
			t.Errorf("CompileCSS(%q): %v", test.selector, err)
			continue
		}
		results, err := All(FromDocument(doc), []Query{query}, nil)
		if err != nil {
			t.Errorf("All(%q, %q): %v", test.markup, test.selector, err)
			continue
		}
		var got []string
		for _, r := range results {
			got = append(got, openTag(r))
		}
		if !equalStrings(got, test.want) {
			t.Errorf("CompileCSS(%q) on %q:\n got  %v\n want %v", test.selector, test.markup, got, test.want)
		}
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCSSSyntaxError(t *testing.T) {
	for _, selector := range []string{
		"[foo",
		"div::",
		":not(",
	} {
		_, err := CompileCSS(selector)
		if err == nil {
			t.Errorf("CompileCSS(%q): expected an error, got nil", selector)
			continue
		}
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("CompileCSS(%q): got %T, want *SyntaxError", selector, err)
		}
	}
}

func TestCSSValidationError(t *testing.T) {
	cases := []struct {
		selector string
		reason   ValidationReason
	}{
		{"p:unknown-pseudo", ReasonUnknownPseudoClass},
		{"li:last-of-type(2)", ReasonBadArgs},
		{"li:only-child(1)", ReasonBadArgs},
		{"li:nth-child(foo)", ReasonBadNth},
	}
	for _, c := range cases {
		_, err := CompileCSS(c.selector)
		if err == nil {
			t.Errorf("CompileCSS(%q): expected an error, got nil", c.selector)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("CompileCSS(%q): got %T (%v), want *ValidationError", c.selector, err, err)
			continue
		}
		if verr.Reason != c.reason {
			t.Errorf("CompileCSS(%q): reason %q, want %q", c.selector, verr.Reason, c.reason)
		}
	}
}
