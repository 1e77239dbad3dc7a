package meeseeks

import "strings"

// voidElements is the HTML5 set of elements that never have a closing
// tag or children, consulted by the serializer's writeElement.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// HTML serializes r's node and its descendants back to markup.
func (r Result) HTML() string {
	var b strings.Builder
	writeNode(r.Doc, r.ID, &b)
	return b.String()
}

func writeNode(doc *Document, id int, b *strings.Builder) {
	k, err := doc.Kind(id)
	if err != nil {
		return
	}
	switch k {
	case KindText:
		writeEscapedText(doc.Content(id), b)
	case KindComment:
		b.WriteString("<!--")
		b.WriteString(doc.Content(id))
		b.WriteString("-->")
	case KindPI:
		b.WriteString("<?")
		b.WriteString(doc.PITarget(id))
		if c := doc.Content(id); c != "" {
			b.WriteByte(' ')
			b.WriteString(c)
		}
		b.WriteString("?>")
	case KindDoctype:
		name, public, system := doc.Doctype(id)
		b.WriteString("<!DOCTYPE ")
		b.WriteString(name)
		switch {
		case public != "":
			b.WriteString(` PUBLIC "`)
			b.WriteString(public)
			b.WriteByte('"')
			if system != "" {
				b.WriteString(` "`)
				b.WriteString(system)
				b.WriteByte('"')
			}
		case system != "":
			b.WriteString(` SYSTEM "`)
			b.WriteString(system)
			b.WriteByte('"')
		}
		b.WriteByte('>')
	case KindData:
		if doc.DataSubtype(id) == DataCDATA {
			b.WriteString("<![CDATA[")
			b.WriteString(stripCDATAMarkers(doc.Content(id)))
			b.WriteString("]]>")
		} else {
			b.WriteString(doc.Content(id))
		}
	case KindElement:
		writeElement(doc, id, b)
	}
}

func writeElement(doc *Document, id int, b *strings.Builder) {
	tag := doc.Tag(id)
	b.WriteByte('<')
	b.WriteString(tag)
	for _, a := range doc.Attrs(id) {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		writeEscapedAttr(a.Value, b)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if !doc.IsXML() && voidElements[strings.ToLower(tag)] {
		return
	}
	for _, c := range doc.Children(id) {
		writeNode(doc, c, b)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

func writeEscapedText(s string, b *strings.Builder) {
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
}

func writeEscapedAttr(s string, b *strings.Builder) {
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
}
