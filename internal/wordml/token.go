package wordml

import (
	"bytes"
	"encoding/xml"
)

// Raw-token serialization. Tokens come from Decoder.RawToken, so names
// keep their prefixes (Space holds the prefix, not a URL) and can be
// written back exactly as they appeared. Self-closing tags round-trip as
// an open/close pair, which is equivalent XML.

func rawName(n xml.Name) string {
	if n.Space != "" {
		return n.Space + ":" + n.Local
	}
	return n.Local
}

func writeStart(buf *bytes.Buffer, name string, attrs []xml.Attr) {
	buf.WriteByte('<')
	buf.WriteString(name)
	for _, a := range attrs {
		buf.WriteByte(' ')
		buf.WriteString(rawName(a.Name))
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	buf.WriteByte('>')
}

func writeEnd(buf *bytes.Buffer, name string) {
	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
}

// writeEmpty writes a childless element as an open/close pair.
func writeEmpty(buf *bytes.Buffer, name string, attrs []xml.Attr) {
	writeStart(buf, name, attrs)
	writeEnd(buf, name)
}

// echoToken writes any raw token back out unchanged.
func echoToken(buf *bytes.Buffer, tok xml.Token) {
	switch t := tok.(type) {
	case xml.StartElement:
		writeStart(buf, rawName(t.Name), t.Attr)
	case xml.EndElement:
		writeEnd(buf, rawName(t.Name))
	case xml.CharData:
		xml.EscapeText(buf, t)
	case xml.Comment:
		buf.WriteString("<!--")
		buf.Write(t)
		buf.WriteString("-->")
	case xml.ProcInst:
		buf.WriteString("<?")
		buf.WriteString(t.Target)
		buf.WriteByte(' ')
		buf.Write(t.Inst)
		buf.WriteString("?>")
	case xml.Directive:
		buf.WriteString("<!")
		buf.Write(t)
		buf.WriteByte('>')
	}
}

// wAttr builds a w-prefixed attribute.
func wAttr(local, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Space: "w", Local: local}, Value: value}
}

// keepAttrs copies attrs, dropping the named locals (prefix-insensitive).
func keepAttrs(attrs []xml.Attr, drop ...string) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs))
	for _, a := range attrs {
		dropped := false
		for _, d := range drop {
			if a.Name.Local == d {
				dropped = true
				break
			}
		}
		if !dropped {
			out = append(out, a)
		}
	}
	return out
}

func isWhitespace(t xml.CharData) bool {
	for _, b := range t {
		switch b {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
