package ooxml

import (
	"bytes"
	"encoding/xml"
	"io"
)

// Span locates an element inside a part by byte offsets.
// For a self-closing element InnerStart == InnerEnd == End.
type Span struct {
	Start, InnerStart, InnerEnd, End int64
}

// SelfClosing reports whether the element had no separate end tag.
func (s Span) SelfClosing() bool { return s.InnerStart == s.End }

// FindElement returns the span of the first element whose local name matches.
func FindElement(data []byte, local string) (Span, bool, error) {
	dec := NewDecoder(bytes.NewReader(data))
	var (
		sp    Span
		depth int
		open  = -1
	)
	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return Span{}, false, nil
		}
		if err != nil {
			return Span{}, false, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if open < 0 && t.Name.Local == local {
				open = depth
				sp.Start = before
				sp.InnerStart = dec.InputOffset()
			}
		case xml.EndElement:
			if depth == open {
				sp.InnerEnd = before
				sp.End = dec.InputOffset()
				return sp, true, nil
			}
			depth--
		}
	}
}

// Splice replaces data[start:end] with repl.
func Splice(data []byte, start, end int64, repl []byte) []byte {
	out := make([]byte, 0, int64(len(data))-(end-start)+int64(len(repl)))
	out = append(out, data[:start]...)
	out = append(out, repl...)
	return append(out, data[end:]...)
}

// AppendChild inserts child as the last child of the element at sp.
// A self-closing element is expanded using its tag name.
func AppendChild(data []byte, sp Span, child []byte) []byte {
	if !sp.SelfClosing() {
		return Splice(data, sp.InnerEnd, sp.InnerEnd, child)
	}
	name := tagName(data[sp.Start:sp.End])
	raw := bytes.TrimSuffix(bytes.TrimSpace(data[sp.Start:sp.End]), []byte("/>"))
	var b bytes.Buffer
	b.Write(raw)
	b.WriteByte('>')
	b.Write(child)
	b.WriteString("</")
	b.Write(name)
	b.WriteByte('>')
	return Splice(data, sp.Start, sp.End, b.Bytes())
}

// tagName extracts the qualified name from a raw start tag such as <p:sldIdLst/>.
func tagName(raw []byte) []byte {
	raw = bytes.TrimPrefix(bytes.TrimSpace(raw), []byte("<"))
	end := bytes.IndexAny(raw, " \t\r\n/>")
	if end < 0 {
		return raw
	}
	return raw[:end]
}

// Prefix returns the namespace prefix used by a raw start tag, or "".
func Prefix(raw []byte) string {
	name := tagName(raw)
	if i := bytes.IndexByte(name, ':'); i >= 0 {
		return string(name[:i])
	}
	return ""
}
