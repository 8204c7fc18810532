package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ContentTypesPart lists the media type of every part.
const ContentTypesPart = "[Content_Types].xml"

// AddOverride registers a content type for one part unless it is already registered.
func (p *Package) AddOverride(part, contentType string) error {
	name := "/" + strings.TrimPrefix(part, "/")
	return p.addContentType("Override", "PartName", name, contentType, func(v string) bool { return v == name })
}

// AddDefault registers a content type for a file extension unless it is already registered.
func (p *Package) AddDefault(ext, contentType string) error {
	return p.addContentType("Default", "Extension", ext, contentType, func(v string) bool { return strings.EqualFold(v, ext) })
}

func (p *Package) addContentType(elem, key, value, contentType string, match func(string) bool) error {
	data, ok := p.Part(ContentTypesPart)
	if !ok {
		return fmt.Errorf("%s not found in package", ContentTypesPart)
	}
	dec := NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", ContentTypesPart, err)
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == elem {
			if v, ok := Attr(el, key); ok && match(v) {
				return nil
			}
		}
	}
	root, ok, err := FindElement(data, "Types")
	if err != nil {
		return fmt.Errorf("parse %s: %w", ContentTypesPart, err)
	}
	if !ok {
		return fmt.Errorf("%s has no Types element", ContentTypesPart)
	}
	child := fmt.Sprintf(`<%s %s="%s" ContentType="%s"/>`, elem, key, Escape(value), Escape(contentType))
	p.SetPart(ContentTypesPart, AppendChild(data, root, []byte(child)))
	return nil
}

// Binds reports whether the root element of data binds prefix to ns.
func Binds(data []byte, prefix, ns string) bool {
	dec := NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.RawToken()
		if err != nil {
			return false
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, a := range el.Attr {
			if a.Name.Space == "xmlns" && a.Name.Local == prefix {
				return a.Value == ns
			}
		}
		return false
	}
}
