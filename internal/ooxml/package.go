// Package ooxml holds the zip and XML plumbing shared by the docx and pptx readers.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"golang.org/x/net/html/charset"
)

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// External reports whether the target lives outside the package.
func (r Relationship) External() bool { return strings.EqualFold(r.TargetMode, "External") }

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr,omitempty"`
	Items   []Relationship `xml:"Relationship"`
}

const relsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"

// SetRels writes the relationship part that belongs to source.
func (p *Package) SetRels(source string, rels []Relationship) error {
	b, err := xml.Marshal(relationships{Xmlns: relsNamespace, Items: rels})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", RelsName(source), err)
	}
	p.SetPart(RelsName(source), append([]byte(xml.Header), b...))
	return nil
}

// NextRelID returns an rId not used by rels.
func NextRelID(rels []Relationship) string {
	used := make(map[string]bool, len(rels))
	for _, r := range rels {
		used[r.ID] = true
	}
	for i := len(rels) + 1; ; i++ {
		id := fmt.Sprintf("rId%d", i)
		if !used[id] {
			return id
		}
	}
}

// Package is an in-memory office package keyed by part name (no leading slash).
type Package struct {
	parts map[string][]byte
	order []string
}

// ReadPackage loads every part of a zip archive.
func ReadPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}
	p := &Package{parts: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		p.parts[f.Name] = b
		p.order = append(p.order, f.Name)
	}
	return p, nil
}

// Part returns the bytes of a part.
func (p *Package) Part(name string) ([]byte, bool) {
	b, ok := p.parts[strings.TrimPrefix(name, "/")]
	return b, ok
}

// SetPart adds or replaces a part.
func (p *Package) SetPart(name string, data []byte) {
	name = strings.TrimPrefix(name, "/")
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = data
}

// Names lists part names with the given prefix, sorted.
func (p *Package) Names(prefix string) []string {
	var out []string
	for name := range p.parts {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Bytes serializes the package, keeping the original part order.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.order {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", name, err)
		}
		if _, err := w.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("write part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Rels parses the relationship part that belongs to source, e.g. word/document.xml.
func (p *Package) Rels(source string) ([]Relationship, error) {
	b, ok := p.Part(RelsName(source))
	if !ok {
		return nil, nil
	}
	var rs relationships
	if err := NewDecoder(bytes.NewReader(b)).Decode(&rs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", RelsName(source), err)
	}
	return rs.Items, nil
}

// RelsName returns the .rels part name of source.
func RelsName(source string) string {
	dir, file := path.Split(source)
	return path.Join(dir, "_rels", file+".rels")
}

// ResolveTarget resolves a relationship target against its source part.
func ResolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(source), target))
}

// RelativeTarget is the inverse of ResolveTarget for parts in sibling directories.
func RelativeTarget(source, part string) string {
	from := strings.Split(path.Dir(source), "/")
	to := strings.Split(part, "/")
	i := 0
	for i < len(from) && i < len(to)-1 && from[i] == to[i] {
		i++
	}
	var b strings.Builder
	for j := i; j < len(from); j++ {
		if from[j] == "." || from[j] == "" {
			continue
		}
		b.WriteString("../")
	}
	b.WriteString(strings.Join(to[i:], "/"))
	return b.String()
}

// NewDecoder returns an XML decoder that tolerates non-UTF-8 declarations.
func NewDecoder(r io.Reader) *xml.Decoder {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel
	return d
}

// Attr returns the value of the attribute with the given local name.
func Attr(el xml.StartElement, local string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Escape escapes text for use in element content or attributes.
func Escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
