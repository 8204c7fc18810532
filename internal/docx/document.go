// Package docx reads the paragraph structure of a Word document.
package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/ooxml"
)

const documentPart = "word/document.xml"

// Style is the coarse style tag of a paragraph.
type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleHeading
	StyleOther
)

func (s Style) String() string {
	switch s {
	case StyleTitle:
		return "Title"
	case StyleHeading:
		return "Heading"
	case StyleBody:
		return "Body"
	default:
		return "Other"
	}
}

// ImageRef anchors an embedded picture to its paragraph.
type ImageRef struct {
	RelID    string
	Floating bool
	// Offset is the byte offset of the picture reference in the document part.
	Offset int64
}

// Paragraph is one top-level body paragraph.
type Paragraph struct {
	Index     int
	Text      string
	Style     Style
	Level     int
	StyleName string
	Images    []ImageRef
}

// HeadingLevel returns N for "Heading N" paragraphs and 0 otherwise.
func (p Paragraph) HeadingLevel() int {
	if p.Style != StyleHeading {
		return 0
	}
	return p.Level
}

// Document is a parsed .docx package.
type Document struct {
	paragraphs []Paragraph
	rels       map[string]ooxml.Relationship
	pkg        *ooxml.Package
}

// Open reads a .docx file from disk.
func Open(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Config("open document", err, "cannot read %s", path)
	}
	return Parse(b)
}

// Parse reads a .docx package held in memory.
func Parse(data []byte) (*Document, error) {
	pkg, err := ooxml.ReadPackage(data)
	if err != nil {
		return nil, err
	}
	body, ok := pkg.Part(documentPart)
	if !ok {
		return nil, fmt.Errorf("%s not found in package", documentPart)
	}
	names, err := readStyleNames(pkg)
	if err != nil {
		return nil, err
	}
	paras, err := readParagraphs(bytes.NewReader(body), names)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}
	rels, err := pkg.Rels(documentPart)
	if err != nil {
		return nil, err
	}
	doc := &Document{paragraphs: paras, rels: make(map[string]ooxml.Relationship, len(rels)), pkg: pkg}
	for _, r := range rels {
		doc.rels[r.ID] = r
	}
	return doc, nil
}

// Paragraphs returns the body paragraphs in document order.
func (d *Document) Paragraphs() []Paragraph { return d.paragraphs }

// Image resolves an image reference to its bytes and file extension.
func (d *Document) Image(ref ImageRef) ([]byte, string, error) {
	rel, ok := d.rels[ref.RelID]
	if !ok {
		return nil, "", apperr.Resource("resolve image", nil, "relationship %s not found", ref.RelID)
	}
	if rel.External() {
		return nil, "", apperr.Resource("resolve image", nil, "relationship %s points outside the document (%s)", ref.RelID, rel.Target)
	}
	part := ooxml.ResolveTarget(documentPart, rel.Target)
	b, ok := d.pkg.Part(part)
	if !ok {
		return nil, "", apperr.Resource("resolve image", nil, "part %s for relationship %s is missing", part, ref.RelID)
	}
	ext := ""
	if i := strings.LastIndex(part, "."); i >= 0 {
		ext = strings.ToLower(part[i+1:])
	}
	return b, ext, nil
}

var headingRe = regexp.MustCompile(`(?i)^heading\s*(\d+)$`)

// Classify maps a style display name to a style tag and heading level.
func Classify(name string) (Style, int) {
	n := strings.TrimSpace(name)
	if strings.EqualFold(n, "title") {
		return StyleTitle, 0
	}
	if m := headingRe.FindStringSubmatch(n); m != nil {
		if lvl, err := strconv.Atoi(m[1]); err == nil && lvl >= 1 {
			return StyleHeading, lvl
		}
	}
	lower := strings.ToLower(n)
	if lower == "" || lower == "normal" || strings.Contains(lower, "body") {
		return StyleBody, 0
	}
	return StyleOther, 0
}

type styleNames struct {
	byID     map[string]string
	fallback string
}

func (s styleNames) name(id string) string {
	if id == "" {
		return s.fallback
	}
	if n, ok := s.byID[id]; ok {
		return n
	}
	return id
}

func readStyleNames(pkg *ooxml.Package) (styleNames, error) {
	out := styleNames{byID: map[string]string{}, fallback: "Normal"}
	b, ok := pkg.Part("word/styles.xml")
	if !ok {
		return out, nil
	}
	var doc struct {
		Styles []struct {
			Type    string `xml:"type,attr"`
			ID      string `xml:"styleId,attr"`
			Default string `xml:"default,attr"`
			Name    struct {
				Val string `xml:"val,attr"`
			} `xml:"name"`
		} `xml:"style"`
	}
	if err := ooxml.NewDecoder(bytes.NewReader(b)).Decode(&doc); err != nil {
		return out, fmt.Errorf("parse word/styles.xml: %w", err)
	}
	for _, s := range doc.Styles {
		if s.Type != "" && s.Type != "paragraph" {
			continue
		}
		name := s.Name.Val
		if name == "" {
			name = s.ID
		}
		out.byID[s.ID] = name
		if s.Default == "1" || s.Default == "true" {
			out.fallback = name
		}
	}
	return out, nil
}

// readParagraphs walks the body token stream and keeps only direct w:p children of w:body.
func readParagraphs(r io.Reader, names styleNames) ([]Paragraph, error) {
	dec := ooxml.NewDecoder(r)
	var (
		out       []Paragraph
		depth     int
		bodyDepth = -1
		cur       *paraBuilder
		paraDepth int
	)
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case t.Name.Local == "body" && bodyDepth < 0:
				bodyDepth = depth
			case t.Name.Local == "p" && cur == nil && depth == bodyDepth+1:
				cur = &paraBuilder{}
				paraDepth = depth
			case cur != nil:
				cur.start(t, offset)
			}
		case xml.EndElement:
			if cur != nil {
				if depth == paraDepth && t.Name.Local == "p" {
					out = append(out, cur.build(len(out), names))
					cur = nil
				} else {
					cur.end(t)
				}
			}
			depth--
		case xml.CharData:
			if cur != nil {
				cur.chars(t)
			}
		}
	}
	return out, nil
}

type paraBuilder struct {
	styleID  string
	buf      strings.Builder
	inText   bool
	props    int
	drawings int
	floating []bool
	images   []ImageRef
}

func (b *paraBuilder) start(el xml.StartElement, offset int64) {
	switch el.Name.Local {
	case "pPr", "rPr":
		b.props++
	case "pStyle":
		if v, ok := ooxml.Attr(el, "val"); ok {
			b.styleID = v
		}
	case "t":
		b.inText = true
	case "tab":
		if b.drawings == 0 && b.props == 0 {
			b.buf.WriteByte('\t')
		}
	case "br", "cr":
		if b.drawings == 0 {
			b.buf.WriteByte('\n')
		}
	case "drawing":
		b.drawings++
	case "inline":
		if b.drawings > 0 {
			b.floating = append(b.floating, false)
		}
	case "anchor":
		if b.drawings > 0 {
			b.floating = append(b.floating, true)
		}
	case "blip":
		if b.drawings == 0 {
			return
		}
		id, ok := ooxml.Attr(el, "embed")
		if !ok || id == "" {
			return
		}
		floating := len(b.floating) > 0 && b.floating[len(b.floating)-1]
		b.images = append(b.images, ImageRef{RelID: id, Floating: floating, Offset: offset})
	}
}

func (b *paraBuilder) end(el xml.EndElement) {
	switch el.Name.Local {
	case "pPr", "rPr":
		b.props--
	case "t":
		b.inText = false
	case "drawing":
		if b.drawings > 0 {
			b.drawings--
		}
	case "inline", "anchor":
		if b.drawings > 0 && len(b.floating) > 0 {
			b.floating = b.floating[:len(b.floating)-1]
		}
	}
}

func (b *paraBuilder) chars(cd xml.CharData) {
	if b.inText && b.drawings == 0 {
		b.buf.Write(cd)
	}
}

func (b *paraBuilder) build(index int, names styleNames) Paragraph {
	name := names.name(b.styleID)
	style, level := Classify(name)
	return Paragraph{
		Index:     index,
		Text:      strings.TrimSpace(b.buf.String()),
		Style:     style,
		Level:     level,
		StyleName: name,
		Images:    b.images,
	}
}
