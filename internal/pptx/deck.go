// Package pptx edits a PowerPoint template in place: slide text, speaker notes and pictures.
package pptx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/ooxml"
)

const (
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	relOfficeDocument = nsR + "/officeDocument"
	relSlide          = nsR + "/slide"
	relSlideLayout    = nsR + "/slideLayout"
	relNotesSlide     = nsR + "/notesSlide"
	relNotesMaster    = nsR + "/notesMaster"
	relTheme          = nsR + "/theme"
	relImage          = nsR + "/image"

	ctSlide       = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctNotesSlide  = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ctNotesMaster = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ctTheme       = "application/vnd.openxmlformats-officedocument.theme+xml"
)

// Deck is an opened presentation. Slides keep their template order; new slides are appended.
type Deck struct {
	pkg     *ooxml.Package
	pres    string
	slides  []*Slide
	layouts []string
	cx, cy  int64
}

// Open reads a template. A missing or unreadable template is a configuration error.
func Open(path string) (*Deck, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Config("open template", err, "cannot read template %s", path)
	}
	d, err := Parse(b)
	if err != nil {
		return nil, apperr.Config("open template", err, "%s is not a usable presentation", path)
	}
	return d, nil
}

// Parse reads a presentation package held in memory.
func Parse(data []byte) (*Deck, error) {
	pkg, err := ooxml.ReadPackage(data)
	if err != nil {
		return nil, err
	}
	d := &Deck{pkg: pkg, pres: "ppt/presentation.xml", cx: 9144000, cy: 6858000}
	rootRels, err := pkg.Rels("")
	if err != nil {
		return nil, err
	}
	for _, r := range rootRels {
		if r.Type == relOfficeDocument {
			d.pres = ooxml.ResolveTarget("", r.Target)
			break
		}
	}
	presXML, ok := pkg.Part(d.pres)
	if !ok {
		return nil, fmt.Errorf("%s not found in package", d.pres)
	}
	info, err := readPresentation(presXML)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", d.pres, err)
	}
	if info.cx > 0 && info.cy > 0 {
		d.cx, d.cy = info.cx, info.cy
	}
	rels, err := pkg.Rels(d.pres)
	if err != nil {
		return nil, err
	}
	byID := relMap(rels)
	for _, rid := range info.slides {
		r, ok := byID[rid]
		if !ok {
			return nil, fmt.Errorf("slide relationship %s not found", rid)
		}
		part := ooxml.ResolveTarget(d.pres, r.Target)
		b, ok := pkg.Part(part)
		if !ok {
			return nil, fmt.Errorf("slide part %s is missing", part)
		}
		if _, err := scanShapes(b); err != nil {
			return nil, fmt.Errorf("parse %s: %w", part, err)
		}
		d.slides = append(d.slides, &Slide{deck: d, part: part})
	}
	if len(info.masters) > 0 {
		if r, ok := byID[info.masters[0]]; ok {
			d.layouts, err = readLayouts(pkg, ooxml.ResolveTarget(d.pres, r.Target))
			if err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

// Len returns the number of slides.
func (d *Deck) Len() int { return len(d.slides) }

// Slide returns slide i (zero-based).
func (d *Deck) Slide(i int) *Slide { return d.slides[i] }

// Size returns the slide size in EMU.
func (d *Deck) Size() (cx, cy int64) { return d.cx, d.cy }

// Layouts returns the number of layouts of the first slide master.
func (d *Deck) Layouts() int { return len(d.layouts) }

// AddSlide appends a slide using layout i of the first master.
// Out-of-range layouts fall back to the nearest existing one.
func (d *Deck) AddSlide(layout int) (*Slide, error) {
	if len(d.layouts) == 0 {
		return nil, fmt.Errorf("template has no slide layouts")
	}
	if layout < 0 {
		layout = 0
	}
	if layout >= len(d.layouts) {
		layout = len(d.layouts) - 1
	}
	lpart := d.layouts[layout]
	lb, ok := d.pkg.Part(lpart)
	if !ok {
		return nil, fmt.Errorf("layout part %s is missing", lpart)
	}
	tree, err := scanShapes(lb)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", lpart, err)
	}

	part := d.nextPart("ppt/slides/slide%d.xml")
	d.pkg.SetPart(part, newSlideXML(tree.shapes))
	if err := d.pkg.SetRels(part, []ooxml.Relationship{{ID: "rId1", Type: relSlideLayout, Target: ooxml.RelativeTarget(part, lpart)}}); err != nil {
		return nil, err
	}
	if err := d.pkg.AddOverride(part, ctSlide); err != nil {
		return nil, err
	}
	rid, err := d.addPresentationRel(relSlide, part)
	if err != nil {
		return nil, err
	}
	if err := d.appendSlideID(rid); err != nil {
		return nil, err
	}
	s := &Slide{deck: d, part: part}
	d.slides = append(d.slides, s)
	return s, nil
}

// Bytes serializes the deck.
func (d *Deck) Bytes() ([]byte, error) { return d.pkg.Bytes() }

// Save writes the deck to path, creating its directory.
func (d *Deck) Save(path string) error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

func (d *Deck) nextPart(format string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf(format, i)
		if _, ok := d.pkg.Part(name); !ok {
			return name
		}
	}
}

func (d *Deck) addPresentationRel(typ, part string) (string, error) {
	rels, err := d.pkg.Rels(d.pres)
	if err != nil {
		return "", err
	}
	rid := ooxml.NextRelID(rels)
	rels = append(rels, ooxml.Relationship{ID: rid, Type: typ, Target: ooxml.RelativeTarget(d.pres, part)})
	return rid, d.pkg.SetRels(d.pres, rels)
}

func (d *Deck) appendSlideID(rid string) error {
	data, _ := d.pkg.Part(d.pres)
	info, err := readPresentation(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", d.pres, err)
	}
	id := info.maxSlideID + 1
	if id < 256 {
		id = 256
	}
	child := fmt.Sprintf(`<p:sldId%s id="%d" r:id="%s"/>`, fragmentNS(data), id, rid)
	lst, ok, err := ooxml.FindElement(data, "sldIdLst")
	if err != nil {
		return fmt.Errorf("parse %s: %w", d.pres, err)
	}
	if ok {
		d.pkg.SetPart(d.pres, ooxml.AppendChild(data, lst, []byte(child)))
		return nil
	}
	at, err := insertAfter(data, "sldMasterIdLst", "notesMasterIdLst", "handoutMasterIdLst")
	if err != nil {
		return err
	}
	wrapped := fmt.Sprintf(`<p:sldIdLst%s>%s</p:sldIdLst>`, fragmentNS(data), child)
	d.pkg.SetPart(d.pres, ooxml.Splice(data, at, at, []byte(wrapped)))
	return nil
}

// ensureNotesMaster returns the notes master part, creating one from the first theme when the template has none.
func (d *Deck) ensureNotesMaster() (string, error) {
	rels, err := d.pkg.Rels(d.pres)
	if err != nil {
		return "", err
	}
	for _, r := range rels {
		if r.Type == relNotesMaster {
			return ooxml.ResolveTarget(d.pres, r.Target), nil
		}
	}
	var source string
	for _, name := range d.pkg.Names("ppt/theme/") {
		if path.Dir(name) == "ppt/theme" && strings.HasSuffix(name, ".xml") {
			source = name
			break
		}
	}
	if source == "" {
		return "", fmt.Errorf("template has no theme for a notes master")
	}
	tb, _ := d.pkg.Part(source)
	theme := d.nextPart("ppt/theme/theme%d.xml")
	d.pkg.SetPart(theme, bytes.Clone(tb))
	if themeRels, err := d.pkg.Rels(source); err != nil {
		return "", err
	} else if len(themeRels) > 0 {
		if err := d.pkg.SetRels(theme, themeRels); err != nil {
			return "", err
		}
	}
	if err := d.pkg.AddOverride(theme, ctTheme); err != nil {
		return "", err
	}

	master := d.nextPart("ppt/notesMasters/notesMaster%d.xml")
	d.pkg.SetPart(master, []byte(xmlHeader+notesMasterXML))
	if err := d.pkg.SetRels(master, []ooxml.Relationship{{ID: "rId1", Type: relTheme, Target: ooxml.RelativeTarget(master, theme)}}); err != nil {
		return "", err
	}
	if err := d.pkg.AddOverride(master, ctNotesMaster); err != nil {
		return "", err
	}
	rid, err := d.addPresentationRel(relNotesMaster, master)
	if err != nil {
		return "", err
	}
	data, _ := d.pkg.Part(d.pres)
	at, err := insertAfter(data, "sldMasterIdLst")
	if err != nil {
		return "", err
	}
	lst := fmt.Sprintf(`<p:notesMasterIdLst%s><p:notesMasterId r:id="%s"/></p:notesMasterIdLst>`, fragmentNS(data), rid)
	d.pkg.SetPart(d.pres, ooxml.Splice(data, at, at, []byte(lst)))
	return master, nil
}

// insertAfter returns the offset just past the last of the named elements that exists.
func insertAfter(data []byte, names ...string) (int64, error) {
	at := int64(-1)
	for _, n := range names {
		sp, ok, err := ooxml.FindElement(data, n)
		if err != nil {
			return 0, err
		}
		if ok && sp.End > at {
			at = sp.End
		}
	}
	if at < 0 {
		return 0, fmt.Errorf("presentation has no %s", names[0])
	}
	return at, nil
}

type presentationInfo struct {
	masters    []string
	slides     []string
	maxSlideID uint64
	cx, cy     int64
}

func readPresentation(data []byte) (presentationInfo, error) {
	var info presentationInfo
	dec := ooxml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return info, nil
		}
		if err != nil {
			return info, err
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "sldMasterId":
			info.masters = append(info.masters, relID(el))
		case "sldId":
			info.slides = append(info.slides, relID(el))
			if id, err := strconv.ParseUint(plainAttr(el, "id"), 10, 32); err == nil && id > info.maxSlideID {
				info.maxSlideID = id
			}
		case "sldSz":
			info.cx, _ = strconv.ParseInt(plainAttr(el, "cx"), 10, 64)
			info.cy, _ = strconv.ParseInt(plainAttr(el, "cy"), 10, 64)
		}
	}
}

func readLayouts(pkg *ooxml.Package, master string) ([]string, error) {
	data, ok := pkg.Part(master)
	if !ok {
		return nil, fmt.Errorf("slide master %s is missing", master)
	}
	rels, err := pkg.Rels(master)
	if err != nil {
		return nil, err
	}
	byID := relMap(rels)
	var out []string
	dec := ooxml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", master, err)
		}
		if el, ok := tok.(xml.StartElement); ok && el.Name.Local == "sldLayoutId" {
			if r, ok := byID[relID(el)]; ok {
				out = append(out, ooxml.ResolveTarget(master, r.Target))
			}
		}
	}
}

func relMap(rels []ooxml.Relationship) map[string]ooxml.Relationship {
	m := make(map[string]ooxml.Relationship, len(rels))
	for _, r := range rels {
		m[r.ID] = r
	}
	return m
}

func relID(el xml.StartElement) string {
	for _, a := range el.Attr {
		if a.Name.Space == nsR && a.Name.Local == "id" {
			return a.Value
		}
	}
	return ""
}

func plainAttr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// fragmentNS declares the p, a and r prefixes on an inserted fragment when the part does not bind them itself.
func fragmentNS(data []byte) string {
	var b strings.Builder
	for _, ns := range []struct{ prefix, uri string }{{"p", nsP}, {"a", nsA}, {"r", nsR}} {
		if !ooxml.Binds(data, ns.prefix, ns.uri) {
			fmt.Fprintf(&b, ` xmlns:%s="%s"`, ns.prefix, ns.uri)
		}
	}
	return b.String()
}
