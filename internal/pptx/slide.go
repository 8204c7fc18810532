package pptx

import (
	"fmt"
	"strings"

	"github.com/thywilljoshua/word2video/internal/ooxml"
)

// Rect is a position and size in EMU.
type Rect struct {
	X, Y, CX, CY int64
}

var pictureTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// Slide is one slide part of a deck.
type Slide struct {
	deck *Deck
	part string
}

// Part returns the package part name of the slide.
func (s *Slide) Part() string { return s.part }

// TitleSlot returns the title placeholder, if the slide has one.
func (s *Slide) TitleSlot() (TextSlot, bool) { return s.slot(slotTitle) }

// BodySlot returns the placeholder with index 1, if the slide has one.
func (s *Slide) BodySlot() (TextSlot, bool) { return s.slot(slotBody) }

func (s *Slide) slot(kind slotKind) (TextSlot, bool) {
	data, _ := s.deck.pkg.Part(s.part)
	tree, err := scanShapes(data)
	if err != nil {
		return TextSlot{}, false
	}
	if _, ok := kind.find(tree.shapes); !ok {
		return TextSlot{}, false
	}
	return TextSlot{deck: s.deck, part: s.part, kind: kind}, true
}

// NotesSlot returns the speaker-notes text frame, creating the notes slide when needed.
func (s *Slide) NotesSlot() (TextSlot, error) {
	part, err := s.notesPart(true)
	if err != nil {
		return TextSlot{}, err
	}
	return TextSlot{deck: s.deck, part: part, kind: slotNotes}, nil
}

// Notes returns the speaker notes, or "" when the slide has none.
func (s *Slide) Notes() (string, error) {
	part, err := s.notesPart(false)
	if err != nil || part == "" {
		return "", err
	}
	return TextSlot{deck: s.deck, part: part, kind: slotNotes}.Text()
}

func (s *Slide) notesPart(create bool) (string, error) {
	pkg := s.deck.pkg
	rels, err := pkg.Rels(s.part)
	if err != nil {
		return "", err
	}
	for _, r := range rels {
		if r.Type == relNotesSlide {
			return ooxml.ResolveTarget(s.part, r.Target), nil
		}
	}
	if !create {
		return "", nil
	}
	master, err := s.deck.ensureNotesMaster()
	if err != nil {
		return "", err
	}
	part := s.deck.nextPart("ppt/notesSlides/notesSlide%d.xml")
	pkg.SetPart(part, []byte(xmlHeader+notesSlideXML))
	err = pkg.SetRels(part, []ooxml.Relationship{
		{ID: "rId1", Type: relNotesMaster, Target: ooxml.RelativeTarget(part, master)},
		{ID: "rId2", Type: relSlide, Target: ooxml.RelativeTarget(part, s.part)},
	})
	if err != nil {
		return "", err
	}
	if err := pkg.AddOverride(part, ctNotesSlide); err != nil {
		return "", err
	}
	if _, err := s.addRel(relNotesSlide, part); err != nil {
		return "", err
	}
	return part, nil
}

func (s *Slide) addRel(typ, target string) (string, error) {
	rels, err := s.deck.pkg.Rels(s.part)
	if err != nil {
		return "", err
	}
	rid := ooxml.NextRelID(rels)
	rels = append(rels, ooxml.Relationship{ID: rid, Type: typ, Target: ooxml.RelativeTarget(s.part, target)})
	return rid, s.deck.pkg.SetRels(s.part, rels)
}

// AddPicture embeds an image and places it at r, above every existing shape.
func (s *Slide) AddPicture(data []byte, ext string, r Rect) error {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	ctype, ok := pictureTypes[ext]
	if !ok {
		return fmt.Errorf("unsupported picture format %q", ext)
	}
	pkg := s.deck.pkg
	slideXML, _ := pkg.Part(s.part)
	tree, err := scanShapes(slideXML)
	if err != nil {
		return fmt.Errorf("parse %s: %w", s.part, err)
	}
	if !tree.found || tree.tree.SelfClosing() {
		return fmt.Errorf("%s has no shape tree", s.part)
	}

	media := s.deck.nextPart("ppt/media/image%d." + ext)
	pkg.SetPart(media, data)
	if err := pkg.AddDefault(ext, ctype); err != nil {
		return err
	}
	rid, err := s.addRel(relImage, media)
	if err != nil {
		return err
	}
	id := tree.maxID + 1
	pic := fmt.Sprintf(pictureShape, fragmentNS(slideXML), id, id-1, rid, r.X, r.Y, r.CX, r.CY)
	at := tree.tree.InnerEnd
	if tree.ext >= 0 {
		at = tree.ext
	}
	pkg.SetPart(s.part, ooxml.Splice(slideXML, at, at, []byte(pic)))
	return nil
}

// TextSlot is a placeholder text frame. Edits rewrite only its text body.
type TextSlot struct {
	deck *Deck
	part string
	kind slotKind
}

// SetParagraphs replaces the text with one paragraph per entry.
func (t TextSlot) SetParagraphs(paras []string) error {
	data, ok := t.deck.pkg.Part(t.part)
	if !ok {
		return fmt.Errorf("%s is missing", t.part)
	}
	tree, err := scanShapes(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", t.part, err)
	}
	i, ok := t.kind.find(tree.shapes)
	if !ok {
		return fmt.Errorf("%s has no %s placeholder", t.part, t.kind)
	}
	sh := tree.shapes[i]
	body := textBody(sh, paras, fragmentNS(data))
	if sh.hasTxBody {
		data = ooxml.Splice(data, sh.txBody.Start, sh.txBody.End, body)
	} else {
		data = ooxml.Splice(data, sh.span.InnerEnd, sh.span.InnerEnd, body)
	}
	t.deck.pkg.SetPart(t.part, data)
	return nil
}

// SetText replaces the text, one paragraph per line.
func (t TextSlot) SetText(text string) error {
	return t.SetParagraphs(strings.Split(text, "\n"))
}

// Text returns the paragraphs joined with newlines.
func (t TextSlot) Text() (string, error) {
	data, ok := t.deck.pkg.Part(t.part)
	if !ok {
		return "", fmt.Errorf("%s is missing", t.part)
	}
	tree, err := scanShapes(data)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", t.part, err)
	}
	i, ok := t.kind.find(tree.shapes)
	if !ok {
		return "", nil
	}
	return strings.Join(tree.shapes[i].paras, "\n"), nil
}
