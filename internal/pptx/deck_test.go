package pptx

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/ooxml"
	"github.com/thywilljoshua/word2video/internal/pptx/pptxtest"
)

func parseTemplate(t *testing.T, slides int) *Deck {
	t.Helper()
	d, err := Parse(pptxtest.Template(slides))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func reopen(t *testing.T, d *Deck) *Deck {
	t.Helper()
	b, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	out, err := Parse(b)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func part(t *testing.T, d *Deck, name string) string {
	t.Helper()
	b, ok := d.pkg.Part(name)
	if !ok {
		t.Fatalf("part %s missing", name)
	}
	return string(b)
}

func slotText(t *testing.T, slot TextSlot, ok bool) string {
	t.Helper()
	if !ok {
		t.Fatal("slot missing")
	}
	s, err := slot.Text()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseTemplate(t *testing.T) {
	d := parseTemplate(t, 2)
	if d.Len() != 2 {
		t.Fatalf("want 2 slides, got %d", d.Len())
	}
	if cx, cy := d.Size(); cx != 12192000 || cy != 6858000 {
		t.Fatalf("size %dx%d", cx, cy)
	}
	if d.Layouts() != 2 {
		t.Fatalf("want 2 layouts, got %d", d.Layouts())
	}
	title, ok := d.Slide(1).TitleSlot()
	if got := slotText(t, title, ok); got != pptxtest.TemplateTitle {
		t.Fatalf("title %q", got)
	}
}

func TestSetParagraphsKeepsOtherShapes(t *testing.T) {
	d := parseTemplate(t, 1)
	s := d.Slide(0)
	title, _ := s.TitleSlot()
	if err := title.SetParagraphs([]string{"New & improved"}); err != nil {
		t.Fatal(err)
	}
	body, ok := s.BodySlot()
	if !ok {
		t.Fatal("body slot missing")
	}
	if err := body.SetParagraphs([]string{"a", "b"}); err != nil {
		t.Fatal(err)
	}

	d2 := reopen(t, d)
	s2 := d2.Slide(0)
	title2, ok := s2.TitleSlot()
	if got := slotText(t, title2, ok); got != "New & improved" {
		t.Fatalf("title %q", got)
	}
	body2, ok := s2.BodySlot()
	if got := slotText(t, body2, ok); got != "a\nb" {
		t.Fatalf("body %q", got)
	}
	xml := part(t, d2, s2.Part())
	if !strings.Contains(xml, "<a:normAutofit/>") {
		t.Fatalf("body properties were not preserved: %s", xml)
	}
	if !strings.Contains(xml, pptxtest.Decoration) {
		t.Fatalf("unrelated shape was lost: %s", xml)
	}
}

func TestAddSlideFromLayouts(t *testing.T) {
	d := parseTemplate(t, 0)
	first, err := d.AddSlide(0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := first.TitleSlot(); !ok {
		t.Fatal("title layout should give a title slot")
	}
	if strings.Contains(part(t, d, first.Part()), `type="dt"`) {
		t.Fatal("date placeholder should not be cloned")
	}
	if _, err := d.AddSlide(1); err != nil {
		t.Fatal(err)
	}
	last, err := d.AddSlide(7)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := last.BodySlot(); !ok {
		t.Fatal("out-of-range layout should fall back to the content layout")
	}

	d2 := reopen(t, d)
	if d2.Len() != 3 {
		t.Fatalf("want 3 slides after reopen, got %d", d2.Len())
	}
	pres := part(t, d2, "ppt/presentation.xml")
	for _, id := range []string{`id="256"`, `id="257"`, `id="258"`} {
		if !strings.Contains(pres, id) {
			t.Errorf("presentation is missing slide %s: %s", id, pres)
		}
	}
	seen := map[string]bool{}
	for i := 0; i < d2.Len(); i++ {
		p := d2.Slide(i).Part()
		if seen[p] {
			t.Fatalf("slide part %s reused", p)
		}
		seen[p] = true
	}
}

func TestNotesSlotCreatesNotesMaster(t *testing.T) {
	d := parseTemplate(t, 1)
	s := d.Slide(0)
	if got, err := s.Notes(); err != nil || got != "" {
		t.Fatalf("fresh slide notes: %q %v", got, err)
	}
	notes, err := s.NotesSlot()
	if err != nil {
		t.Fatal(err)
	}
	if err := notes.SetText("first\nsecond"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.NotesSlot(); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.pkg.Part("ppt/notesSlides/notesSlide2.xml"); ok {
		t.Fatal("second NotesSlot call created another notes slide")
	}

	d2 := reopen(t, d)
	got, err := d2.Slide(0).Notes()
	if err != nil {
		t.Fatal(err)
	}
	if got != "first\nsecond" {
		t.Fatalf("notes %q", got)
	}
	if !strings.Contains(part(t, d2, "ppt/presentation.xml"), "notesMasterIdLst") {
		t.Fatal("notes master not registered in presentation")
	}
	types := part(t, d2, ooxml.ContentTypesPart)
	if !strings.Contains(types, "/ppt/notesSlides/notesSlide1.xml") || !strings.Contains(types, "/ppt/notesMasters/notesMaster1.xml") {
		t.Fatalf("content types missing notes parts: %s", types)
	}
}

func TestAddPicture(t *testing.T) {
	d := parseTemplate(t, 1)
	s := d.Slide(0)
	if err := s.AddPicture([]byte("png-bytes"), "PNG", Rect{X: 1, Y: 2, CX: 3, CY: 4}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPicture([]byte("x"), "svg", Rect{}); err == nil {
		t.Fatal("svg should be rejected")
	}

	d2 := reopen(t, d)
	if got := part(t, d2, "ppt/media/image1.png"); got != "png-bytes" {
		t.Fatalf("media %q", got)
	}
	xml := part(t, d2, d2.Slide(0).Part())
	if !strings.Contains(xml, `<a:off x="1" y="2"/><a:ext cx="3" cy="4"/>`) {
		t.Fatalf("picture geometry missing: %s", xml)
	}
	if !strings.Contains(xml, `<p:cNvPr id="5" name="Picture 4"/>`) {
		t.Fatalf("picture should take the next shape id: %s", xml)
	}
	rels, err := d2.pkg.Rels(d2.Slide(0).Part())
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, r := range rels {
		if r.Type == relImage && r.Target == "../media/image1.png" {
			found = true
		}
	}
	if !found {
		t.Fatalf("image relationship missing: %+v", rels)
	}
	if !strings.Contains(part(t, d2, ooxml.ContentTypesPart), `Extension="png"`) {
		t.Fatal("png content type missing")
	}
}

func TestOpenMissingTemplate(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pptx"))
	if !apperr.Is(err, apperr.KindConfig) {
		t.Fatalf("want config error, got %v", err)
	}
}
