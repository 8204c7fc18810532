package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/docx"
	"github.com/thywilljoshua/word2video/internal/pptx"
)

type fakeSlot struct{ dst *[]string }

func (s fakeSlot) SetParagraphs(p []string) error {
	*s.dst = append([]string(nil), p...)
	return nil
}

type fakeSlide struct {
	layout   int
	template bool
	noBody   bool
	title    []string
	body     []string
	notes    []string
	pictures []pptx.Rect
}

func (s *fakeSlide) TitleSlot() (TextSlot, bool) { return fakeSlot{&s.title}, true }

func (s *fakeSlide) BodySlot() (TextSlot, bool) {
	if s.noBody {
		return nil, false
	}
	return fakeSlot{&s.body}, true
}

func (s *fakeSlide) NotesSlot() (TextSlot, error) { return fakeSlot{&s.notes}, nil }

func (s *fakeSlide) AddPicture(data []byte, ext string, r pptx.Rect) error {
	s.pictures = append(s.pictures, r)
	return nil
}

type fakeDeck struct{ slides []*fakeSlide }

func newFakeDeck(templateSlides int) *fakeDeck {
	d := &fakeDeck{}
	for i := 0; i < templateSlides; i++ {
		d.slides = append(d.slides, &fakeSlide{layout: -1, template: true, title: []string{"template"}})
	}
	return d
}

func (d *fakeDeck) Len() int          { return len(d.slides) }
func (d *fakeDeck) Slide(i int) Slide { return d.slides[i] }
func (d *fakeDeck) Size() (int64, int64) {
	return 9144000, 6858000
}

func (d *fakeDeck) AddSlide(layout int) (Slide, error) {
	s := &fakeSlide{layout: layout}
	d.slides = append(d.slides, s)
	return s, nil
}

type fakeDoc struct {
	paras  []docx.Paragraph
	images map[string][]byte
}

func (d *fakeDoc) Paragraphs() []docx.Paragraph { return d.paras }

func (d *fakeDoc) Image(ref docx.ImageRef) ([]byte, string, error) {
	b, ok := d.images[ref.RelID]
	if !ok {
		return nil, "", apperr.Resource("resolve image", nil, "relationship %s not found", ref.RelID)
	}
	return b, "png", nil
}

func (d *fakeDoc) add(style docx.Style, level int, text string, rels ...string) *fakeDoc {
	p := docx.Paragraph{Index: len(d.paras), Text: text, Style: style, Level: level}
	for i, rel := range rels {
		p.Images = append(p.Images, docx.ImageRef{RelID: rel, Offset: int64(len(d.paras)*100 + i)})
		if d.images == nil {
			d.images = map[string][]byte{}
		}
		if rel != "missing" {
			d.images[rel] = pngBytes(40, 20)
		}
	}
	d.paras = append(d.paras, p)
	return d
}

func (d *fakeDoc) title(text string) *fakeDoc { return d.add(docx.StyleTitle, 0, text) }
func (d *fakeDoc) h(level int, text string) *fakeDoc {
	return d.add(docx.StyleHeading, level, text)
}
func (d *fakeDoc) body(text string, rels ...string) *fakeDoc {
	return d.add(docx.StyleBody, 0, text, rels...)
}

func pngBytes(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func mapDoc(t *testing.T, doc *fakeDoc, deck *fakeDeck, maxLeaves int) []SlideSummary {
	t.Helper()
	out, err := Mapper{MaxLeafCount: maxLeaves}.Map(context.Background(), doc, deck)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestSingleSectionScenario(t *testing.T) {
	doc := (&fakeDoc{}).title("Intro").
		h(1, "Topic A").
		h(2, "One").body("first").
		h(2, "Two").body("second").
		h(2, "Three")
	deck := newFakeDeck(0)
	mapDoc(t, doc, deck, 8)

	if deck.Len() != 4 {
		t.Fatalf("want 4 slides, got %d", deck.Len())
	}
	if got := deck.slides[0].title; !reflect.DeepEqual(got, []string{"Intro"}) || deck.slides[0].layout != titleLayout {
		t.Fatalf("title slide: %v layout %d", got, deck.slides[0].layout)
	}
	agenda := deck.slides[1]
	if !reflect.DeepEqual(agenda.title, []string{"Agenda"}) || !reflect.DeepEqual(agenda.body, []string{"Topic A"}) {
		t.Fatalf("agenda slide: %v %v", agenda.title, agenda.body)
	}
	content := deck.slides[2]
	if !reflect.DeepEqual(content.title, []string{"Topic A"}) {
		t.Fatalf("content title %v", content.title)
	}
	if !reflect.DeepEqual(content.body, []string{"One", "Two", "Three"}) {
		t.Fatalf("content subheadings %v", content.body)
	}
	if !reflect.DeepEqual(content.notes, []string{"One", "first", "Two", "second", "Three"}) {
		t.Fatalf("content notes %v", content.notes)
	}
}

func splitDoc() *fakeDoc {
	doc := (&fakeDoc{}).title("Deck").h(1, "Big")
	for i := 1; i <= 10; i++ {
		doc.h(2, fmt.Sprintf("Leaf %d", i))
		switch i {
		case 3:
			doc.body(fmt.Sprintf("text %d", i), "img1")
		case 7:
			doc.body(fmt.Sprintf("text %d", i), "img2")
		default:
			doc.body(fmt.Sprintf("text %d", i))
		}
	}
	return doc
}

func TestSplitSectionScenario(t *testing.T) {
	deck := newFakeDeck(0)
	mapDoc(t, splitDoc(), deck, 8)

	section := deck.slides[2:]
	if len(section) < 3 {
		t.Fatalf("want at least 3 slides for the split section, got %d", len(section))
	}
	withImage := 0
	for i, s := range section {
		if len(s.pictures) > 1 {
			t.Fatalf("slide %d carries %d images", i, len(s.pictures))
		}
		withImage += len(s.pictures)
		if !reflect.DeepEqual(s.title, []string{"Big"}) {
			t.Fatalf("slide %d title %v", i, s.title)
		}
	}
	if withImage != 2 {
		t.Fatalf("want exactly 2 image slides, got %d", withImage)
	}
	if len(section[0].pictures) != 0 {
		t.Fatal("first split slide should not carry an image")
	}
}

func TestSplitNotesReconstructSection(t *testing.T) {
	doc := splitDoc()
	deck := newFakeDeck(0)
	mapDoc(t, doc, deck, 8)

	var got []string
	for _, s := range deck.slides[2:] {
		got = append(got, s.notes...)
	}
	var want []string
	for _, p := range doc.paras[2:] {
		if p.Text != "" {
			want = append(want, p.Text)
		}
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("notes do not reconstruct the section\ngot  %v\nwant %v", got, want)
	}
}

func TestTwoImagesWithoutHeadingsSplit(t *testing.T) {
	doc := (&fakeDoc{}).title("T").h(1, "Pics").body("a", "img1").body("b", "img2").body("c")
	deck := newFakeDeck(0)
	mapDoc(t, doc, deck, 8)

	section := deck.slides[2:]
	if len(section) != 2 {
		t.Fatalf("want 2 slides, got %d", len(section))
	}
	if !reflect.DeepEqual(section[0].notes, []string{"a", "b"}) || len(section[0].pictures) != 1 {
		t.Fatalf("first slide: notes %v pictures %d", section[0].notes, len(section[0].pictures))
	}
	if !reflect.DeepEqual(section[1].notes, []string{"c"}) || len(section[1].pictures) != 1 {
		t.Fatalf("second slide: notes %v pictures %d", section[1].notes, len(section[1].pictures))
	}
}

func TestImagesOnSectionHeadingAreKept(t *testing.T) {
	doc := (&fakeDoc{}).title("Intro").
		add(docx.StyleHeading, 1, "Gallery", "img1", "img2").
		h(1, "Next").body("b")
	deck := newFakeDeck(0)
	sums := mapDoc(t, doc, deck, 8)

	var titles []string
	for _, s := range deck.slides {
		titles = append(titles, s.title...)
	}
	if want := []string{"Intro", "Agenda", "Gallery", "Gallery", "Next"}; !reflect.DeepEqual(titles, want) {
		t.Fatalf("titles %v want %v", titles, want)
	}
	for _, i := range []int{2, 3} {
		if len(deck.slides[i].pictures) != 1 || !sums[i].Image {
			t.Fatalf("slide %d should carry one image, got %d", i, len(deck.slides[i].pictures))
		}
	}
}

func TestHeadingOnlySectionGetsTitleSlide(t *testing.T) {
	sec := Section{Start: 1, End: 2}
	doc := (&fakeDoc{}).title("T").h(1, "Empty")
	x := imageExtractor{doc: doc, log: zap.NewNop()}
	// a negative threshold forces the split path
	got := sectionSpecs(doc.paras, sec, x, -1, zap.NewNop())
	if len(got) != 1 || got[0].Title != "Empty" || got[0].Image != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestBlankAgendaLeavesContentAtSecondSlide(t *testing.T) {
	doc := (&fakeDoc{}).title("T").h(1, "").body("x")
	deck := newFakeDeck(3)
	sums := mapDoc(t, doc, deck, 8)

	if len(sums) != 2 || deck.Len() != 3 {
		t.Fatalf("want title and one content slide over 3 template slides, got %d summaries, %d slides", len(sums), deck.Len())
	}
	if sums[1].Index != 1 || !sums[1].Reused {
		t.Fatalf("content should reuse template slide 1: %+v", sums[1])
	}
	if !reflect.DeepEqual(deck.slides[1].notes, []string{"x"}) {
		t.Fatalf("notes %v", deck.slides[1].notes)
	}
	if !reflect.DeepEqual(deck.slides[2].title, []string{"template"}) {
		t.Fatalf("slide 2 should be untouched, got %v", deck.slides[2].title)
	}
}

func TestBitmapAndTiffImagesArePlaced(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	var bmpBuf, tiffBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatal(err)
	}
	if err := tiff.Encode(&tiffBuf, img, nil); err != nil {
		t.Fatal(err)
	}
	deck := newFakeDeck(0)
	b := NewSlideBuilder(deck, nil)
	for _, rec := range []ImageRecord{{Data: bmpBuf.Bytes(), Ext: "bmp"}, {Data: tiffBuf.Bytes(), Ext: "tiff"}} {
		if err := b.Emit(contentLayout, SlideSpec{Title: rec.Ext, Image: &rec}); err != nil {
			t.Fatal(err)
		}
	}
	for i, s := range deck.slides {
		if len(s.pictures) != 1 || s.pictures[0].CX != 30*emuPerPixel {
			t.Fatalf("slide %d pictures %+v", i, s.pictures)
		}
	}
}

func TestLeafHeadingCount(t *testing.T) {
	levels := func(ls ...int) []docx.Paragraph {
		var out []docx.Paragraph
		for i, l := range ls {
			p := docx.Paragraph{Index: i, Text: "x", Style: docx.StyleBody}
			if l > 0 {
				p.Style, p.Level = docx.StyleHeading, l
			}
			out = append(out, p)
		}
		return out
	}
	cases := []struct {
		name   string
		levels []int
		want   int
	}{
		{"siblings", []int{2, 0, 2, 0, 2}, 3},
		{"parent with children", []int{2, 3, 3}, 2},
		{"child then sibling", []int{2, 3, 0, 2}, 2},
		{"deep child bounds but is not counted", []int{2, 5, 2}, 1},
		{"level one is never a leaf", []int{1, 0, 1}, 0},
		{"no headings", []int{0, 0}, 0},
	}
	for _, c := range cases {
		paras := levels(c.levels...)
		if got := leafHeadingCount(paras, 0, len(paras)); got != c.want {
			t.Errorf("%s: got %d want %d", c.name, got, c.want)
		}
	}

	// A level-1 heading closes the scope of the headings before it.
	with := levels(2, 1, 3)
	if got, want := leafHeadingCount(with, 0, 3), leafHeadingCount(with, 0, 1)+leafHeadingCount(with, 2, 3); got != want || got != 2 {
		t.Fatalf("level-1 heading should bound scope: got %d want %d", got, want)
	}
}

func TestTopLevelSections(t *testing.T) {
	doc := (&fakeDoc{}).h(1, "A").body("x").h(1, "B").body("y").body("z")
	got := topLevelSections(doc.paras)
	want := []Section{{0, 2}, {2, 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if topLevelSections(nil) != nil {
		t.Fatal("empty document has no sections")
	}
}

func TestEmptyDocumentGetsFallbackTitle(t *testing.T) {
	deck := newFakeDeck(0)
	sums := mapDoc(t, &fakeDoc{}, deck, 8)
	if deck.Len() != 1 || len(sums) != 1 {
		t.Fatalf("want only a title slide, got %d", deck.Len())
	}
	if !reflect.DeepEqual(deck.slides[0].title, []string{fallbackTitle}) {
		t.Fatalf("title %v", deck.slides[0].title)
	}
}

func TestFirstParagraphIsTitleFallback(t *testing.T) {
	doc := (&fakeDoc{}).body("Plain start").body("more")
	deck := newFakeDeck(0)
	mapDoc(t, doc, deck, 8)
	if !reflect.DeepEqual(deck.slides[0].title, []string{"Plain start"}) {
		t.Fatalf("title %v", deck.slides[0].title)
	}
	if deck.Len() != 1 {
		t.Fatalf("no level-1 headings means no agenda, got %d slides", deck.Len())
	}
}

func TestAgendaNotesArePreamble(t *testing.T) {
	doc := (&fakeDoc{}).body("cover").title("Report").body("preamble one").body("").body("preamble two").h(1, "Part").body("in part")
	deck := newFakeDeck(0)
	mapDoc(t, doc, deck, 8)
	if !reflect.DeepEqual(deck.slides[0].title, []string{"Report"}) {
		t.Fatalf("title %v", deck.slides[0].title)
	}
	if !reflect.DeepEqual(deck.slides[1].notes, []string{"preamble one", "preamble two"}) {
		t.Fatalf("agenda notes %v", deck.slides[1].notes)
	}
}

func TestTemplateSlidesReusedThenAppended(t *testing.T) {
	doc := (&fakeDoc{}).title("T").h(1, "A").body("a").h(1, "B").body("b")
	deck := newFakeDeck(3)
	sums := mapDoc(t, doc, deck, 8)
	if deck.Len() != 4 {
		t.Fatalf("want 4 slides, got %d", deck.Len())
	}
	for i, s := range sums {
		if s.Index != i {
			t.Fatalf("slide indexes must increase by one: %+v", sums)
		}
		if s.Reused != (i < 3) {
			t.Fatalf("slide %d reused=%v", i, s.Reused)
		}
	}
	if !reflect.DeepEqual(deck.slides[2].title, []string{"A"}) || deck.slides[3].layout != contentLayout {
		t.Fatalf("unexpected slides: %+v %+v", deck.slides[2], deck.slides[3])
	}
}

func TestSubheadingsKeepTemplateBodyWhenEmpty(t *testing.T) {
	doc := (&fakeDoc{}).title("T").h(1, "A").body("only text")
	deck := newFakeDeck(3)
	deck.slides[2].body = []string{"template body"}
	mapDoc(t, doc, deck, 8)
	if !reflect.DeepEqual(deck.slides[2].body, []string{"template body"}) {
		t.Fatalf("body should be left alone without subheadings, got %v", deck.slides[2].body)
	}
}

func TestUnresolvableImageIsSkipped(t *testing.T) {
	doc := (&fakeDoc{}).title("T").h(1, "A").body("a", "missing").body("b", "img1")
	deck := newFakeDeck(0)
	mapDoc(t, doc, deck, 8)
	if deck.Len() != 3 {
		t.Fatalf("one resolvable image fits one slide, got %d slides", deck.Len())
	}
	if len(deck.slides[2].pictures) != 1 {
		t.Fatalf("want the resolvable image placed, got %d", len(deck.slides[2].pictures))
	}
}

func TestMappingIsDeterministic(t *testing.T) {
	snapshot := func() []fakeSlide {
		deck := newFakeDeck(2)
		mapDoc(t, splitDoc(), deck, 8)
		var out []fakeSlide
		for _, s := range deck.slides {
			c := *s
			c.pictures = make([]pptx.Rect, len(s.pictures))
			out = append(out, c)
		}
		return out
	}
	a, b := snapshot(), snapshot()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two runs over the same input differ")
	}
}

func TestAccumulatorTransitions(t *testing.T) {
	var acc accumulator
	img := func(p int) []ImageRecord { return []ImageRecord{{Paragraph: p}} }

	if out := acc.step("S", true, "H1", nil); len(out) != 0 {
		t.Fatal("a heading on an empty accumulator must not flush")
	}
	if out := acc.step("S", false, "body", img(2)); len(out) != 0 {
		t.Fatal("the first image must not flush")
	}
	out := acc.step("S", false, "", img(3))
	if len(out) != 1 || out[0].Image == nil || out[0].Image.Paragraph != 2 {
		t.Fatalf("second image should flush the first: %+v", out)
	}
	if acc.image == nil || acc.image.Paragraph != 3 {
		t.Fatal("second image should start the next slide")
	}
	out = acc.step("S", true, "H2", nil)
	if len(out) != 1 || out[0].Notes != "" || out[0].Image.Paragraph != 3 {
		t.Fatalf("heading should flush the pending image slide: %+v", out)
	}
	if !reflect.DeepEqual(acc.subheadings, []string{"H2"}) || !reflect.DeepEqual(acc.notes, []string{"H2"}) {
		t.Fatalf("heading text should open the new slide: %+v", acc)
	}
	flushed := acc.flush("S")
	if flushed.Title != "S" || !acc.empty() {
		t.Fatalf("flush should reset: %+v %+v", flushed, acc)
	}
}

func TestImageRect(t *testing.T) {
	const w, h = 9144000, 6858000
	small := imageRect(w, h, 100, 50)
	if small != (pptx.Rect{X: w - 952500, Y: h - 476250, CX: 952500, CY: 476250}) {
		t.Fatalf("small images keep their native size: %+v", small)
	}
	big := imageRect(w, h, 2000, 1000)
	if big.CX > w/2 || big.CX < w/2-1 {
		t.Fatalf("wide image should be bound by half the width: %+v", big)
	}
	if big.CY > h/2 {
		t.Fatalf("height exceeds half the slide: %+v", big)
	}
	if big.X+big.CX != w || big.Y+big.CY != h {
		t.Fatalf("image should touch the bottom-right corner: %+v", big)
	}
	tall := imageRect(w, h, 500, 2000)
	if tall.CY > h/2 || tall.CY < h/2-1 {
		t.Fatalf("tall image should be bound by half the height: %+v", tall)
	}
}

func TestSummaryCountsNotes(t *testing.T) {
	doc := (&fakeDoc{}).title("T").h(1, "A").body("x").body("y")
	sums := mapDoc(t, doc, newFakeDeck(0), 8)
	last := sums[len(sums)-1]
	if last.NotesLines != 2 || last.Title != "A" {
		t.Fatalf("summary %+v", last)
	}
	if !strings.EqualFold(sums[1].Title, agendaTitle) {
		t.Fatalf("agenda summary %+v", sums[1])
	}
}
