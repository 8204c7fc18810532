package convert

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/docx"
)

const (
	// DefaultMaxLeafCount is the leaf-heading threshold above which a section is split.
	DefaultMaxLeafCount = 8

	fallbackTitle = "Untitled Document"
	agendaTitle   = "Agenda"

	titleLayout   = 0
	contentLayout = 1
)

// Mapper lays a document out as title, agenda and section slides.
type Mapper struct {
	MaxLeafCount int
	Log          *zap.Logger
}

// Map writes every slide of doc to deck and returns what it wrote.
func (m Mapper) Map(ctx context.Context, doc Document, deck Deck) ([]SlideSummary, error) {
	log := m.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxLeaves := m.MaxLeafCount
	if maxLeaves < 1 {
		maxLeaves = DefaultMaxLeafCount
	}
	paras := doc.Paragraphs()
	b := NewSlideBuilder(deck, log)
	x := imageExtractor{doc: doc, log: log}

	title, titleIdx := findTitle(paras)
	log.Info("title slide", zap.String("title", title), zap.Int("paragraph", titleIdx))
	if err := b.Emit(titleLayout, SlideSpec{Title: title}); err != nil {
		return nil, err
	}

	if agenda, ok := agendaSpec(paras, titleIdx); ok {
		log.Info("agenda slide", zap.Int("items", len(agenda.Subheadings)))
		if err := b.Emit(contentLayout, agenda); err != nil {
			return nil, err
		}
	}

	sections := topLevelSections(paras)
	for n, sec := range sections {
		if n == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, slide := range sectionSpecs(paras, sec, x, maxLeaves, log) {
			if err := b.Emit(contentLayout, slide); err != nil {
				return nil, err
			}
		}
	}
	return b.Emitted(), nil
}

// findTitle returns the first non-empty Title paragraph, else a non-empty first paragraph,
// else the fallback title with index -1.
func findTitle(paras []docx.Paragraph) (string, int) {
	for i, p := range paras {
		if p.Style == docx.StyleTitle && p.Text != "" {
			return p.Text, i
		}
	}
	if len(paras) > 0 && paras[0].Text != "" {
		return paras[0].Text, 0
	}
	return fallbackTitle, -1
}

// agendaSpec lists the level-1 headings. Its notes are the paragraphs between the
// title and the first level-1 heading. ok is false when there are no level-1 headings.
func agendaSpec(paras []docx.Paragraph, titleIdx int) (SlideSpec, bool) {
	var items []string
	first := -1
	for i, p := range paras {
		if p.HeadingLevel() == 1 && p.Text != "" {
			items = append(items, p.Text)
			if first < 0 {
				first = i
			}
		}
	}
	if len(items) == 0 {
		return SlideSpec{}, false
	}
	var notes []string
	if titleIdx >= 0 {
		for i := titleIdx + 1; i < first; i++ {
			if paras[i].Text != "" {
				notes = append(notes, paras[i].Text)
			}
		}
	}
	return SlideSpec{Title: agendaTitle, Subheadings: items, Notes: strings.Join(notes, "\n")}, true
}

func sectionSpecs(paras []docx.Paragraph, sec Section, x imageExtractor, maxLeaves int, log *zap.Logger) []SlideSpec {
	heading := paras[sec.Start].Text
	images := x.extract(sec.Start, sec.End)
	leaves := leafHeadingCount(paras, sec.Start, sec.End)

	if fitsOneSlide(leaves, len(images), maxLeaves) {
		log.Info("section fits one slide",
			zap.String("section", heading), zap.Int("leaves", leaves), zap.Int("images", len(images)))
		slide := SlideSpec{Title: heading}
		var notes []string
		for i := sec.Start + 1; i < sec.End; i++ {
			p := paras[i]
			if p.Text == "" {
				continue
			}
			if p.HeadingLevel() > 1 {
				slide.Subheadings = append(slide.Subheadings, p.Text)
			}
			notes = append(notes, p.Text)
		}
		slide.Notes = strings.Join(notes, "\n")
		if len(images) > 0 {
			slide.Image = &images[0]
		}
		return []SlideSpec{slide}
	}

	log.Info("splitting section",
		zap.String("section", heading), zap.Int("leaves", leaves), zap.Int("images", len(images)), zap.Int("max_leaves", maxLeaves))
	q := &imageQueue{items: images}
	var (
		acc accumulator
		out []SlideSpec
	)
	// pictures anchored in the heading paragraph itself
	out = append(out, acc.step(heading, false, "", q.take(sec.Start))...)
	for i := sec.Start + 1; i < sec.End; i++ {
		p := paras[i]
		out = append(out, acc.step(heading, p.HeadingLevel() > 0, p.Text, q.take(i))...)
	}
	if !acc.empty() {
		out = append(out, acc.flush(heading))
	}
	if len(out) == 0 {
		out = append(out, SlideSpec{Title: heading})
	}
	if n := q.remaining(); n > 0 {
		log.Warn("images left unplaced", zap.String("section", heading), zap.Int("count", n))
	}
	return out
}

// accumulator collects the content of one slide while a section is being split.
type accumulator struct {
	subheadings []string
	notes       []string
	image       *ImageRecord
}

func (a *accumulator) empty() bool {
	return len(a.subheadings) == 0 && len(a.notes) == 0 && a.image == nil
}

// step feeds one paragraph and returns the slides it completed. A heading completes
// the pending slide; so does a second image, which then starts the next slide.
func (a *accumulator) step(title string, heading bool, text string, images []ImageRecord) []SlideSpec {
	var out []SlideSpec
	if heading && !a.empty() {
		out = append(out, a.flush(title))
	}
	if text != "" {
		if heading {
			a.subheadings = append(a.subheadings, text)
		}
		a.notes = append(a.notes, text)
	}
	for i := range images {
		if a.image != nil {
			out = append(out, a.flush(title))
		}
		img := images[i]
		a.image = &img
	}
	return out
}

func (a *accumulator) flush(title string) SlideSpec {
	slide := SlideSpec{
		Title:       title,
		Subheadings: a.subheadings,
		Notes:       strings.Join(a.notes, "\n"),
		Image:       a.image,
	}
	*a = accumulator{}
	return slide
}
