package convert

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/docx"
	"github.com/thywilljoshua/word2video/internal/pptx"
)

// Run maps the document at docPath onto cfg.Template and saves the deck to cfg.Output.
func Run(ctx context.Context, docPath string, cfg Config) (Result, error) {
	log := cfg.logger()
	if cfg.Template == "" {
		return Result{}, apperr.Config("word2ppt", nil, "a template PPTX file must be provided")
	}
	if cfg.Output == "" {
		cfg.Output = "output.pptx"
	}
	deck, err := pptx.Open(cfg.Template)
	if err != nil {
		return Result{}, err
	}
	doc, err := docx.Open(docPath)
	if err != nil {
		return Result{}, err
	}
	log.Info("mapping document",
		zap.String("input", docPath),
		zap.String("template", cfg.Template),
		zap.Int("paragraphs", len(doc.Paragraphs())),
		zap.Int("template_slides", deck.Len()))

	m := Mapper{MaxLeafCount: cfg.MaxLeafCount, Log: log}
	slides, err := m.Map(ctx, doc, Wrap(deck))
	if err != nil {
		return Result{}, err
	}
	if err := deck.Save(cfg.Output); err != nil {
		return Result{}, fmt.Errorf("save %s: %w", cfg.Output, err)
	}
	res := Result{Slides: slides, Output: cfg.Output}
	for _, s := range slides {
		if s.Image {
			res.Images++
		}
	}
	log.Info("deck saved", zap.String("output", cfg.Output), zap.Int("slides", deck.Len()), zap.Int("images", res.Images))
	return res, nil
}

// Wrap adapts a pptx deck to the Deck interface.
func Wrap(d *pptx.Deck) Deck { return pptxDeck{d} }

type pptxDeck struct{ *pptx.Deck }

func (d pptxDeck) Slide(i int) Slide { return pptxSlide{d.Deck.Slide(i)} }

func (d pptxDeck) AddSlide(layout int) (Slide, error) {
	s, err := d.Deck.AddSlide(layout)
	if err != nil {
		return nil, err
	}
	return pptxSlide{s}, nil
}

type pptxSlide struct{ *pptx.Slide }

func (s pptxSlide) TitleSlot() (TextSlot, bool) {
	t, ok := s.Slide.TitleSlot()
	return t, ok
}

func (s pptxSlide) BodySlot() (TextSlot, bool) {
	t, ok := s.Slide.BodySlot()
	return t, ok
}

func (s pptxSlide) NotesSlot() (TextSlot, error) {
	t, err := s.Slide.NotesSlot()
	if err != nil {
		return nil, err
	}
	return t, nil
}
