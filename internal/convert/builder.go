package convert

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/thywilljoshua/word2video/internal/pptx"
)

// emuPerPixel converts pixels to EMU at 96 DPI.
const emuPerPixel = 9525

// SlideBuilder writes SlideSpecs to consecutive deck positions. Position i reuses
// template slide i when it exists and appends a new slide otherwise.
type SlideBuilder struct {
	deck    Deck
	log     *zap.Logger
	next    int
	emitted []SlideSummary
}

func NewSlideBuilder(deck Deck, log *zap.Logger) *SlideBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	return &SlideBuilder{deck: deck, log: log}
}

// Next returns the deck position the next Emit writes to.
func (b *SlideBuilder) Next() int { return b.next }

// Emitted returns a summary of every slide written so far.
func (b *SlideBuilder) Emitted() []SlideSummary { return b.emitted }

// Emit writes content at the next position. layout is used only when a slide is appended.
func (b *SlideBuilder) Emit(layout int, content SlideSpec) error {
	idx := b.next
	reused := idx < b.deck.Len()
	var (
		slide Slide
		err   error
	)
	if reused {
		slide = b.deck.Slide(idx)
	} else if slide, err = b.deck.AddSlide(layout); err != nil {
		return fmt.Errorf("add slide %d: %w", idx, err)
	}
	b.next++

	if title, ok := slide.TitleSlot(); ok {
		if err := title.SetParagraphs([]string{content.Title}); err != nil {
			return fmt.Errorf("slide %d title: %w", idx, err)
		}
	} else {
		b.log.Warn("slide has no title placeholder", zap.Int("slide", idx), zap.String("title", content.Title))
	}

	if len(content.Subheadings) > 0 {
		if body, ok := slide.BodySlot(); ok {
			if err := body.SetParagraphs(content.Subheadings); err != nil {
				return fmt.Errorf("slide %d body: %w", idx, err)
			}
		}
	}

	notes := strings.TrimSpace(content.Notes)
	notesLines := 0
	if notes != "" {
		slot, err := slide.NotesSlot()
		if err != nil {
			return fmt.Errorf("slide %d notes: %w", idx, err)
		}
		lines := strings.Split(notes, "\n")
		if err := slot.SetParagraphs(lines); err != nil {
			return fmt.Errorf("slide %d notes: %w", idx, err)
		}
		notesLines = len(lines)
	}

	placed := false
	if content.Image != nil {
		placed = b.placeImage(idx, slide, *content.Image)
	}

	sum := SlideSummary{
		Index:       idx,
		Title:       content.Title,
		Subheadings: len(content.Subheadings),
		NotesLines:  notesLines,
		Image:       placed,
		Reused:      reused,
	}
	b.emitted = append(b.emitted, sum)
	b.log.Info("slide written",
		zap.Int("slide", idx),
		zap.String("title", content.Title),
		zap.Int("subheadings", sum.Subheadings),
		zap.Int("notes_lines", notesLines),
		zap.Bool("image", placed),
		zap.Bool("reused", reused))
	return nil
}

func (b *SlideBuilder) placeImage(idx int, slide Slide, img ImageRecord) bool {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		b.log.Warn("cannot size image, skipping", zap.Int("slide", idx), zap.Int("paragraph", img.Paragraph), zap.Error(err))
		return false
	}
	cx, cy := b.deck.Size()
	r := imageRect(cx, cy, cfg.Width, cfg.Height)
	ext := img.Ext
	if ext == "" {
		ext = format
	}
	if err := slide.AddPicture(img.Data, ext, r); err != nil {
		b.log.Warn("cannot place image, skipping", zap.Int("slide", idx), zap.Int("paragraph", img.Paragraph), zap.Error(err))
		return false
	}
	b.log.Debug("image placed",
		zap.Int("slide", idx),
		zap.Int("paragraph", img.Paragraph),
		zap.Int64("x", r.X), zap.Int64("y", r.Y), zap.Int64("cx", r.CX), zap.Int64("cy", r.CY))
	return true
}

// imageRect sizes a w x h pixel image to at most half the slide in each dimension,
// never upscaled, anchored to the bottom-right corner.
func imageRect(slideW, slideH int64, w, h int) pptx.Rect {
	nw := float64(w) * emuPerPixel
	nh := float64(h) * emuPerPixel
	scale := math.Min(1, math.Min(float64(slideW)/2/nw, float64(slideH)/2/nh))
	cx := int64(nw * scale)
	cy := int64(nh * scale)
	return pptx.Rect{X: slideW - cx, Y: slideH - cy, CX: cx, CY: cy}
}
