package convert

import (
	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/docx"
	"github.com/thywilljoshua/word2video/internal/pptx"
)

// Config controls one word2ppt run.
type Config struct {
	Template     string
	Output       string
	MaxLeafCount int
	Logger       *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Result summarizes the written deck.
type Result struct {
	Slides []SlideSummary `json:"slides"`
	Images int            `json:"images_placed"`
	Output string         `json:"output"`
}

// SlideSummary describes one emitted slide.
type SlideSummary struct {
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Subheadings int    `json:"subheadings"`
	NotesLines  int    `json:"notes_lines"`
	Image       bool   `json:"image"`
	Reused      bool   `json:"reused_template_slide"`
}

// Section is the paragraph range [Start, End) governed by one level-1 heading.
type Section struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ImageRecord is an extracted picture and the paragraph it is anchored to.
type ImageRecord struct {
	Paragraph int
	Offset    int64
	RelID     string
	Floating  bool
	Data      []byte
	Ext       string
}

// SlideSpec is the normalized content of one slide.
type SlideSpec struct {
	Title       string
	Subheadings []string
	Notes       string
	Image       *ImageRecord
}

// Document is the paragraph source of a mapping run.
type Document interface {
	Paragraphs() []docx.Paragraph
	Image(ref docx.ImageRef) ([]byte, string, error)
}

// Deck is the slide sink of a mapping run.
type Deck interface {
	Len() int
	Slide(i int) Slide
	AddSlide(layout int) (Slide, error)
	Size() (cx, cy int64)
}

// Slide exposes the typed slots a mapping run writes to.
type Slide interface {
	TitleSlot() (TextSlot, bool)
	BodySlot() (TextSlot, bool)
	NotesSlot() (TextSlot, error)
	AddPicture(data []byte, ext string, r pptx.Rect) error
}

// TextSlot is a placeholder text frame.
type TextSlot interface {
	SetParagraphs(paras []string) error
}
