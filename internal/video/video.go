// Package video renders a narrated deck into a video with subtitles.
package video

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/media"
	"github.com/thywilljoshua/word2video/internal/pptx"
	"github.com/thywilljoshua/word2video/internal/timeline"
)

// Renderer exports one image per slide.
type Renderer interface {
	Render(ctx context.Context, pptxPath string, slides int) (*media.Frames, error)
}

// Encoder writes clips to a video file.
type Encoder interface {
	Encode(ctx context.Context, clips []media.Clip, out string) error
}

type Config struct {
	AudioDir        string
	Subtitle        string
	DefaultDuration time.Duration
	Renderer        Renderer
	Prober          timeline.Prober
	Encoder         Encoder
	Logger          *zap.Logger
}

type Result struct {
	Video    string  `json:"video"`
	Subtitle string  `json:"subtitle"`
	Slides   int     `json:"slides"`
	Segments int     `json:"segments"`
	Cues     int     `json:"cues"`
	Seconds  float64 `json:"duration_seconds"`
}

// Run assembles the timeline first, so a fragment mismatch aborts before any
// rendering or encoding; then renders slides, encodes and writes subtitles.
func Run(ctx context.Context, pptxPath, videoPath string, cfg Config) (Result, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Renderer == nil || cfg.Encoder == nil || cfg.Prober == nil {
		return Result{}, apperr.Config("ppt2video", nil, "renderer, prober and encoder are required")
	}
	deck, err := pptx.Open(pptxPath)
	if err != nil {
		return Result{}, err
	}
	slides := deck.Len()
	if slides == 0 {
		return Result{}, apperr.Config("ppt2video", nil, "%s has no slides", pptxPath)
	}

	tl, err := timeline.Assemble(ctx, slides, timeline.Config{
		AudioDir:        cfg.AudioDir,
		DefaultDuration: cfg.DefaultDuration,
		Prober:          cfg.Prober,
		Logger:          log,
	})
	if err != nil {
		return Result{}, err
	}
	log.Info("timeline assembled", zap.Int("segments", len(tl.Segments)), zap.Int("cues", len(tl.Cues)), zap.Duration("total", tl.Total))

	frames, err := cfg.Renderer.Render(ctx, pptxPath, slides)
	if err != nil {
		return Result{}, err
	}
	defer frames.Close()

	clips := make([]media.Clip, 0, len(tl.Segments))
	for _, seg := range tl.Segments {
		if seg.Slide >= len(frames.Images) {
			return Result{}, apperr.Consistency("ppt2video", "no image for slide %d", seg.Slide)
		}
		clips = append(clips, media.Clip{Image: frames.Images[seg.Slide], Audio: seg.Audio, Duration: seg.Duration})
	}
	if err := cfg.Encoder.Encode(ctx, clips, videoPath); err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", videoPath, err)
	}
	if err := timeline.SaveSRT(cfg.Subtitle, tl.Cues); err != nil {
		return Result{}, fmt.Errorf("write %s: %w", cfg.Subtitle, err)
	}
	log.Info("subtitles written", zap.String("file", cfg.Subtitle), zap.Int("cues", len(tl.Cues)))

	return Result{
		Video:    videoPath,
		Subtitle: cfg.Subtitle,
		Slides:   slides,
		Segments: len(tl.Segments),
		Cues:     len(tl.Cues),
		Seconds:  tl.Total.Seconds(),
	}, nil
}
