// Package timeline lays slides and narration fragments out on a single clock.
package timeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/narration"
)

// Prober measures the playing time of an audio file.
type Prober interface {
	Duration(ctx context.Context, path string) (time.Duration, error)
}

// Segment is the span of the video showing one slide.
type Segment struct {
	Slide    int           `json:"slide"`
	Start    time.Duration `json:"start"`
	Duration time.Duration `json:"duration"`
	// Audio lists the fragment clips in play order; empty means silence.
	Audio []string `json:"audio,omitempty"`
}

func (s Segment) End() time.Duration { return s.Start + s.Duration }

// Silent reports whether the segment has no narration.
func (s Segment) Silent() bool { return len(s.Audio) == 0 }

// Cue is one subtitle entry.
type Cue struct {
	Seq   int           `json:"seq"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Timeline is the assembled schedule of a video.
type Timeline struct {
	Segments []Segment
	Cues     []Cue
	Total    time.Duration
}

type Config struct {
	AudioDir        string
	DefaultDuration time.Duration
	Prober          Prober
	Logger          *zap.Logger
}

type fragment struct {
	text  string
	audio string
}

// Assemble schedules slides [0, slides). Slide 0 is always a silent segment.
// Any other slide plays its fragment audio back to back, one cue per fragment.
// A slide whose text and audio fragment counts differ aborts the run.
func Assemble(ctx context.Context, slides int, cfg Config) (Timeline, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.DefaultDuration <= 0 {
		return Timeline{}, apperr.Config("timeline", nil, "default duration must be positive, got %s", cfg.DefaultDuration)
	}
	texts, audios, err := scan(cfg.AudioDir)
	if err != nil {
		return Timeline{}, err
	}

	var (
		tl  Timeline
		seq = 1
	)
	for i := 0; i < slides; i++ {
		if err := ctx.Err(); err != nil {
			return Timeline{}, err
		}
		if i == 0 {
			tl.silent(i, cfg.DefaultDuration)
			log.Info("title slide", zap.Int("slide", i), zap.Duration("duration", cfg.DefaultDuration))
			continue
		}
		t, a := texts[i], audios[i]
		if len(t) != len(a) {
			return Timeline{}, apperr.Consistency("timeline", "slide %d: %d text fragments, %d audio fragments", i, len(t), len(a))
		}
		if len(a) == 0 {
			tl.silent(i, cfg.DefaultDuration)
			log.Info("silent slide", zap.Int("slide", i), zap.Duration("duration", cfg.DefaultDuration))
			continue
		}
		frags, err := pair(i, t, a)
		if err != nil {
			return Timeline{}, err
		}

		seg := Segment{Slide: i, Start: tl.Total}
		cursor := tl.Total
		for j, f := range frags {
			d, err := cfg.Prober.Duration(ctx, f.audio)
			if err != nil {
				return Timeline{}, apperr.External("probe", err, "cannot measure %s", f.audio)
			}
			if d <= 0 {
				return Timeline{}, apperr.Consistency("timeline", "slide %d fragment %d: non-positive duration %s", i, j, d)
			}
			text, err := narration.ReadText(f.text)
			if err != nil {
				return Timeline{}, err
			}
			tl.Cues = append(tl.Cues, Cue{Seq: seq, Start: cursor, End: cursor + d, Text: text})
			log.Debug("cue", zap.Int("seq", seq), zap.Int("slide", i), zap.Int("fragment", j),
				zap.Duration("start", cursor), zap.Duration("end", cursor+d))
			seq++
			cursor += d
			seg.Audio = append(seg.Audio, f.audio)
		}
		seg.Duration = cursor - seg.Start
		tl.Segments = append(tl.Segments, seg)
		tl.Total = cursor
		log.Info("narrated slide",
			zap.Int("slide", i),
			zap.Int("fragments", len(frags)),
			zap.Duration("start", seg.Start),
			zap.Duration("duration", seg.Duration),
			zap.Duration("total", tl.Total))
	}
	return tl, nil
}

func (tl *Timeline) silent(slide int, d time.Duration) {
	tl.Segments = append(tl.Segments, Segment{Slide: slide, Start: tl.Total, Duration: d})
	tl.Total += d
}

// scan indexes fragment files by slide and fragment index.
func scan(dir string) (texts, audios map[int]map[int]string, err error) {
	texts, audios = map[int]map[int]string{}, map[int]map[int]string{}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return texts, audios, nil
	}
	if err != nil {
		return nil, nil, err
	}
	// several clips for one fragment resolve in AudioExts order, as synthesis does
	rank := make(map[string]int, len(narration.AudioExts))
	for i, ext := range narration.AudioExts {
		rank[ext] = i
	}
	chosen := map[[2]int]int{}
	put := func(m map[int]map[int]string, slide, frag int, path string) {
		if m[slide] == nil {
			m[slide] = map[int]string{}
		}
		m[slide][frag] = path
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		slide, frag, ext, ok := narration.ParseName(e.Name())
		if !ok {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch {
		case ext == narration.TextExt:
			put(texts, slide, frag, path)
		case narration.IsAudio(ext):
			key := [2]int{slide, frag}
			if r, seen := chosen[key]; seen && r <= rank[ext] {
				continue
			}
			chosen[key] = rank[ext]
			put(audios, slide, frag, path)
		}
	}
	return texts, audios, nil
}

// pair matches text and audio by fragment index, in index order.
func pair(slide int, texts, audios map[int]string) ([]fragment, error) {
	idx := make([]int, 0, len(audios))
	for j := range audios {
		idx = append(idx, j)
	}
	sort.Ints(idx)
	out := make([]fragment, 0, len(idx))
	for _, j := range idx {
		t, ok := texts[j]
		if !ok {
			return nil, apperr.Consistency("timeline", "slide %d: audio fragment %d has no text", slide, j)
		}
		out = append(out, fragment{text: t, audio: audios[j]})
	}
	return out, nil
}
