package narration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/speech"
)

// Normalizer adjusts the loudness of an audio file in place.
type Normalizer interface {
	Normalize(ctx context.Context, path string) error
}

// SynthConfig controls one synthesis pass over an audio directory.
type SynthConfig struct {
	Dir         string
	Synthesizer speech.Synthesizer
	// Request carries the per-run fields; Text is filled per fragment.
	Request speech.Request
	// MaxElapsed bounds the retries of one fragment when BackOff is nil.
	MaxElapsed time.Duration
	BackOff    backoff.BackOff
	Normalizer Normalizer
	Logger     *zap.Logger
}

// SynthResult counts what happened to each fragment.
type SynthResult struct {
	Fragments   int      `json:"fragments"`
	Reused      int      `json:"reused"`
	Synthesized int      `json:"synthesized"`
	Failed      []string `json:"failed,omitempty"`
}

// Synthesize produces audio for every fragment text in cfg.Dir that has none yet.
// A fragment that keeps failing is logged and skipped.
func Synthesize(ctx context.Context, cfg SynthConfig) (SynthResult, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	synth := cfg.Synthesizer
	if synth == nil {
		synth = speech.Noop{}
	}
	names, err := textFiles(cfg.Dir)
	if err != nil {
		return SynthResult{}, err
	}

	var res SynthResult
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Fragments++
		stem := name[:len(name)-len(TextExt)]
		if audio, ok := findAudio(cfg.Dir, stem); ok {
			log.Info("reusing audio", zap.String("fragment", stem), zap.String("file", audio))
			res.Reused++
			continue
		}
		text, err := ReadText(filepath.Join(cfg.Dir, name))
		if err != nil {
			return res, err
		}
		audio, err := synthesizeOne(ctx, cfg, synth, text)
		if err != nil {
			xerr := apperr.External("synthesize", err, "fragment %s", stem)
			if errors.Is(err, speech.ErrDisabled) {
				log.Warn("no audio for fragment", zap.String("fragment", stem), zap.String("provider", synth.Name()))
			} else {
				log.Error("synthesis failed", zap.String("fragment", stem), zap.Error(xerr))
			}
			res.Failed = append(res.Failed, stem)
			continue
		}
		path := filepath.Join(cfg.Dir, stem+audio.Ext)
		if err := os.WriteFile(path, audio.Data, 0o644); err != nil {
			return res, err
		}
		if cfg.Normalizer != nil {
			if err := cfg.Normalizer.Normalize(ctx, path); err != nil {
				log.Warn("loudness normalization failed", zap.String("file", path), zap.Error(err))
			}
		}
		log.Info("audio synthesized", zap.String("fragment", stem), zap.String("file", path), zap.Int("bytes", len(audio.Data)))
		res.Synthesized++
	}
	return res, nil
}

func synthesizeOne(ctx context.Context, cfg SynthConfig, synth speech.Synthesizer, text string) (speech.Audio, error) {
	bo := cfg.BackOff
	if bo == nil {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = time.Second
		eb.MaxInterval = 10 * time.Second
		eb.MaxElapsedTime = cfg.MaxElapsed
		if eb.MaxElapsedTime <= 0 {
			eb.MaxElapsedTime = time.Minute
		}
		bo = eb
	}
	req := cfg.Request
	req.Text = text
	var audio speech.Audio
	op := func() error {
		a, err := synth.Synthesize(ctx, req)
		if errors.Is(err, speech.ErrDisabled) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}
		if len(a.Data) == 0 {
			return errors.New("empty audio")
		}
		audio = a
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return speech.Audio{}, err
	}
	return audio, nil
}

func textFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if _, _, ext, ok := ParseName(e.Name()); ok && !e.IsDir() && ext == TextExt {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// findAudio returns the first existing audio file for a fragment stem.
func findAudio(dir, stem string) (string, bool) {
	for _, ext := range AudioExts {
		p := filepath.Join(dir, stem+ext)
		if st, err := os.Stat(p); err == nil && !st.IsDir() && st.Size() > 0 {
			return p, true
		}
	}
	return "", false
}
