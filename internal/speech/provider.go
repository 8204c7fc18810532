package speech

import (
	"context"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/config"
)

// New builds the synthesizer selected by cfg.Provider.
func New(ctx context.Context, cfg config.SpeechConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case "", "off":
		return Noop{}, nil
	case "gemini":
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.Voice)
		if err != nil {
			return nil, apperr.Config("speech provider", err, "cannot create Gemini client")
		}
		return g, nil
	case "openai":
		o, err := NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Voice)
		if err != nil {
			return nil, apperr.Config("speech provider", err, "cannot create OpenAI client")
		}
		return o, nil
	case "command":
		return Command{Template: cfg.Command}, nil
	default:
		return nil, apperr.Config("speech provider", nil, "unknown provider %q", cfg.Provider)
	}
}

// RequestFor fills the per-run fields of a request.
func RequestFor(cfg config.SpeechConfig, text string) Request {
	return Request{
		Text:     text,
		Language: cfg.Language,
		Voice:    cfg.Voice,
		Speed:    cfg.SpeedFactor(),
		RefAudio: cfg.RefAudio,
		RefText:  cfg.RefText,
	}
}
