// Package speech turns narration text into audio.
package speech

import (
	"context"
	"errors"
)

// ErrDisabled is returned by Noop. Callers treat it as permanent.
var ErrDisabled = errors.New("speech synthesis disabled")

// Request is one fragment to synthesize.
type Request struct {
	Text     string
	Language string
	Voice    string
	// Speed is a playback rate, 1.0 being normal.
	Speed    float64
	RefAudio string
	RefText  string
}

// Audio is a synthesized clip. Ext includes the leading dot.
type Audio struct {
	Data []byte
	Ext  string
}

type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req Request) (Audio, error)
}

// Noop synthesizes nothing; only pre-recorded audio is used.
type Noop struct{}

func (Noop) Name() string { return "off" }

func (Noop) Synthesize(ctx context.Context, req Request) (Audio, error) {
	return Audio{}, ErrDisabled
}
