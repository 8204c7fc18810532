package speech

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI synthesizes speech through the audio/speech endpoint of any
// OpenAI-compatible server.
type OpenAI struct {
	cli   *openai.Client
	model string
	voice string
}

func NewOpenAI(apiKey, baseURL, model, voice string) (*OpenAI, error) {
	if apiKey == "" && baseURL == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAI{cli: openai.NewClientWithConfig(cfg), model: model, voice: voice}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Synthesize(ctx context.Context, req Request) (Audio, error) {
	voice := o.voice
	if req.Voice != "" {
		voice = req.Voice
	}
	resp, err := o.cli.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          req.Speed,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()
	b, err := io.ReadAll(resp)
	if err != nil {
		return Audio{}, fmt.Errorf("openai speech: read body: %w", err)
	}
	if len(b) == 0 {
		return Audio{}, errors.New("openai speech: empty body")
	}
	return Audio{Data: b, Ext: ".mp3"}, nil
}
