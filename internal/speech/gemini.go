package speech

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	genai "google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.5-flash-preview-tts"
	defaultGeminiVoice = "Kore"
	geminiSampleRate   = 24000
)

// Gemini synthesizes speech with the Gemini audio response modality.
type Gemini struct {
	client *genai.Client
	model  string
	voice  string
}

func NewGemini(ctx context.Context, apiKey, model, voice string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("missing Gemini API key")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if voice == "" {
		voice = defaultGeminiVoice
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: c, model: model, voice: voice}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Synthesize(ctx context.Context, req Request) (Audio, error) {
	voice := g.voice
	if req.Voice != "" {
		voice = req.Voice
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			LanguageCode: req.Language,
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
	res, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		genai.NewContentFromText(geminiPrompt(req), genai.RoleUser),
	}, cfg)
	if err != nil {
		return Audio{}, fmt.Errorf("gemini speech: %w", err)
	}
	for _, c := range res.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && len(p.InlineData.Data) > 0 {
				return Audio{Data: WAV(p.InlineData.Data, pcmRate(p.InlineData.MIMEType)), Ext: ".wav"}, nil
			}
		}
	}
	return Audio{}, errors.New("gemini speech: response carries no audio")
}

// geminiPrompt steers pace through the prompt; the API has no rate setting.
func geminiPrompt(req Request) string {
	switch {
	case req.Speed > 0 && req.Speed < 1:
		return "Read slowly and clearly: " + req.Text
	case req.Speed > 1:
		return "Read briskly: " + req.Text
	default:
		return req.Text
	}
}

// pcmRate reads the rate parameter of an audio/L16 MIME type.
func pcmRate(mime string) int {
	for _, param := range strings.Split(mime, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if ok && strings.EqualFold(k, "rate") {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return geminiSampleRate
}
