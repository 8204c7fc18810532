package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/config"
	"github.com/thywilljoshua/word2video/internal/convert"
	"github.com/thywilljoshua/word2video/internal/media"
	"github.com/thywilljoshua/word2video/internal/narration"
	"github.com/thywilljoshua/word2video/internal/pptx"
	"github.com/thywilljoshua/word2video/internal/speech"
	"github.com/thywilljoshua/word2video/internal/storage"
	"github.com/thywilljoshua/word2video/internal/video"
)

type ttsResult struct {
	Slides    []narration.SlideFragments `json:"slides"`
	Synthesis narration.SynthResult      `json:"synthesis"`
	AudioDir  string                     `json:"audio_dir"`
}

// validate checks the settings of each stage in order.
func (a *app) validate(stages ...config.Stage) error {
	for _, st := range stages {
		if err := a.cfg.Validate(st); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) word2ppt(ctx context.Context) (convert.Result, error) {
	if err := a.cfg.Validate(config.StageWord2PPT); err != nil {
		return convert.Result{}, err
	}
	return convert.Run(ctx, a.cfg.Paths.Input, convert.Config{
		Template:     a.cfg.Paths.Template,
		Output:       a.cfg.Paths.PPTX,
		MaxLeafCount: a.cfg.Mapping.MaxLeafCount,
		Logger:       a.log.Named("word2ppt"),
	})
}

func (a *app) tts(ctx context.Context) (ttsResult, error) {
	cfg := a.cfg
	if err := cfg.Validate(config.StageTTS); err != nil {
		return ttsResult{}, err
	}
	log := a.log.Named("tts")
	deck, err := pptx.Open(cfg.Paths.PPTX)
	if err != nil {
		return ttsResult{}, err
	}
	slides, err := narration.Export(narration.DeckNotes{Deck: deck}, cfg.Paths.AudioDir, log)
	if err != nil {
		return ttsResult{}, err
	}
	synth, err := speech.New(ctx, cfg.Speech)
	if err != nil {
		return ttsResult{}, err
	}
	log.Info("synthesizing", zap.String("provider", synth.Name()), zap.String("language", cfg.Speech.Language), zap.String("speed", cfg.Speech.Speed))

	sc := narration.SynthConfig{
		Dir:         cfg.Paths.AudioDir,
		Synthesizer: synth,
		Request:     speech.RequestFor(cfg.Speech, ""),
		MaxElapsed:  cfg.Speech.MaxElapsed,
		Logger:      log,
	}
	if cfg.Speech.LoudnessTarget < 0 {
		sc.Normalizer = media.Loudness{Target: cfg.Speech.LoudnessTarget}
	}
	res, err := narration.Synthesize(ctx, sc)
	if err != nil {
		return ttsResult{}, err
	}
	return ttsResult{Slides: slides, Synthesis: res, AudioDir: cfg.Paths.AudioDir}, nil
}

func (a *app) ppt2video(ctx context.Context) (video.Result, error) {
	cfg := a.cfg
	if err := cfg.Validate(config.StagePPT2Video); err != nil {
		return video.Result{}, err
	}
	w, h, err := cfg.Video.Size()
	if err != nil {
		return video.Result{}, err
	}
	log := a.log.Named("ppt2video")
	return video.Run(ctx, cfg.Paths.PPTX, cfg.Paths.Video, video.Config{
		AudioDir:        cfg.Paths.AudioDir,
		Subtitle:        cfg.Paths.SubtitlePath(),
		DefaultDuration: cfg.Video.DefaultDuration,
		Renderer:        media.Renderer{BaseDir: cfg.Paths.WorkDir, Logger: log},
		Prober:          media.FFprobe{},
		Encoder:         media.Encoder{Width: w, Height: h, FPS: cfg.Video.FPS, WorkDir: cfg.Paths.WorkDir, Logger: log},
		Logger:          log,
	})
}

// publish uploads files when --upload was given.
func (a *app) publish(ctx context.Context, paths ...string) ([]storage.Object, error) {
	if !a.upload {
		return nil, nil
	}
	p, err := storage.NewPublisher(ctx, a.cfg.Storage, a.log.Named("storage"))
	if err != nil {
		return nil, err
	}
	return p.Publish(ctx, paths...)
}
