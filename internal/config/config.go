package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/thywilljoshua/word2video/internal/apperr"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "W2V"

// Stage selects which sections Validate checks.
type Stage int

const (
	StageWord2PPT Stage = iota
	StageTTS
	StagePPT2Video
)

// Config holds every setting of the pipeline.
type Config struct {
	Paths   PathsConfig
	Mapping MappingConfig
	Speech  SpeechConfig
	Video   VideoConfig
	Storage StorageConfig
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	Input    string `envconfig:"INPUT" default:"input.docx"`
	Template string `envconfig:"TEMPLATE"`
	PPTX     string `envconfig:"PPTX" default:"output.pptx"`
	AudioDir string `envconfig:"AUDIO_DIR" default:"audio"`
	Video    string `envconfig:"VIDEO" default:"output.mp4"`
	Subtitle string `envconfig:"SUBTITLE"`
	WorkDir  string `envconfig:"WORK_DIR"`
}

// MappingConfig tunes the document-to-deck mapping.
type MappingConfig struct {
	MaxLeafCount int `envconfig:"MAX_LEAF_COUNT" default:"8" validate:"gte=1"`
}

// SpeechConfig selects and tunes the speech synthesizer.
type SpeechConfig struct {
	Provider       string        `envconfig:"PROVIDER" default:"off" validate:"oneof=off gemini openai command"`
	Language       string        `envconfig:"LANGUAGE" default:"zh-CN" validate:"required,bcp47_language_tag"`
	Speed          string        `envconfig:"SPEED" default:"normal" validate:"oneof=slow normal fast"`
	Voice          string        `envconfig:"VOICE"`
	Model          string        `envconfig:"MODEL"`
	APIKey         string        `envconfig:"API_KEY" validate:"required_if=Provider gemini"`
	BaseURL        string        `envconfig:"BASE_URL" validate:"omitempty,url"`
	RefAudio       string        `envconfig:"REF_AUDIO"`
	RefText        string        `envconfig:"REF_TEXT"`
	Command        string        `envconfig:"COMMAND" validate:"required_if=Provider command"`
	LoudnessTarget float64       `envconfig:"LOUDNESS_TARGET" validate:"lte=0"`
	MaxElapsed     time.Duration `envconfig:"RETRY_MAX_ELAPSED" default:"1m"`
}

// VideoConfig tunes rendering and encoding.
type VideoConfig struct {
	DefaultDuration time.Duration `envconfig:"DEFAULT_DURATION" default:"5s" validate:"gt=0"`
	Resolution      string        `envconfig:"RESOLUTION" default:"1920x1080" validate:"required"`
	FPS             int           `envconfig:"FPS" default:"24" validate:"gte=1,lte=120"`
}

// StorageConfig holds the optional publication target.
type StorageConfig struct {
	Endpoint        string `envconfig:"ENDPOINT"`
	AccessKeyID     string `envconfig:"ACCESS_KEY"`
	SecretAccessKey string `envconfig:"SECRET_KEY"`
	Bucket          string `envconfig:"BUCKET" default:"word2video"`
	UseSSL          bool   `envconfig:"USE_SSL"`
}

// Load reads an optional .env file, then the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, apperr.Config("load env file", err, "cannot read %s", envFile)
		}
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperr.Config("process environment", err, "invalid %s_* variable", EnvPrefix)
	}
	return &cfg, nil
}

// Validate checks the sections a stage depends on.
func (c *Config) Validate(stage Stage) error {
	v := validator.New()
	switch stage {
	case StageWord2PPT:
		if strings.TrimSpace(c.Paths.Template) == "" {
			return apperr.Config("validate", nil, "a template PPTX file must be provided")
		}
		if err := v.Struct(c.Mapping); err != nil {
			return apperr.Config("validate mapping", err, "invalid mapping settings")
		}
	case StageTTS:
		if err := v.Struct(c.Speech); err != nil {
			return apperr.Config("validate speech", err, "invalid speech settings")
		}
	case StagePPT2Video:
		if err := v.Struct(c.Video); err != nil {
			return apperr.Config("validate video", err, "invalid video settings")
		}
		if _, _, err := c.Video.Size(); err != nil {
			return apperr.Config("validate video", err, "invalid resolution %q", c.Video.Resolution)
		}
	}
	return nil
}

// Size parses Resolution as WIDTHxHEIGHT.
func (v VideoConfig) Size() (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(v.Resolution), "x")
	if !ok {
		return 0, 0, fmt.Errorf("want WIDTHxHEIGHT")
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("bad width %q", w)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("bad height %q", h)
	}
	// yuv420p needs even dimensions
	return width &^ 1, height &^ 1, nil
}

// SpeedFactor maps the speed selector to a playback rate.
func (s SpeechConfig) SpeedFactor() float64 {
	switch s.Speed {
	case "slow":
		return 0.8
	case "fast":
		return 1.25
	default:
		return 1.0
	}
}

// SubtitlePath defaults to the video path with an .srt extension.
func (p PathsConfig) SubtitlePath() string {
	if p.Subtitle != "" {
		return p.Subtitle
	}
	return strings.TrimSuffix(p.Video, filepath.Ext(p.Video)) + ".srt"
}

// Enabled reports whether a publication target is configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}
