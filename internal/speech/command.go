package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Command runs an external synthesis program, typically a voice-cloning engine fed
// with a reference recording. Template is split on whitespace and each argument may
// hold the placeholders {text}, {output}, {ref_audio}, {ref_text} and {speed}.
type Command struct {
	Template string
	// Ext is the extension of the file the program writes, ".wav" when empty.
	Ext string
}

func (c Command) Name() string { return "command" }

func (c Command) Synthesize(ctx context.Context, req Request) (Audio, error) {
	ext := c.Ext
	if ext == "" {
		ext = ".wav"
	}
	dir, err := os.MkdirTemp("", "w2v-tts-")
	if err != nil {
		return Audio{}, err
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "out"+ext)

	args, err := c.args(req, out)
	if err != nil {
		return Audio{}, err
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if b, err := cmd.CombinedOutput(); err != nil {
		return Audio{}, fmt.Errorf("%s: %w: %s", args[0], err, strings.TrimSpace(string(b)))
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return Audio{}, fmt.Errorf("%s wrote no audio: %w", args[0], err)
	}
	return Audio{Data: data, Ext: ext}, nil
}

func (c Command) args(req Request, out string) ([]string, error) {
	fields := strings.Fields(c.Template)
	if len(fields) == 0 {
		return nil, errors.New("empty synthesis command")
	}
	speed := req.Speed
	if speed <= 0 {
		speed = 1
	}
	r := strings.NewReplacer(
		"{text}", req.Text,
		"{output}", out,
		"{ref_audio}", req.RefAudio,
		"{ref_text}", req.RefText,
		"{speed}", strconv.FormatFloat(speed, 'f', -1, 64),
	)
	for i, f := range fields {
		fields[i] = r.Replace(f)
	}
	return fields, nil
}
