package media

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FFprobe measures media duration with ffprobe.
type FFprobe struct {
	Bin string
	Run Runner
}

func (p FFprobe) Duration(ctx context.Context, path string) (time.Duration, error) {
	bin := p.Bin
	if bin == "" {
		bin = "ffprobe"
	}
	out, err := run(ctx, p.Run, bin, "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	if err != nil {
		return 0, err
	}
	return parseSeconds(string(out))
}

func parseSeconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[i+1:])
	}
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)).Round(time.Millisecond), nil
}
