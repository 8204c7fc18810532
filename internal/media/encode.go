package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Clip is one still image shown for Duration over its audio, or over silence.
type Clip struct {
	Image    string
	Audio    []string
	Duration time.Duration
}

// Encoder builds the video with ffmpeg: one clip per segment, then a stream-copy
// concatenation of the clips.
type Encoder struct {
	FFmpeg string
	Width  int
	Height int
	FPS    int
	// WorkDir receives the intermediate clips.
	WorkDir string
	Run     Runner
	Logger  *zap.Logger
}

func (e Encoder) bin() string {
	if e.FFmpeg == "" {
		return "ffmpeg"
	}
	return e.FFmpeg
}

// Encode writes clips in order to out.
func (e Encoder) Encode(ctx context.Context, clips []Clip, out string) error {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if len(clips) == 0 {
		return fmt.Errorf("no clips to encode")
	}
	work := e.WorkDir
	if work == "" {
		work = filepath.Dir(out)
	}
	if err := os.MkdirAll(work, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	var list strings.Builder
	parts := make([]string, 0, len(clips))
	defer func() {
		for _, p := range parts {
			os.Remove(p)
		}
	}()
	for i, c := range clips {
		if err := ctx.Err(); err != nil {
			return err
		}
		part := filepath.Join(work, fmt.Sprintf("clip-%03d.mp4", i))
		if _, err := run(ctx, e.Run, e.bin(), e.clipArgs(c, part)...); err != nil {
			return fmt.Errorf("clip %d: %w", i, err)
		}
		parts = append(parts, part)
		abs, err := filepath.Abs(part)
		if err != nil {
			return err
		}
		fmt.Fprintf(&list, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
		log.Info("clip encoded", zap.Int("clip", i), zap.Duration("duration", c.Duration), zap.Int("audio_fragments", len(c.Audio)))
	}

	listPath := filepath.Join(work, "clips.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0o644); err != nil {
		return err
	}
	defer os.Remove(listPath)
	if _, err := run(ctx, e.Run, e.bin(), "-y", "-f", "concat", "-safe", "0", "-i", listPath, "-c", "copy", out); err != nil {
		return fmt.Errorf("concat: %w", err)
	}
	log.Info("video written", zap.String("output", out), zap.Int("clips", len(clips)))
	return nil
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

// clipArgs renders a still image for the clip's duration. Audio fragments are
// joined with the concat filter; a clip without audio gets generated silence so
// every clip has the same stream layout.
func (e Encoder) clipArgs(c Clip, out string) []string {
	fps := e.FPS
	if fps <= 0 {
		fps = 24
	}
	dur := seconds(c.Duration)
	args := []string{"-y", "-loop", "1", "-framerate", strconv.Itoa(fps), "-t", dur, "-i", c.Image}
	if len(c.Audio) == 0 {
		args = append(args, "-f", "lavfi", "-t", dur, "-i", "anullsrc=channel_layout=stereo:sample_rate=44100")
	} else {
		for _, a := range c.Audio {
			args = append(args, "-i", a)
		}
	}

	video := fmt.Sprintf("[0:v]scale=%[1]d:%[2]d:force_original_aspect_ratio=decrease,pad=%[1]d:%[2]d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%[3]d,format=yuv420p[v]",
		e.Width, e.Height, fps)
	filter := video
	audio := "1:a"
	if n := len(c.Audio); n > 1 {
		var in strings.Builder
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&in, "[%d:a]", i)
		}
		filter += fmt.Sprintf(";%sconcat=n=%d:v=0:a=1[a]", in.String(), n)
		audio = "[a]"
	}
	return append(args,
		"-filter_complex", filter,
		"-map", "[v]", "-map", audio,
		"-c:v", "libx264", "-tune", "stillimage", "-pix_fmt", "yuv420p",
		"-c:a", "aac", "-ar", "44100", "-ac", "2",
		"-t", dur, out)
}

// Loudness normalizes audio files in place with the loudnorm filter.
type Loudness struct {
	FFmpeg string
	// Target is the integrated loudness in LUFS.
	Target float64
	Run    Runner
}

func (l Loudness) Normalize(ctx context.Context, path string) error {
	bin := l.FFmpeg
	if bin == "" {
		bin = "ffmpeg"
	}
	ext := filepath.Ext(path)
	tmp := strings.TrimSuffix(path, ext) + ".norm" + ext
	if _, err := run(ctx, l.Run, bin, l.args(path, tmp)...); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (l Loudness) args(in, out string) []string {
	filter := fmt.Sprintf("loudnorm=I=%s:TP=-1.5:LRA=11", strconv.FormatFloat(l.Target, 'f', -1, 64))
	return []string{"-y", "-i", in, "-af", filter, out}
}
