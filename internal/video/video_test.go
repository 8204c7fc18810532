package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thywilljoshua/word2video/internal/apperr"
	"github.com/thywilljoshua/word2video/internal/media"
	"github.com/thywilljoshua/word2video/internal/pptx/pptxtest"
)

type fakeRenderer struct{ dir string }

func (r fakeRenderer) Render(ctx context.Context, pptxPath string, slides int) (*media.Frames, error) {
	f := &media.Frames{Dir: r.dir}
	for i := 0; i < slides; i++ {
		f.Images = append(f.Images, filepath.Join(r.dir, fmt.Sprintf("slide-%d.png", i+1)))
	}
	return f, nil
}

type fakeEncoder struct {
	clips []media.Clip
	calls int
}

func (e *fakeEncoder) Encode(ctx context.Context, clips []media.Clip, out string) error {
	e.calls++
	e.clips = clips
	return os.WriteFile(out, []byte("mp4"), 0o644)
}

type constProber time.Duration

func (p constProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	return time.Duration(p), nil
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "audio")
	if err := os.MkdirAll(audio, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"slide-001-000.txt", "slide-001-000.mp3", "slide-001-001.txt", "slide-001-001.mp3"} {
		if err := os.WriteFile(filepath.Join(audio, n), []byte("Sentence.\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	enc := &fakeEncoder{}
	srt := filepath.Join(dir, "out.srt")
	res, err := Run(context.Background(), pptxtest.WriteTemplate(t, 3), filepath.Join(dir, "out.mp4"), Config{
		AudioDir:        audio,
		Subtitle:        srt,
		DefaultDuration: 5 * time.Second,
		Renderer:        fakeRenderer{dir: filepath.Join(dir, "frames")},
		Prober:          constProber(2 * time.Second),
		Encoder:         enc,
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Segments != 3 || res.Cues != 2 || res.Seconds != 14 {
		t.Fatalf("result %+v", res)
	}
	if len(enc.clips) != 3 || len(enc.clips[1].Audio) != 2 || enc.clips[1].Duration != 4*time.Second || len(enc.clips[2].Audio) != 0 {
		t.Fatalf("clips %+v", enc.clips)
	}
	b, err := os.ReadFile(srt)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "1\n00:00:05,000 --> 00:00:07,000\nSentence.\n\n2\n00:00:07,000 --> 00:00:09,000\n") {
		t.Fatalf("srt %q", b)
	}
}

func TestRunAbortsOnMismatchBeforeEncoding(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"slide-001-000.txt", "slide-001-001.txt", "slide-001-002.txt", "slide-001-000.wav", "slide-001-001.wav"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	enc := &fakeEncoder{}
	out := filepath.Join(dir, "out.mp4")
	_, err := Run(context.Background(), pptxtest.WriteTemplate(t, 2), out, Config{
		AudioDir:        dir,
		Subtitle:        filepath.Join(dir, "out.srt"),
		DefaultDuration: time.Second,
		Renderer:        fakeRenderer{dir: dir},
		Prober:          constProber(time.Second),
		Encoder:         enc,
	})
	if !apperr.Is(err, apperr.KindConsistency) {
		t.Fatalf("want consistency error, got %v", err)
	}
	if enc.calls != 0 {
		t.Fatal("encoder must not run")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatal("no video file should exist")
	}
}
