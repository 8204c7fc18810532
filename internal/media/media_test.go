package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/thywilljoshua/word2video/internal/apperr"
)

func TestSortNumeric(t *testing.T) {
	paths := []string{"/w/slide-10.png", "/w/slide-2.png", "/w/slide-01.png", "/w/slide-9.png"}
	SortNumeric(paths)
	want := []string{"/w/slide-01.png", "/w/slide-2.png", "/w/slide-9.png", "/w/slide-10.png"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("got %v", paths)
	}
}

func TestParseSeconds(t *testing.T) {
	d, err := parseSeconds("1.500000\n")
	if err != nil || d != 1500*time.Millisecond {
		t.Fatalf("got %s %v", d, err)
	}
	if _, err := parseSeconds("N/A"); err == nil {
		t.Fatal("expected error")
	}
}

func TestFFprobeDuration(t *testing.T) {
	var gotArgs []string
	p := FFprobe{Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = append([]string{name}, args...)
		return []byte("2.040000\n"), nil
	}}
	d, err := p.Duration(context.Background(), "a.mp3")
	if err != nil || d != 2040*time.Millisecond {
		t.Fatalf("got %s %v", d, err)
	}
	if gotArgs[0] != "ffprobe" || gotArgs[len(gotArgs)-1] != "a.mp3" {
		t.Fatalf("args %v", gotArgs)
	}
}

func TestRunnerErrorIsExternal(t *testing.T) {
	p := FFprobe{Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("no such file"), errors.New("exit status 1")
	}}
	_, err := p.Duration(context.Background(), "a.mp3")
	if !apperr.Is(err, apperr.KindExternal) || !strings.Contains(err.Error(), "no such file") {
		t.Fatalf("got %v", err)
	}
}

func TestClipArgs(t *testing.T) {
	e := Encoder{Width: 1280, Height: 720, FPS: 24}
	silent := strings.Join(e.clipArgs(Clip{Image: "s0.png", Duration: 5 * time.Second}, "c0.mp4"), " ")
	for _, want := range []string{
		"-loop 1 -framerate 24 -t 5.000 -i s0.png",
		"-f lavfi -t 5.000 -i anullsrc=channel_layout=stereo:sample_rate=44100",
		"scale=1280:720:force_original_aspect_ratio=decrease,pad=1280:720:",
		"-map [v] -map 1:a",
		"-t 5.000 c0.mp4",
	} {
		if !strings.Contains(silent, want) {
			t.Errorf("silent clip args missing %q:\n%s", want, silent)
		}
	}

	voiced := strings.Join(e.clipArgs(Clip{Image: "s1.png", Audio: []string{"a.wav", "b.mp3"}, Duration: 4700 * time.Millisecond}, "c1.mp4"), " ")
	for _, want := range []string{
		"-i s1.png -i a.wav -i b.mp3",
		";[1:a][2:a]concat=n=2:v=0:a=1[a]",
		"-map [v] -map [a]",
		"-t 4.700 c1.mp4",
	} {
		if !strings.Contains(voiced, want) {
			t.Errorf("voiced clip args missing %q:\n%s", want, voiced)
		}
	}
	if strings.Contains(voiced, "anullsrc") {
		t.Error("voiced clip should not add silence")
	}
}

func TestEncodeConcatenatesClips(t *testing.T) {
	dir := t.TempDir()
	var calls [][]string
	var list string
	e := Encoder{Width: 640, Height: 360, FPS: 24, WorkDir: filepath.Join(dir, "work"), Run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, args)
		if args[1] == "-f" && args[2] == "concat" {
			b, err := os.ReadFile(args[6])
			if err != nil {
				return nil, err
			}
			list = string(b)
		}
		return nil, nil
	}}
	clips := []Clip{
		{Image: "s0.png", Duration: time.Second},
		{Image: "s1.png", Audio: []string{"a.wav"}, Duration: 2 * time.Second},
	}
	if err := e.Encode(context.Background(), clips, filepath.Join(dir, "out.mp4")); err != nil {
		t.Fatal(err)
	}
	if len(calls) != 3 {
		t.Fatalf("want 2 clips and a concat, got %d calls", len(calls))
	}
	if strings.Count(list, "file '") != 2 || !strings.Contains(list, "clip-001.mp4") {
		t.Fatalf("concat list %q", list)
	}
}

func TestLoudnessArgs(t *testing.T) {
	got := Loudness{Target: -16}.args("in.wav", "out.wav")
	want := []string{"-y", "-i", "in.wav", "-af", "loudnorm=I=-16:TP=-1.5:LRA=11", "out.wav"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v", got)
	}
}

// fakeTools stands in for soffice and pdftoppm by writing their outputs.
func fakeTools(images int) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		switch name {
		case "soffice":
			outDir, src := args[len(args)-2], args[len(args)-1]
			pdf := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".pdf"
			return nil, os.WriteFile(filepath.Join(outDir, pdf), []byte("%PDF"), 0o644)
		case "pdftoppm":
			prefix := args[len(args)-1]
			for i := 1; i <= images; i++ {
				name := fmt.Sprintf("%s-%02d.png", prefix, i)
				if err := os.WriteFile(name, []byte("png"), 0o644); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}
		return nil, fmt.Errorf("unexpected tool %s", name)
	}
}

func TestRender(t *testing.T) {
	base := t.TempDir()
	r := Renderer{BaseDir: base, Run: fakeTools(12), Pages: func(string) (int, error) { return 12, nil }}
	frames, err := r.Render(context.Background(), "/decks/output.pptx", 12)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames.Images) != 12 || filepath.Base(frames.Images[0]) != "slide-01.png" || filepath.Base(frames.Images[11]) != "slide-12.png" {
		t.Fatalf("images %v", frames.Images)
	}
	if err := frames.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(frames.Dir); !os.IsNotExist(err) {
		t.Fatal("work dir should be removed on close")
	}
}

func TestRenderCountMismatch(t *testing.T) {
	base := t.TempDir()
	r := Renderer{BaseDir: base, Run: fakeTools(3), Pages: func(string) (int, error) { return 4, nil }}
	if _, err := r.Render(context.Background(), "deck.pptx", 4); !apperr.Is(err, apperr.KindConsistency) {
		t.Fatalf("want consistency error, got %v", err)
	}
	r.Pages = func(string) (int, error) { return 3, nil }
	if _, err := r.Render(context.Background(), "deck.pptx", 4); !apperr.Is(err, apperr.KindConsistency) {
		t.Fatalf("page count mismatch should be a consistency error, got %v", err)
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed renders should clean up, found %d entries", len(entries))
	}
}
