package media

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/apperr"
)

const framePrefix = "slide"

// Renderer exports one PNG per slide: LibreOffice converts the deck to PDF and
// pdftoppm rasterizes every page.
type Renderer struct {
	Soffice  string
	Pdftoppm string
	DPI      int
	// BaseDir holds the per-run work directories; the system temp dir when empty.
	BaseDir string
	Run     Runner
	// Pages counts PDF pages; PageCount when nil.
	Pages  func(path string) (int, error)
	Logger *zap.Logger
}

// Frames are the exported slide images, owned by one run.
type Frames struct {
	Dir    string
	Images []string
}

// Close removes the work directory.
func (f *Frames) Close() error {
	if f == nil || f.Dir == "" {
		return nil
	}
	return os.RemoveAll(f.Dir)
}

// Render exports pptxPath to images and checks there is exactly one per slide.
func (r Renderer) Render(ctx context.Context, pptxPath string, slides int) (*Frames, error) {
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}
	base := r.BaseDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "w2v-slides-"+uuid.NewString())
	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	frames := &Frames{Dir: dir}
	fail := func(err error) (*Frames, error) {
		frames.Close()
		return nil, err
	}

	soffice := r.Soffice
	if soffice == "" {
		soffice = "soffice"
	}
	if _, err := run(ctx, r.Run, soffice, "--headless", "--convert-to", "pdf", "--outdir", dir, pptxPath); err != nil {
		return fail(err)
	}
	pdfPath := filepath.Join(dir, strings.TrimSuffix(filepath.Base(pptxPath), filepath.Ext(pptxPath))+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return fail(apperr.External(soffice, err, "expected %s", pdfPath))
	}
	pages := r.Pages
	if pages == nil {
		pages = PageCount
	}
	n, err := pages(pdfPath)
	if err != nil {
		return fail(err)
	}
	log.Info("deck exported to pdf", zap.String("pdf", pdfPath), zap.Int("pages", n), zap.Int("slides", slides))
	if n != slides {
		return fail(apperr.Consistency("render", "pdf has %d pages, deck has %d slides", n, slides))
	}

	pdftoppm := r.Pdftoppm
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	dpi := r.DPI
	if dpi <= 0 {
		dpi = 150
	}
	if _, err := run(ctx, r.Run, pdftoppm, "-png", "-r", strconv.Itoa(dpi), pdfPath, filepath.Join(dir, framePrefix)); err != nil {
		return fail(err)
	}
	images, err := collectFrames(dir)
	if err != nil {
		return fail(err)
	}
	if len(images) != slides {
		return fail(apperr.Consistency("render", "exported %d images, deck has %d slides", len(images), slides))
	}
	for i, img := range images {
		log.Debug("slide image", zap.Int("slide", i), zap.String("file", img))
	}
	frames.Images = images
	return frames, nil
}

func collectFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, framePrefix) && strings.EqualFold(filepath.Ext(name), ".png") {
			out = append(out, filepath.Join(dir, name))
		}
	}
	SortNumeric(out)
	return out, nil
}

// SortNumeric orders file paths by the number ending their base name.
func SortNumeric(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return trailingNumber(paths[i]) < trailingNumber(paths[j])
	})
}

func trailingNumber(path string) int {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	end := len(name)
	for end > 0 && name[end-1] >= '0' && name[end-1] <= '9' {
		end--
	}
	if end == len(name) {
		return -1
	}
	n, err := strconv.Atoi(name[end:])
	if err != nil {
		return -1
	}
	return n
}
