package narration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/pptx"
)

// NotesSource yields the speaker notes of each slide.
type NotesSource interface {
	Len() int
	Notes(slide int) (string, error)
}

// DeckNotes reads notes from a presentation.
type DeckNotes struct{ Deck *pptx.Deck }

func (d DeckNotes) Len() int { return d.Deck.Len() }

func (d DeckNotes) Notes(slide int) (string, error) { return d.Deck.Slide(slide).Notes() }

// SlideFragments lists the fragments written for one slide.
type SlideFragments struct {
	Slide     int      `json:"slide"`
	Fragments []string `json:"fragments"`
}

// Export writes one text file per fragment into dir and removes the text and audio
// of fragments left over from earlier runs that no longer exist.
func Export(src NotesSource, dir string, log *zap.Logger) ([]SlideFragments, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	existing, err := existingFragments(dir)
	if err != nil {
		return nil, err
	}

	var out []SlideFragments
	for i := 0; i < src.Len(); i++ {
		notes, err := src.Notes(i)
		if err != nil {
			return nil, fmt.Errorf("slide %d notes: %w", i, err)
		}
		frags := Fragments(notes)
		for j, f := range frags {
			path := filepath.Join(dir, FragmentName(i, j)+TextExt)
			if err := os.WriteFile(path, []byte(f+"\n"), 0o644); err != nil {
				return nil, err
			}
		}
		for j := range existing[i] {
			if j >= len(frags) {
				if err := removeFragment(dir, i, j, log); err != nil {
					return nil, err
				}
			}
		}
		delete(existing, i)
		if len(frags) == 0 {
			log.Debug("slide has no notes", zap.Int("slide", i))
			continue
		}
		log.Info("notes exported", zap.Int("slide", i), zap.Int("fragments", len(frags)))
		out = append(out, SlideFragments{Slide: i, Fragments: frags})
	}
	// slides past the end of the deck
	for i, frags := range existing {
		for j := range frags {
			if err := removeFragment(dir, i, j, log); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// existingFragments maps slide index to the fragment indexes that have a text or
// audio file in dir.
func existingFragments(dir string) (map[int]map[int]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := map[int]map[int]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		slide, frag, ext, ok := ParseName(e.Name())
		if !ok || (ext != TextExt && !IsAudio(ext)) {
			continue
		}
		if out[slide] == nil {
			out[slide] = map[int]bool{}
		}
		out[slide][frag] = true
	}
	return out, nil
}

// removeFragment deletes the text and every audio file of one fragment.
func removeFragment(dir string, slide, frag int, log *zap.Logger) error {
	stem := filepath.Join(dir, FragmentName(slide, frag))
	for _, ext := range append([]string{TextExt}, AudioExts...) {
		if err := os.Remove(stem + ext); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	log.Info("removed stale fragment", zap.Int("slide", slide), zap.Int("fragment", frag))
	return nil
}

// ReadText returns the trimmed text of a fragment file.
func ReadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
