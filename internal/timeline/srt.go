package timeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Timestamp formats d as HH:MM:SS,mmm, rounded to the millisecond.
func Timestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Round(time.Millisecond).Milliseconds()
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// WriteSRT writes cues as SubRip blocks in sequence order.
func WriteSRT(w io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(w)
	for _, c := range cues {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", c.Seq, Timestamp(c.Start), Timestamp(c.End), c.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveSRT writes cues to path, creating its directory.
func SaveSRT(path string, cues []Cue) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSRT(f, cues); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
