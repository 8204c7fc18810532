// Package narration exports speaker notes as sentence fragments and synthesizes
// the missing audio for them.
package narration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// TextExt is the extension of fragment text files.
const TextExt = ".txt"

// AudioExts are the audio extensions recognised as a fragment's clip, in lookup order.
var AudioExts = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac"}

// FragmentName is the file stem shared by a fragment's text and audio.
func FragmentName(slide, fragment int) string {
	return fmt.Sprintf("slide-%03d-%03d", slide, fragment)
}

var nameRe = regexp.MustCompile(`^slide-(\d{3,})-(\d{3,})(\.[A-Za-z0-9]+)$`)

// ParseName splits a fragment file name into slide index, fragment index and extension.
func ParseName(name string) (slide, fragment int, ext string, ok bool) {
	m := nameRe.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, "", false
	}
	slide, _ = strconv.Atoi(m[1])
	fragment, _ = strconv.Atoi(m[2])
	return slide, fragment, strings.ToLower(m[3]), true
}

// IsAudio reports whether ext is one of AudioExts.
func IsAudio(ext string) bool {
	for _, a := range AudioExts {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}

// Fragments splits notes into normalized sentence fragments. Every non-blank line is
// a paragraph; paragraphs are cut after sentence-ending punctuation.
func Fragments(notes string) []string {
	var out []string
	for _, line := range strings.Split(notes, "\n") {
		for _, s := range sentences(line) {
			s = strings.TrimSpace(spellOut(s))
			if hasContent(s) {
				out = append(out, s)
			}
		}
	}
	return out
}

// sentences cuts after . ! ? when followed by whitespace or the end of text,
// and always after the full-width 。！？.
func sentences(p string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(p)
	for i, r := range runes {
		cut := false
		switch r {
		case '。', '！', '？':
			cut = true
		case '.', '!', '?':
			cut = i+1 == len(runes) || unicode.IsSpace(runes[i+1])
		}
		if cut {
			out = append(out, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

var acronymRe = regexp.MustCompile(`\b[A-Z]{2,}\b`)

// spellOut rewrites all-caps words letter by letter: "AI" becomes "A.I.".
func spellOut(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range acronymRe.FindAllStringIndex(s, -1) {
		b.WriteString(s[last:loc[0]])
		word := s[loc[0]:loc[1]]
		b.WriteString(strings.Join(strings.Split(word, ""), "."))
		if loc[1] >= len(s) || s[loc[1]] != '.' {
			b.WriteByte('.')
		}
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func hasContent(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) && !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return true
		}
	}
	return false
}
