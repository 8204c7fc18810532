package convert

import "github.com/thywilljoshua/word2video/internal/docx"

// topLevelSections splits paragraphs at level-1 headings. Paragraph 0 always opens
// section 0, which holds the title and preamble.
func topLevelSections(paras []docx.Paragraph) []Section {
	if len(paras) == 0 {
		return nil
	}
	var out []Section
	start := 0
	for i := 1; i < len(paras); i++ {
		if paras[i].HeadingLevel() == 1 {
			out = append(out, Section{Start: start, End: i})
			start = i
		}
	}
	return append(out, Section{Start: start, End: len(paras)})
}

// leafHeadingCount counts level 2-4 headings in [start, end) whose next heading
// in range is not deeper than themselves.
func leafHeadingCount(paras []docx.Paragraph, start, end int) int {
	n := 0
	for i := start; i < end; i++ {
		lvl := paras[i].HeadingLevel()
		if lvl < 2 || lvl > 4 {
			continue
		}
		leaf := true
		for j := i + 1; j < end; j++ {
			next := paras[j].HeadingLevel()
			if next == 0 {
				continue
			}
			leaf = next <= lvl
			break
		}
		if leaf {
			n++
		}
	}
	return n
}

// fitsOneSlide reports whether a section can be emitted as a single slide.
func fitsOneSlide(leaves, images, maxLeaves int) bool {
	return leaves <= maxLeaves && images <= 1
}
