package convert

import (
	"sort"

	"go.uber.org/zap"

	"github.com/thywilljoshua/word2video/internal/docx"
)

type imageExtractor struct {
	doc Document
	log *zap.Logger
}

// extract returns the resolvable images anchored in [start, end), by paragraph and then
// by position in the document part. Unresolvable references are logged and skipped.
func (x imageExtractor) extract(start, end int) []ImageRecord {
	paras := x.doc.Paragraphs()
	if end > len(paras) {
		end = len(paras)
	}
	var out []ImageRecord
	for i := start; i < end; i++ {
		refs := append([]docx.ImageRef(nil), paras[i].Images...)
		sort.SliceStable(refs, func(a, b int) bool { return refs[a].Offset < refs[b].Offset })
		for _, ref := range refs {
			data, ext, err := x.doc.Image(ref)
			if err != nil {
				x.log.Warn("skipping image", zap.Int("paragraph", i), zap.String("rel_id", ref.RelID), zap.Error(err))
				continue
			}
			x.log.Debug("extracted image",
				zap.Int("paragraph", i),
				zap.String("rel_id", ref.RelID),
				zap.Bool("floating", ref.Floating),
				zap.Int("bytes", len(data)))
			out = append(out, ImageRecord{
				Paragraph: i,
				Offset:    ref.Offset,
				RelID:     ref.RelID,
				Floating:  ref.Floating,
				Data:      data,
				Ext:       ext,
			})
		}
	}
	return out
}

// imageQueue hands out the images of one section by anchor paragraph, each exactly once.
type imageQueue struct {
	items []ImageRecord
	next  int
}

// take consumes every image anchored at or before paragraph.
func (q *imageQueue) take(paragraph int) []ImageRecord {
	start := q.next
	for q.next < len(q.items) && q.items[q.next].Paragraph <= paragraph {
		q.next++
	}
	return q.items[start:q.next]
}

func (q *imageQueue) remaining() int { return len(q.items) - q.next }
