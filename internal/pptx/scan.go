package pptx

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/thywilljoshua/word2video/internal/ooxml"
)

// shape is one p:sp located in its part, with just enough detail to rewrite its text body.
type shape struct {
	span      ooxml.Span
	name      string
	ph        bool
	phType    string
	phIdx     string
	txBody    ooxml.Span
	hasTxBody bool
	bodyPr    []byte
	lstStyle  []byte
	paras     []string
}

type shapeTree struct {
	shapes []shape
	tree   ooxml.Span
	found  bool
	// ext is the offset of the tree's own extLst, or -1.
	ext   int64
	maxID int
}

func scanShapes(data []byte) (shapeTree, error) {
	st := shapeTree{ext: -1}
	dec := ooxml.NewDecoder(bytes.NewReader(data))
	var (
		depth, treeDepth, spDepth, txDepth int
		cur                                *shape
		childStart                         int64 = -1
		para                               *strings.Builder
		inText                             bool
	)
	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			return st, err
		}
		after := dec.InputOffset()
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			name := t.Name.Local
			if name == "cNvPr" {
				if id, err := strconv.Atoi(plainAttr(t, "id")); err == nil && id > st.maxID {
					st.maxID = id
				}
				if cur != nil && cur.name == "" {
					cur.name = plainAttr(t, "name")
				}
			}
			switch {
			case name == "spTree" && treeDepth == 0:
				treeDepth = depth
				st.tree.Start, st.tree.InnerStart = before, after
			case name == "extLst" && treeDepth > 0 && depth == treeDepth+1:
				if st.ext < 0 {
					st.ext = before
				}
			case name == "sp" && cur == nil:
				cur = &shape{}
				cur.span.Start, cur.span.InnerStart = before, after
				spDepth = depth
			case cur == nil:
			case name == "ph":
				cur.ph = true
				cur.phType = plainAttr(t, "type")
				cur.phIdx = plainAttr(t, "idx")
			case name == "txBody" && txDepth == 0 && !cur.hasTxBody:
				txDepth = depth
				cur.txBody.Start, cur.txBody.InnerStart = before, after
			case txDepth > 0 && depth == txDepth+1 && (name == "bodyPr" || name == "lstStyle"):
				childStart = before
			case txDepth > 0 && depth == txDepth+1 && name == "p":
				para = &strings.Builder{}
			case para != nil && name == "t":
				inText = true
			case para != nil && name == "br":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			name := t.Name.Local
			switch {
			case treeDepth > 0 && depth == treeDepth:
				st.tree.InnerEnd, st.tree.End = before, after
				st.found = true
				treeDepth = -1
			case cur != nil && depth == spDepth:
				cur.span.InnerEnd, cur.span.End = before, after
				st.shapes = append(st.shapes, *cur)
				cur, spDepth = nil, 0
			case txDepth > 0 && depth == txDepth:
				cur.txBody.InnerEnd, cur.txBody.End = before, after
				cur.hasTxBody = true
				txDepth = 0
			case txDepth > 0 && depth == txDepth+1 && childStart >= 0:
				raw := bytes.Clone(data[childStart:after])
				if name == "bodyPr" {
					cur.bodyPr = raw
				} else {
					cur.lstStyle = raw
				}
				childStart = -1
			case para != nil && depth == txDepth+1 && name == "p":
				cur.paras = append(cur.paras, para.String())
				para = nil
			case name == "t":
				inText = false
			}
			depth--
		case xml.CharData:
			if inText && para != nil {
				para.Write(t)
			}
		}
	}
}

type slotKind int

const (
	slotTitle slotKind = iota
	slotBody
	slotNotes
)

func (k slotKind) String() string {
	switch k {
	case slotTitle:
		return "title"
	case slotBody:
		return "body"
	default:
		return "notes"
	}
}

// find returns the index of the placeholder shape serving the slot.
func (k slotKind) find(shapes []shape) (int, bool) {
	for i, sh := range shapes {
		if !sh.ph {
			continue
		}
		switch k {
		case slotTitle:
			if sh.phType == "title" || sh.phType == "ctrTitle" {
				return i, true
			}
		case slotBody:
			if sh.phIdx == "1" {
				return i, true
			}
		case slotNotes:
			if sh.phType == "body" {
				return i, true
			}
		}
	}
	return -1, false
}
