package pptx

import (
	"bytes"
	"fmt"

	"github.com/thywilljoshua/word2video/internal/ooxml"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const slideOpen = `<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`

const slideClose = `</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`

const placeholderShape = `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr>` +
	`<p:nvPr>%s</p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody></p:sp>`

const pictureShape = `<p:pic%s><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>` +
	`<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>` +
	`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`

const notesSlideXML = `<p:notes xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr><p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>` +
	`<p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody></p:sp>` +
	`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:notes>`

const notesMasterXML = `<p:notesMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld>` +
	`<p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` +
	`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr>` +
	`<p:spPr><a:xfrm><a:off x="685800" y="4400550"/><a:ext cx="5486400" cy="3600450"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>` +
	`<p:txBody><a:bodyPr/><a:lstStyle/><a:p/></p:txBody></p:sp></p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`</p:notesMaster>`

// clonedPlaceholders are the placeholder types a new slide inherits from its layout.
var clonedPlaceholders = map[string]bool{"": true, "title": true, "ctrTitle": true, "subTitle": true, "body": true, "obj": true}

func newSlideXML(layout []shape) []byte {
	var b bytes.Buffer
	b.WriteString(xmlHeader)
	b.WriteString(slideOpen)
	id := 2
	for _, sh := range layout {
		if !sh.ph || !clonedPlaceholders[sh.phType] {
			continue
		}
		ph := "<p:ph"
		if sh.phType != "" {
			ph += ` type="` + ooxml.Escape(sh.phType) + `"`
		}
		if sh.phIdx != "" {
			ph += ` idx="` + ooxml.Escape(sh.phIdx) + `"`
		}
		ph += "/>"
		name := sh.name
		if name == "" {
			name = fmt.Sprintf("Placeholder %d", id-1)
		}
		fmt.Fprintf(&b, placeholderShape, id, ooxml.Escape(name), ph)
		id++
	}
	b.WriteString(slideClose)
	return b.Bytes()
}

func textBody(sh shape, paras []string, ns string) []byte {
	var b bytes.Buffer
	b.WriteString("<p:txBody" + ns + ">")
	if sh.bodyPr != nil {
		b.Write(sh.bodyPr)
	} else {
		b.WriteString("<a:bodyPr/>")
	}
	if sh.lstStyle != nil {
		b.Write(sh.lstStyle)
	} else {
		b.WriteString("<a:lstStyle/>")
	}
	if len(paras) == 0 {
		b.WriteString("<a:p/>")
	}
	for _, p := range paras {
		b.WriteString("<a:p><a:r><a:t>" + ooxml.Escape(p) + "</a:t></a:r></a:p>")
	}
	b.WriteString("</p:txBody>")
	return b.Bytes()
}
