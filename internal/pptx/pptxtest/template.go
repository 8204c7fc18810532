// Package pptxtest builds small presentation templates for tests.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const (
	nsDecl = `xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
		`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"`
	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctBase  = "application/vnd.openxmlformats-officedocument."

	// TemplateTitle is the title text of every pre-existing template slide.
	TemplateTitle = "Template title"
	// Decoration is the text of a non-placeholder shape on every template slide.
	Decoration = "Keep me"
)

const treeHead = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`

func placeholder(id int, name, ph, body string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr>%s</p:nvPr></p:nvSpPr><p:spPr/>%s</p:sp>`, id, name, ph, body)
}

func textBody(bodyPr, text string) string {
	return `<p:txBody>` + bodyPr + `<a:lstStyle/><a:p><a:r><a:t>` + text + `</a:t></a:r></a:p></p:txBody>`
}

func rels(items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for i := 0; i+1 < len(items); i += 2 {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s%s" Target="%s"/>`, i/2+1, relBase, items[i], items[i+1])
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// Template returns a .pptx with two layouts (title, title and content), a theme,
// no notes master, and the given number of pre-existing slides.
func Template(slides int) []byte {
	parts := map[string]string{}
	var ct strings.Builder
	ct.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/>`)
	override := func(part, ctype string) {
		fmt.Fprintf(&ct, `<Override PartName="/%s" ContentType="%s%s"/>`, part, ctBase, ctype)
	}

	parts["_rels/.rels"] = rels("officeDocument", "ppt/presentation.xml")

	presRels := []string{"slideMaster", "slideMasters/slideMaster1.xml", "theme", "theme/theme1.xml"}
	var ids strings.Builder
	for i := 1; i <= slides; i++ {
		presRels = append(presRels, "slide", fmt.Sprintf("slides/slide%d.xml", i))
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 255+i, i+2)
	}
	sldIDLst := ""
	if slides > 0 {
		sldIDLst = `<p:sldIdLst>` + ids.String() + `</p:sldIdLst>`
	}
	parts["ppt/presentation.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:presentation ` + nsDecl + `>` +
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` + sldIDLst +
		`<p:sldSz cx="12192000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`
	parts["ppt/_rels/presentation.xml.rels"] = rels(presRels...)
	override("ppt/presentation.xml", "presentationml.presentation.main+xml")

	parts["ppt/slideMasters/slideMaster1.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:sldMaster ` + nsDecl + `>` +
		`<p:cSld><p:spTree>` + treeHead + `</p:spTree></p:cSld>` +
		`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
		`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/><p:sldLayoutId id="2147483650" r:id="rId2"/></p:sldLayoutIdLst></p:sldMaster>`
	parts["ppt/slideMasters/_rels/slideMaster1.xml.rels"] = rels(
		"slideLayout", "../slideLayouts/slideLayout1.xml",
		"slideLayout", "../slideLayouts/slideLayout2.xml",
		"theme", "../theme/theme1.xml")
	override("ppt/slideMasters/slideMaster1.xml", "presentationml.slideMaster+xml")

	layouts := []string{
		placeholder(2, "Title 1", `<p:ph type="ctrTitle"/>`, "") +
			placeholder(3, "Subtitle 2", `<p:ph type="subTitle" idx="1"/>`, "") +
			placeholder(4, "Date Placeholder 3", `<p:ph type="dt" sz="half" idx="10"/>`, ""),
		placeholder(2, "Title 1", `<p:ph type="title"/>`, "") +
			placeholder(3, "Content Placeholder 2", `<p:ph idx="1"/>`, "") +
			placeholder(4, "Slide Number Placeholder 3", `<p:ph type="sldNum" sz="quarter" idx="12"/>`, ""),
	}
	for i, body := range layouts {
		name := fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1)
		parts[name] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:sldLayout ` + nsDecl + `>` +
			`<p:cSld><p:spTree>` + treeHead + body + `</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`
		parts[fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1)] = rels("slideMaster", "../slideMasters/slideMaster1.xml")
		override(name, "presentationml.slideLayout+xml")
	}

	for i := 1; i <= slides; i++ {
		name := fmt.Sprintf("ppt/slides/slide%d.xml", i)
		parts[name] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><p:sld ` + nsDecl + `>` +
			`<p:cSld><p:spTree>` + treeHead +
			placeholder(2, "Title 1", `<p:ph type="title"/>`, textBody(`<a:bodyPr/>`, TemplateTitle)) +
			placeholder(3, "Content Placeholder 2", `<p:ph idx="1"/>`, textBody(`<a:bodyPr><a:normAutofit/></a:bodyPr>`, "Template body")) +
			placeholder(4, "TextBox 3", "", textBody(`<a:bodyPr/>`, Decoration)) +
			`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
		parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i)] = rels("slideLayout", "../slideLayouts/slideLayout2.xml")
		override(name, "presentationml.slide+xml")
	}

	parts["ppt/theme/theme1.xml"] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" name="Office Theme"><a:themeElements/></a:theme>`
	override("ppt/theme/theme1.xml", "theme+xml")

	ct.WriteString(`</Types>`)
	parts["[Content_Types].xml"] = ct.String()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range sortedKeys(parts) {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// WriteTemplate writes Template(slides) into a temp dir and returns its path.
func WriteTemplate(t testing.TB, slides int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.pptx")
	if err := os.WriteFile(path, Template(slides), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
