// Package pptxtest builds minimal PPTX packages in memory for tests.
//
// The packages hold only the parts the pptx package reads (content types,
// presentation, slides, an optional layout and master, and their
// relationships), so they round-trip through pptx.Open and Save but are not
// complete enough for PowerPoint itself.
package pptxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

const (
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// PlaceholderImage is the media part every fixture slide relates to as rId1
const PlaceholderImage = "ppt/media/image1.png"

// PNG is a 1x1 transparent PNG
var PNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// Builder assembles a presentation slide by slide
type Builder struct {
	slides [][]string
	layout []string
	master []string
}

// New creates an empty builder
func New() *Builder {
	return &Builder{}
}

// Slide adds a slide holding the given shape elements
func (b *Builder) Slide(shapes ...string) *Builder {
	b.slides = append(b.slides, shapes)
	return b
}

// Layout gives every slide a slide layout holding the given shapes. Slides
// relate to it as rId2.
func (b *Builder) Layout(shapes ...string) *Builder {
	b.layout = shapes
	return b
}

// Master gives the slide layout a slide master holding the given shapes.
// It implies an empty layout when none was set.
func (b *Builder) Master(shapes ...string) *Builder {
	b.master = shapes
	if b.layout == nil {
		b.layout = []string{}
	}
	return b
}

// Bytes returns the package
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var overrides, sldIDs, presRels strings.Builder
	for i := range b.slides {
		n := i + 1
		fmt.Fprintf(&overrides, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, n)
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 255+n, n)
		fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>`, n, n)
	}

	write(zw, "[Content_Types].xml", `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`+
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`+
		`<Default Extension="xml" ContentType="application/xml"/>`+
		`<Default Extension="png" ContentType="image/png"/>`+
		`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`+
		overrides.String()+layoutOverrides(b)+`</Types>`)
	write(zw, "_rels/.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>`+
		`</Relationships>`)
	write(zw, "ppt/presentation.xml", fmt.Sprintf(`<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:sldIdLst>%s</p:sldIdLst><p:sldSz cx="12192000" cy="6858000"/></p:presentation>`,
		nsA, nsR, nsP, sldIDs.String()))
	write(zw, "ppt/_rels/presentation.xml.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		presRels.String()+`</Relationships>`)

	for i, shapes := range b.slides {
		n := i + 1
		write(zw, fmt.Sprintf("ppt/slides/slide%d.xml", n), fmt.Sprintf(
			`<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>`+
				`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`+
				`%s</p:spTree></p:cSld></p:sld>`,
			nsA, nsR, nsP, strings.Join(shapes, "")))
		layoutRel := ""
		if b.layout != nil {
			layoutRel = `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout1.xml"/>`
		}
		write(zw, fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../media/image1.png"/>`+
			layoutRel+`</Relationships>`)
	}

	if b.layout != nil {
		write(zw, "ppt/slideLayouts/slideLayout1.xml", fmt.Sprintf(
			`<p:sldLayout xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>`+
				`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`+
				`%s</p:spTree></p:cSld></p:sldLayout>`,
			nsA, nsR, nsP, strings.Join(b.layout, "")))
		masterRel := ""
		if b.master != nil {
			masterRel = `<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster" Target="../slideMasters/slideMaster1.xml"/>`
		}
		write(zw, "ppt/slideLayouts/_rels/slideLayout1.xml.rels", `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
			masterRel+`</Relationships>`)
	}
	if b.master != nil {
		write(zw, "ppt/slideMasters/slideMaster1.xml", fmt.Sprintf(
			`<p:sldMaster xmlns:a="%s" xmlns:r="%s" xmlns:p="%s"><p:cSld><p:spTree>`+
				`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`+
				`%s</p:spTree></p:cSld></p:sldMaster>`,
			nsA, nsR, nsP, strings.Join(b.master, "")))
	}

	fw, _ := zw.Create(PlaceholderImage)
	_, _ = fw.Write(PNG)

	_ = zw.Close()
	return buf.Bytes()
}

func layoutOverrides(b *Builder) string {
	var sb strings.Builder
	if b.layout != nil {
		sb.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	}
	if b.master != nil {
		sb.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	}
	return sb.String()
}

func write(zw *zip.Writer, name, content string) {
	fw, _ := zw.Create(name)
	_, _ = fw.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" + content))
}

// Run returns an a:r element with the given text and font
func Run(text string, f deck.Font) string {
	var attrs strings.Builder
	attrs.WriteString(` lang="en-US"`)
	if f.Size > 0 {
		fmt.Fprintf(&attrs, ` sz="%d"`, f.Size)
	}
	writeToggle(&attrs, "b", f.Bold)
	writeToggle(&attrs, "i", f.Italic)
	if f.Underline != "" {
		fmt.Fprintf(&attrs, ` u="%s"`, f.Underline)
	}
	var children strings.Builder
	switch {
	case f.Color.RGB != "":
		fmt.Fprintf(&children, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, f.Color.RGB)
	case f.Color.Theme != "":
		fmt.Fprintf(&children, `<a:solidFill><a:schemeClr val="%s"/></a:solidFill>`, f.Color.Theme)
	}
	if f.Name != "" {
		fmt.Fprintf(&children, `<a:latin typeface="%s"/>`, html.EscapeString(f.Name))
	}
	return fmt.Sprintf(`<a:r><a:rPr%s>%s</a:rPr><a:t>%s</a:t></a:r>`, attrs.String(), children.String(), html.EscapeString(text))
}

func writeToggle(sb *strings.Builder, attr string, t deck.Toggle) {
	switch t {
	case deck.On:
		fmt.Fprintf(sb, ` %s="1"`, attr)
	case deck.Off:
		fmt.Fprintf(sb, ` %s="0"`, attr)
	}
}

// Para returns an a:p element holding runs
func Para(runs ...string) string {
	return `<a:p>` + strings.Join(runs, "") + `<a:endParaRPr lang="en-US"/></a:p>`
}

// Break returns an a:br element
func Break() string {
	return `<a:br><a:rPr lang="en-US"/></a:br>`
}

// TextPara returns a paragraph with a single unformatted run
func TextPara(text string) string {
	return Para(Run(text, deck.Font{}))
}

// TextBox returns a p:sp with a text body
func TextBox(id int, name string, paras ...string) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="1000" cy="1000"/></a:xfrm></p:spPr>`+
		`<p:txBody><a:bodyPr/><a:lstStyle/>%s</p:txBody></p:sp>`,
		id, html.EscapeString(name), strings.Join(paras, ""))
}

// Cell returns an a:tc holding paragraphs
func Cell(paras ...string) string {
	return `<a:tc><a:txBody><a:bodyPr/><a:lstStyle/>` + strings.Join(paras, "") + `</a:txBody><a:tcPr/></a:tc>`
}

// TextRow returns an a:tr whose cells hold one unformatted run each
func TextRow(texts ...string) string {
	cells := make([]string, len(texts))
	for i, t := range texts {
		cells[i] = Cell(TextPara(t))
	}
	return Row(cells...)
}

// Row returns an a:tr holding cells
func Row(cells ...string) string {
	return `<a:tr h="370840">` + strings.Join(cells, "") + `</a:tr>`
}

// Table returns a p:graphicFrame holding a table of rows
func Table(id int, name string, rows ...string) string {
	cols := 0
	if len(rows) > 0 {
		cols = strings.Count(rows[0], "<a:tc>")
	}
	var grid strings.Builder
	for i := 0; i < cols; i++ {
		grid.WriteString(`<a:gridCol w="1000000"/>`)
	}
	return fmt.Sprintf(`<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="%d" name="%s"/><p:cNvGraphicFramePr><a:graphicFrameLocks noGrp="1"/></p:cNvGraphicFramePr><p:nvPr/></p:nvGraphicFramePr>`+
		`<p:xfrm><a:off x="0" y="0"/><a:ext cx="3000000" cy="1000000"/></p:xfrm>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl><a:tblPr firstRow="1" bandRow="1"/><a:tblGrid>%s</a:tblGrid>%s</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`,
		id, html.EscapeString(name), grid.String(), strings.Join(rows, ""))
}

// Picture returns a p:pic showing the placeholder image. An empty descr
// omits the attribute.
func Picture(id int, name, descr string, g deck.Geometry) string {
	descrAttr := ""
	if descr != "" {
		descrAttr = fmt.Sprintf(` descr="%s"`, html.EscapeString(descr))
	}
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"%s/><p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="rId1"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		id, html.EscapeString(name), descrAttr, g.Left, g.Top, g.Width, g.Height)
}

// Group returns a p:grpSp holding shapes
func Group(id int, name string, shapes ...string) string {
	return fmt.Sprintf(`<p:grpSp><p:nvGrpSpPr><p:cNvPr id="%d" name="%s"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>`+
		`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="1" cy="1"/><a:chOff x="0" y="0"/><a:chExt cx="1" cy="1"/></a:xfrm></p:grpSpPr>%s</p:grpSp>`,
		id, html.EscapeString(name), strings.Join(shapes, ""))
}

// PlaceholderPicture returns a p:pic filling the layout placeholder of the
// given type and idx. Its p:spPr is empty, so the geometry is inherited.
func PlaceholderPicture(id int, name, descr, phType string, idx int) string {
	descrAttr := ""
	if descr != "" {
		descrAttr = fmt.Sprintf(` descr="%s"`, html.EscapeString(descr))
	}
	return fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s"%s/><p:cNvPicPr><a:picLocks noGrp="1"/></p:cNvPicPr><p:nvPr>%s</p:nvPr></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="rId1"/><a:stretch><a:fillRect/></a:stretch></p:blipFill><p:spPr/></p:pic>`,
		id, html.EscapeString(name), descrAttr, ph(phType, idx))
}

// PlaceholderShape returns a layout or master p:sp for a placeholder of the
// given type and idx. A zero geometry omits the xfrm.
func PlaceholderShape(id int, name, phType string, idx int, g deck.Geometry) string {
	xfrm := ""
	if g != (deck.Geometry{}) {
		xfrm = fmt.Sprintf(`<a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, g.Left, g.Top, g.Width, g.Height)
	}
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr></p:nvSpPr>`+
		`<p:spPr>%s</p:spPr></p:sp>`,
		id, html.EscapeString(name), ph(phType, idx), xfrm)
}

// ph returns a p:ph element. An empty type or a negative idx omits the attribute.
func ph(phType string, idx int) string {
	var attrs strings.Builder
	if phType != "" {
		fmt.Fprintf(&attrs, ` type="%s"`, phType)
	}
	if idx >= 0 {
		fmt.Fprintf(&attrs, ` idx="%d"`, idx)
	}
	return `<p:ph` + attrs.String() + `/>`
}
