package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/pptx/pptxtest"
)

var slot = deck.Geometry{Left: 100, Top: 50, Width: 200, Height: 150}

func openFixture(t *testing.T, b *pptxtest.Builder) *Presentation {
	t.Helper()
	p, err := OpenBytes(b.Bytes())
	require.NoError(t, err)
	return p
}

func saveAndReopen(t *testing.T, p *Presentation) (*Presentation, []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, p.Save(&buf))
	reopened, err := OpenBytes(buf.Bytes())
	require.NoError(t, err)
	return reopened, buf.Bytes()
}

func zipEntry(t *testing.T, data []byte, name string) *zip.File {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readEntry(t *testing.T, f *zip.File) []byte {
	t.Helper()
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}

func TestOpenSlidesAndShapes(t *testing.T) {
	p := openFixture(t, pptxtest.New().
		Slide(
			pptxtest.TextBox(2, "Title", pptxtest.TextPara("Hello $name$")),
			pptxtest.Table(3, "People", pptxtest.TextRow("A", "B")),
			pptxtest.Picture(4, "Logo", "logo", slot),
			pptxtest.Group(5, "Group", pptxtest.TextBox(6, "Inner", pptxtest.TextPara("x"))),
			`<p:cxnSp><p:nvCxnSpPr><p:cNvPr id="7" name="Line"/><p:cNvCxnSpPr/><p:nvPr/></p:nvCxnSpPr><p:spPr/></p:cxnSp>`,
		).
		Slide(),
	)

	slides := p.Slides()
	require.Len(t, slides, 2)
	assert.Equal(t, 0, slides[0].Index())
	assert.Equal(t, 1, slides[1].Index())
	assert.Equal(t, "ppt/slides/slide2.xml", p.Slide(1).Part())
	assert.Empty(t, slides[1].Shapes())

	shapes := slides[0].Shapes()
	require.Len(t, shapes, 5)
	var kinds []deck.ShapeKind
	for _, s := range shapes {
		kinds = append(kinds, s.Kind())
	}
	assert.Equal(t, []deck.ShapeKind{deck.KindText, deck.KindTable, deck.KindPicture, deck.KindGroup, deck.KindOther}, kinds)
	assert.Equal(t, "Title", shapes[0].Name())
	assert.Equal(t, "2", shapes[0].ID())
	assert.Equal(t, "Line", shapes[4].Name())

	assert.Equal(t, "Hello $name$", shapes[0].(deck.TextShape).TextFrame().Text())

	pic := shapes[2].(*Picture)
	alt, ok := pic.AltText()
	assert.True(t, ok)
	assert.Equal(t, "logo", alt)
	assert.Equal(t, slot, pic.Geometry())
	assert.Equal(t, "rId1", pic.EmbedID())

	inner := shapes[3].(*Group).Shapes()
	require.Len(t, inner, 1)
	assert.Equal(t, "Inner", inner[0].Name())
}

func TestOpenErrors(t *testing.T) {
	_, err := OpenBytes([]byte("not a zip"))
	assert.True(t, errors.Is(err, ErrNotPresentation))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fw, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("<w:document/>"))
	require.NoError(t, zw.Close())

	_, err = OpenBytes(buf.Bytes())
	assert.True(t, errors.Is(err, ErrNotPresentation))

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.pptx"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	p := openFixture(t, pptxtest.New().Slide(
		pptxtest.TextBox(2, "Title", pptxtest.TextPara("before")),
	))
	run := p.Slides()[0].Shapes()[0].(deck.TextShape).TextFrame().Paragraphs()[0].Runs()[0]
	run.SetText("after & <more>")

	reopened, data := saveAndReopen(t, p)
	assert.Equal(t, "after & <more>", reopened.Slides()[0].Shapes()[0].(deck.TextShape).TextFrame().Text())

	slide := string(readEntry(t, zipEntry(t, data, "ppt/slides/slide1.xml")))
	assert.Contains(t, slide, `<p:sld xmlns:a=`)
	assert.Contains(t, slide, `<a:t>after &amp; &lt;more&gt;</a:t>`)

	// Untouched parts are carried over.
	placeholder := zipEntry(t, data, pptxtest.PlaceholderImage)
	require.NotNil(t, placeholder)
	assert.Equal(t, pptxtest.PNG, readEntry(t, placeholder))
	assert.NotNil(t, zipEntry(t, data, "ppt/presentation.xml"))
}

func TestSaveDropsCharactersXMLCannotHold(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"control character", "ctl\x01x", "ctlx"},
		{"invalid utf-8", "bad\xffutf", "badutf"},
		{"noncharacter", "a\uFFFEb", "ab"},
		{"tab and newline kept", "a\tb\nc", "a\tb\nc"},
		{"escaped markup", "A & B <c>", "A & B <c>"},
		{"astral plane", "smile \U0001F600", "smile \U0001F600"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openFixture(t, pptxtest.New().Slide(
				pptxtest.TextBox(2, "Title", pptxtest.TextPara("v=$v$")),
			))
			run := p.Slides()[0].Shapes()[0].(deck.TextShape).TextFrame().Paragraphs()[0].Runs()[0]
			run.SetText(tt.text)
			assert.Equal(t, tt.want, run.Text())

			reopened, _ := saveAndReopen(t, p)
			assert.Equal(t, tt.want, reopened.Slides()[0].Shapes()[0].(deck.TextShape).TextFrame().Text())
		})
	}
}

func TestSaveFile(t *testing.T) {
	p := openFixture(t, pptxtest.New().Slide(pptxtest.TextBox(2, "Title", pptxtest.TextPara("x"))))
	path := filepath.Join(t.TempDir(), "out.pptx")
	require.NoError(t, p.SaveFile(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	reopened, err := OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, reopened.Slides(), 1)
}

func TestInsertPicture(t *testing.T) {
	p := openFixture(t, pptxtest.New().Slide(
		pptxtest.TextBox(2, "Title", pptxtest.TextPara("x")),
		pptxtest.Picture(3, "Logo", "logo", slot),
	))
	slide := p.Slides()[0]
	placeholder := slide.Shapes()[1]

	img := deck.Image{Data: []byte("jpeg bytes"), ContentType: "image/jpeg", Name: "logo.jpg"}
	inserted, err := slide.InsertPicture(placeholder, img, slot)
	require.NoError(t, err)
	require.NoError(t, slide.RemoveShape(placeholder))

	shapes := slide.Shapes()
	require.Len(t, shapes, 2)
	assert.Same(t, nodeOf(inserted), nodeOf(shapes[1]))

	pic := shapes[1].(*Picture)
	assert.Equal(t, "4", pic.ID())
	assert.Equal(t, "Picture 3", pic.Name())
	assert.Equal(t, slot, pic.Geometry())
	assert.Equal(t, "rId2", pic.EmbedID())
	alt, _ := pic.AltText()
	assert.Equal(t, "logo.jpg", alt)

	reopened, data := saveAndReopen(t, p)
	media := zipEntry(t, data, "ppt/media/image1.jpeg")
	require.NotNil(t, media, "first free media name for the extension")
	assert.Equal(t, zip.Store, media.Method)
	assert.Equal(t, img.Data, readEntry(t, media))

	rels := string(readEntry(t, zipEntry(t, data, "ppt/slides/_rels/slide1.xml.rels")))
	assert.Contains(t, rels, `Id="rId2"`)
	assert.Contains(t, rels, `Target="../media/image1.jpeg"`)

	types := string(readEntry(t, zipEntry(t, data, "[Content_Types].xml")))
	assert.Contains(t, types, `<Default Extension="jpeg" ContentType="image/jpeg"/>`)

	got := reopened.Slides()[0].Shapes()
	require.Len(t, got, 2)
	assert.Equal(t, deck.KindPicture, got[1].Kind())
	assert.Equal(t, slot, got[1].(*Picture).Geometry())
}

func TestPlaceholderPictureInheritsGeometry(t *testing.T) {
	layoutSlot := deck.Geometry{Left: 1000, Top: 2000, Width: 3000, Height: 4000}
	masterSlot := deck.Geometry{Left: 10, Top: 20, Width: 30, Height: 40}

	tests := []struct {
		name    string
		builder *pptxtest.Builder
		want    deck.Geometry
	}{
		{
			name: "layout placeholder with the same idx",
			builder: pptxtest.New().
				Slide(pptxtest.PlaceholderPicture(2, "Logo", "logo", "pic", 1)).
				Layout(
					pptxtest.PlaceholderShape(2, "Title", "title", -1, masterSlot),
					pptxtest.PlaceholderShape(3, "Picture Placeholder", "pic", 1, layoutSlot),
				),
			want: layoutSlot,
		},
		{
			name: "layout placeholder without xfrm falls back to the master",
			builder: pptxtest.New().
				Slide(pptxtest.PlaceholderPicture(2, "Logo", "logo", "pic", 1)).
				Layout(pptxtest.PlaceholderShape(3, "Picture Placeholder", "pic", 1, deck.Geometry{})).
				Master(
					pptxtest.PlaceholderShape(2, "Title", "title", -1, layoutSlot),
					pptxtest.PlaceholderShape(3, "Body", "body", 1, masterSlot),
				),
			want: masterSlot,
		},
		{
			name: "no layout placeholder with the idx",
			builder: pptxtest.New().
				Slide(pptxtest.PlaceholderPicture(2, "Logo", "logo", "pic", 7)).
				Layout(pptxtest.PlaceholderShape(3, "Picture Placeholder", "pic", 1, layoutSlot)).
				Master(pptxtest.PlaceholderShape(3, "Body", "body", 1, masterSlot)),
			want: masterSlot,
		},
		{
			name:    "no layout",
			builder: pptxtest.New().Slide(pptxtest.PlaceholderPicture(2, "Logo", "logo", "pic", 1)),
			want:    deck.Geometry{},
		},
		{
			name: "master without a matching placeholder",
			builder: pptxtest.New().
				Slide(pptxtest.PlaceholderPicture(2, "Logo", "logo", "pic", 1)).
				Master(pptxtest.PlaceholderShape(2, "Title", "title", -1, masterSlot)),
			want: deck.Geometry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := openFixture(t, tt.builder)
			pic := p.Slides()[0].Shapes()[0].(deck.PictureShape)
			assert.Equal(t, tt.want, pic.Geometry())
		})
	}
}

func TestOwnXfrmWinsOverPlaceholder(t *testing.T) {
	p := openFixture(t, pptxtest.New().
		Slide(pptxtest.Picture(2, "Logo", "logo", slot)).
		Layout(pptxtest.PlaceholderShape(3, "Picture Placeholder", "obj", 0, deck.Geometry{Left: 1, Top: 1, Width: 1, Height: 1})))
	assert.Equal(t, slot, p.Slides()[0].Shapes()[0].(deck.PictureShape).Geometry())
}

func TestPlaceholderMasterType(t *testing.T) {
	tests := []struct {
		typ  string
		want string
	}{
		{"ctrTitle", "title"},
		{"title", "title"},
		{"pic", "body"},
		{"obj", "body"},
		{"subTitle", "body"},
		{"sldNum", "sldNum"},
		{"ftr", "ftr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, placeholder{typ: tt.typ}.masterType(), tt.typ)
	}
}

func TestInsertPictureMediaNames(t *testing.T) {
	p := openFixture(t, pptxtest.New().
		Slide(pptxtest.Picture(2, "A", "a", slot)).
		Slide(pptxtest.Picture(2, "B", "b", slot)),
	)
	img := deck.Image{Data: pptxtest.PNG, ContentType: "image/png", Name: "a.png"}

	for _, s := range p.Slides() {
		_, err := s.InsertPicture(nil, img, slot)
		require.NoError(t, err)
	}

	_, data := saveAndReopen(t, p)
	assert.NotNil(t, zipEntry(t, data, "ppt/media/image2.png"), "image1.png is taken by the placeholder")
	assert.NotNil(t, zipEntry(t, data, "ppt/media/image3.png"))

	types := string(readEntry(t, zipEntry(t, data, "[Content_Types].xml")))
	assert.Equal(t, 1, bytes.Count([]byte(types), []byte(`Extension="png"`)))
}

func TestInsertPictureErrors(t *testing.T) {
	p := openFixture(t, pptxtest.New().
		Slide(pptxtest.Picture(2, "A", "a", slot)).
		Slide(pptxtest.Picture(2, "B", "b", slot)),
	)
	first, second := p.Slides()[0], p.Slides()[1]
	img := deck.Image{Data: pptxtest.PNG, ContentType: "image/png"}

	_, err := first.InsertPicture(second.Shapes()[0], img, slot)
	assert.ErrorIs(t, err, deck.ErrNotInTree)

	_, err = first.InsertPicture(nil, deck.Image{ContentType: "image/png"}, slot)
	assert.Error(t, err)

	assert.ErrorIs(t, first.RemoveShape(second.Shapes()[0]), deck.ErrNotInTree)
	assert.Len(t, first.Shapes(), 1)
}

func TestGroupEdits(t *testing.T) {
	p := openFixture(t, pptxtest.New().Slide(
		pptxtest.Group(2, "Group", pptxtest.Picture(3, "Logo", "logo", slot)),
	))
	slide := p.Slides()[0]
	group := slide.Shapes()[0].(*Group)
	placeholder := group.Shapes()[0]

	// The slide's own tree does not hold the nested picture.
	assert.ErrorIs(t, slide.RemoveShape(placeholder), deck.ErrNotInTree)

	_, err := group.InsertPicture(placeholder, deck.Image{Data: pptxtest.PNG, ContentType: "image/png"}, slot)
	require.NoError(t, err)
	require.NoError(t, group.RemoveShape(placeholder))

	reopened, _ := saveAndReopen(t, p)
	inner := reopened.Slides()[0].Shapes()[0].(*Group).Shapes()
	require.Len(t, inner, 1)
	assert.Equal(t, "4", inner[0].ID())
	assert.Equal(t, "rId2", inner[0].(*Picture).EmbedID())
}

func TestParagraphEdits(t *testing.T) {
	p := openFixture(t, pptxtest.New().Slide(
		pptxtest.TextBox(2, "Body", pptxtest.Para(
			pptxtest.Run("Hel", deck.Font{Bold: deck.On}),
			pptxtest.Run("lo", deck.Font{}),
		)),
	))
	frame := p.Slides()[0].Shapes()[0].(deck.TextShape).TextFrame()
	para := frame.Paragraphs()[0].(*Paragraph)

	runs := para.Runs()
	require.Len(t, runs, 2)
	require.NoError(t, para.RemoveRun(runs[1]))
	assert.ErrorIs(t, para.RemoveRun(runs[1]), deck.ErrNotInTree)
	assert.Equal(t, "Hel", para.Text())

	added := para.AddRun()
	added.SetText("p")
	assert.Equal(t, "Help", para.Text())
	last := para.node.Elements()[len(para.node.Elements())-1]
	assert.Equal(t, "a:endParaRPr", last.Name)

	para.ClearRuns()
	assert.Empty(t, para.Runs())
	assert.NotNil(t, para.node.Child("a:endParaRPr"))
}

func TestParagraphTextWithBreaksAndFields(t *testing.T) {
	root, err := parseXML(bytes.NewReader([]byte(
		`<a:p><a:r><a:t>one</a:t></a:r><a:br/><a:fld id="1" type="slidenum"><a:t>7</a:t></a:fld><a:endParaRPr/></a:p>`)))
	require.NoError(t, err)
	para := &Paragraph{node: root}

	assert.Equal(t, "one\v7", para.Text())
	assert.Len(t, para.Runs(), 1)

	para.ClearRuns()
	assert.Equal(t, "", para.Text())
	assert.Len(t, root.Elements(), 1)
}

func TestParagraphSegments(t *testing.T) {
	root, err := parseXML(bytes.NewReader([]byte(
		`<a:p><a:r><a:t>a</a:t></a:r><a:r><a:t>b</a:t></a:r><a:br/><a:br/><a:r><a:t>c</a:t></a:r>` +
			`<a:fld id="1" type="slidenum"><a:t>7</a:t></a:fld><a:r><a:t>d</a:t></a:r><a:endParaRPr/></a:p>`)))
	require.NoError(t, err)
	para := &Paragraph{node: root}

	var got [][]string
	for _, seg := range para.Segments() {
		var texts []string
		for _, r := range seg {
			texts = append(texts, r.Text())
		}
		got = append(got, texts)
	}
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}, {"d"}}, got)
}

func TestRunFont(t *testing.T) {
	font := deck.Font{
		Name:      "Calibri",
		Size:      1800,
		Bold:      deck.On,
		Italic:    deck.Off,
		Underline: "sng",
		Color:     deck.Color{RGB: "FF0000"},
	}
	p := openFixture(t, pptxtest.New().Slide(
		pptxtest.TextBox(2, "Body", pptxtest.Para(pptxtest.Run("x", font))),
	))
	run := p.Slides()[0].Shapes()[0].(deck.TextShape).TextFrame().Paragraphs()[0].Runs()[0].(*Run)
	assert.Equal(t, font, run.Font())

	// Unset attributes fall back to inheritance.
	run.SetFont(deck.Font{Color: deck.Color{Theme: "accent1"}})
	got := run.Font()
	assert.Equal(t, deck.Font{Color: deck.Color{Theme: "accent1"}}, got)
	_, ok := run.node.Child("a:rPr").Attr("b")
	assert.False(t, ok)
	assert.Nil(t, run.node.Child("a:rPr").Child("a:latin"))
}

func TestSetFontCreatesProperties(t *testing.T) {
	root, err := parseXML(bytes.NewReader([]byte(`<a:r><a:t>x</a:t></a:r>`)))
	require.NoError(t, err)
	run := &Run{node: root}
	assert.Equal(t, deck.Font{}, run.Font())

	run.SetFont(deck.Font{Name: "Arial", Bold: deck.On})
	assert.Equal(t, `<a:r><a:rPr lang="en-US" dirty="0" b="1"><a:latin typeface="Arial"/></a:rPr><a:t>x</a:t></a:r>`, body(root))
}

func TestWriteFontElementOrder(t *testing.T) {
	rPr, err := parseXML(bytes.NewReader([]byte(
		`<a:rPr><a:ln w="1"/><a:highlight/><a:cs typeface="X"/><a:hlinkClick r:id="rId3"/></a:rPr>`)))
	require.NoError(t, err)

	writeFont(rPr, deck.Font{Name: "Arial", Color: deck.Color{RGB: "00FF00"}})

	var names []string
	for _, c := range rPr.Elements() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"a:ln", "a:solidFill", "a:highlight", "a:latin", "a:cs", "a:hlinkClick"}, names)

	// Rewriting replaces instead of duplicating.
	writeFont(rPr, deck.Font{Name: "Arial", Color: deck.Color{RGB: "0000FF"}})
	assert.Len(t, rPr.ChildrenNamed("a:solidFill"), 1)
	assert.Len(t, rPr.ChildrenNamed("a:latin"), 1)
	assert.Equal(t, "0000FF", parseFont(rPr).Color.RGB)
}

func TestParseToggle(t *testing.T) {
	tests := []struct {
		attrs []string
		want  deck.Toggle
	}{
		{nil, deck.Inherit},
		{[]string{"b", "1"}, deck.On},
		{[]string{"b", "true"}, deck.On},
		{[]string{"b", "0"}, deck.Off},
		{[]string{"b", "false"}, deck.Off},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseToggle(newElement("a:rPr", tt.attrs...), "b"), "%v", tt.attrs)
	}
}

func TestTableEdits(t *testing.T) {
	p := openFixture(t, pptxtest.New().Slide(
		pptxtest.Table(2, "People",
			pptxtest.TextRow("ID", "Name"),
			pptxtest.TextRow("$id$", "$name$"),
		),
	))
	table := p.Slides()[0].Shapes()[0].(deck.TableShape).Table().(*Table)
	// A trailing extension list must stay after the rows.
	table.node.AppendChild(newElement("a:extLst"))

	clone, err := table.CloneRow(1)
	require.NoError(t, err)
	clone.Cells()[0].Paragraphs()[0].Runs()[0].SetText("7")
	assert.Equal(t, "$id$", table.Rows()[1].Cells()[0].Text(), "clones are detached")

	require.NoError(t, table.AppendRow(clone))
	assert.Error(t, table.AppendRow(clone), "attached rows cannot be appended twice")
	require.NoError(t, table.RemoveRow(1))

	_, err = table.CloneRow(5)
	assert.Error(t, err)
	assert.Error(t, table.RemoveRow(-1))

	last := table.node.Elements()[len(table.node.Elements())-1]
	assert.Equal(t, "a:extLst", last.Name)

	reopened, _ := saveAndReopen(t, p)
	rows := reopened.Slides()[0].Shapes()[0].(deck.TableShape).Table().Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0].Cells()[0].Text())
	assert.Equal(t, "7", rows[1].Cells()[0].Text())
	assert.Equal(t, "$name$", rows[1].Cells()[1].Text())
}

func TestCellWithoutTextBody(t *testing.T) {
	root, err := parseXML(bytes.NewReader([]byte(`<a:tr><a:tc><a:tcPr/></a:tc></a:tr>`)))
	require.NoError(t, err)
	cells := (&Row{node: root}).Cells()
	require.Len(t, cells, 1)
	assert.Empty(t, cells[0].Paragraphs())
	assert.Equal(t, "", cells[0].Text())
}
