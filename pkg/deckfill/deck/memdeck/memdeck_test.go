package memdeck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

var (
	_ deck.Deck         = (*Deck)(nil)
	_ deck.Slide        = (*Slide)(nil)
	_ deck.TextShape    = (*TextBox)(nil)
	_ deck.TableShape   = (*TableShape)(nil)
	_ deck.PictureShape = (*Picture)(nil)
	_ deck.GroupShape   = (*Group)(nil)
	_ deck.Shape        = (*Shape)(nil)
	_ deck.Cell         = (*Cell)(nil)
)

var slot = deck.Geometry{Left: 1, Top: 2, Width: 3, Height: 4}

func TestDeckNumbersSlides(t *testing.T) {
	d := NewDeck(NewSlide(), NewSlide(), NewSlide())
	for i, s := range d.Slides() {
		assert.Equal(t, i, s.Index())
	}
	assert.Same(t, d.Slide(2), d.Slides()[2])
}

func TestShapeIDsAreUnique(t *testing.T) {
	a := NewTextBox("a")
	b := NewShape("b")
	c := NewPicture("c", "", slot)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEqual(t, b.ID(), c.ID())
	assert.Equal(t, "b", b.Name())
	assert.Equal(t, deck.KindOther, b.Kind())
}

func TestInsertAndRemoveShapes(t *testing.T) {
	title := NewTextBox("Title")
	placeholder := NewPicture("Logo", "logo", slot)
	slide := NewSlide(title, placeholder)

	img := deck.Image{Data: []byte{1}, ContentType: "image/png", Name: "logo.png"}
	inserted, err := slide.InsertPicture(placeholder, img, slot)
	require.NoError(t, err)

	shapes := slide.Shapes()
	require.Len(t, shapes, 3)
	assert.Same(t, title, shapes[0])
	assert.Equal(t, inserted, shapes[1])
	assert.Same(t, placeholder, shapes[2])

	pic := inserted.(*Picture)
	alt, ok := pic.AltText()
	assert.True(t, ok)
	assert.Equal(t, "logo.png", alt)
	assert.Equal(t, slot, pic.Geometry())
	assert.Equal(t, img, pic.Image)

	require.NoError(t, slide.RemoveShape(placeholder))
	assert.ErrorIs(t, slide.RemoveShape(placeholder), deck.ErrNotInTree)
	_, err = slide.InsertPicture(placeholder, img, slot)
	assert.ErrorIs(t, err, deck.ErrNotInTree)

	appended, err := slide.InsertPicture(nil, deck.Image{}, slot)
	require.NoError(t, err)
	_, ok = appended.(*Picture).AltText()
	assert.False(t, ok, "nameless images leave the description unset")
	assert.Len(t, slide.Shapes(), 3)
}

func TestShapesReturnsCopy(t *testing.T) {
	slide := NewSlide(NewShape("a"))
	shapes := slide.Shapes()
	shapes[0] = nil
	assert.NotNil(t, slide.Shapes()[0])
}

func TestGroupIsATree(t *testing.T) {
	inner := NewPictureWithoutAltText("inner", slot)
	group := NewGroup("g", inner)
	assert.Equal(t, deck.KindGroup, group.Kind())
	assert.Equal(t, `group "g" (1 shapes)`, group.String())

	require.NoError(t, group.RemoveShape(inner))
	assert.Empty(t, group.Shapes())
}

func TestParagraphEdits(t *testing.T) {
	a, b := NewRun("Hel", deck.Font{Bold: deck.On}), NewRun("lo", deck.Font{})
	p := NewParagraph(a, b)
	assert.Equal(t, "Hello", p.Text())

	require.NoError(t, p.RemoveRun(b))
	assert.ErrorIs(t, p.RemoveRun(b), deck.ErrNotInTree)

	r := p.AddRun()
	r.SetText("p")
	r.SetFont(deck.Font{Size: 1200})
	assert.Equal(t, "Help", p.Text())
	assert.Equal(t, 1200, p.RunList()[1].Font().Size)

	p.ClearRuns()
	assert.Empty(t, p.Runs())
}

func TestTextFrameText(t *testing.T) {
	f := NewTextFrame(TextParagraph("one"), TextParagraph("two"))
	assert.Equal(t, "one\ntwo", f.Text())
	assert.Len(t, f.ParagraphList(), 2)
}

func TestTableRows(t *testing.T) {
	shape := NewTable("People", TextRow("ID", "Name"), TextRow("$id$", "$name$"))
	table := shape.Data()

	clone, err := table.CloneRow(1)
	require.NoError(t, err)
	clone.Cells()[0].Paragraphs()[0].Runs()[0].SetText("1")
	assert.Equal(t, "$id$", table.Row(1).Cell(0).Text(), "clones share no runs with the original")

	require.NoError(t, table.AppendRow(clone))
	require.NoError(t, table.RemoveRow(1))
	assert.Equal(t, [][]string{{"ID", "Name"}, {"1", "$name$"}}, table.Grid())
	assert.Equal(t, 2, table.Len())

	_, err = table.CloneRow(2)
	assert.Error(t, err)
	assert.Error(t, table.RemoveRow(-1))
	assert.Error(t, table.AppendRow(fakeRow{}))
}

type fakeRow struct{}

func (fakeRow) Cells() []deck.Cell { return nil }
