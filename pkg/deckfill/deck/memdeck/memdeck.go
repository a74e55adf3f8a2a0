// Package memdeck is an in-memory implementation of the deck interfaces.
//
// It is used to build decks programmatically and by tests that need a
// document tree without a file format behind it.
//
//	d := memdeck.NewDeck(
//	    memdeck.NewSlide(
//	        memdeck.NewTextBox("Title", memdeck.NewParagraph(memdeck.NewRun("Hello $name$", deck.Font{}))),
//	    ),
//	)
package memdeck

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

var shapeSeq atomic.Int64

func nextID() string {
	return strconv.FormatInt(shapeSeq.Add(1), 10)
}

// Deck is an in-memory deck
type Deck struct {
	slides []*Slide
}

// NewDeck creates a deck from slides, numbering them in order.
func NewDeck(slides ...*Slide) *Deck {
	for i, s := range slides {
		s.index = i
	}
	return &Deck{slides: slides}
}

// Slides implements deck.Deck
func (d *Deck) Slides() []deck.Slide {
	out := make([]deck.Slide, len(d.slides))
	for i, s := range d.slides {
		out[i] = s
	}
	return out
}

// Slide returns the in-memory slide at index i
func (d *Deck) Slide(i int) *Slide {
	return d.slides[i]
}

// tree is the shape list shared by slides and groups
type tree struct {
	shapes []deck.Shape
}

func (t *tree) Shapes() []deck.Shape {
	out := make([]deck.Shape, len(t.shapes))
	copy(out, t.shapes)
	return out
}

func (t *tree) indexOf(s deck.Shape) int {
	for i, candidate := range t.shapes {
		if candidate == s {
			return i
		}
	}
	return -1
}

func (t *tree) RemoveShape(s deck.Shape) error {
	i := t.indexOf(s)
	if i < 0 {
		return deck.ErrNotInTree
	}
	t.shapes = append(t.shapes[:i], t.shapes[i+1:]...)
	return nil
}

func (t *tree) InsertPicture(before deck.Shape, img deck.Image, g deck.Geometry) (deck.Shape, error) {
	id := nextID()
	pic := &Picture{
		id:       id,
		name:     "Picture " + id,
		geometry: g,
		Image:    img,
	}
	if img.Name != "" {
		pic.SetAltText(img.Name)
	}
	if before == nil {
		t.shapes = append(t.shapes, pic)
		return pic, nil
	}
	i := t.indexOf(before)
	if i < 0 {
		return nil, deck.ErrNotInTree
	}
	t.shapes = append(t.shapes, nil)
	copy(t.shapes[i+1:], t.shapes[i:])
	t.shapes[i] = pic
	return pic, nil
}

// Slide is an in-memory slide
type Slide struct {
	tree
	index int
}

// NewSlide creates a slide holding shapes
func NewSlide(shapes ...deck.Shape) *Slide {
	return &Slide{tree: tree{shapes: shapes}}
}

// Index implements deck.Slide
func (s *Slide) Index() int { return s.index }

// shapeInfo carries identity shared by every shape type
type shapeInfo struct {
	id   string
	name string
}

func newShapeInfo(name string) shapeInfo {
	return shapeInfo{id: nextID(), name: name}
}

func (s shapeInfo) Name() string { return s.name }
func (s shapeInfo) ID() string   { return s.id }

// TextBox is a text shape
type TextBox struct {
	shapeInfo
	frame *TextFrame
}

// NewTextBox creates a text shape holding paragraphs
func NewTextBox(name string, paras ...*Paragraph) *TextBox {
	return &TextBox{shapeInfo: newShapeInfo(name), frame: NewTextFrame(paras...)}
}

func (b *TextBox) Kind() deck.ShapeKind          { return deck.KindText }
func (b *TextBox) TextFrame() deck.TextContainer { return b.frame }

// Frame returns the concrete text frame
func (b *TextBox) Frame() *TextFrame { return b.frame }

// Shape is a shape the engine does not process (connector, chart, ...)
type Shape struct {
	shapeInfo
}

// NewShape creates a shape of kind Other
func NewShape(name string) *Shape {
	return &Shape{shapeInfo: newShapeInfo(name)}
}

func (s *Shape) Kind() deck.ShapeKind { return deck.KindOther }

// Picture is an image shape
type Picture struct {
	id       string
	name     string
	alt      string
	hasAlt   bool
	geometry deck.Geometry
	// Image is the picture content. Placeholders created by NewPicture carry none.
	Image deck.Image
}

// NewPicture creates a picture placeholder with alt text
func NewPicture(name, alt string, g deck.Geometry) *Picture {
	return &Picture{id: nextID(), name: name, alt: alt, hasAlt: true, geometry: g}
}

// NewPictureWithoutAltText creates a picture with no description attribute
func NewPictureWithoutAltText(name string, g deck.Geometry) *Picture {
	return &Picture{id: nextID(), name: name, geometry: g}
}

func (p *Picture) Kind() deck.ShapeKind { return deck.KindPicture }
func (p *Picture) Name() string         { return p.name }
func (p *Picture) ID() string           { return p.id }

func (p *Picture) AltText() (string, bool) { return p.alt, p.hasAlt }

// SetAltText sets the description attribute
func (p *Picture) SetAltText(alt string) {
	p.alt = alt
	p.hasAlt = true
}

func (p *Picture) Geometry() deck.Geometry { return p.geometry }

// Group is a group shape
type Group struct {
	shapeInfo
	tree
}

// NewGroup creates a group holding shapes
func NewGroup(name string, shapes ...deck.Shape) *Group {
	return &Group{shapeInfo: newShapeInfo(name), tree: tree{shapes: shapes}}
}

func (g *Group) Kind() deck.ShapeKind { return deck.KindGroup }

func (g *Group) String() string {
	return fmt.Sprintf("group %q (%d shapes)", g.name, len(g.shapes))
}
