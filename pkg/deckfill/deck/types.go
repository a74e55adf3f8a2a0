package deck

import "errors"

// ErrNotInTree is returned by tree-edit primitives when the referenced node
// does not belong to the receiver.
var ErrNotInTree = errors.New("node is not part of this tree")

// ShapeKind identifies which capability interface a shape satisfies
type ShapeKind int

const (
	KindOther ShapeKind = iota
	KindText
	KindTable
	KindPicture
	KindGroup
)

func (k ShapeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTable:
		return "table"
	case KindPicture:
		return "picture"
	case KindGroup:
		return "group"
	default:
		return "other"
	}
}

// Deck is a loaded slide deck
type Deck interface {
	Slides() []Slide
}

// ShapeTree is an ordered container of shapes. Slides and group shapes are both shape trees.
type ShapeTree interface {
	Shapes() []Shape
	// RemoveShape detaches s from the tree.
	RemoveShape(s Shape) error
	// InsertPicture adds a picture built from img at geometry g directly before
	// the shape before. A nil before appends at the end of the tree.
	InsertPicture(before Shape, img Image, g Geometry) (Shape, error)
}

// Slide is one slide of a deck
type Slide interface {
	ShapeTree
	// Index returns the zero-based position of the slide in its deck.
	Index() int
}

// Shape is the common view of every element on a slide
type Shape interface {
	Kind() ShapeKind
	Name() string
	ID() string
}

// TextShape is a shape carrying a text frame
type TextShape interface {
	Shape
	TextFrame() TextContainer
}

// TableShape is a shape carrying a table
type TableShape interface {
	Shape
	Table() Table
}

// PictureShape is an image shape that may act as a placeholder
type PictureShape interface {
	Shape
	// AltText returns the description stored on the picture and whether the
	// attribute is present at all.
	AltText() (string, bool)
	Geometry() Geometry
}

// GroupShape is a shape whose children form their own shape tree
type GroupShape interface {
	Shape
	ShapeTree
}
