package pptx

import (
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// baseShape carries what every shape element has: its node and its cNvPr
type baseShape struct {
	slide *Slide
	node  *Node
}

func (s *baseShape) xmlNode() *Node { return s.node }

// nonVisual returns the p:cNvPr of the shape, found in its p:nv*Pr child
func (s *baseShape) nonVisual() *Node {
	for _, c := range s.node.Elements() {
		if strings.HasPrefix(c.Name, "p:nv") {
			return c.Child("p:cNvPr")
		}
	}
	return nil
}

func (s *baseShape) Name() string {
	if nv := s.nonVisual(); nv != nil {
		name, _ := nv.Attr("name")
		return name
	}
	return ""
}

func (s *baseShape) ID() string {
	if nv := s.nonVisual(); nv != nil {
		id, _ := nv.Attr("id")
		return id
	}
	return ""
}

// Node returns the XML element of the shape
func (s *baseShape) Node() *Node { return s.node }

// nodeOf returns the element behind a shape of this package
func nodeOf(s deck.Shape) *Node {
	if x, ok := s.(interface{ xmlNode() *Node }); ok {
		return x.xmlNode()
	}
	return nil
}

// TextShape is a p:sp with a text body
type TextShape struct {
	baseShape
}

func (s *TextShape) Kind() deck.ShapeKind { return deck.KindText }

// TextFrame implements deck.TextShape
func (s *TextShape) TextFrame() deck.TextContainer {
	return &TextFrame{node: s.node.Child("p:txBody")}
}

// TableShape is a p:graphicFrame holding an a:tbl
type TableShape struct {
	baseShape
}

func (s *TableShape) Kind() deck.ShapeKind { return deck.KindTable }

// Table implements deck.TableShape
func (s *TableShape) Table() deck.Table {
	return &Table{node: s.node.Find("a:graphic", "a:graphicData", "a:tbl")}
}

// Picture is a p:pic element
type Picture struct {
	baseShape
}

func (p *Picture) Kind() deck.ShapeKind { return deck.KindPicture }

// AltText returns the descr attribute of the picture
func (p *Picture) AltText() (string, bool) {
	if nv := p.nonVisual(); nv != nil {
		return nv.Attr("descr")
	}
	return "", false
}

// Geometry returns the offset and extent of the picture. A picture filling a
// layout placeholder without an xfrm of its own takes the placeholder's.
func (p *Picture) Geometry() deck.Geometry {
	if xfrm := p.node.Find("p:spPr", "a:xfrm"); xfrm != nil {
		return parseXfrm(xfrm)
	}
	if ph, ok := parsePlaceholder(p.node); ok && p.slide != nil {
		if g, ok := p.slide.inheritedGeometry(ph); ok {
			return g
		}
	}
	return deck.Geometry{}
}

// EmbedID returns the relationship id of the image the picture shows
func (p *Picture) EmbedID() string {
	if blip := p.node.Find("p:blipFill", "a:blip"); blip != nil {
		id, _ := blip.Attr("r:embed")
		return id
	}
	return ""
}

// Group is a p:grpSp. Its children form a shape tree of their own.
type Group struct {
	baseShape
	shapeTree
}

func (g *Group) Kind() deck.ShapeKind { return deck.KindGroup }

// OtherShape is any shape the engine does not process
type OtherShape struct {
	baseShape
}

func (s *OtherShape) Kind() deck.ShapeKind { return deck.KindOther }
