package pptx

import (
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

const (
	slideLayoutRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	slideMasterRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
)

// placeholder is the p:ph of a shape that fills a layout placeholder
type placeholder struct {
	typ string
	idx string
}

// parsePlaceholder reads the p:ph of a shape element. Type defaults to obj
// and idx to 0.
func parsePlaceholder(shape *Node) (placeholder, bool) {
	var ph *Node
	for _, c := range shape.Elements() {
		if strings.HasPrefix(c.Name, "p:nv") {
			ph = c.Find("p:nvPr", "p:ph")
			break
		}
	}
	if ph == nil {
		return placeholder{}, false
	}
	p := placeholder{typ: "obj", idx: "0"}
	if v, ok := ph.Attr("type"); ok {
		p.typ = v
	}
	if v, ok := ph.Attr("idx"); ok {
		p.idx = v
	}
	return p, true
}

// masterType is the type of the master placeholder a layout placeholder
// inherits from. Masters only hold title, body, date, footer and slide number.
func (p placeholder) masterType() string {
	switch p.typ {
	case "title", "ctrTitle":
		return "title"
	case "dt", "ftr", "sldNum":
		return p.typ
	default:
		return "body"
	}
}

// relatedPart is a part reached through a relationship, with its own relationships
type relatedPart struct {
	name string
	root *Node
	rels *Relationships
}

// related loads the first internal part of relType that rels points to
func (p *Presentation) related(rels *Relationships, relType string) (*relatedPart, bool) {
	for _, rel := range rels.All() {
		if rel.Type != relType || rel.TargetMode == "External" {
			continue
		}
		name := rels.Resolve(rel)
		root, err := p.readXMLPart(name)
		if err != nil {
			return nil, false
		}
		partRels, err := p.readRelationships(name)
		if err != nil {
			return nil, false
		}
		return &relatedPart{name: name, root: root, rels: partRels}, true
	}
	return nil, false
}

// findPlaceholder returns the first shape of a layout or master whose p:ph
// satisfies match
func findPlaceholder(root *Node, match func(placeholder) bool) *Node {
	tree := root.Find("p:cSld", "p:spTree")
	if tree == nil {
		return nil
	}
	var found *Node
	tree.Walk(func(n *Node) {
		if found != nil || n.Name != "p:ph" {
			return
		}
		// p:ph sits in p:nvPr of the shape's p:nv*Pr
		nvPr := n.Parent()
		if nvPr == nil || nvPr.Parent() == nil || nvPr.Parent().Parent() == nil {
			return
		}
		shape := nvPr.Parent().Parent()
		if ph, ok := parsePlaceholder(shape); ok && match(ph) {
			found = shape
		}
	})
	return found
}

// inheritedGeometry resolves the xfrm of a placeholder shape that has none of
// its own: first from the layout placeholder with the same idx, then from the
// master placeholder of the matching type.
func (s *Slide) inheritedGeometry(ph placeholder) (deck.Geometry, bool) {
	layout, ok := s.pres.related(s.rels, slideLayoutRelationshipType)
	if !ok {
		return deck.Geometry{}, false
	}

	typ := ph.masterType()
	if shape := findPlaceholder(layout.root, func(c placeholder) bool { return c.idx == ph.idx }); shape != nil {
		if xfrm := shape.Find("p:spPr", "a:xfrm"); xfrm != nil {
			return parseXfrm(xfrm), true
		}
		if lph, ok := parsePlaceholder(shape); ok {
			typ = lph.masterType()
		}
	}

	master, ok := s.pres.related(layout.rels, slideMasterRelationshipType)
	if !ok {
		return deck.Geometry{}, false
	}
	shape := findPlaceholder(master.root, func(c placeholder) bool { return c.masterType() == typ })
	if shape == nil {
		return deck.Geometry{}, false
	}
	if xfrm := shape.Find("p:spPr", "a:xfrm"); xfrm != nil {
		return parseXfrm(xfrm), true
	}
	return deck.Geometry{}, false
}
