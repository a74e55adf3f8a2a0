package pptx

import (
	"fmt"
	"strconv"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// Slide is one slide part. It implements deck.Slide.
type Slide struct {
	shapeTree
	pres  *Presentation
	index int
	part  string
	root  *Node
	rels  *Relationships
}

func newSlide(pres *Presentation, index int, part string, root *Node, rels *Relationships) (*Slide, error) {
	spTree := root.Find("p:cSld", "p:spTree")
	if spTree == nil {
		return nil, fmt.Errorf("slide %s has no shape tree", part)
	}
	s := &Slide{pres: pres, index: index, part: part, root: root, rels: rels}
	s.shapeTree = shapeTree{slide: s, node: spTree}
	return s, nil
}

// Index implements deck.Slide
func (s *Slide) Index() int { return s.index }

// Part returns the name of the slide part, e.g. ppt/slides/slide1.xml
func (s *Slide) Part() string { return s.part }

// nextShapeID returns an id not used by any shape of the slide
func (s *Slide) nextShapeID() int {
	maxID := 0
	s.root.Walk(func(n *Node) {
		if n.Name != "p:cNvPr" {
			return
		}
		if v, ok := n.Attr("id"); ok {
			if id, err := strconv.Atoi(v); err == nil && id > maxID {
				maxID = id
			}
		}
	})
	return maxID + 1
}

// shapeTree is a p:spTree or p:grpSp. Slides and groups share it.
type shapeTree struct {
	slide *Slide
	node  *Node
}

// Shapes implements deck.ShapeTree
func (t *shapeTree) Shapes() []deck.Shape {
	var out []deck.Shape
	for _, n := range t.node.Elements() {
		switch n.Name {
		case "p:nvGrpSpPr", "p:grpSpPr", "p:extLst":
			continue
		}
		out = append(out, t.wrap(n))
	}
	return out
}

func (t *shapeTree) wrap(n *Node) deck.Shape {
	base := baseShape{slide: t.slide, node: n}
	switch n.Name {
	case "p:sp":
		if body := n.Child("p:txBody"); body != nil {
			return &TextShape{baseShape: base}
		}
	case "p:graphicFrame":
		if tbl := n.Find("a:graphic", "a:graphicData", "a:tbl"); tbl != nil {
			return &TableShape{baseShape: base}
		}
	case "p:pic":
		return &Picture{baseShape: base}
	case "p:grpSp":
		return &Group{baseShape: base, shapeTree: shapeTree{slide: t.slide, node: n}}
	}
	return &OtherShape{baseShape: base}
}

// RemoveShape implements deck.ShapeTree
func (t *shapeTree) RemoveShape(s deck.Shape) error {
	n := nodeOf(s)
	if n == nil || n.Parent() != t.node {
		return deck.ErrNotInTree
	}
	return t.node.RemoveChild(n)
}

// InsertPicture adds the image as a new media part of the package, relates it
// to the slide and inserts a p:pic before the given shape.
func (t *shapeTree) InsertPicture(before deck.Shape, img deck.Image, g deck.Geometry) (deck.Shape, error) {
	var ref *Node
	if before != nil {
		if ref = nodeOf(before); ref == nil || ref.Parent() != t.node {
			return nil, deck.ErrNotInTree
		}
	}

	media, err := t.slide.pres.addMedia(img)
	if err != nil {
		return nil, err
	}
	rID := t.slide.rels.Add(imageRelationshipType, relativeTarget(t.slide.part, media))

	id := t.slide.nextShapeID()
	pic := buildPicture(id, fmt.Sprintf("Picture %d", id-1), img.Name, rID, g)
	if err := t.node.InsertBefore(pic, ref); err != nil {
		return nil, err
	}
	return &Picture{baseShape: baseShape{slide: t.slide, node: pic}}, nil
}

func buildPicture(id int, name, descr, rID string, g deck.Geometry) *Node {
	cNvPr := newElement("p:cNvPr", "id", strconv.Itoa(id), "name", name)
	if descr != "" {
		cNvPr.SetAttr("descr", descr)
	}
	locks := newElement("p:cNvPicPr")
	locks.AppendChild(newElement("a:picLocks", "noChangeAspect", "1"))
	nvPicPr := newElement("p:nvPicPr")
	nvPicPr.AppendChild(cNvPr)
	nvPicPr.AppendChild(locks)
	nvPicPr.AppendChild(newElement("p:nvPr"))

	stretch := newElement("a:stretch")
	stretch.AppendChild(newElement("a:fillRect"))
	blipFill := newElement("p:blipFill")
	blipFill.AppendChild(newElement("a:blip", "r:embed", rID))
	blipFill.AppendChild(stretch)

	prstGeom := newElement("a:prstGeom", "prst", "rect")
	prstGeom.AppendChild(newElement("a:avLst"))
	spPr := newElement("p:spPr")
	spPr.AppendChild(buildXfrm(g))
	spPr.AppendChild(prstGeom)

	pic := newElement("p:pic")
	pic.AppendChild(nvPicPr)
	pic.AppendChild(blipFill)
	pic.AppendChild(spPr)
	return pic
}

func buildXfrm(g deck.Geometry) *Node {
	xfrm := newElement("a:xfrm")
	xfrm.AppendChild(newElement("a:off",
		"x", strconv.FormatInt(g.Left, 10),
		"y", strconv.FormatInt(g.Top, 10)))
	xfrm.AppendChild(newElement("a:ext",
		"cx", strconv.FormatInt(g.Width, 10),
		"cy", strconv.FormatInt(g.Height, 10)))
	return xfrm
}

func parseXfrm(xfrm *Node) deck.Geometry {
	var g deck.Geometry
	if xfrm == nil {
		return g
	}
	if off := xfrm.Child("a:off"); off != nil {
		g.Left = attrInt64(off, "x")
		g.Top = attrInt64(off, "y")
	}
	if ext := xfrm.Child("a:ext"); ext != nil {
		g.Width = attrInt64(ext, "cx")
		g.Height = attrInt64(ext, "cy")
	}
	return g
}

func attrInt64(n *Node, name string) int64 {
	v, _ := n.Attr(name)
	i, _ := strconv.ParseInt(v, 10, 64)
	return i
}
