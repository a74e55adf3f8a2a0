package pptx

import (
	"strconv"
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// TextFrame is a p:txBody of a shape or an a:txBody of a table cell
type TextFrame struct {
	node *Node
}

// Paragraphs implements deck.TextContainer
func (f *TextFrame) Paragraphs() []deck.Paragraph {
	if f == nil || f.node == nil {
		return nil
	}
	var out []deck.Paragraph
	for _, p := range f.node.ChildrenNamed("a:p") {
		out = append(out, &Paragraph{node: p})
	}
	return out
}

// Text implements deck.TextContainer
func (f *TextFrame) Text() string {
	return deck.JoinParagraphs(f.Paragraphs())
}

// Paragraph is an a:p element
type Paragraph struct {
	node *Node
}

// Runs returns the a:r children. Line breaks and fields are not runs.
func (p *Paragraph) Runs() []deck.Run {
	var out []deck.Run
	for _, r := range p.node.ChildrenNamed("a:r") {
		out = append(out, &Run{node: r})
	}
	return out
}

// Segments implements deck.Segmented. An a:br or a:fld ends a segment.
func (p *Paragraph) Segments() [][]deck.Run {
	var out [][]deck.Run
	var cur []deck.Run
	for _, c := range p.node.Elements() {
		switch c.Name {
		case "a:r":
			cur = append(cur, &Run{node: c})
		case "a:br", "a:fld":
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// RemoveRun implements deck.Paragraph
func (p *Paragraph) RemoveRun(r deck.Run) error {
	run, ok := r.(*Run)
	if !ok || run.node.Parent() != p.node {
		return deck.ErrNotInTree
	}
	return p.node.RemoveChild(run.node)
}

// AddRun appends a run, keeping a:endParaRPr last
func (p *Paragraph) AddRun() deck.Run {
	r := newElement("a:r")
	r.AppendChild(newElement("a:t"))
	_ = p.node.InsertBefore(r, p.node.Child("a:endParaRPr"))
	return &Run{node: r}
}

// ClearRuns removes runs, line breaks and fields. Paragraph properties stay.
func (p *Paragraph) ClearRuns() {
	for _, c := range p.node.Elements() {
		switch c.Name {
		case "a:r", "a:br", "a:fld":
			_ = p.node.RemoveChild(c)
		}
	}
}

// Text returns the paragraph text. Line breaks read as a vertical tab.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, c := range p.node.Elements() {
		switch c.Name {
		case "a:r", "a:fld":
			if t := c.Child("a:t"); t != nil {
				sb.WriteString(t.TextContent())
			}
		case "a:br":
			sb.WriteString("\v")
		}
	}
	return sb.String()
}

// Run is an a:r element
type Run struct {
	node *Node
}

// Text implements deck.Run
func (r *Run) Text() string {
	if t := r.node.Child("a:t"); t != nil {
		return t.TextContent()
	}
	return ""
}

// SetText implements deck.Run. Characters XML cannot hold are dropped.
func (r *Run) SetText(text string) {
	text = validXMLText(text)
	t := r.node.Child("a:t")
	if t == nil {
		t = newElement("a:t")
		r.node.AppendChild(t)
	}
	t.SetTextContent(text)
}

// Font reads the run properties
func (r *Run) Font() deck.Font {
	return parseFont(r.node.Child("a:rPr"))
}

// SetFont writes f into the run properties. Attributes f leaves unset are
// removed so that they are inherited again.
func (r *Run) SetFont(f deck.Font) {
	rPr := r.node.Child("a:rPr")
	if rPr == nil {
		rPr = newElement("a:rPr", "lang", "en-US", "dirty", "0")
		r.node.InsertAt(rPr, 0)
	}
	writeFont(rPr, f)
}

func parseFont(rPr *Node) deck.Font {
	var f deck.Font
	if rPr == nil {
		return f
	}
	if v, ok := rPr.Attr("sz"); ok {
		f.Size, _ = strconv.Atoi(v)
	}
	f.Bold = parseToggle(rPr, "b")
	f.Italic = parseToggle(rPr, "i")
	f.Underline, _ = rPr.Attr("u")
	if latin := rPr.Child("a:latin"); latin != nil {
		f.Name, _ = latin.Attr("typeface")
	}
	if fill := rPr.Child("a:solidFill"); fill != nil {
		if c := fill.Child("a:srgbClr"); c != nil {
			f.Color.RGB, _ = c.Attr("val")
		} else if c := fill.Child("a:schemeClr"); c != nil {
			f.Color.Theme, _ = c.Attr("val")
		}
	}
	return f
}

func parseToggle(n *Node, attr string) deck.Toggle {
	v, ok := n.Attr(attr)
	if !ok {
		return deck.Inherit
	}
	switch v {
	case "1", "true", "on":
		return deck.On
	default:
		return deck.Off
	}
}

func writeToggle(n *Node, attr string, t deck.Toggle) {
	switch t {
	case deck.On:
		n.SetAttr(attr, "1")
	case deck.Off:
		n.SetAttr(attr, "0")
	default:
		n.RemoveAttr(attr)
	}
}

// Elements following a:latin in CT_TextCharacterProperties
var afterLatin = []string{"a:ea", "a:cs", "a:sym", "a:hlinkClick", "a:hlinkMouseOver", "a:rtl", "a:extLst"}

func writeFont(rPr *Node, f deck.Font) {
	if f.Size > 0 {
		rPr.SetAttr("sz", strconv.Itoa(f.Size))
	} else {
		rPr.RemoveAttr("sz")
	}
	writeToggle(rPr, "b", f.Bold)
	writeToggle(rPr, "i", f.Italic)
	if f.Underline != "" {
		rPr.SetAttr("u", f.Underline)
	} else {
		rPr.RemoveAttr("u")
	}

	if old := rPr.Child("a:solidFill"); old != nil {
		_ = rPr.RemoveChild(old)
	}
	if !f.Color.IsZero() {
		fill := newElement("a:solidFill")
		if f.Color.RGB != "" {
			fill.AppendChild(newElement("a:srgbClr", "val", f.Color.RGB))
		} else {
			fill.AppendChild(newElement("a:schemeClr", "val", f.Color.Theme))
		}
		// a:ln is the only element allowed before the fill
		pos := 0
		if ln := rPr.Child("a:ln"); ln != nil {
			pos = rPr.indexOf(ln) + 1
		}
		rPr.InsertAt(fill, pos)
	}

	if old := rPr.Child("a:latin"); old != nil {
		_ = rPr.RemoveChild(old)
	}
	if f.Name != "" {
		latin := newElement("a:latin", "typeface", f.Name)
		var ref *Node
		for _, name := range afterLatin {
			if ref = rPr.Child(name); ref != nil {
				break
			}
		}
		_ = rPr.InsertBefore(latin, ref)
	}
}
