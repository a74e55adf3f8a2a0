package memdeck

import (
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// Run is an in-memory run
type Run struct {
	text string
	font deck.Font
}

// NewRun creates a run
func NewRun(text string, font deck.Font) *Run {
	return &Run{text: text, font: font}
}

func (r *Run) Text() string        { return r.text }
func (r *Run) SetText(text string) { r.text = text }
func (r *Run) Font() deck.Font     { return r.font }
func (r *Run) SetFont(f deck.Font) { r.font = f }
func (r *Run) clone() *Run         { c := *r; return &c }

// Paragraph is an in-memory paragraph
type Paragraph struct {
	runs []*Run
}

// NewParagraph creates a paragraph holding runs
func NewParagraph(runs ...*Run) *Paragraph {
	return &Paragraph{runs: runs}
}

// TextParagraph is shorthand for a paragraph with one unformatted run
func TextParagraph(text string) *Paragraph {
	return NewParagraph(NewRun(text, deck.Font{}))
}

func (p *Paragraph) Runs() []deck.Run {
	out := make([]deck.Run, len(p.runs))
	for i, r := range p.runs {
		out[i] = r
	}
	return out
}

// RunList returns the concrete runs
func (p *Paragraph) RunList() []*Run {
	out := make([]*Run, len(p.runs))
	copy(out, p.runs)
	return out
}

func (p *Paragraph) RemoveRun(r deck.Run) error {
	for i, candidate := range p.runs {
		if deck.Run(candidate) == r {
			p.runs = append(p.runs[:i], p.runs[i+1:]...)
			return nil
		}
	}
	return deck.ErrNotInTree
}

func (p *Paragraph) AddRun() deck.Run {
	r := &Run{}
	p.runs = append(p.runs, r)
	return r
}

func (p *Paragraph) ClearRuns() {
	p.runs = nil
}

func (p *Paragraph) Text() string {
	return deck.JoinRuns(p.Runs())
}

func (p *Paragraph) clone() *Paragraph {
	c := &Paragraph{runs: make([]*Run, len(p.runs))}
	for i, r := range p.runs {
		c.runs[i] = r.clone()
	}
	return c
}

// TextFrame is an in-memory text container
type TextFrame struct {
	paras []*Paragraph
}

// NewTextFrame creates a text container holding paragraphs
func NewTextFrame(paras ...*Paragraph) *TextFrame {
	return &TextFrame{paras: paras}
}

func (f *TextFrame) Paragraphs() []deck.Paragraph {
	out := make([]deck.Paragraph, len(f.paras))
	for i, p := range f.paras {
		out[i] = p
	}
	return out
}

// ParagraphList returns the concrete paragraphs
func (f *TextFrame) ParagraphList() []*Paragraph {
	out := make([]*Paragraph, len(f.paras))
	copy(out, f.paras)
	return out
}

func (f *TextFrame) Text() string {
	return deck.JoinParagraphs(f.Paragraphs())
}

func (f *TextFrame) clone() *TextFrame {
	c := &TextFrame{paras: make([]*Paragraph, len(f.paras))}
	for i, p := range f.paras {
		c.paras[i] = p.clone()
	}
	return c
}
