package deck

import "strings"

// TextContainer is anything holding paragraphs: a text frame or a table cell
type TextContainer interface {
	Paragraphs() []Paragraph
	// Text returns the paragraph texts joined with "\n".
	Text() string
}

// Paragraph is an ordered sequence of runs
type Paragraph interface {
	Runs() []Run
	// RemoveRun detaches r from the paragraph.
	RemoveRun(r Run) error
	// AddRun appends a new empty run and returns it.
	AddRun() Run
	// ClearRuns removes every run (and line break) from the paragraph.
	ClearRuns()
	Text() string
}

// Segmented is implemented by paragraphs holding line breaks or fields
// between their runs. Segments returns the runs split at those elements, in
// order; runs of different segments are never merged.
type Segmented interface {
	Segments() [][]Run
}

// Run is the smallest independently styled text unit
type Run interface {
	Text() string
	SetText(text string)
	Font() Font
	SetFont(f Font)
}

// JoinParagraphs flattens paragraphs the way TextContainer.Text does.
// Implementations use it so that every container agrees on the format.
func JoinParagraphs(paras []Paragraph) string {
	parts := make([]string, len(paras))
	for i, p := range paras {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\n")
}

// JoinRuns concatenates the text of runs.
func JoinRuns(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text())
	}
	return sb.String()
}
