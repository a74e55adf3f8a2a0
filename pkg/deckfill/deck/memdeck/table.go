package memdeck

import (
	"fmt"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// Cell is an in-memory table cell
type Cell struct {
	*TextFrame
}

// NewCell creates a cell holding paragraphs
func NewCell(paras ...*Paragraph) *Cell {
	return &Cell{TextFrame: NewTextFrame(paras...)}
}

// TextCell creates a cell with one paragraph holding one run of text in font
func TextCell(text string, font deck.Font) *Cell {
	return NewCell(NewParagraph(NewRun(text, font)))
}

// Row is an in-memory table row
type Row struct {
	cells []*Cell
}

// NewRow creates a row of cells
func NewRow(cells ...*Cell) *Row {
	return &Row{cells: cells}
}

// TextRow creates a row of unformatted single-run cells
func TextRow(texts ...string) *Row {
	cells := make([]*Cell, len(texts))
	for i, t := range texts {
		cells[i] = TextCell(t, deck.Font{})
	}
	return NewRow(cells...)
}

func (r *Row) Cells() []deck.Cell {
	out := make([]deck.Cell, len(r.cells))
	for i, c := range r.cells {
		out[i] = c
	}
	return out
}

// Cell returns the concrete cell at column i
func (r *Row) Cell(i int) *Cell {
	return r.cells[i]
}

func (r *Row) clone() *Row {
	c := &Row{cells: make([]*Cell, len(r.cells))}
	for i, cell := range r.cells {
		c.cells[i] = &Cell{TextFrame: cell.TextFrame.clone()}
	}
	return c
}

// Table is an in-memory table
type Table struct {
	rows []*Row
}

func (t *Table) Rows() []deck.Row {
	out := make([]deck.Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r
	}
	return out
}

// Row returns the concrete row at index i
func (t *Table) Row(i int) *Row {
	return t.rows[i]
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) CloneRow(i int) (deck.Row, error) {
	if i < 0 || i >= len(t.rows) {
		return nil, fmt.Errorf("row %d out of range (table has %d rows)", i, len(t.rows))
	}
	return t.rows[i].clone(), nil
}

func (t *Table) AppendRow(r deck.Row) error {
	row, ok := r.(*Row)
	if !ok {
		return fmt.Errorf("cannot append %T to an in-memory table", r)
	}
	t.rows = append(t.rows, row)
	return nil
}

func (t *Table) RemoveRow(i int) error {
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("row %d out of range (table has %d rows)", i, len(t.rows))
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

// Grid returns the text of every cell, row by row
func (t *Table) Grid() [][]string {
	grid := make([][]string, len(t.rows))
	for i, r := range t.rows {
		grid[i] = make([]string, len(r.cells))
		for j, c := range r.cells {
			grid[i][j] = c.Text()
		}
	}
	return grid
}

// TableShape is a shape carrying a table
type TableShape struct {
	shapeInfo
	table *Table
}

// NewTable creates a table shape from rows
func NewTable(name string, rows ...*Row) *TableShape {
	return &TableShape{shapeInfo: newShapeInfo(name), table: &Table{rows: rows}}
}

func (s *TableShape) Kind() deck.ShapeKind { return deck.KindTable }
func (s *TableShape) Table() deck.Table    { return s.table }

// Data returns the concrete table
func (s *TableShape) Data() *Table { return s.table }
