package pptx

import (
	"fmt"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// Table is an a:tbl element
type Table struct {
	node *Node
}

func (t *Table) rows() []*Node {
	return t.node.ChildrenNamed("a:tr")
}

// Rows implements deck.Table
func (t *Table) Rows() []deck.Row {
	var out []deck.Row
	for _, tr := range t.rows() {
		out = append(out, &Row{node: tr})
	}
	return out
}

// CloneRow returns a detached deep copy of row i
func (t *Table) CloneRow(i int) (deck.Row, error) {
	rows := t.rows()
	if i < 0 || i >= len(rows) {
		return nil, fmt.Errorf("row index %d out of range [0,%d)", i, len(rows))
	}
	return &Row{node: rows[i].Clone()}, nil
}

// AppendRow attaches a detached row after the last row
func (t *Table) AppendRow(r deck.Row) error {
	row, ok := r.(*Row)
	if !ok {
		return fmt.Errorf("cannot append %T to a PPTX table", r)
	}
	if row.node.Parent() != nil {
		return fmt.Errorf("row is already part of a table")
	}
	var ref *Node
	if rows := t.rows(); len(rows) > 0 {
		last := rows[len(rows)-1]
		// Insert after the last row so trailing elements such as a:extLst stay last.
		if i := t.node.indexOf(last); i+1 < len(t.node.Children) {
			ref = t.node.Children[i+1]
		}
	}
	return t.node.InsertBefore(row.node, ref)
}

// RemoveRow detaches row i
func (t *Table) RemoveRow(i int) error {
	rows := t.rows()
	if i < 0 || i >= len(rows) {
		return fmt.Errorf("row index %d out of range [0,%d)", i, len(rows))
	}
	return t.node.RemoveChild(rows[i])
}

// Row is an a:tr element
type Row struct {
	node *Node
}

// Cells implements deck.Row
func (r *Row) Cells() []deck.Cell {
	var out []deck.Cell
	for _, tc := range r.node.ChildrenNamed("a:tc") {
		out = append(out, &Cell{TextFrame: TextFrame{node: tc.Child("a:txBody")}})
	}
	return out
}

// Cell is an a:tc element; its text lives in a:txBody
type Cell struct {
	TextFrame
}
