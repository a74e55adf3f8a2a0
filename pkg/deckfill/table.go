package deckfill

import (
	"errors"
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

const (
	// relationshipMarker in a cell's text turns the table into a relationship table
	relationshipMarker = "relationship"
	// templateRowIndex is the row cloned once per record; row 0 is the header
	templateRowIndex = 1
)

// tableResult describes what processTable did to one table
type tableResult struct {
	stats        mergeStats
	relationship string
	records      int
	expanded     bool
}

// processTable populates a table. The first cell mentioning the relationship
// marker expands the table from the named relationship and ends the scan;
// every cell visited before it gets ordinary run-level substitution.
func (f *filler) processTable(t deck.Table) (res tableResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newFailure(TableProcessingFailure, res.relationship, recoverError(r))
		}
	}()

	for _, row := range t.Rows() {
		for _, cell := range row.Cells() {
			text := cell.Text()
			if strings.Contains(text, relationshipMarker) {
				res.relationship = f.relationshipName(text)
				n, err := f.expandRelationship(t, res.relationship)
				if err != nil {
					return res, err
				}
				res.records = n
				res.expanded = true
				return res, nil
			}
			res.stats.add(substituteParagraphs(cell, f.sub))
		}
	}
	return res, nil
}

// relationshipName extracts the relationship from a marker cell. A token such
// as $relationship_people.id$ names relationship_people. Cells without a
// recognizable token fall back to stripping delimiters and taking the text
// before the first dot.
func (f *filler) relationshipName(text string) string {
	for _, key := range f.codec.Scan(text) {
		if strings.Contains(key, relationshipMarker) {
			if name, _, ok := strings.Cut(key, "."); ok {
				return strings.TrimSpace(name)
			}
		}
	}
	name, _, _ := strings.Cut(f.codec.Strip(text), ".")
	return strings.TrimSpace(name)
}

// expandRelationship appends one clone of the template row per record and then
// removes the template row. Rows are rendered before any is appended, so a
// failure leaves the table as it was.
func (f *filler) expandRelationship(t deck.Table, name string) (int, error) {
	if name == "" {
		return 0, newFailure(TableProcessingFailure, name, ErrMalformedRelationship)
	}
	records, err := f.ctx.Relationship(name)
	if err != nil {
		if errors.Is(err, ErrUnboundRelationship) {
			return 0, newFailure(UnboundRelationship, name, err)
		}
		return 0, newFailure(TableProcessingFailure, name, err)
	}
	if len(t.Rows()) <= templateRowIndex {
		return 0, newFailure(TableProcessingFailure, name, ErrNoTemplateRow)
	}

	rows := make([]deck.Row, 0, len(records))
	for i, rec := range records {
		row, err := t.CloneRow(templateRowIndex)
		if err != nil {
			return 0, newFailure(TableProcessingFailure, name, fmt.Errorf("failed to clone template row: %w", err))
		}
		if err := f.fillRow(row, name, rec); err != nil {
			return 0, newFailure(TableProcessingFailure, name, fmt.Errorf("record %d: %w", i, err))
		}
		rows = append(rows, row)
	}

	for _, row := range rows {
		if err := t.AppendRow(row); err != nil {
			return 0, newFailure(TableProcessingFailure, name, fmt.Errorf("failed to append row: %w", err))
		}
	}
	if err := t.RemoveRow(templateRowIndex); err != nil {
		return 0, newFailure(TableProcessingFailure, name, fmt.Errorf("failed to remove template row: %w", err))
	}
	return len(records), nil
}

// fillRow renders every cell of a cloned template row from one record
func (f *filler) fillRow(row deck.Row, name string, rec Record) error {
	for _, cell := range row.Cells() {
		value, err := f.renderRelationshipCell(cell.Text(), name, rec)
		if err != nil {
			return err
		}
		setCellText(cell, value)
	}
	return nil
}

// renderRelationshipCell resolves the relationship tokens of one template cell
// against a record and then applies scalar substitution to the rest.
func (f *filler) renderRelationshipCell(text, name string, rec Record) (string, error) {
	text = strings.Trim(text, "\n")
	prefix := name + "."

	found := false
	out, err := f.codec.ReplaceFunc(text, func(key string) (string, bool, error) {
		field, ok := strings.CutPrefix(key, prefix)
		if !ok {
			return "", false, nil
		}
		found = true
		return lookupField(rec, field)
	})
	if err != nil {
		return "", err
	}

	// Bare name.field without delimiters replaces the whole cell.
	if !found {
		if field, ok := strings.CutPrefix(strings.TrimSpace(f.codec.Strip(text)), prefix); ok {
			out, _, err = lookupField(rec, field)
			if err != nil {
				return "", err
			}
		}
	}

	out, _ = f.sub.Replace(out)
	return out, nil
}

func lookupField(rec Record, field string) (string, bool, error) {
	field = strings.Trim(field, "\n")
	v, ok := rec[field]
	if !ok {
		return "", false, fmt.Errorf("%w: %q", ErrMissingField, field)
	}
	return Stringify(v), true, nil
}

// setCellText replaces the content of a cell with a single run in its first
// paragraph. The run inherits the font of the first run that was there.
func setCellText(cell deck.Cell, text string) {
	paras := cell.Paragraphs()
	if len(paras) == 0 {
		return
	}
	first := paras[0]

	var font *deck.Font
	if runs := first.Runs(); len(runs) > 0 {
		fnt := inheritedFont(runs[0].Font())
		font = &fnt
	}

	first.ClearRuns()
	for _, p := range paras[1:] {
		p.ClearRuns()
	}

	run := first.AddRun()
	run.SetText(text)
	if font != nil {
		run.SetFont(*font)
	}
}

// inheritedFont keeps the attributes a generated table run copies from its template
func inheritedFont(src deck.Font) deck.Font {
	return deck.Font{
		Name:   src.Name,
		Size:   src.Size,
		Bold:   src.Bold,
		Italic: src.Italic,
		Color:  src.Color,
	}
}
