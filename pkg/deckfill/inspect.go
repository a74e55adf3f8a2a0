package deckfill

import (
	"sort"
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// LocationKind identifies where in a deck a placeholder was found
type LocationKind string

const (
	LocationText    LocationKind = "text"
	LocationTable   LocationKind = "table"
	LocationAltText LocationKind = "alt_text"
)

// TokenRef is one token found in the deck
type TokenRef struct {
	Key      string       `json:"key"`
	Slide    int          `json:"slide"`
	Shape    string       `json:"shape"`
	Location LocationKind `json:"location"`
}

// RelationshipRef is a relationship table found in the deck
type RelationshipRef struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Slide  int      `json:"slide"`
	Shape  string   `json:"shape"`
}

// PictureRef is a picture placeholder found in the deck
type PictureRef struct {
	ID       string        `json:"id"`
	Slide    int           `json:"slide"`
	Shape    string        `json:"shape"`
	Geometry deck.Geometry `json:"geometry"`
}

// Inventory lists every placeholder of a deck
type Inventory struct {
	Tokens        []TokenRef        `json:"tokens"`
	Relationships []RelationshipRef `json:"relationships"`
	Pictures      []PictureRef      `json:"pictures"`
	// MissingKeys lists keys the deck needs but the inspected context lacks.
	MissingKeys []string `json:"missingKeys,omitempty"`
}

// Keys returns every context key the deck refers to, sorted
func (inv *Inventory) Keys() []string {
	seen := make(map[string]bool)
	for _, t := range inv.Tokens {
		seen[t.Key] = true
	}
	for _, r := range inv.Relationships {
		seen[r.Name] = true
	}
	for _, p := range inv.Pictures {
		seen[p.ID] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Missing returns the keys the deck refers to that data does not bind
func (inv *Inventory) Missing(data Context) []string {
	var missing []string
	for _, k := range inv.Keys() {
		if v, ok := data[k]; !ok || v == nil {
			missing = append(missing, k)
		}
	}
	return missing
}

// Inspect lists the tokens, relationship tables and picture placeholders of d
// without changing it. When data is not nil MissingKeys is filled in.
func (e *Engine) Inspect(d deck.Deck, data Context) *Inventory {
	inv := &Inventory{}
	for _, s := range d.Slides() {
		e.inspectTree(inv, s, s.Index()+1)
	}
	if data != nil {
		inv.MissingKeys = inv.Missing(data)
	}
	return inv
}

func (e *Engine) inspectTree(inv *Inventory, tree deck.ShapeTree, slideNo int) {
	for _, shape := range tree.Shapes() {
		switch s := shape.(type) {
		case deck.GroupShape:
			e.inspectTree(inv, s, slideNo)
		case deck.TableShape:
			e.inspectTable(inv, s, slideNo)
		case deck.TextShape:
			for _, key := range e.codec.Scan(s.TextFrame().Text()) {
				inv.Tokens = append(inv.Tokens, TokenRef{Key: key, Slide: slideNo, Shape: s.Name(), Location: LocationText})
			}
		case deck.PictureShape:
			alt, _ := s.AltText()
			if id := strings.TrimSpace(alt); id != "" {
				inv.Pictures = append(inv.Pictures, PictureRef{ID: id, Slide: slideNo, Shape: s.Name(), Geometry: s.Geometry()})
			}
		}
	}
}

// inspectTable mirrors processTable: cells before the first marker cell are
// ordinary, and the template row supplies the relationship fields.
func (e *Engine) inspectTable(inv *Inventory, s deck.TableShape, slideNo int) {
	f := &filler{codec: e.codec}
	rows := s.Table().Rows()
	for _, row := range rows {
		for _, cell := range row.Cells() {
			text := cell.Text()
			if strings.Contains(text, relationshipMarker) {
				ref := RelationshipRef{Name: f.relationshipName(text), Slide: slideNo, Shape: s.Name()}
				if len(rows) > templateRowIndex {
					ref.Fields = e.templateFields(rows[templateRowIndex], ref.Name, inv, slideNo, s.Name())
				}
				inv.Relationships = append(inv.Relationships, ref)
				return
			}
			for _, key := range e.codec.Scan(text) {
				inv.Tokens = append(inv.Tokens, TokenRef{Key: key, Slide: slideNo, Shape: s.Name(), Location: LocationTable})
			}
		}
	}
}

func (e *Engine) templateFields(row deck.Row, name string, inv *Inventory, slideNo int, shape string) []string {
	prefix := name + "."
	var fields []string
	for _, cell := range row.Cells() {
		for _, key := range e.codec.Scan(cell.Text()) {
			if field, ok := strings.CutPrefix(key, prefix); ok {
				fields = append(fields, strings.Trim(field, "\n"))
				continue
			}
			inv.Tokens = append(inv.Tokens, TokenRef{Key: key, Slide: slideNo, Shape: shape, Location: LocationTable})
		}
	}
	return fields
}
