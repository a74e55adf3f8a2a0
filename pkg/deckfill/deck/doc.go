// Package deck defines the document-tree abstraction the deckfill engine works against.
//
// The engine never reads or writes a file format. It walks a Deck through the
// interfaces in this package and edits the tree in place using a small set of
// primitives: removing a run from a paragraph, cloning and appending table
// rows, removing a shape and inserting a picture before another shape.
//
// # Structure Organization
//
//   - types.go: Deck, Slide, ShapeTree, Shape and the per-kind capability interfaces
//   - text.go: TextContainer, Paragraph and Run
//   - font.go: Font, Toggle, Color and the formatting Fingerprint used for run merging
//   - table.go: Table, Row and Cell
//   - picture.go: Picture geometry and the Image payload used for replacement
//
// # Shape Kinds
//
// Every shape reports a ShapeKind. The kind decides which capability interface
// the shape satisfies:
//
//	Text    -> TextShape
//	Table   -> TableShape
//	Picture -> PictureShape
//	Group   -> GroupShape
//	Other   -> none (skipped by the engine)
//
// Implementations live in sibling packages: pptx for PowerPoint files and
// memdeck for decks assembled in memory.
package deck
