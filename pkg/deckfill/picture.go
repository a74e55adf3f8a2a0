package deckfill

import (
	"context"
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
)

// PictureOutcome describes a replaced picture placeholder
type PictureOutcome struct {
	// ID is the alt-text identifier the placeholder was bound by.
	ID string
	// Value is the context value bound to ID.
	Value any
	// Geometry is the position and size shared by the placeholder and its replacement.
	Geometry deck.Geometry
	// Picture is the newly inserted shape.
	Picture deck.Shape
}

// resolvePicture replaces a picture placeholder with the image its alt text is
// bound to. The placeholder stays in place on any failure.
func (f *filler) resolvePicture(ctx context.Context, tree deck.ShapeTree, pic deck.PictureShape) (PictureOutcome, error) {
	alt, ok := pic.AltText()
	id := strings.TrimSpace(alt)
	if !ok || id == "" {
		return PictureOutcome{}, newFailure(MissingAltText, "", ErrMissingAltText)
	}

	value, bound := f.ctx[id]
	if !bound || value == nil {
		return PictureOutcome{}, newFailure(UnboundPicture, id, ErrUnboundPicture)
	}

	geometry := pic.Geometry()
	if geometry.Width <= 0 || geometry.Height <= 0 {
		return PictureOutcome{}, newFailure(UnboundPicture, id, fmt.Errorf("%w: %s", ErrNoGeometry, geometry))
	}

	img, err := f.loader.LoadImage(ctx, value)
	if err != nil {
		return PictureOutcome{}, newFailure(UnboundPicture, id, err)
	}

	inserted, err := tree.InsertPicture(pic, img, geometry)
	if err != nil {
		return PictureOutcome{}, newFailure(UnboundPicture, id, fmt.Errorf("%w: failed to insert picture: %v", ErrImageLoad, err))
	}
	if err := tree.RemoveShape(pic); err != nil {
		// Undo the insertion so the slide keeps exactly one shape for the placeholder.
		_ = tree.RemoveShape(inserted)
		return PictureOutcome{}, newFailure(UnboundPicture, id, fmt.Errorf("failed to remove placeholder: %w", err))
	}

	return PictureOutcome{ID: id, Value: value, Geometry: geometry, Picture: inserted}, nil
}
