// Package deckfill error types. Failures carry a Kind and the location in the
// deck where they happened; sentinels allow matching with errors.Is.
package deckfill

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies fill failures
type Kind int

const (
	// UnboundRelationship: a relationship marker names a key missing from the context.
	UnboundRelationship Kind = iota + 1
	// TableProcessingFailure: anything else going wrong while processing a table.
	TableProcessingFailure
	// MissingAltText: a picture has no usable alt text.
	MissingAltText
	// UnboundPicture: a picture's alt text has no binding, or the bound image cannot be loaded.
	UnboundPicture
	// InvalidContext: the context is not a mapping, or is empty.
	InvalidContext
)

func (k Kind) String() string {
	switch k {
	case UnboundRelationship:
		return "unbound relationship"
	case TableProcessingFailure:
		return "table processing failure"
	case MissingAltText:
		return "missing alt text"
	case UnboundPicture:
		return "unbound picture"
	case InvalidContext:
		return "invalid context"
	default:
		return "unknown"
	}
}

// Escalates reports whether strict mode turns a failure of this kind into an error.
// Missing alt text and an empty context stay warnings.
func (k Kind) Escalates() bool {
	switch k {
	case UnboundRelationship, TableProcessingFailure, UnboundPicture:
		return true
	default:
		return false
	}
}

var (
	ErrUnboundRelationship    = errors.New("relationship is not bound in context")
	ErrTableProcessing        = errors.New("table could not be populated")
	ErrMissingAltText         = errors.New("picture has no alt text")
	ErrUnboundPicture         = errors.New("picture placeholder is not bound in context")
	ErrInvalidContext         = errors.New("invalid context")
	ErrEmptyContext           = errors.New("context is empty")
	ErrNotRelationship        = errors.New("context value is not a list of records")
	ErrMissingField           = errors.New("record has no such field")
	ErrNoTemplateRow          = errors.New("table has no template row")
	ErrMalformedRelationship  = errors.New("malformed relationship placeholder")
	ErrImageLoad              = errors.New("image could not be loaded")
	ErrNoGeometry             = errors.New("picture placeholder has no position or size")
	ErrUnsupportedImageSource = errors.New("unsupported image source")
)

func (k Kind) sentinel() error {
	switch k {
	case UnboundRelationship:
		return ErrUnboundRelationship
	case TableProcessingFailure:
		return ErrTableProcessing
	case MissingAltText:
		return ErrMissingAltText
	case UnboundPicture:
		return ErrUnboundPicture
	case InvalidContext:
		return ErrInvalidContext
	default:
		return nil
	}
}

// FillError is a failure at a specific place in the deck
type FillError struct {
	Kind Kind
	// Slide is the 1-based slide number, 0 when the failure is not tied to a slide.
	Slide int
	// Shape is the name of the shape being processed.
	Shape string
	// Key is the offending context key, relationship name or alt text.
	Key string
	// Err is the underlying cause.
	Err error
}

func (e *FillError) Error() string {
	var parts []string
	if e.Slide > 0 {
		parts = append(parts, fmt.Sprintf("slide %d", e.Slide))
	}
	if e.Shape != "" {
		parts = append(parts, fmt.Sprintf("shape %q", e.Shape))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key %q", e.Key))
	}
	msg := e.Kind.String()
	if len(parts) > 0 {
		msg += " [" + strings.Join(parts, ", ") + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FillError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the failure kind, so errors.Is(err, ErrUnboundPicture)
// holds for every UnboundPicture failure regardless of its cause.
func (e *FillError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// newFailure creates a FillError with no location; the walk fills it in.
func newFailure(kind Kind, key string, cause error) *FillError {
	return &FillError{Kind: kind, Key: key, Err: cause}
}

// at stamps the location of a failure when it is not already set
func (e *FillError) at(slide int, shape string) *FillError {
	if e.Slide == 0 {
		e.Slide = slide
	}
	if e.Shape == "" {
		e.Shape = shape
	}
	return e
}

// KindOf returns the kind of a fill failure, or 0 when err is not one
func KindOf(err error) Kind {
	var fe *FillError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// recoverError converts a panic recovery value to an error
func recoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}
