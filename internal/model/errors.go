package model

import "errors"

var (
	// ErrNotFound is returned by catalog lookups and edits for an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidGeometry marks a shape that cannot be drawn (fewer than 3 polygon
	// sides or a non-positive dimension). Geometry functions never return it; they
	// yield empty/zero results instead.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrExhaustedQuantity is returned when a part with no remaining quantity is placed.
	ErrExhaustedQuantity = errors.New("part quantity exhausted")

	// ErrInvalidShape is returned when a serialized shape has an unknown type.
	ErrInvalidShape = errors.New("invalid shape")
)
