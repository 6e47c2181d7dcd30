package service

import (
	"errors"
	"fmt"
)

// Broad error classes. Every narrower error below wraps exactly one of them,
// so callers can branch on either level with errors.Is.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrBrokenChain   = errors.New("slug chain points at a missing slug")
	ErrCycleDetected = errors.New("slug chain contains a cycle")
)

var (
	ErrTitleRequired   = fmt.Errorf("%w: title is required", ErrValidation)
	ErrContentRequired = fmt.Errorf("%w: content is required", ErrValidation)
	ErrSlugRequired    = fmt.Errorf("%w: slug is required", ErrValidation)
	ErrSlugInvalid     = fmt.Errorf("%w: slug must not contain whitespace or '/'", ErrValidation)
	ErrIDImmutable     = fmt.Errorf("%w: post id cannot change", ErrValidation)
	ErrPublishedZero   = fmt.Errorf("%w: published time is required", ErrValidation)

	ErrSlugExists     = fmt.Errorf("%w: slug already exists", ErrConflict)
	ErrSlugOwnership  = fmt.Errorf("%w: slug belongs to another post", ErrConflict)
	ErrSlugSuperseded = fmt.Errorf("%w: slug has already been renamed", ErrConflict)

	ErrPostNotFound    = fmt.Errorf("post %w", ErrNotFound)
	ErrSlugNotFound    = fmt.Errorf("slug %w", ErrNotFound)
	ErrArchiveNotFound = fmt.Errorf("archive entry %w", ErrNotFound)
)
