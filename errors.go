package main

import (
	"errors"
	"fmt"
)

// Capacity outcomes. These are not user-facing: the image is displayed
// without being retained by the cache.
var (
	ErrImageTooLargeForCache = errors.New("image exceeds half of the cache budget")
	ErrCacheOverBudget       = errors.New("image does not fit in the cache budget")
	ErrStaleInsert           = errors.New("insert belongs to a released cache generation")
)

// DirectoryError reports a directory (or archive) that could not be listed.
type DirectoryError struct {
	Path string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("cannot read directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// DecodeError reports a single image that failed to decode.
// Bulk loading logs it and moves on to the next file.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsCapacityOutcome returns true if err means "display without caching".
func IsCapacityOutcome(err error) bool {
	return errors.Is(err, ErrImageTooLargeForCache) ||
		errors.Is(err, ErrCacheOverBudget) ||
		errors.Is(err, ErrStaleInsert)
}

// IsDecodeError returns true if err wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
