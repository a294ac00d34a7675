// ABOUTME: Sentinel errors for the cache package

package cache

import "errors"

var (
	// ErrClosed is returned by any operation on a closed cache.
	ErrClosed = errors.New("cache: closed")

	// ErrNotFound is returned by Get when no entry exists for a key and
	// no secondary tier recovered one either.
	ErrNotFound = errors.New("cache: not found")
)
