// Package shared holds cross-cutting services used by multiple domains.
package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)
