package errors

import (
	"strings"
	"unicode"
)

// ValidateNodeID checks that a node identifier is usable as a graph key.
// Identifiers must be non-empty and free of control characters. The "||"
// sequence is reserved because edge-point keys join endpoints with it.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "node identifier cannot be empty")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node identifier %q contains control characters", id)
		}
	}
	if strings.Contains(id, "||") {
		return New(ErrCodeInvalidGraph, "node identifier %q contains reserved sequence \"||\"", id)
	}
	return nil
}

// ValidateGraphID validates an identifier used to store a graph.
// It rejects names that could be used for path traversal by file-backed stores.
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of 128 characters
//   - No path separators, ".." or control characters
func ValidateGraphID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidPath, "graph id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidPath, "graph id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "graph id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidPath, "graph id contains invalid characters: %q", pattern)
		}
	}
	return nil
}
