package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLength bounds node identifiers read from problem files and documents.
const maxNodeIDLength = 512

// ValidateNodeID validates a node identifier coming from user input.
//
// The rules are conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - No leading or trailing whitespace
//   - Maximum length of 512 characters
//
// Identifiers may contain slashes, so schema-path style ids such as
// "/data/wing/span" are accepted.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidNodeID, "node id %q has surrounding whitespace", id)
	}

	return nil
}

// ValidateNodeIDs applies ValidateNodeID to each id and reports the first failure.
// Duplicates are rejected as well, since every id names exactly one node.
func ValidateNodeIDs(ids []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := ValidateNodeID(id); err != nil {
			return err
		}
		if seen[id] {
			return New(ErrCodeInvalidNodeID, "duplicate node id %q", id)
		}
		seen[id] = true
	}
	return nil
}
