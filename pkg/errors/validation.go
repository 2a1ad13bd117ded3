package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxNodeIDLength = 512

// nodeIDRegex matches ids produced by pkg/tree: a root id followed by
// "-"-separated numeric or "anon<n>" segments.
var nodeIDRegex = regexp.MustCompile(`^[A-Za-z0-9._/]+(-(\d+|anon\d+))*$`)

// ValidateNodeID validates a node id received from a client before it is
// looked up in a graph.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid control characters")
		}
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidNodeID, "node id cannot contain path traversal sequences (..)")
	}
	if !nodeIDRegex.MatchString(id) {
		return New(ErrCodeInvalidNodeID, "invalid node id: %q", id)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
