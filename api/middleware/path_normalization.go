package middleware

import (
	"regexp"
	"strings"
)

// PathNormalizer replaces dynamic path segments (UUIDs, numeric IDs)
// with placeholders so they don't explode metrics cardinality, adapted
// from the teacher's PathNormalizer.
type PathNormalizer struct {
	uuidPattern      *regexp.Regexp
	numericIDPattern *regexp.Regexp
}

// NewPathNormalizer builds a PathNormalizer with the default patterns.
func NewPathNormalizer() *PathNormalizer {
	return &PathNormalizer{
		uuidPattern:      regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`),
		numericIDPattern: regexp.MustCompile(`/\d{1,20}(?:/|$)`),
	}
}

// NormalizePath replaces dynamic segments in path with ":id".
//
//	"/v1/configs/123e4567-e89b-12d3-a456-426614174000" -> "/v1/configs/:id"
//	"/v1/configs/123e4567.../watch"                    -> "/v1/configs/:id/watch"
func (n *PathNormalizer) NormalizePath(path string) string {
	if path == "" || path == "/" {
		return path
	}

	normalized := n.uuidPattern.ReplaceAllString(path, "/:id")
	normalized = n.numericIDPattern.ReplaceAllString(normalized, "/:id/")
	normalized = strings.TrimSuffix(normalized, "/")

	if normalized == "" {
		return "/"
	}
	return normalized
}
