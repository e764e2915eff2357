package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathNormalizer_NormalizePath(t *testing.T) {
	n := NewPathNormalizer()

	cases := map[string]string{
		"/":                               "/",
		"":                                "",
		"/v1/namespaces/ns/molds/app":     "/v1/namespaces/ns/molds/app",
		"/v1/configs/12345":               "/v1/configs/:id",
		"/v1/configs/12345/watch":         "/v1/configs/:id/watch",
		"/v1/configs/123e4567-e89b-12d3-a456-426614174000": "/v1/configs/:id",
	}

	for path, want := range cases {
		assert.Equal(t, want, n.NormalizePath(path), "path=%q", path)
	}
}
