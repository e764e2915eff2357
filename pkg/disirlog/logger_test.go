package disirlog

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}

	for input, want := range cases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(input))
		})
	}
}

func TestNewWriterStdoutDefault(t *testing.T) {
	w := newWriter(Config{Output: "bogus"})
	assert.Equal(t, os.Stdout, w)
}

func TestNewWriterFileWithoutFilenameFallsBackToStdout(t *testing.T) {
	w := newWriter(Config{Output: "file"})
	assert.Equal(t, os.Stdout, w)
}

func TestNewBuildsJSONHandler(t *testing.T) {
	logger := New(Config{Level: "debug", Format: "json", Output: "stdout"})
	require.NotNil(t, logger)
}

func TestHTTPMiddlewareGeneratesAndEchoesRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var sawID string
	handler := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawID = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, sawID)
	assert.Equal(t, sawID, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestHTTPMiddlewarePreservesInboundRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	handler := HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
