package webserver

import (
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionMiddleware(t *testing.T) {
	payload := "name,note\nAlice,call Carol\n"

	handler := CompressionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))

	t.Run("no accept-encoding", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, payload, w.Body.String())
	})

	t.Run("gzip", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

		gz, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(gz)
		require.NoError(t, err)
		assert.Equal(t, payload, string(body))
	})

	t.Run("zstd preferred", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Accept-Encoding", "zstd, gzip")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		require.Equal(t, "zstd", w.Header().Get("Content-Encoding"))

		dec, err := zstd.NewReader(w.Body)
		require.NoError(t, err)
		defer dec.Close()

		body, err := io.ReadAll(dec)
		require.NoError(t, err)
		assert.Equal(t, payload, string(body))
	})
}

func TestRequestLogMiddlewarePreservesStatus(t *testing.T) {
	handler := RequestLogMiddleware(slog.Default(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}
