package csrf_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distribuia/distribuia/pkg/csrf"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	t.Run("safe methods always pass", func(t *testing.T) {
		t.Parallel()

		for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
			assert.NoError(t, csrf.Check(method, http.Header{}), method)
		}
	})

	t.Run("unsafe method without header fails", func(t *testing.T) {
		t.Parallel()

		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			err := csrf.Check(method, http.Header{})
			assert.ErrorIs(t, err, csrf.ErrValidationFailed, method)
		}
	})

	t.Run("unsafe method with correct header passes", func(t *testing.T) {
		t.Parallel()

		h := http.Header{}
		h.Set("X-Requested-With", "XMLHttpRequest")
		assert.NoError(t, csrf.Check(http.MethodPost, h))
	})

	t.Run("wrong header value fails", func(t *testing.T) {
		t.Parallel()

		h := http.Header{}
		h.Set("X-Requested-With", "fetch")
		assert.ErrorIs(t, csrf.Check(http.MethodPost, h), csrf.ErrValidationFailed)
	})

	t.Run("value comparison is exact", func(t *testing.T) {
		t.Parallel()

		h := http.Header{}
		h.Set("X-Requested-With", "xmlhttprequest")
		assert.ErrorIs(t, csrf.Check(http.MethodDelete, h), csrf.ErrValidationFailed)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := csrf.Middleware(log)(next)

	t.Run("rejects POST without header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/api/convert", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "CSRF_VALIDATION_FAILED")
	})

	t.Run("passes POST with header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/api/convert", nil)
		req.Header.Set("X-Requested-With", "XMLHttpRequest")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("passes GET regardless of headers", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/conversions", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
