package conversion_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/distribuia/distribuia/modules/conversion"
	"github.com/distribuia/distribuia/pkg/auth"
	"github.com/distribuia/distribuia/pkg/entitlements"
)

// asUser simulates the session middleware for handler tests.
func asUser(user auth.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHandlerCreate(t *testing.T) {
	t.Parallel()

	body := `{"source":"youtube","source_ref":"https://youtube.com/watch?v=abc","format":"x_thread"}`

	t.Run("creates and returns 201", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		svc := newService(t, storage, &fakeGenerator{}, nil)
		handler := asUser(auth.User{ID: uuid.New(), Plan: entitlements.TierPro},
			conversion.NewHandler(svc, nil).Router())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Contains(t, rec.Body.String(), `"version":1`)
	})

	t.Run("quota exhaustion maps to 403 QUOTA_EXCEEDED", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		svc := newService(t, storage, &fakeGenerator{}, nil)
		handler := asUser(user, conversion.NewHandler(svc, nil).Router())

		for range 2 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body)))
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(body)))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "QUOTA_EXCEEDED", errorCode(t, rec))
	})

	t.Run("invalid payload maps to 400 INVALID_INPUT", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, newFakeStorage(), &fakeGenerator{}, nil)
		handler := asUser(auth.User{ID: uuid.New(), Plan: entitlements.TierPro},
			conversion.NewHandler(svc, nil).Router())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/convert",
			strings.NewReader(`{"source":"podcast","source_ref":"x","format":"x_thread"}`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_INPUT", errorCode(t, rec))
	})
}

func TestHandlerRegenerate(t *testing.T) {
	t.Parallel()

	t.Run("limit maps to 403 REGENERATE_LIMIT_EXCEEDED", func(t *testing.T) {
		t.Parallel()
		storage := newFakeStorage()
		user := auth.User{ID: uuid.New(), Plan: entitlements.TierFree}
		svc := newService(t, storage, &fakeGenerator{}, nil)
		conv, _, err := svc.Create(t.Context(), user, validInput())
		require.NoError(t, err)

		handler := asUser(user, conversion.NewHandler(svc, nil).Router())
		regen := func() *httptest.ResponseRecorder {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
				"/conversions/"+conv.ID.String()+"/regenerate",
				strings.NewReader(`{"format":"x_thread"}`)))
			return rec
		}

		require.Equal(t, http.StatusCreated, regen().Code)

		rec := regen()
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "REGENERATE_LIMIT_EXCEEDED", errorCode(t, rec))
	})

	t.Run("unknown conversion maps to 404", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, newFakeStorage(), &fakeGenerator{}, nil)
		handler := asUser(auth.User{ID: uuid.New(), Plan: entitlements.TierPro},
			conversion.NewHandler(svc, nil).Router())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
			"/conversions/"+uuid.NewString()+"/regenerate",
			strings.NewReader(`{"format":"x_thread"}`)))

		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "NOT_FOUND", errorCode(t, rec))
	})
}

func TestHandlerUsage(t *testing.T) {
	t.Parallel()

	svc := newService(t, newFakeStorage(), &fakeGenerator{}, nil)
	handler := asUser(auth.User{ID: uuid.New(), Plan: entitlements.TierStarter},
		conversion.NewHandler(svc, nil).Router())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/usage", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"conversions_limit":10`)
	require.Contains(t, rec.Body.String(), `"remaining":10`)
}
