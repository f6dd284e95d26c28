package theme

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/s1natex/todo-GO/internal/storage"
)

func newPrefs(store storage.Store) *Preferences {
	return NewPreferences(store, slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{})))
}

func TestPreferences_DefaultAndToggle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	p := newPrefs(store)

	if got := p.Current(ctx); got != Light {
		t.Fatalf("expected default light, got %q", got)
	}

	got, err := p.Toggle(ctx)
	if err != nil || got != Dark {
		t.Fatalf("expected dark, got %q (%v)", got, err)
	}
	if raw, _, _ := store.Get(ctx, Key); raw != "dark" {
		t.Fatalf("expected stored dark, got %q", raw)
	}

	// a fresh Preferences over the same store sees the saved value
	if got := newPrefs(store).Current(ctx); got != Dark {
		t.Fatalf("expected persisted dark, got %q", got)
	}

	if got, _ := p.Toggle(ctx); got != Light {
		t.Fatalf("expected light, got %q", got)
	}
}

func TestPreferences_GarbageFallsBackToLight(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Set(ctx, Key, "sepia")

	if got := newPrefs(store).Current(ctx); got != Light {
		t.Fatalf("expected light fallback, got %q", got)
	}
	if err := newPrefs(store).Set(ctx, Theme("sepia")); err != ErrInvalidTheme {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestRoutes(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r, newPrefs(storage.NewMemoryStore()))

	decode := func(rec *httptest.ResponseRecorder) Theme {
		t.Helper()
		var resp themeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
		return resp.Theme
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/theme", nil))
	if rec.Code != http.StatusOK || decode(rec) != Light {
		t.Fatalf("expected light, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/theme/toggle", nil))
	if decode(rec) != Dark {
		t.Fatalf("expected dark after toggle, got %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/theme", bytes.NewReader([]byte(`{"theme":"light"}`))))
	if rec.Code != http.StatusOK || decode(rec) != Light {
		t.Fatalf("expected light after put, got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/theme", bytes.NewReader([]byte(`{"theme":"neon"}`))))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}
