// Package theme persists the light/dark display preference.
package theme

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/s1natex/todo-GO/internal/storage"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Key is the storage key the preference lives under.
const Key = "theme"

var ErrInvalidTheme = errors.New("theme must be light or dark")

func Parse(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark:
		return t, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Other returns the opposite theme.
func (t Theme) Other() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

type Preferences struct {
	store  storage.Store
	logger *slog.Logger
}

func NewPreferences(store storage.Store, logger *slog.Logger) *Preferences {
	if logger == nil {
		logger = slog.Default()
	}
	return &Preferences{store: store, logger: logger}
}

// Current never fails; anything unreadable means Light.
func (p *Preferences) Current(ctx context.Context) Theme {
	raw, ok, err := p.store.Get(ctx, Key)
	if err != nil {
		p.logger.Warn("theme_load_failed", slog.String("error", err.Error()))
		return Light
	}
	if !ok {
		return Light
	}
	t, err := Parse(raw)
	if err != nil {
		return Light
	}
	return t
}

func (p *Preferences) Set(ctx context.Context, t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}
	return p.store.Set(ctx, Key, string(t))
}

// Toggle switches to the other theme. On a failed write the new theme is
// still returned along with the error.
func (p *Preferences) Toggle(ctx context.Context) (Theme, error) {
	next := p.Current(ctx).Other()
	if err := p.Set(ctx, next); err != nil {
		p.logger.Error("theme_save_failed", slog.String("error", err.Error()))
		return next, err
	}
	return next, nil
}

type themeResponse struct {
	Theme Theme `json:"theme"`
}

type errResponse struct {
	Error string `json:"error"`
}

func RegisterRoutes(r chi.Router, p *Preferences) {
	r.Get("/theme", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, themeResponse{Theme: p.Current(r.Context())})
	})

	r.Put("/theme", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Theme string `json:"theme"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
			return
		}
		t, err := Parse(req.Theme)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errResponse{Error: "invalid_theme"})
			return
		}
		if err := p.Set(r.Context(), t); err != nil {
			writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
			return
		}
		writeJSON(w, http.StatusOK, themeResponse{Theme: t})
	})

	r.Post("/theme/toggle", func(w http.ResponseWriter, r *http.Request) {
		t, err := p.Toggle(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
			return
		}
		writeJSON(w, http.StatusOK, themeResponse{Theme: t})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
