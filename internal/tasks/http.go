package tasks

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
)

type addTaskRequest struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errResponse struct {
	Error   string       `json:"error"`
	Details []fieldError `json:"details,omitempty"`
}

func RegisterRoutes(r chi.Router, m *Manager) {
	r.Get("/tasks", listTasks(m))
	r.Post("/tasks", addTask(m))
	r.Delete("/tasks", clearTasks(m))
	r.Get("/tasks/stats", taskStats(m))
	r.Get("/tasks/export", exportTasks(m))
	r.Post("/tasks/{id}/toggle", toggleTask(m))
	r.Delete("/tasks/{id}", deleteTask(m))
	r.Post("/commands", dispatchCommand(m))
}

func listTasks(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := ParseFilter(r.URL.Query().Get("filter"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_filter"})
			return
		}
		writeJSON(w, http.StatusOK, m.View(filter, r.URL.Query().Get("q")))
	}
}

func addTask(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
			return
		}

		if vErrs := validateAddTask(req); len(vErrs) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errResponse{
				Error:   "validation_error",
				Details: vErrs,
			})
			return
		}

		res, err := m.Dispatch(r.Context(), Command{Action: ActionAdd, Text: req.Text, Priority: req.Priority})
		if err != nil {
			writeTaskError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func toggleTask(m *Manager) http.HandlerFunc {
	return idCommand(m, ActionToggle)
}

func deleteTask(m *Manager) http.HandlerFunc {
	return idCommand(m, ActionDelete)
}

func idCommand(m *Manager, action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_id"})
			return
		}
		res, err := m.Dispatch(r.Context(), Command{Action: action, ID: id})
		if err != nil {
			writeTaskError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func clearTasks(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := m.Dispatch(r.Context(), Command{Action: ActionClearAll})
		if err != nil {
			writeTaskError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func taskStats(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.Stats())
	}
}

func exportTasks(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter, err := ParseFilter(q.Get("filter"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_filter"})
			return
		}
		format := strings.ToLower(q.Get("format"))
		if format == "" {
			format = "json"
		}

		var buf bytes.Buffer
		if err := Export(&buf, format, m.View(filter, q.Get("q"))); err != nil {
			if errors.Is(err, ErrUnknownFormat) {
				writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_format"})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
			return
		}

		w.Header().Set("Content-Type", ContentType(format))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tasks.%s"`, format))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func dispatchCommand(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd Command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid_json"})
			return
		}
		res, err := m.Dispatch(r.Context(), cmd)
		if err != nil {
			writeTaskError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func validateAddTask(req addTaskRequest) []fieldError {
	var errs []fieldError

	text := strings.TrimSpace(req.Text)
	if text == "" {
		errs = append(errs, fieldError{Field: "text", Message: ErrEmptyText.Error()})
	}
	if l := utf8.RuneCountInString(text); l > MaxTextLen {
		errs = append(errs, fieldError{
			Field:   "text",
			Message: fmt.Sprintf("text must be at most %d characters", MaxTextLen),
		})
	}
	if _, err := ParsePriority(req.Priority); err != nil {
		errs = append(errs, fieldError{Field: "priority", Message: err.Error()})
	}

	return errs
}

func writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyText):
		writeJSON(w, http.StatusUnprocessableEntity, errResponse{
			Error:   "validation_error",
			Details: []fieldError{{Field: "text", Message: ErrEmptyText.Error()}},
		})
	case errors.Is(err, ErrTextTooLong):
		writeJSON(w, http.StatusUnprocessableEntity, errResponse{
			Error: "validation_error",
			Details: []fieldError{{
				Field:   "text",
				Message: fmt.Sprintf("text must be at most %d characters", MaxTextLen),
			}},
		})
	case errors.Is(err, ErrInvalidPriority):
		writeJSON(w, http.StatusUnprocessableEntity, errResponse{
			Error:   "validation_error",
			Details: []fieldError{{Field: "priority", Message: ErrInvalidPriority.Error()}},
		})
	case errors.Is(err, ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errResponse{Error: "not_found"})
	case errors.Is(err, ErrUnknownAction):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "unknown_action"})
	default:
		writeJSON(w, http.StatusInternalServerError, errResponse{Error: "unexpected_error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
