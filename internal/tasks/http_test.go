package tasks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T) (*chi.Mux, *Manager) {
	t.Helper()
	m := newTestManager(t, nil)
	r := chi.NewRouter()
	RegisterRoutes(r, m)
	return r, m
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errResponse {
	t.Helper()
	var resp errResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error JSON: %v", err)
	}
	return resp
}

func TestPostTasks_Success(t *testing.T) {
	r, _ := newTestServer(t)

	rec := do(r, http.MethodPost, "/tasks", `{"text":"learn chi","priority":"high"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d, body=%s", rec.Code, rec.Body.String())
	}

	var got Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if got.Task == nil || got.Task.ID != 1 {
		t.Fatalf("expected task with ID 1, got %+v", got.Task)
	}
	if got.Task.Text != "learn chi" || got.Task.Priority != PriorityHigh {
		t.Errorf("unexpected task %+v", got.Task)
	}
	if got.Task.Completed || got.Task.CompletedAt != nil {
		t.Errorf("new tasks should be pending")
	}
	if len(got.Notices) != 1 || got.Notices[0].Kind != NoticeSuccess {
		t.Errorf("expected success notice, got %+v", got.Notices)
	}
}

func TestPostTasks_TextRequired(t *testing.T) {
	r, m := newTestServer(t)

	rec := do(r, http.MethodPost, "/tasks", `{"text":"   "}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d, body=%s", rec.Code, rec.Body.String())
	}
	resp := decodeErr(t, rec)
	if resp.Error != "validation_error" {
		t.Errorf("expected validation_error, got %q", resp.Error)
	}
	if len(resp.Details) != 1 || resp.Details[0].Field != "text" {
		t.Errorf("expected text field error, got %+v", resp.Details)
	}
	if m.Stats().Total != 0 {
		t.Errorf("list should be unchanged")
	}
}

func TestPostTasks_TooLongAndBadPriority(t *testing.T) {
	r, _ := newTestServer(t)

	body := `{"text":"` + strings.Repeat("a", MaxTextLen+1) + `","priority":"urgent"}`
	rec := do(r, http.MethodPost, "/tasks", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}
	resp := decodeErr(t, rec)
	if len(resp.Details) != 2 {
		t.Fatalf("expected 2 field errors, got %+v", resp.Details)
	}
}

func TestPostTasks_InvalidJSON(t *testing.T) {
	r, _ := newTestServer(t)

	rec := do(r, http.MethodPost, "/tasks", `{"text":`) // truncated/invalid JSON
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d, body=%s", rec.Code, rec.Body.String())
	}
	if resp := decodeErr(t, rec); resp.Error != "invalid_json" {
		t.Errorf("expected error 'invalid_json', got %q", resp.Error)
	}
}

func TestGetTasks_FilterAndSearch(t *testing.T) {
	r, m := newTestServer(t)
	mustAdd(t, m, "Buy milk", PriorityLow)
	mustAdd(t, m, "Pay rent", PriorityHigh)
	mustAdd(t, m, "milk shake", PriorityHigh)

	rec := do(r, http.MethodGet, "/tasks?filter=high&q=MILK", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d, body=%s", rec.Code, rec.Body.String())
	}

	var v View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if v.Count != 1 || v.Items[0].Text != "milk shake" {
		t.Fatalf("unexpected items: %+v", v.Items)
	}
	if v.Stats.Total != 3 || v.State != ViewOK {
		t.Fatalf("unexpected view meta: %+v %s", v.Stats, v.State)
	}

	rec = do(r, http.MethodGet, "/tasks?filter=someday", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter, got %d", rec.Code)
	}
}

func TestGetTasks_EmptyState(t *testing.T) {
	r, _ := newTestServer(t)

	rec := do(r, http.MethodGet, "/tasks", "")
	var v View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if v.State != ViewEmpty || v.Filter != FilterAll {
		t.Fatalf("expected empty state with filter all, got %s/%s", v.State, v.Filter)
	}
}

func TestToggleAndDeleteRoutes(t *testing.T) {
	r, m := newTestServer(t)
	task := mustAdd(t, m, "route me", PriorityMedium)

	rec := do(r, http.MethodPost, "/tasks/1/toggle", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d, body=%s", rec.Code, rec.Body.String())
	}
	if !m.Tasks()[0].Completed {
		t.Fatalf("expected task %d completed", task.ID)
	}

	if rec := do(r, http.MethodPost, "/tasks/9/toggle", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
	if rec := do(r, http.MethodDelete, "/tasks/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}

	rec = do(r, http.MethodDelete, "/tasks/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if m.Stats().Total != 0 {
		t.Fatalf("expected task removed")
	}
}

func TestClearAllRoute(t *testing.T) {
	r, m := newTestServer(t)
	mustAdd(t, m, "a", PriorityLow)
	mustAdd(t, m, "b", PriorityLow)

	if rec := do(r, http.MethodDelete, "/tasks", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec := do(r, http.MethodGet, "/tasks/stats", "")
	var s Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if s.Total != 0 {
		t.Fatalf("expected zero tasks, got %+v", s)
	}

	rec = do(r, http.MethodPost, "/tasks", `{"text":"again"}`)
	var res Result
	_ = json.Unmarshal(rec.Body.Bytes(), &res)
	if res.Task == nil || res.Task.ID != 1 {
		t.Fatalf("expected id 1 after clear, got %+v", res.Task)
	}
}

func TestCommandsRoute(t *testing.T) {
	r, m := newTestServer(t)

	rec := do(r, http.MethodPost, "/commands", `{"action":"add","text":"from command","priority":"low"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rec.Code, rec.Body.String())
	}
	if m.Stats().Total != 1 {
		t.Fatalf("expected one task")
	}

	rec = do(r, http.MethodPost, "/commands", `{"action":"explode"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeErr(t, rec); resp.Error != "unknown_action" {
		t.Fatalf("expected unknown_action, got %q", resp.Error)
	}

	rec = do(r, http.MethodPost, "/commands", `{"action":"add","text":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestExportRoute(t *testing.T) {
	r, m := newTestServer(t)
	mustAdd(t, m, "export me", PriorityHigh)

	rec := do(r, http.MethodGet, "/tasks/export?format=csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "export me") {
		t.Fatalf("csv missing task text: %s", rec.Body.String())
	}

	if rec := do(r, http.MethodGet, "/tasks/export?format=xml", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown format, got %d", rec.Code)
	}
}
