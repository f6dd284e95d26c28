package tasks

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/s1natex/todo-GO/internal/storage"
)

// Result is what a mutation hands back to the caller: the task it touched,
// if any, and the notices to show.
type Result struct {
	Task    *Task    `json:"task,omitempty"`
	Notices []Notice `json:"notices"`
}

// Manager owns the task list. Every mutation is written through to the
// store before the lock is released.
type Manager struct {
	mu       sync.Mutex
	tasks    []Task // newest first
	nextID   int64
	store    persister
	logger   *slog.Logger
	now      func() time.Time
	handlers map[Action]commandHandler
}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store storage.Store, opts ...Option) *Manager {
	m := &Manager{
		nextID: 1,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.store = persister{store: store, logger: m.logger}
	m.handlers = m.commandHandlers()
	return m
}

// Load replaces the in-memory state with what the store holds.
func (m *Manager) Load(ctx context.Context) []Notice {
	snap, notices := m.store.load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = snap.tasks
	m.nextID = snap.nextID
	observeStats(computeStats(m.tasks))

	m.logger.Info("tasks_loaded",
		slog.Int("count", len(m.tasks)),
		slog.Int64("next_id", m.nextID),
	)
	return notices
}

func (m *Manager) Add(ctx context.Context, text string, priority Priority) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLen {
		return Result{}, ErrTextTooLong
	}
	p, err := ParsePriority(string(priority))
	if err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := Task{
		ID:        m.nextID,
		Text:      text,
		Priority:  p,
		Completed: false,
		CreatedAt: m.now().UTC(),
	}
	m.nextID++
	m.tasks = slices.Insert(m.tasks, 0, t)

	return m.commit(ctx, ActionAdd, &t, success("Task added successfully!")), nil
}

// Toggle flips completion. An unknown id changes nothing.
func (m *Manager) Toggle(ctx context.Context, id int64) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return Result{}, ErrTaskNotFound
	}

	t := &m.tasks[i]
	t.Completed = !t.Completed
	msg := "Task marked as pending"
	if t.Completed {
		at := m.now().UTC()
		t.CompletedAt = &at
		msg = "Task completed!"
	} else {
		t.CompletedAt = nil
	}

	out := *t
	return m.commit(ctx, ActionToggle, &out, success(msg)), nil
}

func (m *Manager) Delete(ctx context.Context, id int64) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return Result{}, ErrTaskNotFound
	}
	removed := m.tasks[i]
	m.tasks = slices.Delete(m.tasks, i, i+1)

	return m.commit(ctx, ActionDelete, &removed, success("Task deleted successfully")), nil
}

// ClearAll empties the list and restarts ids at 1.
func (m *Manager) ClearAll(ctx context.Context) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = nil
	m.nextID = 1
	return m.commit(ctx, ActionClearAll, nil, success("All tasks cleared"))
}

// Tasks returns a copy of the list in stored order, newest first.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.tasks)
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return computeStats(m.tasks)
}

func (m *Manager) View(filter Filter, search string) View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return buildView(m.tasks, filter, search)
}

func (m *Manager) indexOf(id int64) int {
	return slices.IndexFunc(m.tasks, func(t Task) bool { return t.ID == id })
}

// commit persists the current state. A failed write is logged and reported
// as a notice; the in-memory change stays. Must be called with mu held.
func (m *Manager) commit(ctx context.Context, action Action, t *Task, ok Notice) Result {
	mutationsTotal.WithLabelValues(string(action)).Inc()
	observeStats(computeStats(m.tasks))

	res := Result{Task: t, Notices: []Notice{ok}}
	if err := m.store.save(ctx, m.tasks, m.nextID); err != nil {
		persistFailuresTotal.Inc()
		m.logger.Error("tasks_save_failed",
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
		res.Notices = append(res.Notices, failure("Failed to save tasks"))
	}
	return res
}
