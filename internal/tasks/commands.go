package tasks

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Action string

const (
	ActionAdd      Action = "add"
	ActionToggle   Action = "toggle"
	ActionDelete   Action = "delete"
	ActionClearAll Action = "clear_all"
)

// Command is one user intent. Only the fields its action needs are read.
type Command struct {
	Action   Action `json:"action"`
	Text     string `json:"text,omitempty"`
	Priority string `json:"priority,omitempty"`
	ID       int64  `json:"id,omitempty"`
}

type commandHandler func(ctx context.Context, cmd Command) (Result, error)

func (m *Manager) commandHandlers() map[Action]commandHandler {
	return map[Action]commandHandler{
		ActionAdd: func(ctx context.Context, cmd Command) (Result, error) {
			return m.Add(ctx, cmd.Text, Priority(cmd.Priority))
		},
		ActionToggle: func(ctx context.Context, cmd Command) (Result, error) {
			return m.Toggle(ctx, cmd.ID)
		},
		ActionDelete: func(ctx context.Context, cmd Command) (Result, error) {
			return m.Delete(ctx, cmd.ID)
		},
		ActionClearAll: func(ctx context.Context, _ Command) (Result, error) {
			return m.ClearAll(ctx), nil
		},
	}
}

// Dispatch runs the handler registered for cmd.Action.
func (m *Manager) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	h, ok := m.handlers[cmd.Action]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	ctx, span := otel.Tracer("tasks").Start(ctx, "tasks."+string(cmd.Action))
	defer span.End()
	span.SetAttributes(attribute.String("todo.action", string(cmd.Action)))
	if cmd.ID != 0 {
		span.SetAttributes(attribute.Int64("todo.task_id", cmd.ID))
	}

	res, err := h(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}
	span.SetAttributes(attribute.Int("todo.notices", len(res.Notices)))
	return res, nil
}
