package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/s1natex/todo-GO/internal/storage"
)

// Storage keys for the task list and the next-id counter.
const (
	KeyTasks   = "todo_tasks"
	KeyCounter = "todo_counter"
)

const tasksSchemaURL = "todo://schemas/tasks.json"

const tasksSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text", "priority", "completed", "created_at"],
    "properties": {
      "id": {"type": "integer", "minimum": 1},
      "text": {"type": "string", "minLength": 1, "maxLength": 100},
      "priority": {"enum": ["high", "medium", "low"]},
      "completed": {"type": "boolean"},
      "created_at": {"type": "string", "format": "date-time"},
      "completed_at": {"type": ["string", "null"], "format": "date-time"}
    }
  }
}`

var compiledTasksSchema = mustCompileTasksSchema()

func mustCompileTasksSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(tasksSchemaURL, strings.NewReader(tasksSchema)); err != nil {
		panic(fmt.Sprintf("tasks schema: %v", err))
	}
	return compiler.MustCompile(tasksSchemaURL)
}

var errDuplicateID = errors.New("duplicate task id")

type snapshot struct {
	tasks  []Task
	nextID int64
}

type persister struct {
	store  storage.Store
	logger *slog.Logger
}

func (p persister) save(ctx context.Context, list []Task, nextID int64) error {
	if list == nil {
		list = []Task{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := p.store.Set(ctx, KeyTasks, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", KeyTasks, err)
	}
	if err := p.store.Set(ctx, KeyCounter, strconv.FormatInt(nextID, 10)); err != nil {
		return fmt.Errorf("write %s: %w", KeyCounter, err)
	}
	return nil
}

// load never fails: unreadable data yields an empty list and an error notice.
func (p persister) load(ctx context.Context) (snapshot, []Notice) {
	empty := snapshot{nextID: 1}

	rawTasks, ok, err := p.store.Get(ctx, KeyTasks)
	if err != nil {
		p.logger.Error("tasks_load_failed", slog.String("key", KeyTasks), slog.String("error", err.Error()))
		return empty, []Notice{failure("Failed to load saved tasks")}
	}

	var list []Task
	if ok {
		list, err = decodeTasks(rawTasks)
		if err != nil {
			p.logger.Error("tasks_load_failed", slog.String("key", KeyTasks), slog.String("error", err.Error()))
			return empty, []Notice{failure("Failed to load saved tasks")}
		}
	}

	var maxID int64
	for _, t := range list {
		maxID = max(maxID, t.ID)
	}
	snap := snapshot{tasks: list, nextID: maxID + 1}

	rawCounter, ok, err := p.store.Get(ctx, KeyCounter)
	if err != nil {
		p.logger.Warn("tasks_counter_unreadable", slog.String("error", err.Error()))
		return snap, nil
	}
	if !ok {
		return snap, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(rawCounter), 10, 64)
	if err != nil {
		p.logger.Warn("tasks_counter_corrupt", slog.String("value", rawCounter))
		return snap, nil
	}
	if n > snap.nextID {
		snap.nextID = n
	}
	return snap, nil
}

func decodeTasks(raw string) ([]Task, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if err := compiledTasksSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate tasks: %w", err)
	}

	var list []Task
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	seen := make(map[int64]struct{}, len(list))
	for _, t := range list {
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%w: %d", errDuplicateID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return list, nil
}
