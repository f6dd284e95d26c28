package tasks

import "errors"

var (
	ErrEmptyText       = errors.New("please enter a task")
	ErrTextTooLong     = errors.New("task text is too long")
	ErrInvalidPriority = errors.New("priority must be high, medium or low")
	ErrInvalidFilter   = errors.New("filter must be all, completed, pending or high")
	ErrTaskNotFound    = errors.New("task not found")
	ErrUnknownAction   = errors.New("unknown action")
	ErrUnknownFormat   = errors.New("format must be json, csv or pdf")
)
