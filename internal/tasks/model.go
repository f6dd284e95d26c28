package tasks

import (
	"strings"
	"time"
)

// MaxTextLen is the longest task text accepted, counted in characters.
const MaxTextLen = 100

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the valid priorities from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Rank orders priorities for sorting; higher ranks sort first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

// ParsePriority accepts any case; the empty string means medium.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

type Task struct {
	ID          int64      `json:"id"`
	Text        string     `json:"text"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func computeStats(list []Task) Stats {
	var s Stats
	s.Total = len(list)
	for _, t := range list {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
