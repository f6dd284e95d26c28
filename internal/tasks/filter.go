package tasks

import (
	"slices"
	"strings"
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterHigh      Filter = "high"
)

var Filters = []Filter{FilterAll, FilterCompleted, FilterPending, FilterHigh}

// ParseFilter accepts any case; the empty string means all.
func ParseFilter(s string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterPending, FilterHigh:
		return f, nil
	default:
		return "", ErrInvalidFilter
	}
}

func (f Filter) match(t Task) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterHigh:
		return t.Priority == PriorityHigh
	default:
		return true
	}
}

// FilterAndSort returns a new slice holding the tasks whose text contains
// search (case-insensitively) and that match filter, ordered pending first,
// then by priority, then newest first. Ties keep their order in tasks.
func FilterAndSort(tasks []Task, filter Filter, search string) []Task {
	needle := strings.ToLower(search)

	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if needle != "" && !strings.Contains(strings.ToLower(t.Text), needle) {
			continue
		}
		if !filter.match(t) {
			continue
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, compareTasks)
	return out
}

func compareTasks(a, b Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return rb - ra
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

type ViewState string

const (
	ViewOK        ViewState = "ok"
	ViewEmpty     ViewState = "empty"
	ViewNoResults ViewState = "no_results"
)

// View is what a UI renders: the visible tasks plus whole-list stats.
type View struct {
	Filter Filter    `json:"filter"`
	Search string    `json:"search"`
	State  ViewState `json:"state"`
	Count  int       `json:"count"`
	Items  []Task    `json:"items"`
	Stats  Stats     `json:"stats"`
}

func buildView(all []Task, filter Filter, search string) View {
	items := FilterAndSort(all, filter, search)
	state := ViewOK
	switch {
	case len(all) == 0:
		state = ViewEmpty
	case len(items) == 0:
		state = ViewNoResults
	}
	return View{
		Filter: filter,
		Search: search,
		State:  state,
		Count:  len(items),
		Items:  items,
		Stats:  computeStats(all),
	}
}
