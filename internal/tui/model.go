// Package tui is the terminal front-end for the task list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/s1natex/todo-GO/internal/tasks"
	"github.com/s1natex/todo-GO/internal/theme"
)

const noticeTTL = 3 * time.Second

type mode int

const (
	modeList mode = iota
	modeAdd
	modeSearch
	modeConfirm
)

type confirmation struct {
	title   string
	message string
	cmd     tasks.Command
}

type noticeExpiredMsg struct{ seq int }

type Model struct {
	ctx     context.Context
	manager *tasks.Manager
	prefs   *theme.Preferences

	theme  theme.Theme
	styles styles

	mode     mode
	input    textinput.Model
	search   textinput.Model
	priority tasks.Priority
	filter   tasks.Filter
	view     tasks.View
	cursor   int
	confirm  *confirmation

	notice    *tasks.Notice
	noticeSeq int
	pending   tea.Cmd
}

// New builds the model. startup holds notices from loading the list, the
// first of which is shown on launch.
func New(ctx context.Context, m *tasks.Manager, prefs *theme.Preferences, startup []tasks.Notice) Model {
	input := textinput.New()
	input.Placeholder = "What needs to be done?"
	input.CharLimit = tasks.MaxTextLen
	input.Width = 50

	search := textinput.New()
	search.Placeholder = "Search tasks"
	search.Width = 30

	t := prefs.Current(ctx)
	model := Model{
		ctx:      ctx,
		manager:  m,
		prefs:    prefs,
		theme:    t,
		styles:   newStyles(t),
		input:    input,
		search:   search,
		priority: tasks.PriorityMedium,
		filter:   tasks.FilterAll,
	}
	model.refresh()
	if len(startup) > 0 {
		model.pending = model.show(startup[0])
	}
	return model
}

func Run(ctx context.Context, m *tasks.Manager, prefs *theme.Preferences, startup []tasks.Notice) error {
	p := tea.NewProgram(New(ctx, m, prefs, startup), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.pending
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.input.Width = max(20, msg.Width-30)
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirm:
			return m.updateConfirm(msg.String())
		default:
			return m.updateList(msg.String())
		}
	}
	return m, nil
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(m.view.Items))
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(m.view.Items))
	case "a", "n":
		m.mode = modeAdd
		cmd := m.input.Focus()
		return m, cmd
	case "/":
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.refresh()
		}
	case " ", "x", "enter":
		if t, ok := m.selected(); ok {
			cmd := m.dispatch(tasks.Command{Action: tasks.ActionToggle, ID: t.ID})
			return m, cmd
		}
	case "d", "delete":
		if t, ok := m.selected(); ok {
			m.ask("Delete Task", "Are you sure you want to delete this task?",
				tasks.Command{Action: tasks.ActionDelete, ID: t.ID})
		}
	case "C":
		if m.view.Stats.Total > 0 {
			m.ask("Clear All Tasks", "Are you sure you want to delete all tasks? This action cannot be undone.",
				tasks.Command{Action: tasks.ActionClearAll})
		}
	case "1", "2", "3", "4":
		m.filter = tasks.Filters[int(key[0]-'1')]
		m.cursor = 0
		m.refresh()
	case "t":
		next, err := m.prefs.Toggle(m.ctx)
		m.theme = next
		m.styles = newStyles(next)
		if err != nil {
			cmd := m.show(tasks.Notice{Kind: tasks.NoticeError, Message: "Failed to save theme"})
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		m.input.SetValue("")
		m.priority = tasks.PriorityMedium
		return m, nil
	case "tab":
		i := slices.Index(tasks.Priorities, m.priority)
		m.priority = tasks.Priorities[(i+1)%len(tasks.Priorities)]
		return m, nil
	case "enter":
		res, err := m.manager.Dispatch(m.ctx, tasks.Command{
			Action:   tasks.ActionAdd,
			Text:     m.input.Value(),
			Priority: string(m.priority),
		})
		if err != nil {
			// the input keeps focus so the user can fix the entry
			cmd := m.show(errorNotice(err))
			return m, cmd
		}
		m.input.SetValue("")
		m.priority = tasks.PriorityMedium
		m.refresh()
		cmd := m.showResult(res)
		return m, cmd
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		fallthrough
	case "enter":
		m.mode = modeList
		m.search.Blur()
		m.cursor = 0
		m.refresh()
		return m, nil
	default:
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.cursor = 0
		m.refresh()
		return m, cmd
	}
}

func (m Model) updateConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y", "enter":
		pending := m.confirm.cmd
		m.confirm = nil
		m.mode = modeList
		cmd := m.dispatch(pending)
		return m, cmd
	case "n", "N", "esc", "q":
		m.confirm = nil
		m.mode = modeList
	}
	return m, nil
}

func (m *Model) ask(title, message string, cmd tasks.Command) {
	m.confirm = &confirmation{title: title, message: message, cmd: cmd}
	m.mode = modeConfirm
}

func (m *Model) dispatch(cmd tasks.Command) tea.Cmd {
	res, err := m.manager.Dispatch(m.ctx, cmd)
	m.refresh()
	if err != nil {
		return m.show(errorNotice(err))
	}
	return m.showResult(res)
}

// showResult surfaces a save failure ahead of the success message.
func (m *Model) showResult(res tasks.Result) tea.Cmd {
	if len(res.Notices) == 0 {
		return nil
	}
	n := res.Notices[0]
	for _, candidate := range res.Notices {
		if candidate.Kind == tasks.NoticeError {
			n = candidate
			break
		}
	}
	return m.show(n)
}

func (m *Model) show(n tasks.Notice) tea.Cmd {
	m.notice = &n
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}

func (m *Model) refresh() {
	m.view = m.manager.View(m.filter, m.search.Value())
	m.cursor = clampCursor(m.cursor, len(m.view.Items))
}

func (m Model) selected() (tasks.Task, bool) {
	if len(m.view.Items) == 0 {
		return tasks.Task{}, false
	}
	return m.view.Items[m.cursor], true
}

func errorNotice(err error) tasks.Notice {
	msg := err.Error()
	switch {
	case errors.Is(err, tasks.ErrEmptyText):
		msg = "Please enter a task"
	case errors.Is(err, tasks.ErrTaskNotFound):
		msg = "Task not found"
	}
	return tasks.Notice{Kind: tasks.NoticeError, Message: msg}
}

func clampCursor(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (m Model) View() string {
	s := m.styles
	var b strings.Builder

	stats := m.view.Stats
	fmt.Fprintf(&b, "%s  %s\n\n",
		s.title.Render("Tasks"),
		s.muted.Render(fmt.Sprintf("total %d · completed %d · pending %d · %s theme",
			stats.Total, stats.Completed, stats.Pending, m.theme)),
	)

	for i, f := range tasks.Filters {
		label := fmt.Sprintf("%d %s", i+1, f)
		if f == m.filter {
			b.WriteString(s.active.Render(label))
		} else {
			b.WriteString(s.muted.Render(label))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n")

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(s.muted.Render("search: ") + m.search.View() + "\n")
	}
	if m.mode == modeAdd {
		count := fmt.Sprintf("%d/%d", utf8.RuneCountInString(m.input.Value()), tasks.MaxTextLen)
		counter := s.muted.Render(count)
		if utf8.RuneCountInString(m.input.Value()) > tasks.MaxTextLen*9/10 {
			counter = s.err.Render(count)
		}
		fmt.Fprintf(&b, "%s [%s] %s\n",
			m.input.View(),
			s.priority[m.priority].Render(string(m.priority)),
			counter,
		)
	}
	b.WriteString("\n")

	switch m.view.State {
	case tasks.ViewEmpty:
		b.WriteString(s.muted.Render("No tasks yet. Press a to add one.") + "\n")
	case tasks.ViewNoResults:
		b.WriteString(s.muted.Render("No tasks match the current filter.") + "\n")
	default:
		for i, t := range m.view.Items {
			b.WriteString(m.renderTask(t, i == m.cursor) + "\n")
		}
	}

	if m.confirm != nil {
		b.WriteString("\n" + s.dialog.Render(
			s.err.Render(m.confirm.title)+"\n"+s.text.Render(m.confirm.message)+"\n"+
				s.muted.Render("y confirm · n cancel"),
		) + "\n")
	}

	if m.notice != nil {
		style := s.ok
		if m.notice.Kind == tasks.NoticeError {
			style = s.err
		}
		b.WriteString("\n" + style.Render(m.notice.Message) + "\n")
	}

	b.WriteString("\n" + s.muted.Render(m.help()) + "\n")
	return b.String()
}

func (m Model) renderTask(t tasks.Task, selected bool) string {
	s := m.styles
	cursor := "  "
	if selected {
		cursor = s.selected.Render("> ")
	}
	check := "[ ]"
	text := s.text.Render(t.Text)
	if t.Completed {
		check = "[x]"
		text = s.done.Render(t.Text)
	}
	meta := "created " + t.CreatedAt.Local().Format("2006-01-02")
	if t.CompletedAt != nil {
		meta += ", completed " + t.CompletedAt.Local().Format("2006-01-02")
	}
	return fmt.Sprintf("%s%s %s %s  %s",
		cursor, check,
		s.priority[t.Priority].Render(fmt.Sprintf("%-6s", t.Priority)),
		text,
		s.muted.Render(meta),
	)
}

func (m Model) help() string {
	switch m.mode {
	case modeAdd:
		return "enter add · tab priority · esc cancel"
	case modeSearch:
		return "type to search · enter keep · esc clear"
	case modeConfirm:
		return "y confirm · n cancel"
	default:
		return "a add · space toggle · d delete · C clear all · 1-4 filter · / search · t theme · q quit"
	}
}
