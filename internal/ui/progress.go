// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"shaderpp/internal/buildpipeline"
	"shaderpp/internal/preprocess"
)

// phaseInfo is what a running phase shows and how far along it puts a stage.
type phaseInfo struct {
	label  string
	weight float64
}

var phases = map[buildpipeline.Phase]phaseInfo{
	buildpipeline.PhasePreprocess: {"preprocessing", 0.1},
	buildpipeline.PhaseWrite:      {"writing", 0.3},
	buildpipeline.PhaseCompile:    {"compiling", 0.5},
	buildpipeline.PhaseTranslate:  {"translating", 0.9},
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	stageStyle   = lipgloss.NewStyle().Faint(true)
)

const (
	statusColumn = 14
	stageColumn  = 16
)

type stageRow struct {
	ref     string
	stage   string
	status  buildpipeline.Status
	phase   buildpipeline.Phase
	elapsed time.Duration
}

func (r stageRow) label() string {
	switch r.status {
	case buildpipeline.StatusDone:
		return "done"
	case buildpipeline.StatusError:
		return "error"
	case buildpipeline.StatusWorking:
		if info, ok := phases[r.phase]; ok {
			return info.label
		}
	}
	return "queued"
}

func (r stageRow) style() lipgloss.Style {
	switch r.status {
	case buildpipeline.StatusDone:
		return okStyle
	case buildpipeline.StatusError:
		return failStyle
	case buildpipeline.StatusWorking:
		return runningStyle
	}
	return idleStyle
}

func (r stageRow) finished() bool {
	return r.status == buildpipeline.StatusDone || r.status == buildpipeline.StatusError
}

// share is the fraction of the stage's work already behind it.
func (r stageRow) share() float64 {
	if r.finished() {
		return 1
	}
	if r.status == buildpipeline.StatusWorking {
		return phases[r.phase].weight
	}
	return 0
}

type progressModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []stageRow
	byRef   map[string]int
	program string // label of program-level events
	width   int
	done    bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model with one row per stage source.
// It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]stageRow, len(files)),
		byRef:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, ref := range files {
		row := stageRow{ref: ref, status: buildpipeline.StatusQueued}
		if st, ok := preprocess.StageFromPath(ref); ok {
			row.stage = st.String()
		}
		m.rows[i] = row
		m.byRef[ref] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) header() string {
	h := m.title
	if m.program != "" {
		h += " (" + m.program + ")"
	}
	ok, failed := m.counts()
	if ok+failed > 0 {
		h += fmt.Sprintf(" %d/%d", ok+failed, len(m.rows))
		if failed > 0 {
			h += fmt.Sprintf(", %d failed", failed)
		}
	}
	if m.done {
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.header()))
	b.WriteString("\n\n")

	refWidth := max(m.width-statusColumn-stageColumn-6, 20)
	for _, row := range m.rows {
		line := fmt.Sprintf("  %s %s %s",
			row.style().Render(fmt.Sprintf("%*s", statusColumn, row.label())),
			stageStyle.Render(fmt.Sprintf("%-*s", stageColumn, row.stage)),
			truncate(row.ref, refWidth))
		if row.finished() && row.elapsed > 0 {
			line += stageStyle.Render(" " + row.elapsed.Round(time.Millisecond).String())
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		// событие уровня программы
		switch ev.Status {
		case buildpipeline.StatusWorking:
			if info, ok := phases[ev.Phase]; ok {
				m.program = info.label
			}
		case buildpipeline.StatusDone:
			m.program = "done in " + ev.Elapsed.Round(time.Millisecond).String()
		case buildpipeline.StatusError:
			m.program = "failed"
		}
		return nil
	}
	i, ok := m.byRef[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.status = ev.Status
	if ev.Phase != "" {
		row.phase = ev.Phase
	}
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) counts() (ok, failed int) {
	for _, row := range m.rows {
		switch row.status {
		case buildpipeline.StatusDone:
			ok++
		case buildpipeline.StatusError:
			failed++
		}
	}
	return ok, failed
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var total float64
	for _, row := range m.rows {
		total += row.share()
	}
	return total / float64(len(m.rows))
}

// truncate cuts value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	switch {
	case width <= 0, runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
