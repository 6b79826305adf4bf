package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"codefix/internal/driver"
)

// maxWorkingRows bounds the list of in-flight files under the bar.
const maxWorkingRows = 8

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

type progressModel struct {
	title   string
	events  <-chan driver.Event
	board   *board
	spinner spinner.Model
	bar     progress.Model
	width   int
	done    bool
}

type (
	eventMsg driver.Event
	closedMsg struct{}
)

// NewProgressModel returns a Bubble Tea model showing how far a run over
// files has got. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(workingStyle))
	return &progressModel{
		title:   title,
		events:  events,
		board:   newBoard(files),
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(60)),
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for the following driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return closedMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		var cmd tea.Cmd
		if m.board.apply(driver.Event(msg)) {
			cmd = m.bar.SetPercent(m.board.fraction())
		}
		return m, tea.Batch(cmd, m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 40)
		m.bar.Width = min(m.width-4, 80)
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.board.files) == 0 {
		return ""
	}
	var b strings.Builder

	mark := m.spinner.View()
	if m.done {
		mark = okStyle.Render("✓")
	}
	header := m.title
	if verb := stageVerb[m.board.phase]; verb != "" && !m.done {
		header += " · " + verb
	}
	t := m.board.tally()
	counts := fmt.Sprintf("%d/%d files", t.finished, len(m.board.files))
	if t.cached > 0 {
		counts += fmt.Sprintf(", %d cached", t.cached)
	}
	if t.failed > 0 {
		counts += failStyle.Render(fmt.Sprintf(", %d failed", t.failed))
	}
	fmt.Fprintf(&b, "%s %s  %s\n\n", mark, titleStyle.Render(header), dimStyle.Render(counts))

	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")

	nameWidth := max(m.width-14, 20)
	for _, f := range m.board.working(maxWorkingRows) {
		fmt.Fprintf(&b, "  %s %s\n", workingStyle.Render(fmt.Sprintf("%-10s", f.label())), truncate(f.path, nameWidth))
	}
	for _, f := range m.board.failures() {
		line := f.path
		if f.err != nil {
			line += ": " + f.err.Error()
		}
		fmt.Fprintf(&b, "  %s %s\n", failStyle.Render(fmt.Sprintf("%-10s", "error")), truncate(line, nameWidth))
	}
	return b.String()
}

// truncate cuts value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	default:
		return runewidth.Truncate(value, width, "...")
	}
}

// Run shows the progress view on stderr while work runs with a sink that
// feeds it. The view closes when work returns.
func Run[T any](title string, files []string, work func(sink driver.ProgressSink) (T, error)) (T, error) {
	events := make(chan driver.Event, 256)
	type outcome struct {
		res T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer close(events)
		res, err := work(driver.ChannelSink{Ch: events})
		done <- outcome{res, err}
	}()

	_, viewErr := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(os.Stderr), tea.WithInput(nil)).Run()
	if viewErr != nil {
		// the worker must never block on a dead view
		go func() {
			for range events {
			}
		}()
	}
	out := <-done
	if viewErr != nil {
		return out.res, viewErr
	}
	return out.res, out.err
}
