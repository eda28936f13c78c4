// Package tui implements the interactive terminal interface: a query
// prompt over the retrieval engine with optional answer synthesis.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/acervo-ai/acervo-cli/internal/core/domain"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driving"
)

// mode selects what Enter does.
type mode int

const (
	modeQuery mode = iota // ranked chunk retrieval
	modeAsk               // synthesised answer
)

// Ports are the driving services the TUI needs.
type Ports struct {
	Retrieval driving.RetrievalService
	Ask       driving.AskService
	Admin     driving.StoreAdmin
}

// Messages emitted by background commands.
type (
	queryDoneMsg  struct{ resp *domain.RankedResponse }
	askDoneMsg    struct{ answer *domain.Answer }
	statusDoneMsg struct {
		backend string
		entries int
	}
	errMsg struct{ err error }
)

// App is the bubbletea model for the whole interface.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles

	input   textinput.Model
	spin    spinner.Model
	mode    mode
	busy    bool
	width   int
	height  int
	backend string
	entries int

	resp   *domain.RankedResponse
	answer *domain.Answer
	err    error
}

// styles holds the lipgloss styles used across the views.
type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	result   lipgloss.Style
	source   lipgloss.Style
	errText  lipgloss.Style
	statusOK lipgloss.Style
	degraded lipgloss.Style
}

func newStyles() *styles {
	return &styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		result:   lipgloss.NewStyle().Foreground(lipgloss.Color("#CDD6F4")),
		source:   lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		errText:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		statusOK: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		degraded: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	}
}

// NewApp creates the TUI application.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil || ports.Retrieval == nil {
		return nil, errors.New("tui: retrieval service is required")
	}

	input := textinput.New()
	input.Placeholder = "Type a query and press Enter"
	input.Focus()
	input.CharLimit = 512

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: newStyles(),
		input:  input,
		spin:   spin,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) {
	if ctx != nil {
		a.ctx = ctx
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.fetchStatus())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.input.Width = msg.Width - 4
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyTab:
			a.toggleMode()
			return a, nil
		case tea.KeyEnter:
			if a.busy {
				return a, nil
			}
			text := strings.TrimSpace(a.input.Value())
			if text == "" {
				return a, nil
			}
			a.busy = true
			a.err = nil
			a.resp = nil
			a.answer = nil
			return a, tea.Batch(a.spin.Tick, a.run(text))
		}

	case queryDoneMsg:
		a.busy = false
		a.resp = msg.resp
		return a, nil

	case askDoneMsg:
		a.busy = false
		a.answer = msg.answer
		return a, nil

	case statusDoneMsg:
		a.backend = msg.backend
		a.entries = msg.entries
		return a, nil

	case errMsg:
		a.busy = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.title.Render("acervo"))
	b.WriteString("  ")
	b.WriteString(a.styles.muted.Render(a.modeLabel()))
	if a.backend != "" {
		line := fmt.Sprintf("  %s backend, %d entries", a.backend, a.entries)
		if a.backend == "fallback" {
			b.WriteString(a.styles.degraded.Render(line))
		} else {
			b.WriteString(a.styles.statusOK.Render(line))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	switch {
	case a.busy:
		b.WriteString(a.spin.View())
		b.WriteString(a.styles.muted.Render(" working..."))
	case a.err != nil:
		b.WriteString(a.styles.errText.Render("Error: " + a.err.Error()))
	case a.answer != nil:
		a.renderAnswer(&b)
	case a.resp != nil:
		a.renderResults(&b)
	default:
		b.WriteString(a.styles.muted.Render("Tab switches between query and ask. Esc quits."))
	}

	b.WriteString("\n")
	return b.String()
}

func (a *App) renderResults(b *strings.Builder) {
	if a.resp.Empty() {
		b.WriteString(a.styles.muted.Render("No relevant results."))
		return
	}
	fmt.Fprintf(b, "%s\n\n", a.styles.muted.Render(
		fmt.Sprintf("confidence %.2f", a.resp.Confidence)))
	for i, r := range a.resp.Results {
		att := r.Attribution()
		fmt.Fprintf(b, "%s %s\n",
			a.styles.source.Render(fmt.Sprintf("[%d] %s (%.2f)", i+1, att.SourcePath, r.Similarity)),
			"")
		b.WriteString(a.styles.result.Render("    " + att.Preview))
		b.WriteString("\n\n")
	}
}

func (a *App) renderAnswer(b *strings.Builder) {
	b.WriteString(a.styles.result.Render(a.answer.Text))
	b.WriteString("\n")
	if a.answer.Templated {
		b.WriteString(a.styles.degraded.Render("(templated answer; generation unavailable)"))
		b.WriteString("\n")
	}
	if len(a.answer.Sources) > 0 {
		b.WriteString("\n")
		b.WriteString(a.styles.muted.Render(fmt.Sprintf("confidence %.2f", a.answer.Confidence)))
		b.WriteString("\n")
		for _, s := range a.answer.Sources {
			b.WriteString(a.styles.source.Render(fmt.Sprintf("  - %s (%.2f)", s.SourcePath, s.Similarity)))
			b.WriteString("\n")
		}
	}
}

func (a *App) modeLabel() string {
	if a.mode == modeAsk {
		return "[ask]"
	}
	return "[query]"
}

func (a *App) toggleMode() {
	if a.mode == modeQuery && a.ports.Ask != nil {
		a.mode = modeAsk
	} else {
		a.mode = modeQuery
	}
}

// run dispatches the current input to the active mode's service.
func (a *App) run(text string) tea.Cmd {
	if a.mode == modeAsk && a.ports.Ask != nil {
		return func() tea.Msg {
			answer, err := a.ports.Ask.Ask(a.ctx, text)
			if err != nil {
				return errMsg{err}
			}
			return askDoneMsg{answer}
		}
	}
	return func() tea.Msg {
		resp, err := a.ports.Retrieval.Query(a.ctx, text, 0)
		if err != nil {
			return errMsg{err}
		}
		return queryDoneMsg{resp}
	}
}

// fetchStatus loads the store status line shown in the header.
func (a *App) fetchStatus() tea.Cmd {
	if a.ports.Admin == nil {
		return nil
	}
	return func() tea.Msg {
		backend, entries, err := a.ports.Admin.Status(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return statusDoneMsg{backend: backend, entries: entries}
	}
}
