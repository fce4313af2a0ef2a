package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/core"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	statusStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	frameStyle   = lipgloss.NewStyle().Padding(1, 2)
	gradePalette = map[core.Grade]lipgloss.Color{
		core.GradeA: "42",
		core.GradeB: "114",
		core.GradeC: "220",
		core.GradeD: "208",
		core.GradeF: "196",
	}
)

func gradeStyle(g core.Grade) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(gradePalette[g]).Bold(true)
}

// Model is the menu program state. Actions run as tea.Cmds and report
// back through DoneMsg and ErrMsg.
type Model struct {
	ctx     context.Context
	service *core.Service
	cfg     *config.Config

	menu   *Menu
	cursor int

	// Prompt state while an item collects its values.
	pending *MenuItem
	answers []string
	input   textinput.Model

	busy      bool
	status    string
	statusErr bool
}

// New returns a Model positioned at the top of the main menu.
func New(ctx context.Context, svc *core.Service, cfg *config.Config) *Model {
	in := textinput.New()
	in.CharLimit = 256

	m := &Model{
		ctx:     ctx,
		service: svc,
		cfg:     cfg,
		input:   in,
		status:  "Choose an option.",
	}
	m.menu = buildMenuTree(m)
	return m
}

// Run shows the menu until the user exits or ctx is cancelled.
func Run(ctx context.Context, svc *core.Service, cfg *config.Config) error {
	p := tea.NewProgram(New(ctx, svc, cfg), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DoneMsg:
		m.busy = false
		m.status = string(msg)
		m.statusErr = false
		return m, nil

	case ErrMsg:
		m.busy = false
		m.status = formatError(msg.Err)
		m.statusErr = true
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.pending != nil {
			return m.updatePrompt(msg)
		}
		return m.updateMenu(msg)
	}

	if m.pending != nil {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.menu.Items)-1 {
			m.cursor++
		}
	case "esc", "backspace":
		if m.menu.Parent != nil {
			m.enter(m.menu.Parent)
		}
	case "enter":
		return m, m.selectItem(&m.menu.Items[m.cursor])
	}
	return m, nil
}

func (m *Model) selectItem(item *MenuItem) tea.Cmd {
	switch {
	case item.Label == "Back" || item.Submenu != nil:
		if item.Submenu != nil {
			m.enter(item.Submenu)
		}
		return nil
	case m.busy:
		return nil
	case len(item.Prompts) > 0:
		m.pending = item
		m.answers = nil
		return m.nextPrompt()
	case item.Action != nil:
		return m.start(item.Action())
	}
	return nil
}

func (m *Model) enter(menu *Menu) {
	m.menu = menu
	m.cursor = 0
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.cancelPrompt()
		return m, nil
	case tea.KeyEnter:
		p := m.pending.Prompts[len(m.answers)]
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			value = p.Default
		}
		if value == "" {
			return m, nil
		}
		m.answers = append(m.answers, value)
		if len(m.answers) < len(m.pending.Prompts) {
			return m, m.nextPrompt()
		}
		item, answers := m.pending, m.answers
		m.cancelPrompt()
		return m, m.start(item.Submit(answers))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) nextPrompt() tea.Cmd {
	p := m.pending.Prompts[len(m.answers)]
	m.input.Reset()
	m.input.Prompt = p.Label + ": "
	m.input.Placeholder = p.Default
	return m.input.Focus()
}

func (m *Model) cancelPrompt() {
	m.pending = nil
	m.answers = nil
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	m.busy = true
	m.statusErr = false
	m.status = "Working..."
	return cmd
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.menu.Title))
	b.WriteString("\n\n")

	for i, item := range m.menu.Items {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + item.Label))
		} else {
			b.WriteString("  " + item.Label)
		}
		b.WriteByte('\n')
	}

	if m.pending != nil {
		b.WriteString("\n" + m.input.View() + "\n")
		b.WriteString(helpStyle.Render("enter confirm • esc cancel"))
	} else {
		b.WriteString("\n" + helpStyle.Render("↑/↓ move • enter select • esc back • q quit"))
	}

	status := m.status
	switch {
	case m.busy:
		status = workingStyle.Render(status)
	case m.statusErr:
		status = errStyle.Render(status)
	}
	b.WriteString("\n\n" + statusStyle.Render(status))

	return frameStyle.Render(b.String())
}

func formatError(err error) string {
	if core.IsUserFacing(err) {
		return core.FormatUserError(err)
	}
	return fmt.Sprintf("Error: %v", err)
}
