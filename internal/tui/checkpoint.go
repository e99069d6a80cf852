// Package tui provides the interactive checkpoint shown between build steps.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/tui/ui"
)

// CheckpointModel asks whether to continue after a step.
type CheckpointModel struct {
	checkpoint pipeline.Checkpoint
	focused    bool // true = continue, false = stop
	done       bool
	confirmed  bool
	width      int
	keys       ui.KeyMap
	styles     ui.Styles
}

// NewCheckpointModel creates the model for cp with "Continue" focused.
func NewCheckpointModel(cp pipeline.Checkpoint) CheckpointModel {
	return CheckpointModel{
		checkpoint: cp,
		focused:    true,
		width:      60,
		keys:       ui.DefaultKeyMap(),
		styles:     ui.DefaultStyles(),
	}
}

// Focused returns true if "Continue" is focused.
func (m CheckpointModel) Focused() bool {
	return m.focused
}

// Done returns true once an answer was given.
func (m CheckpointModel) Done() bool {
	return m.done
}

// Confirmed returns the answer. It is false until Done.
func (m CheckpointModel) Confirmed() bool {
	return m.confirmed
}

// Init implements tea.Model.
func (m CheckpointModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m CheckpointModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 0 && msg.Width < 60 {
			m.width = msg.Width
		}
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m CheckpointModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.VimLeft):
		m.focused = true
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.VimRight):
		m.focused = false
	case key.Matches(msg, m.keys.Select):
		return m.answer(m.focused)
	case key.Matches(msg, m.keys.Accept):
		return m.answer(true)
	case key.Matches(msg, m.keys.Reject), key.Matches(msg, m.keys.Cancel):
		return m.answer(false)
	}
	return m, nil
}

func (m CheckpointModel) answer(confirmed bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.confirmed = confirmed
	return m, tea.Quit
}

// View implements tea.Model.
func (m CheckpointModel) View() string {
	cp := m.checkpoint
	if m.done {
		if m.confirmed {
			return m.styles.Success.Render(fmt.Sprintf("✓ continuing with %s", cp.Next)) + "\n"
		}
		return m.styles.Error.Render("✗ stopped after "+cp.Step) + "\n"
	}

	title := m.styles.Title.Render("✓ " + cp.Step)
	progress := m.styles.Progress.Render(fmt.Sprintf("step %d of %d", cp.Index, cp.Total))
	next := m.styles.Paragraph.Width(m.width).Render("Next: " + cp.Next)

	yesStyle, noStyle := m.styles.Button, m.styles.Button
	if m.focused {
		yesStyle = m.styles.ButtonActive
	} else {
		noStyle = m.styles.ButtonActive
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesStyle.Render("Continue"), "  ", noStyle.Render("Stop"))

	return lipgloss.JoinVertical(lipgloss.Left,
		title+"  "+progress,
		next,
		"",
		buttons,
		m.helpView(),
	) + "\n"
}

func (m CheckpointModel) helpView() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.styles.HelpKey.Render(h.Key)+" "+m.styles.Help.Render(h.Desc))
	}
	return strings.Join(parts, m.styles.Help.Render(" • "))
}

// CheckpointPrompter implements pipeline.Prompter with a bubbletea program.
type CheckpointPrompter struct {
	opts []tea.ProgramOption
}

// NewCheckpointPrompter creates a prompter. opts are passed to every program,
// e.g. tea.WithInput and tea.WithOutput.
func NewCheckpointPrompter(opts ...tea.ProgramOption) *CheckpointPrompter {
	return &CheckpointPrompter{opts: opts}
}

// Confirm runs the checkpoint prompt until it is answered or ctx is done.
func (p *CheckpointPrompter) Confirm(ctx context.Context, cp pipeline.Checkpoint) (bool, error) {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, p.opts...)
	prog := tea.NewProgram(NewCheckpointModel(cp), opts...)

	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return false, ctx.Err()
		}
		return false, fmt.Errorf("checkpoint prompt failed: %w", err)
	}

	m, ok := final.(CheckpointModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type %T", final)
	}
	return m.Confirmed(), nil
}

var _ pipeline.Prompter = (*CheckpointPrompter)(nil)
