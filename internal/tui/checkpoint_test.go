package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCheckpoint = pipeline.Checkpoint{
	Step:  "build libobjc2",
	Next:  "fetch tools-make",
	Index: 5,
	Total: 14,
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m CheckpointModel, msg tea.Msg) (CheckpointModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	cm, ok := next.(CheckpointModel)
	require.True(t, ok)
	return cm, cmd
}

func TestNewCheckpointModel(t *testing.T) {
	t.Parallel()

	m := NewCheckpointModel(testCheckpoint)

	assert.True(t, m.Focused())
	assert.False(t, m.Done())
	assert.False(t, m.Confirmed())
	assert.Nil(t, m.Init())
}

func TestCheckpointModel_Navigation(t *testing.T) {
	t.Parallel()

	m := NewCheckpointModel(testCheckpoint)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.False(t, m.Focused())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.True(t, m.Focused())
	m, _ = update(t, m, runes("l"))
	assert.False(t, m.Focused())
	m, _ = update(t, m, runes("h"))
	assert.True(t, m.Focused())
	assert.False(t, m.Done())
}

func TestCheckpointModel_Answers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		keys []tea.KeyMsg
		want bool
	}{
		{"y", []tea.KeyMsg{runes("y")}, true},
		{"n", []tea.KeyMsg{runes("n")}, false},
		{"enter on continue", []tea.KeyMsg{{Type: tea.KeyEnter}}, true},
		{"enter on stop", []tea.KeyMsg{{Type: tea.KeyRight}, {Type: tea.KeyEnter}}, false},
		{"esc", []tea.KeyMsg{{Type: tea.KeyEsc}}, false},
		{"ctrl+c", []tea.KeyMsg{{Type: tea.KeyCtrlC}}, false},
		{"q", []tea.KeyMsg{runes("q")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := NewCheckpointModel(testCheckpoint)
			var cmd tea.Cmd
			for _, k := range tt.keys {
				m, cmd = update(t, m, k)
			}
			assert.True(t, m.Done())
			assert.Equal(t, tt.want, m.Confirmed())
			require.NotNil(t, cmd)
			assert.Equal(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestCheckpointModel_IgnoresOtherKeys(t *testing.T) {
	t.Parallel()

	m := NewCheckpointModel(testCheckpoint)
	m, cmd := update(t, m, runes("x"))

	assert.Nil(t, cmd)
	assert.False(t, m.Done())
}

func TestCheckpointModel_View(t *testing.T) {
	t.Parallel()

	m := NewCheckpointModel(testCheckpoint)
	view := m.View()
	assert.Contains(t, view, "build libobjc2")
	assert.Contains(t, view, "step 5 of 14")
	assert.Contains(t, view, "Next: fetch tools-make")
	assert.Contains(t, view, "Continue")
	assert.Contains(t, view, "Stop")

	m, _ = update(t, m, runes("y"))
	assert.Contains(t, m.View(), "continuing with fetch tools-make")

	m = NewCheckpointModel(testCheckpoint)
	m, _ = update(t, m, runes("n"))
	assert.Contains(t, m.View(), "stopped after build libobjc2")
}

func TestCheckpointModel_WindowSize(t *testing.T) {
	t.Parallel()

	m := NewCheckpointModel(testCheckpoint)
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 30, Height: 10})

	assert.Nil(t, cmd)
	assert.Equal(t, 30, m.width)
}

func TestCheckpointPrompter_Confirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y", true},
		{"n", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			p := NewCheckpointPrompter(
				tea.WithInput(strings.NewReader(tt.input)),
				tea.WithOutput(&out),
				tea.WithoutSignalHandler(),
			)

			got, err := p.Confirm(context.Background(), testCheckpoint)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
