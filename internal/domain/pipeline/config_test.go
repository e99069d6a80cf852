package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func stepNames(steps []Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}

func TestSelect(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Name: "install dependencies"},
		{Name: "build libs-back"},
		{Name: "build apps-gorm", Optional: true},
		{Name: "build apps-projectcenter", Optional: true},
	}

	assert.Equal(t, []string{"install dependencies", "build libs-back"}, stepNames(Select(steps, Config{})))
	assert.Equal(t, stepNames(steps), stepNames(Select(steps, Config{BuildApps: true})))
}

func TestConfig_CheckpointAfter(t *testing.T) {
	t.Parallel()

	assert.False(t, Config{}.checkpointAfter(Step{}))
	assert.True(t, Config{}.checkpointAfter(Step{Interactive: true}))
	assert.True(t, Config{PromptAfterSteps: true}.checkpointAfter(Step{}))
}

func TestStep_CommandLines(t *testing.T) {
	t.Parallel()

	s := Step{
		Commands: []Command{Cmd("./configure"), Cmd("make", "-j4")},
		Tasks:    []Task{&fakeTask{name: "reload GNUstep.sh"}},
	}

	assert.Equal(t, []string{"./configure", "make -j4", "reload GNUstep.sh"}, s.CommandLines())
	assert.Equal(t, KindBuild, s.kind())
	assert.Equal(t, KindPackages, Step{Kind: KindPackages}.kind())
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StateIdle.Terminal())
	assert.False(t, StateRunning.Terminal())
	assert.False(t, StateAwaitingConfirmation.Terminal())
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateCancelled.Terminal())
}
