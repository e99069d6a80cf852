package pipeline

import (
	"github.com/felixgeelhaar/statekit"
)

// State is a pipeline run state.
type State string

// Machine state identifiers. Kept untyped so they convert to statekit's
// state ID type.
const (
	stateIdle      = "idle"
	stateRunning   = "running"
	stateAwaiting  = "awaiting_confirmation"
	stateCompleted = "completed"
	stateFailed    = "failed"
	stateCancelled = "cancelled"
)

const (
	// StateIdle is the state before Run starts.
	StateIdle State = stateIdle
	// StateRunning indicates a step is executing.
	StateRunning State = stateRunning
	// StateAwaitingConfirmation indicates the driver is blocked on a checkpoint.
	StateAwaitingConfirmation State = stateAwaiting
	// StateCompleted indicates every step succeeded.
	StateCompleted State = stateCompleted
	// StateFailed indicates a step failed.
	StateFailed State = stateFailed
	// StateCancelled indicates the operator declined a checkpoint or the run was interrupted.
	StateCancelled State = stateCancelled
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Event types for the run state machine.
const (
	EventStart    = "START"
	EventAwait    = "AWAIT_CONFIRMATION"
	EventConfirm  = "CONFIRM"
	EventComplete = "COMPLETE"
	EventFail     = "FAIL"
	EventCancel   = "CANCEL"
	EventReset    = "RESET"
)

// machineContext is the statekit context type. The driver keeps run data in
// RunResult, so the machine only tracks states.
type machineContext struct{}

func buildRunMachine() (*statekit.Interpreter[machineContext], error) {
	machine, err := statekit.NewMachine[machineContext]("srcbuild-pipeline").
		WithInitial(stateIdle).
		WithContext(machineContext{}).
		State(stateIdle).
		On(EventStart).Target(stateRunning).Done().
		State(stateRunning).
		On(EventAwait).Target(stateAwaiting).
		On(EventComplete).Target(stateCompleted).
		On(EventFail).Target(stateFailed).
		On(EventCancel).Target(stateCancelled).Done().
		State(stateAwaiting).
		On(EventConfirm).Target(stateRunning).
		On(EventCancel).Target(stateCancelled).Done().
		State(stateCompleted).
		On(EventReset).Target(stateIdle).Done().
		State(stateFailed).
		On(EventReset).Target(stateIdle).Done().
		State(stateCancelled).
		On(EventReset).Target(stateIdle).Done().
		Build()
	if err != nil {
		return nil, err
	}

	return statekit.NewInterpreter(machine), nil
}
