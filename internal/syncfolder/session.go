package syncfolder

import (
	"fmt"
	"log/slog"
	"time"
)

type State string

const (
	StateIdle                State = "idle"
	StateScanningHost        State = "scanning_host"
	StateScanningDestination State = "scanning_destination"
	StateReconciling         State = "reconciling"
	StateMutating            State = "mutating"
	StatePruningEmpty        State = "pruning_empty"
	StateFinalizing          State = "finalizing"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

type stateTransition struct {
	From State
	To   State
}

// validTransitions is the linear session flow. Any non-terminal state may
// also move to StateFailed.
var validTransitions = map[stateTransition]bool{
	{StateIdle, StateScanningHost}:                true,
	{StateScanningHost, StateScanningDestination}: true,
	{StateScanningDestination, StateReconciling}:  true,
	{StateReconciling, StateMutating}:             true,
	{StateMutating, StatePruningEmpty}:            true,
	{StatePruningEmpty, StateFinalizing}:          true,
	{StateFinalizing, StateDone}:                  true,
}

var stateMessages = map[State]string{
	StateScanningHost:        "Computing checksums of host files",
	StateScanningDestination: "Reading destination state",
	StateReconciling:         "Comparing host and destination",
	StateMutating:            "Applying changes",
	StatePruningEmpty:        "Removing empty folders",
	StateFinalizing:          "Updating sync folder metadata",
	StateDone:                "Done",
	StateFailed:              "Failed",
}

func IsTerminalState(s State) bool {
	return s == StateDone || s == StateFailed
}

func ValidateTransition(from, to State) error {
	if to == StateFailed && !IsTerminalState(from) {
		return nil
	}
	if !validTransitions[stateTransition{From: from, To: to}] {
		return fmt.Errorf("invalid session transition from %s to %s", from, to)
	}
	return nil
}

// session tracks one sync run. It is never shared between goroutines.
type session struct {
	state    State
	entered  time.Time
	started  time.Time
	phases   map[State]time.Duration
	progress Progress
	logger   *slog.Logger
}

func newSession(progress Progress, logger *slog.Logger) *session {
	now := time.Now()
	return &session{
		state:    StateIdle,
		entered:  now,
		started:  now,
		phases:   make(map[State]time.Duration),
		progress: progress,
		logger:   logger,
	}
}

func (s *session) transition(to State) error {
	if err := ValidateTransition(s.state, to); err != nil {
		return err
	}

	now := time.Now()
	if s.state != StateIdle {
		s.phases[s.state] = now.Sub(s.entered)
	}
	s.logger.Debug("sync session", "from", s.state, "to", to)
	s.state = to
	s.entered = now

	if msg, ok := stateMessages[to]; ok {
		s.progress.Update(msg)
	}
	return nil
}

// fail moves the session to StateFailed and returns err unchanged
func (s *session) fail(err error) error {
	if terr := s.transition(StateFailed); terr != nil {
		s.logger.Warn("sync session", "error", terr)
	}
	s.logger.Error("sync session failed", "error", err)
	return err
}

func (s *session) elapsed() time.Duration {
	return time.Since(s.started)
}
