package sequence

import (
	"context"

	"github.com/pkg/errors"
)

// Session tracks one caller's progress through a step-by-step execution of
// a sequence. It is exclusively owned by that caller: concurrent requests
// must not share a session without external serialization (the transport
// layer keys sessions by token for exactly this reason).
type Session struct {
	exec       *Executor
	idx        int
	complete   bool
	lastOutput []Field
}

// NewSession creates a session positioned at the first step, with no
// recorded output.
func NewSession(exec *Executor) *Session {
	return &Session{exec: exec}
}

// Complete reports whether the session has advanced past the last step.
func (s *Session) Complete() bool { return s.complete }

// StepIndex returns the zero-based index of the current step.
func (s *Session) StepIndex() int { return s.idx }

// CurrentStepID returns the id of the current step, or false when the
// session is complete.
func (s *Session) CurrentStepID() (string, bool) {
	if s.complete {
		return "", false
	}

	return s.exec.Spec().Steps[s.idx].ID, true
}

// LastOutput returns the output recorded by the most recent RunCurrent,
// or nil if none has been recorded since the last move.
func (s *Session) LastOutput() []Field { return s.lastOutput }

// RunCurrent runs the current step with the given input and records its
// output. The session stays at the same step; Advance moves it.
func (s *Session) RunCurrent(ctx context.Context, input []Field) (*StepResult, error) {
	stepID, ok := s.CurrentStepID()
	if !ok {
		return nil, ErrSessionComplete
	}

	result, err := s.exec.RunStep(ctx, stepID, input)
	if err != nil {
		return nil, err
	}
	s.lastOutput = result.Output

	return result, nil
}

// Advance moves the session to the next step and returns that step's
// pre-filled input: projected from the recorded output when one exists,
// template defaults otherwise. Advancing past the last step completes the
// session and returns nil.
func (s *Session) Advance() ([]Field, error) {
	stepID, ok := s.CurrentStepID()
	if !ok {
		return nil, ErrSessionComplete
	}

	if s.idx+1 >= len(s.exec.Spec().Steps) {
		s.complete = true
		s.lastOutput = nil

		return nil, nil
	}

	var prefilled []Field
	if s.lastOutput != nil {
		projected, err := s.exec.PrepareNext(stepID, s.lastOutput)
		if err != nil {
			return nil, err
		}
		prefilled = projected
	} else {
		next := &s.exec.Spec().Steps[s.idx+1]
		prefilled = make([]Field, 0, len(next.InputFeatures))
		for _, tmpl := range next.InputFeatures {
			prefilled = append(prefilled, tmpl.defaultField())
		}
	}

	s.idx++
	s.lastOutput = nil

	return prefilled, nil
}

// JumpTo re-enters the sequence at an arbitrary step. No output carries
// over: inputs at the target step are type-checked from scratch when it
// runs, with no assumption that prior steps ever executed.
func (s *Session) JumpTo(idx int) error {
	if s.complete {
		return ErrSessionComplete
	}
	if idx < 0 || idx >= len(s.exec.Spec().Steps) {
		return errors.Errorf("step index %d out of range [0, %d)", idx, len(s.exec.Spec().Steps))
	}

	s.idx = idx
	s.lastOutput = nil

	return nil
}

// Reset returns the session to the first step from any state.
func (s *Session) Reset() {
	s.idx = 0
	s.complete = false
	s.lastOutput = nil
}
