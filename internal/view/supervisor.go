package view

import (
	"go.uber.org/zap"
)

// Output is the render descriptor handed to the presentation collaborator.
type Output struct {
	Kind    string       `json:"kind"`
	Data    interface{}  `json:"data,omitempty"`
	Preset  *EmptyPreset `json:"preset,omitempty"`
	Error   string       `json:"error,omitempty"`
	Actions []string     `json:"actions,omitempty"`
}

const (
	OutputContent  = "content"
	OutputSkeleton = "skeleton"
	OutputEmpty    = "empty"
	OutputFallback = "fallback"
)

// Supervisor turns region states into render outputs. The failed variant
// produces a fallback view offering reset and navigate-home recovery; the
// hooks run when the user takes one of those actions.
type Supervisor struct {
	onReset func()
	onHome  func()
	logger  *zap.Logger
}

func NewSupervisor(onReset, onHome func(), logger *zap.Logger) *Supervisor {
	return &Supervisor{onReset: onReset, onHome: onHome, logger: logger}
}

// Render maps a region state to its output. There is no error return: every
// phase, including failure, has a total rendering.
func (s *Supervisor) Render(state RegionState) Output {
	switch state.Phase {
	case PhaseLoading:
		return Output{Kind: OutputSkeleton}
	case PhaseReady:
		return Output{Kind: OutputContent, Data: state.Data}
	case PhaseEmpty:
		preset := PresetFor(state.EmptyKind)
		return Output{Kind: OutputEmpty, Preset: &preset}
	case PhaseFailed:
		msg := "something went wrong"
		if state.Err != nil {
			msg = state.Err.Error()
		}
		s.logger.Warn("Region render failed, showing fallback", zap.String("error", msg))
		return Output{
			Kind:    OutputFallback,
			Error:   msg,
			Actions: []string{"reset", "navigate_home"},
		}
	default:
		s.logger.Warn("Unknown region phase, showing skeleton", zap.String("phase", string(state.Phase)))
		return Output{Kind: OutputSkeleton}
	}
}

// Reset runs the recovery hook behind the fallback view's reset action.
func (s *Supervisor) Reset() {
	s.logger.Info("Fallback reset requested")
	if s.onReset != nil {
		s.onReset()
	}
}

// NavigateHome runs the hook behind the fallback view's home action.
func (s *Supervisor) NavigateHome() {
	s.logger.Info("Fallback navigate home requested")
	if s.onHome != nil {
		s.onHome()
	}
}
