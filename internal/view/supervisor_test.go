package view

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderPhases(t *testing.T) {
	s := NewSupervisor(nil, nil, zap.NewNop())

	assert.Equal(t, OutputSkeleton, s.Render(Loading()).Kind)

	out := s.Render(Ready([]string{"a", "b"}))
	assert.Equal(t, OutputContent, out.Kind)
	assert.Equal(t, []string{"a", "b"}, out.Data)

	out = s.Render(Empty(EmptyTimeline))
	assert.Equal(t, OutputEmpty, out.Kind)
	require.NotNil(t, out.Preset)
	assert.Equal(t, "Nothing recorded yet", out.Preset.Title)
}

func TestRenderFailureOffersRecovery(t *testing.T) {
	s := NewSupervisor(nil, nil, zap.NewNop())

	out := s.Render(Failed(errors.New("snapshot unavailable")))
	assert.Equal(t, OutputFallback, out.Kind)
	assert.Equal(t, "snapshot unavailable", out.Error)
	assert.Equal(t, []string{"reset", "navigate_home"}, out.Actions)
}

func TestRecoveryHooks(t *testing.T) {
	resets, homes := 0, 0
	s := NewSupervisor(func() { resets++ }, func() { homes++ }, zap.NewNop())

	s.Reset()
	s.NavigateHome()
	s.NavigateHome()

	assert.Equal(t, 1, resets)
	assert.Equal(t, 2, homes)
}

func TestPresetTableIsClosed(t *testing.T) {
	// Every declared kind resolves, an unknown kind degrades to the
	// generic preset instead of a blank region.
	for _, kind := range []EmptyKind{EmptyTasks, EmptyHabits, EmptyList, EmptyTimeline, EmptySearch} {
		p := PresetFor(kind)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Hint)
	}
	assert.Equal(t, PresetFor(EmptyTasks), PresetFor(EmptyKind("bogus")))
}
