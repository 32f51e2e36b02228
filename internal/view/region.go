// Package view models the state handed to rendering collaborators. Renderers
// consume read-only snapshots; nothing here mutates the collections.
package view

// Phase is the closed set of states an interactive region can be in.
type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseEmpty   Phase = "empty"
	PhaseFailed  Phase = "failed"
)

// EmptyKind keys the fixed table of empty-state presets.
type EmptyKind string

const (
	EmptyTasks    EmptyKind = "tasks"
	EmptyHabits   EmptyKind = "habits"
	EmptyList     EmptyKind = "list"
	EmptyTimeline EmptyKind = "timeline"
	EmptySearch   EmptyKind = "search"
)

// EmptyPreset is the content shown when a region has nothing to display.
type EmptyPreset struct {
	Title string `json:"title"`
	Hint  string `json:"hint"`
}

var emptyPresets = map[EmptyKind]EmptyPreset{
	EmptyTasks:    {Title: "No tasks yet", Hint: "Add your first task to get started"},
	EmptyHabits:   {Title: "No habits yet", Hint: "Create a habit and start a streak"},
	EmptyList:     {Title: "This list is empty", Hint: "Drag a task here or add a new one"},
	EmptyTimeline: {Title: "Nothing recorded yet", Hint: "Capture a moment to begin your timeline"},
	EmptySearch:   {Title: "No matches", Hint: "Try a different search term"},
}

// PresetFor looks up the empty-state content for a kind. Unknown kinds fall
// back to the generic tasks preset rather than rendering a blank region.
func PresetFor(kind EmptyKind) EmptyPreset {
	if p, ok := emptyPresets[kind]; ok {
		return p
	}
	return emptyPresets[EmptyTasks]
}

// RegionState is a tagged union over the region phases. Exactly one of Data,
// EmptyKind and Err is meaningful, selected by Phase.
type RegionState struct {
	Phase     Phase
	Data      interface{}
	EmptyKind EmptyKind
	Err       error
}

func Loading() RegionState {
	return RegionState{Phase: PhaseLoading}
}

func Ready(data interface{}) RegionState {
	return RegionState{Phase: PhaseReady, Data: data}
}

func Empty(kind EmptyKind) RegionState {
	return RegionState{Phase: PhaseEmpty, EmptyKind: kind}
}

func Failed(err error) RegionState {
	return RegionState{Phase: PhaseFailed, Err: err}
}
