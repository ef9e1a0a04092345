package entity

type Phase string

const (
	PhasePlace  Phase = "place"
	PhaseRotate Phase = "rotate"
)

type SelectionView struct {
	Phase    Phase     `json:"phase"`
	Cell     *Coord    `json:"cell,omitempty"`
	Quadrant *Quadrant `json:"quadrant,omitempty"`
	Locked   bool      `json:"locked"`
}

type AnimationStage string

const StageRotating AnimationStage = "rotating"

type Animation struct {
	Quadrant  string         `json:"quadrant"`
	Direction string         `json:"direction"`
	Stage     AnimationStage `json:"stage"`
}

type ErrorView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SessionView is everything a UI needs to draw the current state.
type SessionView struct {
	Session   *Session      `json:"session,omitempty"`
	Lineup    Lineup        `json:"lineup"`
	Selection SelectionView `json:"selection"`
	Animation *Animation    `json:"animation,omitempty"`
	Busy      bool          `json:"busy"`
	LastError *ErrorView    `json:"error,omitempty"`
	Progress  ProgressView  `json:"progress"`
	// Refusal says why the last input was ignored. It is empty once an input is taken.
	Refusal string `json:"refusal,omitempty"`
}
