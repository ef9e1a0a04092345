package entity

// ProgressSnapshot is one answer of the engine's progress endpoint. Every field but Engine is optional.
type ProgressSnapshot struct {
	Engine     EngineKind `json:"engine"`
	SimsDone   *int       `json:"sims_done,omitempty"`
	SimsTarget *int       `json:"sims_target,omitempty"`
	ElapsedMs  *int       `json:"elapsed_ms,omitempty"`
	TimeMs     *int       `json:"time_ms,omitempty"`
}

type ProgressState string

const (
	ProgressIdle       ProgressState = "idle"
	ProgressPolling    ProgressState = "polling"
	ProgressCompleting ProgressState = "completing"
)

type ProgressView struct {
	GameID      string        `json:"game_id,omitempty"`
	State       ProgressState `json:"state"`
	Visible     bool          `json:"visible"`
	Label       string        `json:"label,omitempty"`
	Ratio       float64       `json:"ratio"`
	Percent     int           `json:"percent"`
	Determinate bool          `json:"determinate"`
	Annotation  string        `json:"annotation,omitempty"`
}

func IdleProgress() ProgressView {
	return ProgressView{State: ProgressIdle}
}
