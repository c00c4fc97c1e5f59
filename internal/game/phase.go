package game

// PhaseKind discriminates the round phase variants.
type PhaseKind string

const (
	PhaseStarting    PhaseKind = "STARTING"
	PhaseCountdown   PhaseKind = "COUNTDOWN"
	PhaseExecuting   PhaseKind = "EXECUTING"
	PhaseRoundResult PhaseKind = "ROUND_RESULT"
	PhaseGameOver    PhaseKind = "GAME_OVER"
)

// RoundPhase is a tagged value: exactly one variant is active at a time
// and it is replaced wholesale on every transition, never partially
// mutated, so kind and payload stay consistent.
type RoundPhase struct {
	Kind PhaseKind `json:"kind"`

	// Remaining seconds; Countdown and RoundResult only.
	Remaining float64 `json:"remaining,omitempty"`

	// Result banner; RoundResult only.
	Message string `json:"message,omitempty"`

	// GameOver only.
	Won bool `json:"won"`
}

// PlayerMove is a player's pre-selected escape vector for the current
// round. It exists per seat, is reset to empty each round, and is only
// mutable during the aiming countdown.
type PlayerMove struct {
	Angle  float64 `json:"angle"`
	Force  float64 `json:"force"` // 0-1
	Locked bool    `json:"locked"`
}
