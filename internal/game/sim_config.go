package game

// SimConfig holds the table dimensions and physics tuning for one match.
// All distances are in table units, all times in seconds.
type SimConfig struct {
	TableWidth  float64 `json:"table_width"`
	TableHeight float64 `json:"table_height"`

	BallRadius   float64 `json:"ball_radius"`
	PocketRadius float64 `json:"pocket_radius"`

	// MaxForce is the launch speed of a full-power CPU shot.
	MaxForce float64 `json:"max_force"`

	// Friction is the fraction of velocity retained per second; applied
	// exponentially per substep (v *= Friction^dt) so decay is correct
	// for non-unit time steps. Obstacles use a much lower retention so a
	// pushed obstacle settles quickly.
	Friction         float64 `json:"friction"`
	ObstacleFriction float64 `json:"obstacle_friction"`

	RailRestitution float64 `json:"rail_restitution"`
	BallRestitution float64 `json:"ball_restitution"`

	CountdownSeconds float64 `json:"countdown_seconds"`
	ResultSeconds    float64 `json:"result_seconds"`
}

// DefaultSimConfig returns the tuning used by the live game.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		TableWidth:       800,
		TableHeight:      450,
		BallRadius:       10,
		PocketRadius:     22,
		MaxForce:         600,
		Friction:         0.35,
		ObstacleFriction: 0.02,
		RailRestitution:  RailRestitution,
		BallRestitution:  BallRestitution,
		CountdownSeconds: 5,
		ResultSeconds:    2,
	}
}

// RoundsToWin returns how many rounds must be survived for the given
// player count. More players means a longer match.
func RoundsToWin(playerCount int) int {
	switch playerCount {
	case 1:
		return 8
	case 2:
		return 10
	case 3:
		return 12
	default:
		return 15
	}
}
