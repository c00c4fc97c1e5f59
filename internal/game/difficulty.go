package game

import "math"

// DifficultyTier names one of the four CPU skill levels.
type DifficultyTier string

const (
	TierEasy   DifficultyTier = "EASY"
	TierMedium DifficultyTier = "MEDIUM"
	TierHard   DifficultyTier = "HARD"
	TierExpert DifficultyTier = "EXPERT"
)

// CPUDifficulty is the CPU opponent's skill for one round: how accurate
// its final aim is and how hard it is allowed to strike.
type CPUDifficulty struct {
	Tier     DifficultyTier `json:"tier"`
	Accuracy float64        `json:"accuracy"`
	MinPower float64        `json:"min_power"`
	MaxPower float64        `json:"max_power"`
}

// DifficultyForRound maps the round number to a tier. Difficulty is a
// pure function of the round, escalating as the match progresses.
func DifficultyForRound(round int) CPUDifficulty {
	switch {
	case round <= 3:
		return CPUDifficulty{Tier: TierEasy, Accuracy: 0.70, MinPower: 0.3, MaxPower: 0.5}
	case round <= 6:
		return CPUDifficulty{Tier: TierMedium, Accuracy: 0.85, MinPower: 0.4, MaxPower: 0.7}
	case round <= 10:
		return CPUDifficulty{Tier: TierHard, Accuracy: 0.95, MinPower: 0.5, MaxPower: 0.85}
	default:
		return CPUDifficulty{Tier: TierExpert, Accuracy: 0.98, MinPower: 0.6, MaxPower: 1.0}
	}
}

// MaxError returns the half-width of the uniform angular noise applied
// to every planned shot. Even the expert tier is never perfectly
// accurate.
func (d CPUDifficulty) MaxError() float64 {
	return (math.Pi / 6) * (1 - d.Accuracy)
}
