package game

import "math"

// Shared geometry helpers for the simulation and the shot planner.

// angleBetween returns the unsigned angle in radians between two
// directions. Degenerate (zero-length) inputs resolve to 0.
func angleBetween(a, b Vec2) float64 {
	denom := a.Magnitude() * b.Magnitude()
	if denom == 0 {
		return 0
	}
	cos := a.Dot(b) / denom
	// Clamp to [-1, 1] to avoid NaN from acos under float error.
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ghostBallPoint returns the aim point for pocketing: the target center
// offset backward from the pocket by offsetRadii ball radii along the
// target->pocket line. Aiming the cue at this point sends the target
// toward the pocket on contact. If target and pocket coincide the
// target itself is returned.
func ghostBallPoint(target, pocket Vec2, ballRadius float64) Vec2 {
	dir := pocket.Minus(target).Normalize()
	if dir.IsZero() {
		return target
	}
	return target.Minus(dir.Times(GhostBallOffsetRadii * ballRadius))
}
