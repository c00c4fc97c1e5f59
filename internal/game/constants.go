package game

// Simulation tuning constants. These are gameplay-tuned values, not a
// physically exact model; change them together with the client's feel
// tuning, not in isolation.

const (
	// Substepping: every Step call integrates in this many fixed
	// sub-increments so a full-power ball cannot tunnel through
	// another ball between discrete checks.
	NumSubsteps = 4

	// Velocities below this are snapped to exactly zero to stop
	// perpetual micro-jitter.
	VelocityEpsilon = 0.05

	RailRestitution = 0.85
	BallRestitution = 0.95

	// Flat energy-loss multiplier applied after the collision impulse,
	// for numerical stability.
	CollisionDamping = 0.98

	// Extra gap added when separating an overlapping pair, so the same
	// contact is not re-detected on the next substep.
	SeparationBuffer = 0.5

	// Player shots strike softer than the CPU cue strike.
	PlayerForceScale = 0.7

	// Obstacle respawn: attempts before falling back to a grid slot.
	RespawnRetries = 24
)

// AI tuning constants.
const (
	// Ghost-ball offset: aim point sits this many radii behind the
	// target along the target->pocket line.
	GhostBallOffsetRadii = 2.0

	// A target within this many radii of a rail is a bank-shot candidate.
	BankRailProximityRadii = 4.0

	// Raw bank score relative to the direct score at the same position.
	BankScoreFactor = 0.9

	// Weight applied to the bank score when choosing between the direct
	// and bank candidates. Bank shots are never strictly preferred over
	// a good direct shot.
	BankChoiceWeight = 0.8

	// Effective distance inflation for bank-shot power, accounting for
	// the extra rail traversal.
	BankDistanceFactor = 1.3

	// Pending player moves are extrapolated by half their implied
	// velocity as a one-step look-ahead.
	LookAheadScale = 0.5
)
