package game

import (
	"math"
	"math/rand"
)

// Stepper advances the ball arena one frame at a time. Each Step runs a
// fixed number of substeps so fast balls cannot tunnel through each
// other between discrete checks. The stepper never fails: every
// geometric degeneracy resolves to a safe default.
type Stepper struct {
	cfg   *SimConfig
	table *Table
	rng   *rand.Rand
}

// NewStepper creates a stepper for one match. The random source is only
// used for obstacle respawn placement.
func NewStepper(cfg *SimConfig, table *Table, rng *rand.Rand) *Stepper {
	return &Stepper{cfg: cfg, table: table, rng: rng}
}

// Step advances all balls by dt seconds, mutating the arena in place.
func (s *Stepper) Step(balls []*Ball, dt float64) {
	sub := dt / NumSubsteps
	for i := 0; i < NumSubsteps; i++ {
		s.integrate(balls, sub)
		s.collideRails(balls)
		s.collideBalls(balls)
		s.capturePockets(balls)
	}
}

// AllSettled reports whether every non-pocketed ball has stopped.
func (s *Stepper) AllSettled(balls []*Ball) bool {
	for _, b := range balls {
		if b.Active() && b.Speed() >= VelocityEpsilon {
			return false
		}
	}
	return true
}

func (s *Stepper) integrate(balls []*Ball, dt float64) {
	for _, b := range balls {
		if !b.Active() {
			continue
		}
		b.Position = b.Position.Plus(b.Velocity.Times(dt))

		retention := s.cfg.Friction
		if b.Role == RoleObstacle {
			retention = s.cfg.ObstacleFriction
		}
		// Exponential decay so friction is correct for non-unit steps.
		b.Velocity = b.Velocity.Times(math.Pow(retention, dt))

		if b.Speed() < VelocityEpsilon {
			b.Velocity = Vec2{}
		}
	}
}

func (s *Stepper) collideRails(balls []*Ball) {
	r := s.cfg.BallRadius
	for _, b := range balls {
		if !b.Active() {
			continue
		}
		if b.Position.X < r {
			b.Position.X = r
			b.Velocity.X = -b.Velocity.X * s.cfg.RailRestitution
		} else if b.Position.X > s.cfg.TableWidth-r {
			b.Position.X = s.cfg.TableWidth - r
			b.Velocity.X = -b.Velocity.X * s.cfg.RailRestitution
		}
		if b.Position.Y < r {
			b.Position.Y = r
			b.Velocity.Y = -b.Velocity.Y * s.cfg.RailRestitution
		} else if b.Position.Y > s.cfg.TableHeight-r {
			b.Position.Y = s.cfg.TableHeight - r
			b.Velocity.Y = -b.Velocity.Y * s.cfg.RailRestitution
		}
	}
}

func (s *Stepper) collideBalls(balls []*Ball) {
	minDist := 2 * s.cfg.BallRadius

	for i := 0; i < len(balls); i++ {
		a := balls[i]
		if !a.Active() {
			continue
		}
		for j := i + 1; j < len(balls); j++ {
			b := balls[j]
			if !b.Active() {
				continue
			}

			delta := b.Position.Minus(a.Position)
			dist := delta.Magnitude()
			if dist >= minDist {
				continue
			}

			// Coincident centers: no usable normal, fall back to a
			// fixed direction instead of dividing by zero.
			n := delta.Normalize()
			if n.IsZero() {
				n = NewVec2(1, 0)
			}

			// Separate immediately so the pair never renders clipped.
			shift := (minDist-dist)/2 + SeparationBuffer
			a.Position = a.Position.Minus(n.Times(shift))
			b.Position = b.Position.Plus(n.Times(shift))

			// Already separating: positional correction was enough.
			// Skipping the impulse guards against double-resolving the
			// same contact across substeps.
			closing := a.Velocity.Minus(b.Velocity).Dot(n)
			if closing <= 0 {
				continue
			}

			// Equal-mass elastic impulse with restitution.
			impulse := (1 + s.cfg.BallRestitution) * closing / 2
			a.Velocity = a.Velocity.Minus(n.Times(impulse))
			b.Velocity = b.Velocity.Plus(n.Times(impulse))

			a.Velocity = a.Velocity.Times(CollisionDamping)
			b.Velocity = b.Velocity.Times(CollisionDamping)
		}
	}
}

func (s *Stepper) capturePockets(balls []*Ball) {
	for _, b := range balls {
		if !b.Active() {
			continue
		}
		if s.table.PocketAt(b.Position) == nil {
			continue
		}

		if b.Role == RoleObstacle {
			// Obstacles never leave play; drop back in elsewhere.
			b.Velocity = Vec2{}
			b.Position = safeObstaclePosition(s.cfg, s.table, balls, s.rng, b.ID)
			continue
		}

		b.Pocketed = true
		b.Velocity = Vec2{}
		if b.Role == RolePlayer {
			b.Eliminated = true
		}
	}
}
