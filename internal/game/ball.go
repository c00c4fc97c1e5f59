package game

import (
	"fmt"
	"math/rand"
)

// BallRole tags a ball's role in the arena.
type BallRole string

const (
	RoleCue      BallRole = "CUE"
	RolePlayer   BallRole = "PLAYER"
	RoleObstacle BallRole = "OBSTACLE"
)

// Ball is one ball in the arena. Cue, player and obstacle balls all live
// in a single id-indexed slice so the collision and capture passes run
// over one homogeneous collection.
type Ball struct {
	ID       int      `json:"id"`
	Role     BallRole `json:"role"`
	Seat     int      `json:"seat"` // owning player seat, -1 for cue/obstacle
	Position Vec2     `json:"position"`
	Velocity Vec2     `json:"velocity"`
	Pocketed bool     `json:"pocketed"`

	// Eliminated is permanent for the match; player balls only.
	Eliminated bool `json:"eliminated"`

	// Start is the setup slot; pocketed cue balls respawn here.
	Start Vec2 `json:"-"`
}

// Speed returns the ball's current speed.
func (b *Ball) Speed() float64 {
	return b.Velocity.Magnitude()
}

// Active reports whether the ball takes part in position and collision
// updates. A pocketed ball is frozen until respawned.
func (b *Ball) Active() bool {
	return !b.Pocketed
}

// SeatLabel returns the display label for a player seat, e.g. "PLAYER 2".
func SeatLabel(seat int) string {
	return fmt.Sprintf("PLAYER %d", seat+1)
}

// GenerateLayout builds the round-start arena: cue balls on the left
// rail side, one ball per player seat on the right, and obstacle balls
// rejection-sampled into open space.
func GenerateLayout(cfg *SimConfig, table *Table, playerCount, obstacleCount, cueCount int, rng *rand.Rand) []*Ball {
	balls := make([]*Ball, 0, cueCount+playerCount+obstacleCount)
	id := 0

	// Cue balls stack on the left quarter line.
	cueX := cfg.TableWidth * 0.15
	for i := 0; i < cueCount; i++ {
		pos := NewVec2(cueX, spreadY(cfg, i, cueCount))
		balls = append(balls, &Ball{ID: id, Role: RoleCue, Seat: -1, Position: pos, Start: pos})
		id++
	}

	// Player balls on the right three-quarter line.
	playerX := cfg.TableWidth * 0.75
	for seat := 0; seat < playerCount; seat++ {
		pos := NewVec2(playerX, spreadY(cfg, seat, playerCount))
		balls = append(balls, &Ball{ID: id, Role: RolePlayer, Seat: seat, Position: pos, Start: pos})
		id++
	}

	for i := 0; i < obstacleCount; i++ {
		pos := safeObstaclePosition(cfg, table, balls, rng, i)
		balls = append(balls, &Ball{ID: id, Role: RoleObstacle, Seat: -1, Position: pos, Start: pos})
		id++
	}

	return balls
}

// spreadY spaces n slots evenly across the table height, keeping a
// margin off both long rails.
func spreadY(cfg *SimConfig, index, n int) float64 {
	margin := cfg.TableHeight * 0.2
	usable := cfg.TableHeight - 2*margin
	if n <= 1 {
		return cfg.TableHeight / 2
	}
	return margin + usable*float64(index)/float64(n-1)
}

// safeObstaclePosition rejection-samples a spot clear of pockets, other
// balls, and the starting safe zones. If retries exhaust it falls back
// to a deterministic grid slot so setup never fails.
func safeObstaclePosition(cfg *SimConfig, table *Table, balls []*Ball, rng *rand.Rand, ordinal int) Vec2 {
	margin := cfg.PocketRadius + 2*cfg.BallRadius

	for attempt := 0; attempt < RespawnRetries; attempt++ {
		p := NewVec2(
			margin+rng.Float64()*(cfg.TableWidth-2*margin),
			margin+rng.Float64()*(cfg.TableHeight-2*margin),
		)
		if obstacleSpotClear(cfg, table, balls, p) {
			return p
		}
	}

	// Grid fallback: center band, deterministic per ordinal.
	cols := 5
	col := ordinal % cols
	row := ordinal / cols
	return NewVec2(
		cfg.TableWidth*(0.3+0.1*float64(col)),
		cfg.TableHeight*(0.4+0.2*float64(row)),
	)
}

func obstacleSpotClear(cfg *SimConfig, table *Table, balls []*Ball, p Vec2) bool {
	for i := range table.Pockets {
		if table.Pockets[i].Position.DistanceTo(p) < table.Pockets[i].Radius+3*cfg.BallRadius {
			return false
		}
	}
	for _, b := range balls {
		if b.Pocketed {
			continue
		}
		if b.Position.DistanceTo(p) < 4*cfg.BallRadius {
			return false
		}
		// Keep clear of the slot a pocketed cue would respawn into.
		if b.Start.DistanceTo(p) < 4*cfg.BallRadius {
			return false
		}
	}
	return true
}
