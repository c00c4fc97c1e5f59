package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"
)

// SetupParams are the external knobs for creating a match.
type SetupParams struct {
	PlayerCount   int `json:"player_count"`
	ObstacleCount int `json:"obstacle_count"`
	CueBallCount  int `json:"cue_ball_count"`
}

// Validate checks the setup ranges.
func (p SetupParams) Validate() error {
	if p.PlayerCount < 1 || p.PlayerCount > 4 {
		return errors.New("player count must be 1-4")
	}
	if p.ObstacleCount < 0 || p.ObstacleCount > 5 {
		return errors.New("obstacle count must be 0-5")
	}
	if p.CueBallCount < 1 || p.CueBallCount > 3 {
		return errors.New("cue ball count must be 1-3")
	}
	return nil
}

// Match owns one game's complete state: the ball arena, the per-seat
// moves, the CPU plans, and the round phase. All moving state is
// confined behind the mutex; the frame driver calls Tick and readers
// take snapshots, so the renderer never sees torn state mid-update.
type Match struct {
	ID    string
	Token string

	cfg    *SimConfig
	table  *Table
	params SetupParams

	balls       []*Ball
	moves       map[int]*PlayerMove
	plans       map[int]ShotPlan // cue ball id -> plan
	phase       RoundPhase
	round       int
	totalRounds int
	eliminated  map[int]bool

	stepper *Stepper
	planner *Planner
	rng     *rand.Rand

	CreatedAt    time.Time
	LastActivity time.Time

	mu sync.RWMutex
}

// NewMatch sets up the arena and puts the match into Starting. The
// random source drives obstacle placement and CPU inaccuracy; inject a
// seeded one for reproducible play.
func NewMatch(id, token string, params SetupParams, cfg *SimConfig, rng *rand.Rand) (*Match, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = DefaultSimConfig()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	table := NewTable(cfg)
	m := &Match{
		ID:           id,
		Token:        token,
		cfg:          cfg,
		table:        table,
		params:       params,
		balls:        GenerateLayout(cfg, table, params.PlayerCount, params.ObstacleCount, params.CueBallCount, rng),
		moves:        make(map[int]*PlayerMove),
		plans:        make(map[int]ShotPlan),
		phase:        RoundPhase{Kind: PhaseStarting},
		round:        1,
		totalRounds:  RoundsToWin(params.PlayerCount),
		eliminated:   make(map[int]bool),
		rng:          rng,
		CreatedAt:    time.Now(),
		LastActivity: time.Now(),
	}
	m.stepper = NewStepper(cfg, table, rng)
	m.planner = NewPlanner(cfg, table, rng)

	log.Printf("[MATCH] %s created: players=%d obstacles=%d cues=%d rounds=%d",
		id, params.PlayerCount, params.ObstacleCount, params.CueBallCount, m.totalRounds)
	return m, nil
}

// Tick advances the match by dt seconds of simulated time. The caller
// is the single frame driver; phase timers are deadlines decremented
// here, so stopping the driver deterministically stops them too.
func (m *Match) Tick(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase.Kind {
	case PhaseStarting:
		m.enterCountdown()

	case PhaseCountdown:
		remaining := m.phase.Remaining - dt
		if remaining <= 0 {
			m.beginExecution()
		} else {
			m.phase = RoundPhase{Kind: PhaseCountdown, Remaining: remaining}
		}

	case PhaseExecuting:
		m.stepper.Step(m.balls, dt)
		if m.stepper.AllSettled(m.balls) {
			m.evaluateRound()
		}

	case PhaseRoundResult:
		remaining := m.phase.Remaining - dt
		if remaining <= 0 {
			m.advanceRound()
		} else {
			m.phase = RoundPhase{Kind: PhaseRoundResult, Remaining: remaining, Message: m.phase.Message}
		}

	case PhaseGameOver:
		// Terminal; nothing advances.
	}
}

// enterCountdown resets moves, freezes the arena, recovers any
// scratched cue balls, and plans the CPU's shots for this round.
// Callers hold the lock.
func (m *Match) enterCountdown() {
	// The CPU plans against the moves held in the round just played;
	// the reset below only opens intake for the new round.
	prior := m.moves

	m.moves = make(map[int]*PlayerMove)
	for seat := 0; seat < m.params.PlayerCount; seat++ {
		if !m.eliminated[seat] {
			m.moves[seat] = &PlayerMove{}
		}
	}

	for _, b := range m.balls {
		if b.Pocketed {
			if b.Role == RoleCue {
				// Scratch recovery: only cue balls come back.
				b.Pocketed = false
				b.Position = b.Start
			}
			continue
		}
		b.Velocity = Vec2{}
	}

	targets := m.candidateTargets()
	for _, b := range m.balls {
		if b.Role != RoleCue {
			continue
		}
		m.plans[b.ID] = m.planner.PlanShot(m.round, b.Position, targets, prior)
	}

	m.phase = RoundPhase{Kind: PhaseCountdown, Remaining: m.cfg.CountdownSeconds}
	log.Printf("[MATCH] %s round %d/%d: countdown", m.ID, m.round, m.totalRounds)
}

// beginExecution converts the CPU plans and every nonzero-force player
// move into launch velocities. Callers hold the lock.
func (m *Match) beginExecution() {
	for _, b := range m.balls {
		switch b.Role {
		case RoleCue:
			if plan, ok := m.plans[b.ID]; ok && !b.Pocketed {
				b.Velocity = FromAngle(plan.Angle, plan.Power*m.cfg.MaxForce)
			}
		case RolePlayer:
			if b.Pocketed || b.Eliminated {
				continue
			}
			if move, ok := m.moves[b.Seat]; ok && move.Force > 0 {
				// Player shots strike softer than the CPU's.
				b.Velocity = FromAngle(move.Angle, move.Force*PlayerForceScale*m.cfg.MaxForce)
			}
		}
	}
	m.phase = RoundPhase{Kind: PhaseExecuting}
}

// evaluateRound builds the result banner from what the physics pocketed
// this round and records newly eliminated seats. Callers hold the lock.
func (m *Match) evaluateRound() {
	var newlyPocketed []int
	cuePocketed := false

	for _, b := range m.balls {
		switch b.Role {
		case RoleCue:
			if b.Pocketed {
				cuePocketed = true
			}
		case RolePlayer:
			if b.Pocketed && !m.eliminated[b.Seat] {
				newlyPocketed = append(newlyPocketed, b.Seat)
			}
		}
	}

	for _, seat := range newlyPocketed {
		m.eliminated[seat] = true
	}

	var msg string
	switch {
	case len(newlyPocketed) == 1:
		msg = SeatLabel(newlyPocketed[0]) + " POCKETED!"
	case len(newlyPocketed) > 1:
		msg = fmt.Sprintf("%d PLAYERS POCKETED!", len(newlyPocketed))
	case cuePocketed:
		msg = "SCRATCH!"
	default:
		msg = "SAFE!"
	}

	m.phase = RoundPhase{Kind: PhaseRoundResult, Remaining: m.cfg.ResultSeconds, Message: msg}
	m.LastActivity = time.Now()
	log.Printf("[MATCH] %s round %d result: %s (eliminated=%d/%d)",
		m.ID, m.round, msg, len(m.eliminated), m.params.PlayerCount)
}

// advanceRound decides what follows a round result. Callers hold the lock.
func (m *Match) advanceRound() {
	if len(m.eliminated) >= m.params.PlayerCount {
		m.phase = RoundPhase{Kind: PhaseGameOver, Won: false}
		log.Printf("[MATCH] %s over: all players eliminated", m.ID)
		return
	}
	if m.round >= m.totalRounds {
		m.phase = RoundPhase{Kind: PhaseGameOver, Won: true}
		log.Printf("[MATCH] %s over: players survived %d rounds", m.ID, m.totalRounds)
		return
	}
	m.round++
	m.enterCountdown()
}

// SetPlayerMove records a seat's escape vector. Accepted only during
// the aiming countdown; anything else is a silent no-op, not an error.
func (m *Match) SetPlayerMove(seat int, angle, force float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase.Kind != PhaseCountdown {
		return
	}
	move, ok := m.moves[seat]
	if !ok || m.eliminated[seat] {
		return
	}
	if move.Locked {
		return
	}
	move.Angle = angle
	move.Force = clamp(force, 0, 1)
	m.LastActivity = time.Now()
}

// LockPlayerMove finalizes a seat's move for UI display. No physical
// effect.
func (m *Match) LockPlayerMove(seat int) {
	m.setMoveLocked(seat, true)
}

// UnlockPlayerMove reopens a seat's move during the countdown.
func (m *Match) UnlockPlayerMove(seat int) {
	m.setMoveLocked(seat, false)
}

func (m *Match) setMoveLocked(seat int, locked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase.Kind != PhaseCountdown {
		return
	}
	if move, ok := m.moves[seat]; ok && !m.eliminated[seat] {
		move.Locked = locked
	}
}

// candidateTargets returns surviving player balls — the only balls the
// CPU aims at. Callers hold the lock.
func (m *Match) candidateTargets() []*Ball {
	var out []*Ball
	for _, b := range m.balls {
		if b.Role == RolePlayer && !b.Pocketed && !b.Eliminated {
			out = append(out, b)
		}
	}
	return out
}

// Phase returns the current round phase.
func (m *Match) Phase() RoundPhase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Round returns the current round number and the total to survive.
func (m *Match) Round() (current, total int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.round, m.totalRounds
}

// EliminatedSeats returns the seats knocked out so far.
func (m *Match) EliminatedSeats() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]int, 0, len(m.eliminated))
	for seat := range m.eliminated {
		out = append(out, seat)
	}
	return out
}

// Balls returns a copy of the current ball states for rendering.
func (m *Match) Balls() []Ball {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Ball, len(m.balls))
	for i, b := range m.balls {
		out[i] = *b
	}
	return out
}

// Plans returns the CPU's current shot plans keyed by cue ball id.
func (m *Match) Plans() map[int]ShotPlan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]ShotPlan, len(m.plans))
	for id, p := range m.plans {
		out[id] = p
	}
	return out
}

// Moves returns a copy of the per-seat moves for UI display.
func (m *Match) Moves() map[int]PlayerMove {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]PlayerMove, len(m.moves))
	for seat, mv := range m.moves {
		out[seat] = *mv
	}
	return out
}

// AimPreviews returns the predicted path for each cue ball's planned
// shot, for the renderer's dashed preview line.
func (m *Match) AimPreviews(maxPoints, maxBounces int) map[int][]Vec2 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int][]Vec2)
	for _, b := range m.balls {
		if b.Role != RoleCue || b.Pocketed {
			continue
		}
		plan, ok := m.plans[b.ID]
		if !ok {
			continue
		}
		out[b.ID] = PredictPath(m.cfg, m.table, b.Position, plan.Angle, plan.Power, maxPoints, maxBounces)
	}
	return out
}

// IdleSince returns the last time anything meaningful happened.
func (m *Match) IdleSince() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastActivity
}

// Over reports whether the match reached its terminal phase.
func (m *Match) Over() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase.Kind == PhaseGameOver
}

// Snapshot returns the full render-facing state as a JSON-ready map.
func (m *Match) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	balls := make([]Ball, len(m.balls))
	for i, b := range m.balls {
		balls[i] = *b
	}
	eliminated := make([]int, 0, len(m.eliminated))
	for seat := range m.eliminated {
		eliminated = append(eliminated, seat)
	}

	return map[string]interface{}{
		"match_id":     m.ID,
		"token":        m.Token,
		"phase":        m.phase,
		"round":        m.round,
		"total_rounds": m.totalRounds,
		"balls":        balls,
		"eliminated":   eliminated,
		"table":        m.table,
		"params":       m.params,
	}
}
