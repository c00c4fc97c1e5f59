package game

import (
	"math"
	"math/rand"
	"testing"
)

const testDt = 1.0 / 60

// newTestMatch builds a match with short timers and a seeded source so
// scenarios finish in a handful of simulated seconds.
func newTestMatch(t *testing.T, params SetupParams) *Match {
	t.Helper()
	cfg := DefaultSimConfig()
	cfg.CountdownSeconds = 0.1
	cfg.ResultSeconds = 0.1

	m, err := NewMatch("match_test", "token_test", params, cfg, rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return m
}

// tickUntil advances the match until the phase kind matches or the
// budget runs out.
func tickUntil(t *testing.T, m *Match, kind PhaseKind, maxTicks int) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if m.Phase().Kind == kind {
			return
		}
		m.Tick(testDt)
	}
	t.Fatalf("phase never reached %s (stuck at %s)", kind, m.Phase().Kind)
}

func (m *Match) cueBall() *Ball {
	for _, b := range m.balls {
		if b.Role == RoleCue {
			return b
		}
	}
	return nil
}

func (m *Match) playerBallFor(seat int) *Ball {
	for _, b := range m.balls {
		if b.Role == RolePlayer && b.Seat == seat {
			return b
		}
	}
	return nil
}

// aimCueAway replaces the CPU plan with a soft shot pointed at empty
// table, so the round cannot pocket anyone.
func (m *Match) aimCueAway() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.balls {
		if b.Role == RoleCue {
			m.plans[b.ID] = ShotPlan{Angle: math.Pi, Power: 0.15, TargetID: NoTarget}
		}
	}
}

func TestSetupParamsValidation(t *testing.T) {
	bad := []SetupParams{
		{PlayerCount: 0, CueBallCount: 1},
		{PlayerCount: 5, CueBallCount: 1},
		{PlayerCount: 1, ObstacleCount: 6, CueBallCount: 1},
		{PlayerCount: 1, CueBallCount: 0},
		{PlayerCount: 1, CueBallCount: 4},
	}
	for _, p := range bad {
		if _, err := NewMatch("id", "tok", p, nil, nil); err == nil {
			t.Errorf("params %+v should be rejected", p)
		}
	}
}

func TestRoundsToWinByPlayerCount(t *testing.T) {
	cases := map[int]int{1: 8, 2: 10, 3: 12, 4: 15}
	for players, want := range cases {
		if got := RoundsToWin(players); got != want {
			t.Errorf("RoundsToWin(%d) = %d, want %d", players, got, want)
		}
	}
}

func TestStartingEntersCountdownWithPlans(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 2, ObstacleCount: 2, CueBallCount: 1})

	m.Tick(testDt)

	phase := m.Phase()
	if phase.Kind != PhaseCountdown {
		t.Fatalf("expected countdown after first tick, got %s", phase.Kind)
	}
	if phase.Remaining <= 0 {
		t.Error("countdown phase must carry remaining time")
	}
	if len(m.Plans()) != 1 {
		t.Errorf("expected one CPU plan per cue ball, got %d", len(m.Plans()))
	}
}

func TestSafeRoundIncrementsAndReturnsToCountdown(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})

	m.Tick(testDt) // Starting -> Countdown
	m.aimCueAway()
	tickUntil(t, m, PhaseExecuting, 100)
	tickUntil(t, m, PhaseRoundResult, 5000)

	if msg := m.Phase().Message; msg != "SAFE!" {
		t.Errorf("result message = %q, want SAFE!", msg)
	}

	tickUntil(t, m, PhaseCountdown, 100)
	if round, _ := m.Round(); round != 2 {
		t.Errorf("round = %d after a safe round, want 2", round)
	}
}

func TestPlayerMoveOnlyDuringCountdown(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})

	// Starting phase: silently ignored.
	m.SetPlayerMove(0, 1.0, 0.5)
	if mv := m.Moves()[0]; mv.Force != 0 {
		t.Error("move accepted outside countdown")
	}

	m.Tick(testDt) // -> Countdown
	m.SetPlayerMove(0, 1.0, 0.5)
	if mv := m.Moves()[0]; mv.Force != 0.5 || mv.Angle != 1.0 {
		t.Errorf("move not recorded during countdown: %+v", mv)
	}

	// Locked moves cannot change until unlocked.
	m.LockPlayerMove(0)
	m.SetPlayerMove(0, 2.0, 0.9)
	if mv := m.Moves()[0]; mv.Angle != 1.0 {
		t.Error("locked move was overwritten")
	}
	m.UnlockPlayerMove(0)
	m.SetPlayerMove(0, 2.0, 0.9)
	if mv := m.Moves()[0]; mv.Angle != 2.0 {
		t.Error("unlocked move should accept updates again")
	}

	// Force is clamped to [0, 1].
	m.SetPlayerMove(0, 0, 4.0)
	if mv := m.Moves()[0]; mv.Force != 1.0 {
		t.Errorf("force not clamped: %.2f", mv.Force)
	}
}

func TestPlayerMoveLaunchesBallAtReducedForce(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})

	m.Tick(testDt)
	m.aimCueAway()
	m.SetPlayerMove(0, math.Pi/2, 1.0)
	tickUntil(t, m, PhaseExecuting, 100)

	pb := m.playerBallFor(0)
	want := PlayerForceScale * DefaultSimConfig().MaxForce
	got := pb.Speed()
	if got > want*1.01 || got < want*0.9 {
		t.Errorf("player launch speed %.1f, want about %.1f (reduced multiplier)", got, want)
	}
}

func TestEliminationScenario(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 2, ObstacleCount: 0, CueBallCount: 1})

	m.Tick(testDt)
	m.aimCueAway()
	tickUntil(t, m, PhaseExecuting, 100)

	// Script seat 0's ball straight into the nearest pocket.
	pb := m.playerBallFor(0)
	m.mu.Lock()
	pk, _ := m.table.NearestPocket(pb.Position)
	pb.Velocity = pk.Position.Minus(pb.Position).Normalize().Times(0.8 * m.cfg.MaxForce)
	m.mu.Unlock()

	tickUntil(t, m, PhaseRoundResult, 5000)

	if msg := m.Phase().Message; msg != "PLAYER 1 POCKETED!" {
		t.Errorf("result message = %q, want PLAYER 1 POCKETED!", msg)
	}

	eliminated := m.EliminatedSeats()
	if len(eliminated) != 1 || eliminated[0] != 0 {
		t.Fatalf("eliminated = %v, want exactly [0]", eliminated)
	}

	// Next round: the CPU may no longer target the eliminated seat.
	tickUntil(t, m, PhaseCountdown, 100)
	m.mu.RLock()
	targets := m.candidateTargets()
	m.mu.RUnlock()
	for _, b := range targets {
		if b.Seat == 0 {
			t.Error("eliminated seat still offered as a CPU target")
		}
	}
	if len(targets) != 1 {
		t.Errorf("expected 1 surviving target, got %d", len(targets))
	}
}

func TestAllEliminatedIsGameOverLost(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})

	m.Tick(testDt)
	m.aimCueAway()
	tickUntil(t, m, PhaseExecuting, 100)

	pb := m.playerBallFor(0)
	m.mu.Lock()
	pk, _ := m.table.NearestPocket(pb.Position)
	pb.Velocity = pk.Position.Minus(pb.Position).Normalize().Times(0.8 * m.cfg.MaxForce)
	m.mu.Unlock()

	tickUntil(t, m, PhaseRoundResult, 5000)
	tickUntil(t, m, PhaseGameOver, 100)

	if phase := m.Phase(); phase.Won {
		t.Error("all players eliminated must be a lost game")
	}
	if !m.Over() {
		t.Error("Over() must report the terminal phase")
	}

	// GameOver is terminal: ticking further changes nothing.
	m.Tick(testDt)
	if m.Phase().Kind != PhaseGameOver {
		t.Error("match advanced past GameOver")
	}
}

func TestSurvivingFinalRoundIsGameOverWon(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})
	m.mu.Lock()
	m.totalRounds = 1
	m.mu.Unlock()

	m.Tick(testDt)
	m.aimCueAway()
	tickUntil(t, m, PhaseExecuting, 100)
	tickUntil(t, m, PhaseRoundResult, 5000)
	tickUntil(t, m, PhaseGameOver, 100)

	if phase := m.Phase(); !phase.Won {
		t.Error("surviving the final round must be a won game")
	}
}

func TestScratchRecovery(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})

	m.Tick(testDt)
	m.aimCueAway()
	tickUntil(t, m, PhaseExecuting, 100)

	// Script the cue ball into a pocket instead of letting it roll out.
	cue := m.cueBall()
	m.mu.Lock()
	pk, _ := m.table.NearestPocket(cue.Position)
	cue.Velocity = pk.Position.Minus(cue.Position).Normalize().Times(0.8 * m.cfg.MaxForce)
	m.mu.Unlock()

	tickUntil(t, m, PhaseRoundResult, 5000)
	if msg := m.Phase().Message; msg != "SCRATCH!" {
		t.Errorf("result message = %q, want SCRATCH!", msg)
	}

	tickUntil(t, m, PhaseCountdown, 100)
	if cue.Pocketed {
		t.Error("cue ball must respawn for the next round")
	}
	if cue.Position != cue.Start {
		t.Errorf("cue respawned at (%.1f, %.1f), want its starting slot (%.1f, %.1f)",
			cue.Position.X, cue.Position.Y, cue.Start.X, cue.Start.Y)
	}
}

func TestMovesResetEachRound(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})

	m.Tick(testDt)
	m.SetPlayerMove(0, 1.2, 0.8)
	m.LockPlayerMove(0)
	m.aimCueAway()
	tickUntil(t, m, PhaseExecuting, 100)
	tickUntil(t, m, PhaseRoundResult, 5000)
	tickUntil(t, m, PhaseCountdown, 100)

	if mv := m.Moves()[0]; mv.Force != 0 || mv.Locked {
		t.Errorf("move not reset entering the new countdown: %+v", mv)
	}
}

func TestNextRoundPlanSeesHeldMoves(t *testing.T) {
	// The expert planner leads targets by their held escape vectors, so
	// the plan computed entering a round must see the moves from the
	// round just played, not the fresh intake map.
	plan := func(withMove bool) ShotPlan {
		m := newTestMatch(t, SetupParams{PlayerCount: 1, ObstacleCount: 0, CueBallCount: 1})
		m.mu.Lock()
		m.round = 10
		m.totalRounds = 20
		m.phase = RoundPhase{Kind: PhaseRoundResult, Remaining: 0.01, Message: "SAFE!"}
		if withMove {
			m.moves[0] = &PlayerMove{Angle: math.Pi / 2, Force: 1.0, Locked: true}
		}
		m.mu.Unlock()

		tickUntil(t, m, PhaseCountdown, 100)

		if round, _ := m.Round(); round != 11 {
			t.Fatalf("round = %d, want 11", round)
		}
		for _, p := range m.Plans() {
			return p
		}
		t.Fatal("no plan produced entering the countdown")
		return ShotPlan{}
	}

	still := plan(false)
	held := plan(true)

	// Same seed means identical noise draws; a full-force escape held
	// through the previous round must shift the expert aim.
	if still.Angle == held.Angle {
		t.Error("round-11 plan ignored the move held through round 10")
	}
}

func TestMultiplePlayersPocketedMessage(t *testing.T) {
	m := newTestMatch(t, SetupParams{PlayerCount: 3, ObstacleCount: 0, CueBallCount: 1})

	m.Tick(testDt)
	m.aimCueAway()
	tickUntil(t, m, PhaseExecuting, 100)

	m.mu.Lock()
	for _, seat := range []int{0, 1} {
		pb := m.playerBallFor(seat)
		pk, _ := m.table.NearestPocket(pb.Position)
		pb.Velocity = pk.Position.Minus(pb.Position).Normalize().Times(0.8 * m.cfg.MaxForce)
	}
	m.mu.Unlock()

	tickUntil(t, m, PhaseRoundResult, 5000)

	if msg := m.Phase().Message; msg != "2 PLAYERS POCKETED!" {
		t.Errorf("result message = %q, want 2 PLAYERS POCKETED!", msg)
	}
}

func TestObstaclePlacementAvoidsPocketsAndBalls(t *testing.T) {
	cfg := DefaultSimConfig()
	table := NewTable(cfg)
	rng := rand.New(rand.NewSource(13))

	balls := GenerateLayout(cfg, table, 4, 5, 3, rng)

	for _, b := range balls {
		if b.Role != RoleObstacle {
			continue
		}
		for i := range table.Pockets {
			if d := table.Pockets[i].Position.DistanceTo(b.Position); d < table.Pockets[i].Radius {
				t.Errorf("obstacle %d inside pocket %d (dist %.1f)", b.ID, i, d)
			}
		}
		for _, other := range balls {
			if other.ID == b.ID || other.ID > b.ID {
				continue
			}
			if d := other.Position.DistanceTo(b.Position); d < 2*cfg.BallRadius {
				t.Errorf("obstacle %d overlaps ball %d (dist %.1f)", b.ID, other.ID, d)
			}
		}
	}
}
