package game

import (
	"math"
	"math/rand"
)

// ShotPlan is the CPU's decision for one cue ball for the current round.
type ShotPlan struct {
	Angle    float64 `json:"angle"`
	Power    float64 `json:"power"` // 0-1
	TargetID int     `json:"target_id"`
}

// NoTarget marks a plan that is not aimed at a specific ball.
const NoTarget = -1

// Planner is the CPU opponent's shot selection. The random source is an
// explicit dependency so the inaccuracy noise is reproducible in tests.
type Planner struct {
	cfg   *SimConfig
	table *Table
	rng   *rand.Rand
}

func NewPlanner(cfg *SimConfig, table *Table, rng *rand.Rand) *Planner {
	return &Planner{cfg: cfg, table: table, rng: rng}
}

// PlanShot picks a shot for a cue ball at cuePos against the surviving
// player balls. Moves are the players' currently-set escape vectors;
// only the expert tier looks at them. The tier is derived from the
// round number.
func (p *Planner) PlanShot(round int, cuePos Vec2, targets []*Ball, moves map[int]*PlayerMove) ShotPlan {
	d := DifficultyForRound(round)

	if len(targets) == 0 {
		return ShotPlan{
			Angle:    p.rng.Float64() * 2 * math.Pi,
			Power:    p.randPower(d),
			TargetID: NoTarget,
		}
	}

	var plan ShotPlan
	switch d.Tier {
	case TierEasy:
		plan = p.planEasy(d, cuePos, targets)
	case TierMedium:
		plan = p.planMedium(d, cuePos, targets)
	case TierHard:
		plan = p.planHard(d, cuePos, targets)
	case TierExpert:
		plan = p.planExpert(d, cuePos, targets, moves)
	}

	// Tier accuracy is a post-hoc angular noise term, applied last for
	// every tier.
	plan.Angle += (p.rng.Float64()*2 - 1) * d.MaxError()
	return plan
}

// planEasy aims straight at a random target with a random power.
func (p *Planner) planEasy(d CPUDifficulty, cuePos Vec2, targets []*Ball) ShotPlan {
	t := targets[p.rng.Intn(len(targets))]
	return ShotPlan{
		Angle:    t.Position.Minus(cuePos).Angle(),
		Power:    p.randPower(d),
		TargetID: t.ID,
	}
}

// planMedium picks the target closest to any pocket and aims through
// the ghost-ball point for that pocket.
func (p *Planner) planMedium(d CPUDifficulty, cuePos Vec2, targets []*Ball) ShotPlan {
	var best *Ball
	var bestPocket *Pocket
	bestDist := 0.0
	for _, t := range targets {
		pk, dist := p.table.NearestPocket(t.Position)
		if best == nil || dist < bestDist {
			best, bestPocket, bestDist = t, pk, dist
		}
	}

	ghost := ghostBallPoint(best.Position, bestPocket.Position, p.cfg.BallRadius)
	return ShotPlan{
		Angle:    ghost.Minus(cuePos).Angle(),
		Power:    p.powerForDistance(d, cuePos.DistanceTo(best.Position)),
		TargetID: best.ID,
	}
}

// planHard exhaustively scores every (target, pocket) pair and shoots
// the ghost-ball line of the best one.
func (p *Planner) planHard(d CPUDifficulty, cuePos Vec2, targets []*Ball) ShotPlan {
	bestScore := math.Inf(-1)
	var plan ShotPlan

	for _, t := range targets {
		pk, score := p.bestPocketFor(cuePos, t.Position)
		if score <= bestScore {
			continue
		}
		bestScore = score
		ghost := ghostBallPoint(t.Position, pk.Position, p.cfg.BallRadius)
		plan = ShotPlan{
			Angle:    ghost.Minus(cuePos).Angle(),
			Power:    p.powerForDistance(d, cuePos.DistanceTo(t.Position)+t.Position.DistanceTo(pk.Position)),
			TargetID: t.ID,
		}
	}
	return plan
}

// planExpert extrapolates each target by its pending escape vector and
// weighs a simplified bank-shot candidate against the direct shot.
func (p *Planner) planExpert(d CPUDifficulty, cuePos Vec2, targets []*Ball, moves map[int]*PlayerMove) ShotPlan {
	bestScore := math.Inf(-1)
	var plan ShotPlan

	for _, t := range targets {
		pos := p.lookAhead(t, moves)

		pk, directScore := p.bestPocketFor(cuePos, pos)
		ghost := ghostBallPoint(pos, pk.Position, p.cfg.BallRadius)
		direct := ShotPlan{
			Angle:    ghost.Minus(cuePos).Angle(),
			Power:    p.powerForDistance(d, cuePos.DistanceTo(pos)+pos.DistanceTo(pk.Position)),
			TargetID: t.ID,
		}
		if directScore > bestScore {
			bestScore = directScore
			plan = direct
		}

		// Bank candidate: only for rail-adjacent targets, scored below
		// the direct shot at the same position and further discounted
		// when choosing, so a good direct shot always wins.
		if p.table.RailDistance(pos) > BankRailProximityRadii*p.cfg.BallRadius {
			continue
		}
		bankScore := BankScoreFactor * directScore
		if bankScore*BankChoiceWeight <= bestScore {
			continue
		}
		bestScore = bankScore * BankChoiceWeight
		mirrored := p.mirrorAcrossNearestRail(ghost)
		dist := BankDistanceFactor * (cuePos.DistanceTo(pos) + pos.DistanceTo(pk.Position))
		plan = ShotPlan{
			Angle:    mirrored.Minus(cuePos).Angle(),
			Power:    p.powerForDistance(d, dist),
			TargetID: t.ID,
		}
	}
	return plan
}

// lookAhead predicts where a target will be if its owner's currently-set
// move fires: half the move's implied velocity as a one-step look-ahead.
func (p *Planner) lookAhead(t *Ball, moves map[int]*PlayerMove) Vec2 {
	m, ok := moves[t.Seat]
	if !ok || m == nil || m.Force <= 0 {
		return t.Position
	}
	implied := FromAngle(m.Angle, m.Force*PlayerForceScale*p.cfg.MaxForce)
	pos := t.Position.Plus(implied.Times(LookAheadScale))
	// An escaping ball still ends up somewhere on the table.
	pos.X = clamp(pos.X, p.cfg.BallRadius, p.cfg.TableWidth-p.cfg.BallRadius)
	pos.Y = clamp(pos.Y, p.cfg.BallRadius, p.cfg.TableHeight-p.cfg.BallRadius)
	return pos
}

// bestPocketFor returns the highest-scoring pocket for sinking a ball at
// targetPos from cuePos, with the score itself.
//
// score = 0.4*(1 - normalized total distance) + 0.6*max(0, 1 - cut/(π/2))
// where cut is the angle between the cue->target line and the
// target->pocket line; straighter shots score higher.
func (p *Planner) bestPocketFor(cuePos, targetPos Vec2) (*Pocket, float64) {
	diag := math.Hypot(p.cfg.TableWidth, p.cfg.TableHeight)
	toTarget := targetPos.Minus(cuePos)

	var best *Pocket
	bestScore := math.Inf(-1)
	for i := range p.table.Pockets {
		pk := &p.table.Pockets[i]
		toPocket := pk.Position.Minus(targetPos)

		total := toTarget.Magnitude() + toPocket.Magnitude()
		distScore := 1 - clamp(total/diag, 0, 1)

		cut := angleBetween(toTarget, toPocket)
		cutScore := math.Max(0, 1-cut/(math.Pi/2))

		score := 0.4*distScore + 0.6*cutScore
		if score > bestScore {
			best, bestScore = pk, score
		}
	}
	return best, bestScore
}

// powerForDistance scales power with shot distance, normalized against a
// nominal shot of half the table diagonal, then clamps to the tier.
func (p *Planner) powerForDistance(d CPUDifficulty, dist float64) float64 {
	nominal := math.Hypot(p.cfg.TableWidth, p.cfg.TableHeight) / 2
	base := clamp(dist/nominal, 0.3, 1.0)
	return clamp(0.3+0.6*base, d.MinPower, d.MaxPower)
}

func (p *Planner) randPower(d CPUDifficulty) float64 {
	return d.MinPower + p.rng.Float64()*(d.MaxPower-d.MinPower)
}

// mirrorAcrossNearestRail reflects a point across whichever rail is
// closest, giving the aim point for the simplified bank shot.
func (p *Planner) mirrorAcrossNearestRail(pt Vec2) Vec2 {
	w, h := p.cfg.TableWidth, p.cfg.TableHeight

	dLeft, dRight := pt.X, w-pt.X
	dTop, dBottom := pt.Y, h-pt.Y

	min := dLeft
	mirrored := NewVec2(-pt.X, pt.Y)
	if dRight < min {
		min = dRight
		mirrored = NewVec2(2*w-pt.X, pt.Y)
	}
	if dTop < min {
		min = dTop
		mirrored = NewVec2(pt.X, -pt.Y)
	}
	if dBottom < min {
		mirrored = NewVec2(pt.X, 2*h-pt.Y)
	}
	return mirrored
}
