package game

// Trajectory prediction: a simplified forward simulation of a single
// ball, used to render the dashed aim-preview line and to score CPU
// shots. Other balls are ignored, so in a crowded arena the predicted
// path can diverge from the real outcome; that divergence is an
// accepted simplification of the preview, not a bug.

const (
	// Fixed march increment, in seconds of simulated time per point.
	predictStepDt = 1.0 / 60.0

	// Mild constant decay per step; the preview does not need the full
	// exponential friction model.
	predictDecay = 0.99

	// March stops once the ball is effectively stationary.
	predictStopSpeed = 2.0
)

// PredictPath marches a single ball from start along angle at the given
// power (0-1), bouncing off rails, and returns the ordered sequence of
// points it passes through. The march terminates early when the ball
// slows below a threshold, enters a pocket's capture radius, or the
// point/bounce budget is exhausted.
func PredictPath(cfg *SimConfig, table *Table, start Vec2, angle, power float64, maxPoints, maxBounces int) []Vec2 {
	points := make([]Vec2, 0, maxPoints)

	pos := start
	vel := FromAngle(angle, clamp(power, 0, 1)*cfg.MaxForce)
	bounces := 0
	r := cfg.BallRadius

	for len(points) < maxPoints {
		pos = pos.Plus(vel.Times(predictStepDt))

		bounced := false
		if pos.X < r {
			pos.X = r
			vel.X = -vel.X * cfg.RailRestitution
			bounced = true
		} else if pos.X > cfg.TableWidth-r {
			pos.X = cfg.TableWidth - r
			vel.X = -vel.X * cfg.RailRestitution
			bounced = true
		}
		if pos.Y < r {
			pos.Y = r
			vel.Y = -vel.Y * cfg.RailRestitution
			bounced = true
		} else if pos.Y > cfg.TableHeight-r {
			pos.Y = cfg.TableHeight - r
			vel.Y = -vel.Y * cfg.RailRestitution
			bounced = true
		}

		points = append(points, pos)

		if bounced {
			bounces++
			if bounces > maxBounces {
				break
			}
		}

		if table.PocketAt(pos) != nil {
			break
		}

		vel = vel.Times(predictDecay)
		if vel.Magnitude() < predictStopSpeed {
			break
		}
	}

	return points
}
