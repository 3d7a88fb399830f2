package game

import (
	"math"
	"math/rand"
)

// Landing records a ball settling into a bucket during a step.
type Landing struct {
	BallID int `json:"ball_id"`
	Bucket int `json:"bucket"`
	Count  int `json:"count"`
	Tick   int `json:"tick"`
}

// PhysicsEngine advances falling balls against a fixed board.
type PhysicsEngine struct {
	Board *Board
	rng   *rand.Rand
}

// NewPhysicsEngine creates a physics engine for a board. rng drives the peg coin flip.
func NewPhysicsEngine(board *Board, rng *rand.Rand) *PhysicsEngine {
	return &PhysicsEngine{
		Board: board,
		rng:   rng,
	}
}

// Step runs one unit-timestep frame over every unsettled ball in order and returns
// the landings it produced.
func (pe *PhysicsEngine) Step(balls []*Ball, speed float64) []Landing {
	var landings []Landing
	for _, ball := range balls {
		if ball.Settled {
			continue
		}

		pe.integrate(ball, speed)
		pe.reflectWalls(ball)
		pe.resolvePegs(ball, speed)

		if l, ok := pe.checkLanding(ball); ok {
			landings = append(landings, l)
		}
	}
	return landings
}

// integrate applies semi-implicit Euler: velocity first, then position.
func (pe *PhysicsEngine) integrate(ball *Ball, speed float64) {
	ball.Velocity.Y += Gravity * speed
	ball.Position = ball.Position.Plus(ball.Velocity)
}

func (pe *PhysicsEngine) reflectWalls(ball *Ball) {
	width := pe.Board.Width
	if ball.Position.X-ball.Radius < 0 {
		ball.Position.X = ball.Radius
		ball.Velocity.X *= WallRestitution
	} else if ball.Position.X+ball.Radius > width {
		ball.Position.X = width - ball.Radius
		ball.Velocity.X *= WallRestitution
	}
}

// resolvePegs applies every overlapping peg in lattice order. A later peg may undo
// the correction of an earlier one within the same frame.
func (pe *PhysicsEngine) resolvePegs(ball *Ball, speed float64) {
	for i := range pe.Board.Pegs {
		peg := &pe.Board.Pegs[i]
		cutoff := ball.Radius + peg.Radius + CollisionMargin

		// Proximity check
		dy := ball.Position.Y - peg.Position.Y
		if math.Abs(dy) > cutoff {
			continue
		}
		dx := ball.Position.X - peg.Position.X
		if math.Abs(dx) > cutoff {
			continue
		}

		pe.resolvePeg(ball, peg, NewVec2(dx, dy), speed)
	}
}

// resolvePeg handles the narrow phase for one peg and reports whether they touched.
func (pe *PhysicsEngine) resolvePeg(ball *Ball, peg *Peg, delta Vec2, speed float64) bool {
	distance := delta.Magnitude()
	minDist := ball.Radius + peg.Radius
	if distance >= minDist {
		return false
	}

	// A ball centered exactly on a peg has no normal; push it straight up.
	n := delta.Normalize()
	if n.IsZero() {
		n = NewVec2(0, -1)
	}

	// Positional correction out of the peg
	ball.Position = ball.Position.Plus(n.Times(minDist - distance))

	// Remove the normal component, slightly over-elastic
	dot := ball.Velocity.Dot(n)
	ball.Velocity = ball.Velocity.Minus(n.Times(NormalBounce * dot))

	// Fair coin flip left or right
	if pe.rng.Float64() < 0.5 {
		ball.Velocity.X += PegKick * speed
	} else {
		ball.Velocity.X -= PegKick * speed
	}

	ball.Velocity.X *= PegDampingX
	ball.Velocity.Y *= PegDampingY
	return true
}

// checkLanding settles a ball once it drops past the landing line inside a valid slot.
// Balls that map outside the bucket range keep falling.
func (pe *PhysicsEngine) checkLanding(ball *Ball) (Landing, bool) {
	line, ok := pe.Board.LandingLine()
	if !ok || ball.Settled || ball.Position.Y <= line {
		return Landing{}, false
	}

	idx := pe.Board.BucketIndexAt(ball.Position.X)
	if idx < 0 || idx >= len(pe.Board.Buckets) {
		return Landing{}, false
	}

	ball.settle(idx)
	count := pe.Board.Increment(idx)
	return Landing{BallID: ball.ID, Bucket: idx, Count: count}, true
}
