package game

import (
	"math"
	"math/rand"
	"testing"
)

// Helper to create an engine over a board with a single peg at (500, 300).
func setupSinglePeg(seed int64) (*PhysicsEngine, *Peg) {
	board := &Board{
		Width:   1000,
		Height:  800,
		Pegs:    []Peg{{Position: NewVec2(500, 300), Radius: DefaultPegRadius}},
		Buckets: BuildBuckets(1000, 800, 10),
	}
	return NewPhysicsEngine(board, rand.New(rand.NewSource(seed))), &board.Pegs[0]
}

func newTestBall(x, y, vx, vy float64) *Ball {
	return &Ball{
		Position:    NewVec2(x, y),
		Velocity:    NewVec2(vx, vy),
		Radius:      DefaultBallRadius,
		BucketIndex: -1,
	}
}

func TestGravityIntegration(t *testing.T) {
	engine := NewPhysicsEngine(&Board{Width: 1000, Height: 800}, rand.New(rand.NewSource(1)))
	ball := newTestBall(500, 10, 1, 2)

	engine.Step([]*Ball{ball}, 10)

	// vy += 0.2*10 first, then position moves by the new velocity
	if math.Abs(ball.Velocity.Y-4) > 1e-9 {
		t.Errorf("vy = %.4f, want 4", ball.Velocity.Y)
	}
	if math.Abs(ball.Position.X-501) > 1e-9 || math.Abs(ball.Position.Y-14) > 1e-9 {
		t.Errorf("position = (%.2f, %.2f), want (501, 14)", ball.Position.X, ball.Position.Y)
	}
}

func TestWallReflection(t *testing.T) {
	engine := NewPhysicsEngine(&Board{Width: 1000, Height: 800}, rand.New(rand.NewSource(1)))

	left := newTestBall(5, 100, -10, 0)
	right := newTestBall(995, 100, 10, 0)
	engine.Step([]*Ball{left, right}, 1)

	if left.Position.X != left.Radius {
		t.Errorf("left ball x = %.2f, want clamp to %.2f", left.Position.X, left.Radius)
	}
	if math.Abs(left.Velocity.X-1) > 1e-9 {
		t.Errorf("left ball vx = %.4f, want 1 (heavily damped bounce)", left.Velocity.X)
	}
	if right.Position.X != 1000-right.Radius {
		t.Errorf("right ball x = %.2f, want clamp to %.2f", right.Position.X, 1000-right.Radius)
	}
	if math.Abs(right.Velocity.X+1) > 1e-9 {
		t.Errorf("right ball vx = %.4f, want -1", right.Velocity.X)
	}
}

func TestPegCollisionPushesBallOut(t *testing.T) {
	engine, peg := setupSinglePeg(7)
	ball := newTestBall(503, 292, 0, 5)

	delta := ball.Position.Minus(peg.Position)
	if !engine.resolvePeg(ball, peg, delta, 10) {
		t.Fatal("expected a collision")
	}

	dist := ball.Position.Minus(peg.Position).Magnitude()
	if math.Abs(dist-(ball.Radius+peg.Radius)) > 1e-9 {
		t.Errorf("distance after correction = %.6f, want %.6f", dist, ball.Radius+peg.Radius)
	}
	if ball.Velocity.Y >= 5 {
		t.Errorf("vy should lose its normal component, got %.4f", ball.Velocity.Y)
	}
}

func TestPegMissOutsideRadius(t *testing.T) {
	engine, peg := setupSinglePeg(7)
	ball := newTestBall(500, 300-(DefaultBallRadius+DefaultPegRadius), 0, 5)

	delta := ball.Position.Minus(peg.Position)
	if engine.resolvePeg(ball, peg, delta, 10) {
		t.Fatal("ball exactly touching should not collide")
	}
	if ball.Velocity.Y != 5 {
		t.Errorf("velocity changed without a collision: %.4f", ball.Velocity.Y)
	}
}

func TestDegenerateDistanceDoesNotProduceNaN(t *testing.T) {
	engine, peg := setupSinglePeg(3)
	ball := newTestBall(peg.Position.X, peg.Position.Y, 0, 0)

	if !engine.resolvePeg(ball, peg, Vec2{}, 10) {
		t.Fatal("ball at peg center must collide")
	}
	if !ball.Position.IsFinite() || !ball.Velocity.IsFinite() {
		t.Fatalf("non-finite state: pos=%+v vel=%+v", ball.Position, ball.Velocity)
	}
	if ball.Position.Y >= peg.Position.Y {
		t.Errorf("ball should be pushed up, y=%.4f peg y=%.4f", ball.Position.Y, peg.Position.Y)
	}

	// Same through the full step path.
	ball = newTestBall(peg.Position.X, peg.Position.Y-Gravity*10, 0, 0)
	engine.Step([]*Ball{ball}, 10)
	if !ball.Position.IsFinite() || !ball.Velocity.IsFinite() {
		t.Fatalf("non-finite state after step: pos=%+v vel=%+v", ball.Position, ball.Velocity)
	}
}

func TestPegCoinFlipIsFair(t *testing.T) {
	engine, peg := setupSinglePeg(42)
	right := 0
	const trials = 20000

	for i := 0; i < trials; i++ {
		ball := newTestBall(peg.Position.X, peg.Position.Y-10, 0, 0)
		engine.resolvePeg(ball, peg, ball.Position.Minus(peg.Position), 10)
		if ball.Velocity.X > 0 {
			right++
		}
	}

	ratio := float64(right) / trials
	if ratio < 0.47 || ratio > 0.53 {
		t.Errorf("right-kick ratio = %.3f, want about 0.5", ratio)
	}
}

func TestMultiplePegsAppliedInOrder(t *testing.T) {
	board := &Board{
		Width:  1000,
		Height: 800,
		Pegs: []Peg{
			{Position: NewVec2(495, 300), Radius: DefaultPegRadius},
			{Position: NewVec2(505, 300), Radius: DefaultPegRadius},
		},
	}
	engine := NewPhysicsEngine(board, rand.New(rand.NewSource(5)))
	ball := newTestBall(500, 292, 0, 0)

	engine.resolvePegs(ball, 1)

	if !ball.Position.IsFinite() || !ball.Velocity.IsFinite() {
		t.Fatalf("non-finite state: pos=%+v vel=%+v", ball.Position, ball.Velocity)
	}
	if ball.Position.Y >= 292 {
		t.Errorf("two pegs below should push the ball up, y=%.4f", ball.Position.Y)
	}
}

func TestLandingSettlesBall(t *testing.T) {
	engine, _ := setupSinglePeg(1)
	line, _ := engine.Board.LandingLine()
	ball := newTestBall(150, line+1, 3, 4)
	ball.ID = 9

	l, ok := engine.checkLanding(ball)
	if !ok {
		t.Fatal("expected landing")
	}
	if l.Bucket != 1 || l.BallID != 9 || l.Count != 1 {
		t.Errorf("landing = %+v, want bucket 1 ball 9 count 1", l)
	}
	if !ball.Settled || ball.BucketIndex != 1 || !ball.Velocity.IsZero() {
		t.Errorf("ball not settled correctly: %+v", ball)
	}
	if engine.Board.Buckets[1].Count != 1 {
		t.Errorf("bucket count = %d, want 1", engine.Board.Buckets[1].Count)
	}

	// Settled balls are ignored by later steps.
	before := ball.Position
	engine.Step([]*Ball{ball}, 10)
	if ball.Position != before {
		t.Error("settled ball moved")
	}
}

func TestLandingOutsideRangeKeepsFalling(t *testing.T) {
	engine, _ := setupSinglePeg(1)
	line, _ := engine.Board.LandingLine()

	ball := newTestBall(engine.Board.Width, line+1, 0, 4)
	if _, ok := engine.checkLanding(ball); ok {
		t.Fatal("ball at x == width maps past the last bucket and must not settle")
	}
	if ball.Settled || ball.BucketIndex != -1 {
		t.Errorf("ball should stay unsettled: %+v", ball)
	}
	if engine.Board.TotalCount() != 0 {
		t.Errorf("no bucket should be counted, total=%d", engine.Board.TotalCount())
	}
}

func TestStepWithoutBucketsNeverLands(t *testing.T) {
	engine := NewPhysicsEngine(NewBoard(1000, 800, 3, 0, DefaultPegRadius), rand.New(rand.NewSource(1)))
	ball := newTestBall(500, 790, 0, 10)
	for i := 0; i < 10; i++ {
		if landings := engine.Step([]*Ball{ball}, 10); len(landings) != 0 {
			t.Fatal("no buckets, no landings")
		}
	}
	if ball.Settled {
		t.Error("ball settled on a board without buckets")
	}
}

func TestPhysicsDeterminism(t *testing.T) {
	run := func() []Vec2 {
		board := NewBoard(1000, 800, 12, 13, DefaultPegRadius)
		engine := NewPhysicsEngine(board, rand.New(rand.NewSource(99)))
		balls := []*Ball{
			newTestBall(495, -30, 0.2, 5),
			newTestBall(505, -60, -0.4, 5),
			newTestBall(500, -90, 0, 5),
		}
		for i := 0; i < 300; i++ {
			engine.Step(balls, 10)
		}
		out := make([]Vec2, len(balls))
		for i, b := range balls {
			out[i] = b.Position
		}
		return out
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Non-deterministic: ball %d run1=(%.4f,%.4f) run2=(%.4f,%.4f)", i, a[i].X, a[i].Y, b[i].X, b[i].Y)
		}
	}
}
