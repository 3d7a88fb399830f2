package game

import "math/rand"

// Ball is a single falling particle. Settled balls sit in a bucket and are skipped by
// the physics step.
type Ball struct {
	ID          int     `json:"id"`
	Position    Vec2    `json:"position"`
	Velocity    Vec2    `json:"velocity"`
	Radius      float64 `json:"radius"`
	Settled     bool    `json:"settled"`
	BucketIndex int     `json:"bucket_index"`
}

// settle parks the ball in bucket i.
func (b *Ball) settle(i int) {
	b.Settled = true
	b.BucketIndex = i
	b.Velocity = Vec2{}
}

// release puts a settled ball back into flight.
func (b *Ball) release() {
	b.Settled = false
	b.BucketIndex = -1
}

// BallFactory spawns balls above the viewport.
type BallFactory struct {
	rng *rand.Rand
}

func NewBallFactory(rng *rand.Rand) *BallFactory {
	return &BallFactory{rng: rng}
}

// Spawn appends one ball to balls unless the population already reached the cap
// in s. It reports whether a ball was added.
func (f *BallFactory) Spawn(balls []*Ball, s Settings) ([]*Ball, bool) {
	if len(balls) >= s.BallCount {
		return balls, false
	}

	offset := (f.rng.Float64() - 0.5) * SpawnOffsetRange
	vx := (f.rng.Float64() - 0.5) * SpawnVxRange
	vy := SpawnVyFactor*float64(s.BallSpeed) + f.rng.Float64()*SpawnVyJitter

	ball := &Ball{
		ID:          len(balls),
		Position:    NewVec2(s.Width/2+offset, SpawnY),
		Velocity:    NewVec2(vx, vy),
		Radius:      s.BallRadius,
		BucketIndex: -1,
	}
	return append(balls, ball), true
}
