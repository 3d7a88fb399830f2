package game

// BallView is the render-facing state of one ball.
type BallView struct {
	ID          int     `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius"`
	Settled     bool    `json:"settled"`
	BucketIndex int     `json:"bucket_index"`
}

// BucketView is a bucket plus its relative fill for display.
type BucketView struct {
	Bucket
	Fill float64 `json:"fill"`
}

// Snapshot is everything a renderer needs to redraw one frame.
type Snapshot struct {
	Tick         int          `json:"tick"`
	Status       Status       `json:"status"`
	Settings     Settings     `json:"settings"`
	RenderRadius float64      `json:"render_radius"`
	Pegs         []Peg        `json:"pegs"`
	Buckets      []BucketView `json:"buckets"`
	Balls        []BallView   `json:"balls"`
	Population   int          `json:"population"`
	Settled      int          `json:"settled"`
}

// Summary is the compact run state stored outside the process.
type Summary struct {
	Tick       int      `json:"tick"`
	Status     Status   `json:"status"`
	Settings   Settings `json:"settings"`
	Population int      `json:"population"`
	Settled    int      `json:"settled"`
	Counts     []int    `json:"counts"`
}

// Snapshot copies the current state. The result shares nothing with the simulation.
func (sim *Simulation) Snapshot() Snapshot {
	pegs := make([]Peg, len(sim.board.Pegs))
	copy(pegs, sim.board.Pegs)

	fills := sim.board.Fills()
	buckets := make([]BucketView, len(sim.board.Buckets))
	for i, b := range sim.board.Buckets {
		buckets[i] = BucketView{Bucket: b, Fill: fills[i]}
	}

	balls := make([]BallView, len(sim.balls))
	settled := 0
	for i, b := range sim.balls {
		balls[i] = BallView{
			ID:          b.ID,
			X:           b.Position.X,
			Y:           b.Position.Y,
			Radius:      b.Radius,
			Settled:     b.Settled,
			BucketIndex: b.BucketIndex,
		}
		if b.Settled {
			settled++
		}
	}

	return Snapshot{
		Tick:         sim.tick,
		Status:       sim.status,
		Settings:     sim.settings,
		RenderRadius: sim.settings.RenderRadius(),
		Pegs:         pegs,
		Buckets:      buckets,
		Balls:        balls,
		Population:   len(sim.balls),
		Settled:      settled,
	}
}

// Summary returns the compact state without per-ball data.
func (sim *Simulation) Summary() Summary {
	return Summary{
		Tick:       sim.tick,
		Status:     sim.status,
		Settings:   sim.settings,
		Population: len(sim.balls),
		Settled:    sim.SettledCount(),
		Counts:     sim.board.Counts(),
	}
}
