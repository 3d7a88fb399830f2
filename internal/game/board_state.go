package game

import (
	"log"
	"math/rand"
)

// TickResult describes what a single tick changed.
type TickResult struct {
	Tick     int       `json:"tick"`
	Spawned  int       `json:"spawned"`
	Landings []Landing `json:"landings,omitempty"`
}

// Simulation owns one bean machine: its settings, geometry, and ball population.
// It is not safe for concurrent use; callers serialize access (see Session).
type Simulation struct {
	settings Settings
	status   Status
	board    *Board
	balls    []*Ball
	physics  *PhysicsEngine
	factory  *BallFactory
	rng      *rand.Rand
	tick     int
}

// NewSimulation builds the board for s. rng supplies every random draw, so a seeded
// source makes runs reproducible.
func NewSimulation(s Settings, rng *rand.Rand) *Simulation {
	sim := &Simulation{
		settings: s,
		status:   StatusStopped,
		balls:    make([]*Ball, 0),
		factory:  NewBallFactory(rng),
		rng:      rng,
	}
	sim.rebuild()
	return sim
}

func (sim *Simulation) Settings() Settings { return sim.settings }

func (sim *Simulation) Status() Status { return sim.status }

func (sim *Simulation) Running() bool { return sim.status == StatusRunning }

func (sim *Simulation) Board() *Board { return sim.board }

func (sim *Simulation) Balls() []*Ball { return sim.balls }

func (sim *Simulation) TickCount() int { return sim.tick }

// SettledCount returns how many balls currently sit in a bucket.
func (sim *Simulation) SettledCount() int {
	n := 0
	for _, b := range sim.balls {
		if b.Settled {
			n++
		}
	}
	return n
}

// Start switches to running. The first ball is dropped immediately when the board is empty.
func (sim *Simulation) Start() {
	if sim.status == StatusRunning {
		return
	}
	if len(sim.balls) == 0 {
		sim.Spawn()
	}
	sim.status = StatusRunning
}

// Pause stops the frame loop at its next frame boundary.
func (sim *Simulation) Pause() {
	sim.status = StatusStopped
}

// Reset stops the run, drops every ball and restores default settings for the
// current viewport.
func (sim *Simulation) Reset() {
	sim.Pause()
	sim.balls = make([]*Ball, 0)
	sim.tick = 0
	sim.settings = DefaultSettings(sim.settings.Width, sim.settings.Height)
	sim.rebuild()
}

// Spawn adds a single ball if the population is below the cap.
func (sim *Simulation) Spawn() bool {
	var ok bool
	sim.balls, ok = sim.factory.Spawn(sim.balls, sim.settings)
	return ok
}

// Tick advances one frame: the spawn policy runs first, then the physics step.
func (sim *Simulation) Tick() TickResult {
	sim.tick++
	spawned := sim.spawnForTick()
	landings := sim.physics.Step(sim.balls, float64(sim.settings.BallSpeed))
	for i := range landings {
		landings[i].Tick = sim.tick
	}
	return TickResult{Tick: sim.tick, Spawned: spawned, Landings: landings}
}

// spawnForTick drops 0 to 6 balls. Larger caps unlock extra batch spawns so big
// populations fill up in a reasonable number of frames.
func (sim *Simulation) spawnForTick() int {
	s := sim.settings
	if len(sim.balls) >= s.BallCount || sim.rng.Float64() >= SpawnRateFactor*float64(s.BallSpeed) {
		return 0
	}

	spawned := sim.spawnN(1)

	if s.BallCount > batchThresholdSmall && len(sim.balls) < s.BallCount && sim.rng.Float64() < 0.5 {
		spawned += sim.spawnN(1)
	}

	if s.BallCount > batchThresholdMedium && len(sim.balls) < s.BallCount && sim.rng.Float64() < 0.7 {
		spawned += sim.spawnN(2)

		if s.BallCount > batchThresholdLarge && sim.rng.Float64() < 0.5 {
			spawned += sim.spawnN(2)
		}
	}
	return spawned
}

func (sim *Simulation) spawnN(n int) int {
	spawned := 0
	for i := 0; i < n; i++ {
		if sim.Spawn() {
			spawned++
		}
	}
	return spawned
}

// SetBallCount changes the population cap. Balls above a lowered cap are kept; only
// new spawns are blocked.
func (sim *Simulation) SetBallCount(n int) {
	sim.settings.BallCount = n
}

func (sim *Simulation) SetBallSpeed(speed int) {
	sim.settings.BallSpeed = speed
}

func (sim *Simulation) SetPegRows(rows int) {
	sim.settings.PegRows = rows
	sim.rebuild()
}

func (sim *Simulation) SetBucketCount(n int) {
	sim.settings.BucketCount = n
	sim.rebuild()
}

// Apply sets every non-nil control, rebuilding geometry at most once.
func (sim *Simulation) Apply(c Controls) {
	rebuild := false
	if c.BallCount != nil {
		sim.settings.BallCount = *c.BallCount
	}
	if c.BallSpeed != nil {
		sim.settings.BallSpeed = *c.BallSpeed
	}
	if c.PegRows != nil && *c.PegRows != sim.settings.PegRows {
		sim.settings.PegRows = *c.PegRows
		rebuild = true
	}
	if c.BucketCount != nil && *c.BucketCount != sim.settings.BucketCount {
		sim.settings.BucketCount = *c.BucketCount
		rebuild = true
	}
	if rebuild {
		sim.rebuild()
	}
}

// Resize re-initializes the board for a new viewport. Every ball keeps its position
// relative to the viewport, and a running simulation keeps running.
func (sim *Simulation) Resize(width, height float64) {
	wasRunning := sim.Running()
	sim.Pause()

	oldW, oldH := sim.settings.Width, sim.settings.Height
	for i, b := range sim.balls {
		if oldW > 0 {
			b.Position.X = b.Position.X / oldW * width
		}
		if oldH > 0 {
			b.Position.Y = b.Position.Y / oldH * height
		}
		b.ID = i
	}

	sim.settings.Width = width
	sim.settings.Height = height
	sim.rebuild()

	log.Printf("[BOARD] Resized to %.0fx%.0f (balls=%d)", width, height, len(sim.balls))

	if wasRunning {
		sim.Start()
	}
}

// rebuild replaces the geometry and recounts settled balls against the new buckets.
// Settled balls that no longer map to a bucket are released and fall again.
func (sim *Simulation) rebuild() {
	s := sim.settings
	sim.board = NewBoard(s.Width, s.Height, s.PegRows, s.BucketCount, s.PegRadius)
	sim.physics = NewPhysicsEngine(sim.board, sim.rng)

	for _, b := range sim.balls {
		if !b.Settled {
			continue
		}
		idx := sim.board.BucketIndexAt(b.Position.X)
		if idx < 0 || idx >= len(sim.board.Buckets) {
			b.release()
			continue
		}
		b.BucketIndex = idx
		sim.board.Increment(idx)
	}
}
