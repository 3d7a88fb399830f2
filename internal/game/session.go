package game

import (
	"sync"
	"time"
)

// Session is a Simulation shared between the frame loop and command callers.
// Every access goes through mu, so frames and commands never interleave mid-step.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`

	sim          *Simulation
	looping      bool
	lastActivity time.Time
	// recordedTick is the tick of the last recorded run, -1 when none is recorded
	// since creation or the last reset.
	recordedTick int
	mu           sync.Mutex
}

// SessionInfo is the listing view of a session.
type SessionInfo struct {
	Token        string    `json:"token"`
	Status       Status    `json:"status"`
	Tick         int       `json:"tick"`
	Population   int       `json:"population"`
	Settled      int       `json:"settled"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

func newSession(token string, sim *Simulation) *Session {
	now := time.Now()
	return &Session{
		Token:        token,
		CreatedAt:    now,
		sim:          sim,
		lastActivity: now,
		recordedTick: -1,
	}
}

// Snapshot returns a copy of the current frame.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Snapshot()
}

// Summary returns the compact run state.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Summary()
}

// Info returns the listing view.
func (s *Session) Info() SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionInfo{
		Token:        s.Token,
		Status:       s.sim.Status(),
		Tick:         s.sim.TickCount(),
		Population:   len(s.sim.Balls()),
		Settled:      s.sim.SettledCount(),
		CreatedAt:    s.CreatedAt,
		LastActivity: s.lastActivity,
	}
}

// Do runs fn with exclusive access to the simulation.
func (s *Session) Do(fn func(sim *Simulation)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.sim)
	s.lastActivity = time.Now()
}

// start marks the simulation running and reports whether the caller must launch a
// frame loop (none is active yet).
func (s *Session) start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Start()
	s.lastActivity = time.Now()
	if s.looping {
		return false
	}
	s.looping = true
	return true
}

// advance runs one frame. It returns false once the simulation is no longer running,
// at which point the loop must exit. A snapshot is taken every `every` frames and on
// any frame with landings.
func (s *Session) advance(every int) (TickResult, *Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.sim.Running() {
		s.looping = false
		return TickResult{}, nil, false
	}

	res := s.sim.Tick()
	s.lastActivity = time.Now()

	if every <= 1 || res.Tick%every == 0 || len(res.Landings) > 0 {
		snap := s.sim.Snapshot()
		return res, &snap, true
	}
	return res, nil, true
}

// stopLoop clears the loop marker without touching the simulation state.
func (s *Session) stopLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.looping = false
}

// Looping reports whether a frame loop goroutine is attached.
func (s *Session) Looping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.looping
}

// idleSince reports whether the session is stopped and untouched since before t.
func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.sim.Running() && !s.looping && s.lastActivity.Before(t)
}

// pendingRun returns the run to record and marks it recorded. It reports false for an
// empty board or when the board has not advanced since the last recording.
func (s *Session) pendingRun() (Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sim.Balls()) == 0 || s.sim.TickCount() == s.recordedTick {
		return Summary{}, false
	}
	s.recordedTick = s.sim.TickCount()
	return s.sim.Summary(), true
}

// reset clears the board and starts a fresh run.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim.Reset()
	s.recordedTick = -1
	s.lastActivity = time.Now()
}
