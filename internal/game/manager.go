package game

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/galton/internal/config"
	"github.com/redis/go-redis/v9"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
	ErrHistoryDisabled = errors.New("run history is not configured")
)

// Publisher delivers messages to everyone watching a session.
type Publisher interface {
	BroadcastToSession(token string, message interface{})
}

// SessionOptions configure a new session. Zero width/height fall back to the
// configured default viewport; a zero seed draws one from the clock.
type SessionOptions struct {
	Width    float64
	Height   float64
	Seed     int64
	Controls Controls
}

// SessionManager owns every live session and their frame loops.
type SessionManager struct {
	sessions  map[string]*Session
	rdb       *redis.Client
	db        *sqlx.DB
	recorder  RunRecorder
	publisher Publisher
	ctx       context.Context
	mu        sync.RWMutex

	// config is replaced wholesale on every runtime change and never mutated in place.
	config   atomic.Pointer[config.Config]
	configMu sync.Mutex
}

var (
	// Global session manager instance
	Manager *SessionManager
)

// InitializeManager initializes the global session manager and its background jobs
func InitializeManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) {
	Manager = NewSessionManager(ctx, db, rdb, cfg)
	go Manager.StartExpiryChecker()
}

// NewSessionManager creates a session manager. db and rdb may be nil.
func NewSessionManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *SessionManager {
	gm := &SessionManager{
		sessions: make(map[string]*Session),
		rdb:      rdb,
		db:       db,
		ctx:      ctx,
	}
	if db != nil {
		gm.recorder = &dbRunRecorder{db: db}
	}
	gm.config.Store(cfg)
	return gm
}

// Config returns the current configuration. Callers must treat it as read-only.
func (gm *SessionManager) Config() *config.Config {
	return gm.config.Load()
}

// UpdateConfig applies fn to a copy of the current configuration and swaps the copy
// in when fn succeeds. Frame loops pick the new values up on their next frame.
func (gm *SessionManager) UpdateConfig(fn func(next *config.Config) error) error {
	gm.configMu.Lock()
	defer gm.configMu.Unlock()

	next := *gm.config.Load()
	if err := fn(&next); err != nil {
		return err
	}
	gm.config.Store(&next)
	return nil
}

// SetRunRecorder replaces where finished runs are written.
func (gm *SessionManager) SetRunRecorder(r RunRecorder) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.recorder = r
}

// SetPublisher wires the fan-out used for frames and landings.
func (gm *SessionManager) SetPublisher(p Publisher) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	gm.publisher = p
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	crand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// CreateSession builds a new stopped simulation.
func (gm *SessionManager) CreateSession(opts SessionOptions) (*Session, error) {
	cfg := gm.Config()
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = float64(cfg.DefaultViewportWidth)
	}
	if height <= 0 {
		height = float64(cfg.DefaultViewportHeight)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sim := NewSimulation(DefaultSettings(width, height), rand.New(rand.NewSource(seed)))
	if !opts.Controls.IsEmpty() {
		sim.Apply(opts.Controls)
	}

	gm.mu.Lock()
	if gm.atCapacityLocked() {
		gm.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s := newSession(generateToken(12), sim)
	gm.sessions[s.Token] = s
	gm.mu.Unlock()

	log.Printf("[SESSION] Created %s (%.0fx%.0f seed=%d)", s.Token, width, height, seed)

	if err := gm.saveSessionToRedis(s); err != nil {
		log.Printf("[REDIS] Failed to save session %s: %v", s.Token, err)
	}
	return s, nil
}

// GetSession retrieves a session by token. A session known only to Redis (for example
// after a restart) is restored with its settings and an empty board.
func (gm *SessionManager) GetSession(token string) (*Session, error) {
	gm.mu.RLock()
	s, exists := gm.sessions[token]
	gm.mu.RUnlock()
	if exists {
		return s, nil
	}

	summary, err := gm.loadSessionFromRedis(token)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	return gm.adoptSession(token, *summary)
}

// adoptSession registers a session rebuilt from a stored summary. It counts against
// MaxSessions like a new one.
func (gm *SessionManager) adoptSession(token string, summary Summary) (*Session, error) {
	sim := NewSimulation(summary.Settings, rand.New(rand.NewSource(time.Now().UnixNano())))
	restored := newSession(token, sim)

	gm.mu.Lock()
	defer gm.mu.Unlock()
	if existing, ok := gm.sessions[token]; ok {
		return existing, nil
	}
	if gm.atCapacityLocked() {
		log.Printf("[SESSION] Not restoring %s: session limit reached", token)
		return nil, ErrTooManySessions
	}
	gm.sessions[token] = restored
	log.Printf("[SESSION] Restored %s from Redis", token)
	return restored, nil
}

// atCapacityLocked reports whether MaxSessions is reached. gm.mu must be held.
func (gm *SessionManager) atCapacityLocked() bool {
	limit := gm.Config().MaxSessions
	return limit > 0 && len(gm.sessions) >= limit
}

// ListSessions returns all live sessions, newest first.
func (gm *SessionManager) ListSessions() []SessionInfo {
	gm.mu.RLock()
	sessions := make([]*Session, 0, len(gm.sessions))
	for _, s := range gm.sessions {
		sessions = append(sessions, s)
	}
	gm.mu.RUnlock()

	infos := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		infos[i] = s.Info()
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

// ActiveSessionCount returns the number of live sessions.
func (gm *SessionManager) ActiveSessionCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// RemoveSession stops and forgets a session.
func (gm *SessionManager) RemoveSession(token string) error {
	gm.mu.Lock()
	s, exists := gm.sessions[token]
	if exists {
		delete(gm.sessions, token)
	}
	gm.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	s.Do(func(sim *Simulation) { sim.Pause() })
	gm.RecordRun(s)
	gm.deleteSessionFromRedis(token)
	log.Printf("[SESSION] Removed %s", token)
	return nil
}

// Start resumes a session and attaches a frame loop when none is running.
func (gm *SessionManager) Start(token string) (*Session, error) {
	s, err := gm.GetSession(token)
	if err != nil {
		return nil, err
	}
	if s.start() {
		go gm.runLoop(s)
	}
	gm.afterCommand(s, "start")
	return s, nil
}

// Pause stops a session. The frame loop exits on its next frame.
func (gm *SessionManager) Pause(token string) (*Session, error) {
	s, err := gm.GetSession(token)
	if err != nil {
		return nil, err
	}
	s.Do(func(sim *Simulation) { sim.Pause() })
	gm.RecordRun(s)
	gm.afterCommand(s, "pause")
	return s, nil
}

// Reset records the finished run, then restores defaults and clears the board.
func (gm *SessionManager) Reset(token string) (*Session, error) {
	s, err := gm.GetSession(token)
	if err != nil {
		return nil, err
	}
	s.Do(func(sim *Simulation) { sim.Pause() })
	gm.RecordRun(s)
	s.reset()
	gm.afterCommand(s, "reset")
	return s, nil
}

// Configure applies slider changes.
func (gm *SessionManager) Configure(token string, c Controls) (*Session, error) {
	s, err := gm.GetSession(token)
	if err != nil {
		return nil, err
	}
	s.Do(func(sim *Simulation) { sim.Apply(c) })
	gm.afterCommand(s, "configure")
	return s, nil
}

// Resize re-initializes the board for a new viewport.
func (gm *SessionManager) Resize(token string, width, height float64) (*Session, error) {
	s, err := gm.GetSession(token)
	if err != nil {
		return nil, err
	}
	// The session lock is held across the whole resize, so an attached frame loop
	// never observes the intermediate pause.
	s.Do(func(sim *Simulation) { sim.Resize(width, height) })
	gm.afterCommand(s, "resize")
	return s, nil
}

// afterCommand persists and pushes a fresh frame so viewers see the change at once.
func (gm *SessionManager) afterCommand(s *Session, command string) {
	log.Printf("[SESSION] %s on %s", command, s.Token)
	if err := gm.saveSessionToRedis(s); err != nil {
		log.Printf("[REDIS] Failed to save session %s: %v", s.Token, err)
	}
	gm.publishFrame(s.Token, s.Snapshot())
}

// runLoop drives one session at the configured frame rate until it is paused or the
// manager context ends.
func (gm *SessionManager) runLoop(s *Session) {
	interval := time.Duration(gm.Config().FrameIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("[SESSION] Frame loop started for %s (interval=%s)", s.Token, interval)

	for {
		select {
		case <-gm.ctx.Done():
			s.stopLoop()
			log.Printf("[SESSION] Frame loop for %s stopping (shutdown)", s.Token)
			return
		case <-ticker.C:
			cfg := gm.Config()
			res, snap, ok := s.advance(cfg.BroadcastEveryFrames)
			if !ok {
				log.Printf("[SESSION] Frame loop for %s exited (stopped)", s.Token)
				return
			}
			if snap != nil {
				gm.publishFrame(s.Token, *snap)
			}
			if len(res.Landings) > 0 && snap != nil {
				gm.publishLandings(s.Token, res.Landings, snap.Buckets)
			}
			if cfg.SnapshotEveryFrames > 0 && res.Tick%cfg.SnapshotEveryFrames == 0 {
				if err := gm.saveSessionToRedis(s); err != nil {
					log.Printf("[REDIS] Failed to save session %s: %v", s.Token, err)
				}
			}
		}
	}
}

func (gm *SessionManager) publishFrame(token string, snap Snapshot) {
	gm.mu.RLock()
	p := gm.publisher
	gm.mu.RUnlock()
	if p == nil {
		return
	}
	p.BroadcastToSession(token, map[string]interface{}{
		"type": "frame",
		"data": snap,
	})
}

// LandingEvent is the payload announced whenever balls settle.
type LandingEvent struct {
	Type         string    `json:"type"`
	SessionToken string    `json:"session_token"`
	Landings     []Landing `json:"landings"`
	Counts       []int     `json:"counts"`
	Fills        []float64 `json:"fills"`
}

// publishLandings announces landings through Redis when configured so every instance
// with viewers relays them; without Redis it goes straight to the local publisher.
func (gm *SessionManager) publishLandings(token string, landings []Landing, buckets []BucketView) {
	event := LandingEvent{
		Type:         "landing",
		SessionToken: token,
		Landings:     landings,
		Counts:       make([]int, len(buckets)),
		Fills:        make([]float64, len(buckets)),
	}
	for i, b := range buckets {
		event.Counts[i] = b.Count
		event.Fills[i] = b.Fill
	}

	if gm.rdb != nil {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("[REDIS] Failed to marshal landing event for %s: %v", token, err)
			return
		}
		if err := gm.rdb.Publish(gm.ctx, BoardEventsChannel, data).Err(); err != nil {
			log.Printf("[REDIS] Publish landing failed for %s: %v", token, err)
		}
		return
	}

	gm.mu.RLock()
	p := gm.publisher
	gm.mu.RUnlock()
	if p != nil {
		p.BroadcastToSession(token, event)
	}
}

// StartExpiryChecker runs a background job that removes idle stopped sessions
func (gm *SessionManager) StartExpiryChecker() {
	every := time.Duration(gm.Config().ExpiryCheckSeconds) * time.Second
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-gm.ctx.Done():
			log.Println("[SESSION] Expiry checker stopping")
			return
		case <-ticker.C:
			if n := gm.checkExpiredSessions(time.Now()); n > 0 {
				log.Printf("[SESSION] Expired %d idle sessions", n)
			}
		}
	}
}

// checkExpiredSessions removes sessions idle longer than SessionIdleMinutes.
func (gm *SessionManager) checkExpiredSessions(now time.Time) int {
	idle := gm.Config().SessionIdleMinutes
	if idle <= 0 {
		return 0
	}
	cutoff := now.Add(-time.Duration(idle) * time.Minute)

	gm.mu.RLock()
	var expired []string
	for token, s := range gm.sessions {
		if s.idleSince(cutoff) {
			expired = append(expired, token)
		}
	}
	gm.mu.RUnlock()

	removed := 0
	for _, token := range expired {
		if err := gm.RemoveSession(token); err == nil {
			removed++
		}
	}
	return removed
}
