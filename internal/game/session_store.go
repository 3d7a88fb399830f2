package game

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/galton/internal/models"
	"github.com/redis/go-redis/v9"
)

// BoardEventsChannel carries landing events between instances.
const BoardEventsChannel = "board_events"

const sessionStateTTL = time.Hour

func sessionStateKey(token string) string {
	return "board:" + token + ":state"
}

// saveSessionToRedis stores the session summary in Redis.
func (gm *SessionManager) saveSessionToRedis(s *Session) error {
	if gm.rdb == nil {
		return nil // No Redis client, skip
	}

	ctx := context.Background()
	stateData := map[string]interface{}{
		"token":      s.Token,
		"created_at": s.CreatedAt,
		"summary":    s.Summary(),
	}

	data, err := json.Marshal(stateData)
	if err != nil {
		return err
	}

	return gm.rdb.SetEx(ctx, sessionStateKey(s.Token), data, sessionStateTTL).Err()
}

// loadSessionFromRedis reads a stored session summary.
func (gm *SessionManager) loadSessionFromRedis(token string) (*Summary, error) {
	if gm.rdb == nil {
		return nil, errors.New("no redis client")
	}

	ctx := context.Background()
	data, err := gm.rdb.Get(ctx, sessionStateKey(token)).Result()
	if err == redis.Nil {
		return nil, errors.New("session not found in redis")
	}
	if err != nil {
		return nil, err
	}

	var stateData struct {
		Token   string  `json:"token"`
		Summary Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(data), &stateData); err != nil {
		return nil, err
	}
	return &stateData.Summary, nil
}

func (gm *SessionManager) deleteSessionFromRedis(token string) {
	if gm.rdb == nil {
		return
	}
	if err := gm.rdb.Del(context.Background(), sessionStateKey(token)).Err(); err != nil {
		log.Printf("[REDIS] Failed to delete session %s: %v", token, err)
	}
}

// RunRecorder persists finished runs.
type RunRecorder interface {
	RecordRun(token string, summary Summary) error
}

type dbRunRecorder struct {
	db *sqlx.DB
}

func (r *dbRunRecorder) RecordRun(token string, summary Summary) error {
	counts := make(pq.Int64Array, len(summary.Counts))
	for i, c := range summary.Counts {
		counts[i] = int64(c)
	}

	st := summary.Settings
	_, err := r.db.Exec(
		`INSERT INTO board_runs (session_token, width, height, ball_speed, ball_count, peg_rows, bucket_count, ticks, population, settled, bucket_counts, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW())`,
		token, st.Width, st.Height, st.BallSpeed, st.BallCount, st.PegRows, st.BucketCount,
		summary.Tick, summary.Population, summary.Settled, counts,
	)
	return err
}

// RecordRun stores the session's current tallies as a finished run. Empty runs and
// runs that have not advanced since they were last recorded are skipped.
func (gm *SessionManager) RecordRun(s *Session) {
	if gm == nil || s == nil {
		return
	}
	gm.mu.RLock()
	recorder := gm.recorder
	gm.mu.RUnlock()
	if recorder == nil {
		return
	}

	summary, ok := s.pendingRun()
	if !ok {
		return
	}
	if err := recorder.RecordRun(s.Token, summary); err != nil {
		log.Printf("[DB] Failed to record run for session %s: %v", s.Token, err)
		return
	}
	log.Printf("[DB] Recorded run for session %s (settled=%d/%d)", s.Token, summary.Settled, summary.Population)
}

// ListRuns returns recorded runs, newest first.
func (gm *SessionManager) ListRuns(limit, offset int) ([]models.BoardRun, error) {
	if gm.db == nil {
		return nil, ErrHistoryDisabled
	}
	runs := []models.BoardRun{}
	err := gm.db.Select(&runs, `
		SELECT id, session_token, width, height, ball_speed, ball_count, peg_rows, bucket_count,
		       ticks, population, settled, bucket_counts, created_at
		FROM board_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	return runs, err
}

// ListRunsForSession returns recorded runs of one session, newest first.
func (gm *SessionManager) ListRunsForSession(token string, limit, offset int) ([]models.BoardRun, error) {
	if gm.db == nil {
		return nil, ErrHistoryDisabled
	}
	runs := []models.BoardRun{}
	err := gm.db.Select(&runs, `
		SELECT id, session_token, width, height, ball_speed, ball_count, peg_rows, bucket_count,
		       ticks, population, settled, bucket_counts, created_at
		FROM board_runs
		WHERE session_token = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, token, limit, offset)
	return runs, err
}
