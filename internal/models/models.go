package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// BoardRun is a finished (paused, reset or removed) simulation run
type BoardRun struct {
	ID           int           `db:"id" json:"id"`
	SessionToken string        `db:"session_token" json:"session_token"`
	Width        float64       `db:"width" json:"width"`
	Height       float64       `db:"height" json:"height"`
	BallSpeed    int           `db:"ball_speed" json:"ball_speed"`
	BallCount    int           `db:"ball_count" json:"ball_count"`
	PegRows      int           `db:"peg_rows" json:"peg_rows"`
	BucketCount  int           `db:"bucket_count" json:"bucket_count"`
	Ticks        int           `db:"ticks" json:"ticks"`
	Population   int           `db:"population" json:"population"`
	Settled      int           `db:"settled" json:"settled"`
	BucketCounts pq.Int64Array `db:"bucket_counts" json:"bucket_counts"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// AdminAccount is an operator allowed to manage live sessions
type AdminAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit records an admin action
type AdminAudit struct {
	ID            int             `db:"id" json:"id"`
	AdminUsername string          `db:"admin_username" json:"admin_username"`
	IP            string          `db:"ip" json:"ip"`
	Route         string          `db:"route" json:"route"`
	Action        string          `db:"action" json:"action"`
	Details       json.RawMessage `db:"details" json:"details"`
	Success       bool            `db:"success" json:"success"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// RuntimeConfig is a server setting overridable without a redeploy
type RuntimeConfig struct {
	Key         string         `db:"key" json:"key"`
	Value       string         `db:"value" json:"value"`
	ValueType   string         `db:"value_type" json:"value_type"`
	Description sql.NullString `db:"description" json:"description,omitempty"`
	UpdatedBy   sql.NullString `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
