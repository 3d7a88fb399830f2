package admin

import (
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/galton/internal/config"
	"github.com/playmatatu/galton/internal/models"
)

// GetAllRuntimeConfig returns all runtime config entries
func GetAllRuntimeConfig(db *sqlx.DB) ([]models.RuntimeConfig, error) {
	configs := []models.RuntimeConfig{}
	err := db.Select(&configs, `
		SELECT key, value, value_type, description, updated_by, updated_at
		FROM runtime_config
		ORDER BY key
	`)
	return configs, err
}

// GetRuntimeConfigValue returns a single runtime config value
func GetRuntimeConfigValue(db *sqlx.DB, key string) (*models.RuntimeConfig, error) {
	var cfg models.RuntimeConfig
	err := db.Get(&cfg, `SELECT key, value, value_type, description, updated_by, updated_at FROM runtime_config WHERE key=$1`, key)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateRuntimeValue checks value against the declared type of a config entry
func ValidateRuntimeValue(valueType, value string) error {
	switch valueType {
	case "int":
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("invalid integer value: %s", value)
		}
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("invalid float value: %s", value)
		}
	case "bool":
		if value != "true" && value != "false" {
			return fmt.Errorf("invalid boolean value: %s (must be 'true' or 'false')", value)
		}
	}
	return nil
}

// UpdateRuntimeConfigValue updates a single runtime config value
func UpdateRuntimeConfigValue(db *sqlx.DB, key, value, adminUsername string) error {
	existing, err := GetRuntimeConfigValue(db, key)
	if err != nil {
		return fmt.Errorf("config key not found: %s", key)
	}
	if err := ValidateRuntimeValue(existing.ValueType, value); err != nil {
		return err
	}

	_, err = db.Exec(`
		UPDATE runtime_config SET value=$1, updated_by=$2, updated_at=NOW() WHERE key=$3
	`, value, adminUsername, key)
	return err
}

// ApplyRuntimeConfigToConfig loads runtime config from DB and applies overrides to the Config struct
func ApplyRuntimeConfigToConfig(db *sqlx.DB, cfg *config.Config) error {
	configs, err := GetAllRuntimeConfig(db)
	if err != nil {
		return err
	}

	applied := 0
	for _, c := range configs {
		if applyOverride(cfg, c.Key, c.Value) {
			applied++
		}
	}

	log.Printf("[CONFIG] Applied %d/%d runtime config overrides from database", applied, len(configs))
	return nil
}

// applyOverride sets one known integer setting. Unknown keys and bad values are ignored.
func applyOverride(cfg *config.Config, key, value string) bool {
	var target *int
	switch key {
	case "frame_interval_ms":
		target = &cfg.FrameIntervalMs
	case "broadcast_every_frames":
		target = &cfg.BroadcastEveryFrames
	case "snapshot_every_frames":
		target = &cfg.SnapshotEveryFrames
	case "session_idle_minutes":
		target = &cfg.SessionIdleMinutes
	case "max_sessions":
		target = &cfg.MaxSessions
	case "control_token_ttl_minutes":
		target = &cfg.ControlTokenTTLMinutes
	default:
		return false
	}

	v, err := strconv.Atoi(value)
	if err != nil || v < 0 {
		return false
	}
	*target = v
	return true
}
