package main

import (
	"math"
	"testing"

	"github.com/playmatatu/galton/internal/game"
)

func TestMoments(t *testing.T) {
	mean, sd := moments([]int{0, 2, 0, 2, 0})
	if mean != 2 || math.Abs(sd-1) > 1e-9 {
		t.Errorf("mean=%.2f sd=%.2f, want 2 and 1", mean, sd)
	}

	if mean, sd := moments([]int{0, 0}); mean != 0 || sd != 0 {
		t.Errorf("empty counts gave mean=%.2f sd=%.2f", mean, sd)
	}
}

func TestNewSimulationLayersPresetAndOverrides(t *testing.T) {
	presetRows, presetBuckets := 4, 9
	preset := game.Controls{PegRows: &presetRows, BucketCount: &presetBuckets}
	buckets := 7

	sim := newSimulation(100, 100, 1, &preset, game.Controls{BucketCount: &buckets})
	s := sim.Settings()
	if s.PegRows != 4 {
		t.Errorf("PegRows = %d, want preset value 4", s.PegRows)
	}
	if s.BucketCount != 7 {
		t.Errorf("BucketCount = %d, want override 7", s.BucketCount)
	}
	if s.BallSpeed != game.DefaultBallSpeed {
		t.Errorf("BallSpeed = %d, want default", s.BallSpeed)
	}
	if got := len(sim.Board().Buckets); got != 7 {
		t.Errorf("board has %d buckets, want 7", got)
	}
}

func TestNewSimulationWithoutPreset(t *testing.T) {
	n := 25
	sim := newSimulation(200, 100, 1, nil, game.Controls{BallCount: &n})
	if s := sim.Settings(); s.BallCount != 25 || s.PegRows != game.DefaultPegRows {
		t.Errorf("settings = %+v", s)
	}
}
