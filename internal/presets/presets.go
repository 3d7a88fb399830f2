package presets

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/playmatatu/galton/internal/game"
	"gopkg.in/yaml.v3"
)

var ErrPresetNotFound = errors.New("preset not found")

// Preset is a named set of slider values.
type Preset struct {
	Key         string        `yaml:"key" json:"key"`
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description"`
	Controls    game.Controls `yaml:"controls" json:"controls"`
}

type catalog struct {
	Presets []Preset `yaml:"presets"`
}

// Store holds the presets available to new sessions.
type Store struct {
	presets []Preset
	byKey   map[string]Preset
	mu      sync.RWMutex
}

func intPtr(v int) *int { return &v }

// Builtin are served when no presets file is present.
var Builtin = []Preset{
	{
		Key:         "classic",
		Name:        "Classic",
		Description: "Fifteen rows over twenty-five buckets",
		Controls: game.Controls{
			BallCount:   intPtr(game.DefaultBallCount),
			BallSpeed:   intPtr(game.DefaultBallSpeed),
			PegRows:     intPtr(game.DefaultPegRows),
			BucketCount: intPtr(game.DefaultBucketCount),
		},
	},
	{
		Key:         "quick",
		Name:        "Quick",
		Description: "A small board that settles in seconds",
		Controls: game.Controls{
			BallCount:   intPtr(300),
			BallSpeed:   intPtr(14),
			PegRows:     intPtr(8),
			BucketCount: intPtr(9),
		},
	},
}

// NewStore returns a store serving the given presets.
func NewStore(presets []Preset) (*Store, error) {
	s := &Store{}
	if err := s.replace(presets); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads presets from a YAML file. A missing file falls back to Builtin.
func Load(path string) (*Store, error) {
	f, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("[PRESETS] %s not found, using %d built-in presets", path, len(Builtin))
		return NewStore(Builtin)
	}
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	presets, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	log.Printf("[PRESETS] Loaded %d presets from %s", len(presets), path)
	return NewStore(presets)
}

// Parse decodes a presets document.
func Parse(data []byte) ([]Preset, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c.Presets, nil
}

// Reload replaces the store contents from path, keeping the old set on error.
func (s *Store) Reload(path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read presets: %w", err)
	}
	presets, err := Parse(f)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return s.replace(presets)
}

func (s *Store) replace(presets []Preset) error {
	byKey := make(map[string]Preset, len(presets))
	for _, p := range presets {
		if p.Key == "" {
			return errors.New("preset without key")
		}
		if _, dup := byKey[p.Key]; dup {
			return fmt.Errorf("duplicate preset %q", p.Key)
		}
		if err := binding.Validator.ValidateStruct(&p.Controls); err != nil {
			return fmt.Errorf("preset %q: %w", p.Key, err)
		}
		byKey[p.Key] = p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets = append([]Preset(nil), presets...)
	s.byKey = byKey
	return nil
}

// Get returns a preset by key.
func (s *Store) Get(key string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byKey[key]
	if !ok {
		return Preset{}, ErrPresetNotFound
	}
	return p, nil
}

// List returns presets in file order.
func (s *Store) List() []Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Preset(nil), s.presets...)
}
