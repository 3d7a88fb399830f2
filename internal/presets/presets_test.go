package presets

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
presets:
  - key: tiny
    name: Tiny
    description: three rows
    controls:
      ball_count: 10
      peg_rows: 3
      bucket_count: 4
  - key: fast
    name: Fast
    controls:
      ball_speed: 20
`

func TestParsePresets(t *testing.T) {
	presets, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("got %d presets, want 2", len(presets))
	}

	tiny := presets[0]
	if tiny.Key != "tiny" || *tiny.Controls.PegRows != 3 || *tiny.Controls.BucketCount != 4 {
		t.Errorf("tiny = %+v", tiny)
	}
	if tiny.Controls.BallSpeed != nil {
		t.Error("unset field should stay nil")
	}
	if presets[1].Controls.BallSpeed == nil || *presets[1].Controls.BallSpeed != 20 {
		t.Errorf("fast speed not parsed: %+v", presets[1].Controls)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := store.Get("fast"); err != nil {
		t.Errorf("Get(fast): %v", err)
	}
	if _, err := store.Get("classic"); err != ErrPresetNotFound {
		t.Errorf("Get(classic) err = %v, want ErrPresetNotFound", err)
	}
	if got := store.List(); len(got) != 2 || got[0].Key != "tiny" {
		t.Errorf("List = %+v", got)
	}
}

func TestLoadMissingFileUsesBuiltin(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(store.List()) != len(Builtin) {
		t.Errorf("got %d presets, want built-ins", len(store.List()))
	}
	if _, err := store.Get("classic"); err != nil {
		t.Errorf("classic missing: %v", err)
	}
}

func TestInvalidPresetsRejected(t *testing.T) {
	cases := map[string]string{
		"out of range": "presets:\n  - key: bad\n    controls:\n      bucket_count: 500\n",
		"duplicate":    "presets:\n  - key: a\n  - key: a\n",
		"no key":       "presets:\n  - name: nameless\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			presets, err := Parse([]byte(doc))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if _, err := NewStore(presets); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReloadKeepsOldSetOnError(t *testing.T) {
	store, _ := NewStore(Builtin)
	path := filepath.Join(t.TempDir(), "broken.yaml")
	os.WriteFile(path, []byte("presets: [\n"), 0o644)

	if err := store.Reload(path); err == nil {
		t.Fatal("expected parse error")
	}
	if len(store.List()) != len(Builtin) {
		t.Error("failed reload replaced the presets")
	}
}
