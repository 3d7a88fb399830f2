package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000003_runtime_config.up.sql",
		"000002_audit.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	os.Mkdir(filepath.Join(dir, "000009_dir"), 0o755)

	if got := findLatestMigrationVersion(dir); got != 3 {
		t.Errorf("latest = %d, want 3", got)
	}
}

func TestFindLatestMigrationVersionMissingDir(t *testing.T) {
	if got := findLatestMigrationVersion(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("latest = %d, want 0", got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations("", "migrations"); err == nil {
		t.Error("expected an error for an empty URL")
	}
}
