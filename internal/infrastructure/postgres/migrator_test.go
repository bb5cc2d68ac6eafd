package postgres

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestRunMigrationsMissingSource(t *testing.T) {
	err := RunMigrations("postgres://localhost:1/db", t.TempDir()+"/does-not-exist", zerolog.Nop())
	if err == nil {
		t.Fatalf("expected error for missing migrations directory")
	}
}
