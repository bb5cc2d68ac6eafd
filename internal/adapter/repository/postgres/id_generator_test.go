package postgres

import (
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorProducesSortableIDs(t *testing.T) {
	gen := NewULIDGenerator()

	first := gen.Generate()
	second := gen.Generate()

	if _, err := ulid.ParseStrict(first); err != nil {
		t.Fatalf("invalid ulid %q: %v", first, err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if first > second {
		t.Fatalf("expected monotonic ids, got %q then %q", first, second)
	}
}
