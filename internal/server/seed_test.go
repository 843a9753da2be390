package server

import (
	"context"
	"testing"
)

func TestSeedDemo(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	if err := SeedDemo(ctx, testLogger(), store, "admin@example.com", "secret123"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	motifs, err := store.ListMotifs(ctx)
	if err != nil {
		t.Fatalf("list motifs: %v", err)
	}
	if len(motifs) != 1 {
		t.Fatalf("expected 1 motif, got %d", len(motifs))
	}

	pois, err := store.ListPOIsByMotif(ctx, motifs[0].ID)
	if err != nil {
		t.Fatalf("list pois: %v", err)
	}
	if len(pois) != 5 {
		t.Fatalf("expected 5 pois, got %d", len(pois))
	}
	for i, p := range pois {
		if p.Order != i+1 {
			t.Errorf("poi %d: order = %d, want %d", i, p.Order, i+1)
		}
	}

	achievements, err := store.ListAchievements(ctx)
	if err != nil {
		t.Fatalf("list achievements: %v", err)
	}
	if len(achievements) != 5 {
		t.Fatalf("expected 5 achievements, got %d", len(achievements))
	}

	hasAdmins, err := store.HasAdmins(ctx)
	if err != nil {
		t.Fatalf("has admins: %v", err)
	}
	if !hasAdmins {
		t.Error("expected the initial admin to be created")
	}

	// Second run is a no-op.
	if err := SeedDemo(ctx, testLogger(), store, "admin@example.com", "secret123"); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	motifs, _ = store.ListMotifs(ctx)
	if len(motifs) != 1 {
		t.Fatalf("seed is not idempotent: %d motifs", len(motifs))
	}
	achievements, _ = store.ListAchievements(ctx)
	if len(achievements) != 5 {
		t.Fatalf("seed is not idempotent: %d achievements", len(achievements))
	}
}
