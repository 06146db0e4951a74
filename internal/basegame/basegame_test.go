package basegame

import "testing"

func TestDefault(t *testing.T) {
	ds := Default()

	if !ds.IsAstroObject("TIMBER_HEARTH") {
		t.Error("TIMBER_HEARTH should be a base-game astro object")
	}
	if !ds.IsCuriosity("QUANTUM_MOON") {
		t.Error("QUANTUM_MOON should be a built-in curiosity")
	}
	if !ds.IsReservedEntryID("TH_VILLAGE") {
		t.Error("TH_VILLAGE should be a reserved entry id")
	}
	if !ds.IsReservedFactID("TH_VILLAGE_X1") {
		t.Error("TH_VILLAGE_X1 should be a reserved fact id")
	}
	if ds.IsReservedEntryID("EXAMPLE_ENTRY") {
		t.Error("EXAMPLE_ENTRY should not be reserved")
	}
	if len(ds.Entries()) == 0 {
		t.Fatal("expected base-game entries")
	}
}

func TestDefault_Singleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default should return the same dataset")
	}
}

func TestLoad(t *testing.T) {
	raw := []byte(`{
		"astroObjects": ["X_PLANET"],
		"curiosities": ["X_CURIOSITY"],
		"factIds": ["X_FACT"],
		"entries": [
			{"id": "X_ENTRY", "astroObject": "X_PLANET", "name": "X", "position": {"x": 1, "y": -2}}
		]
	}`)

	ds := Load(raw)

	if !ds.IsAstroObject("X_PLANET") || !ds.IsCuriosity("X_CURIOSITY") ||
		!ds.IsReservedFactID("X_FACT") || !ds.IsReservedEntryID("X_ENTRY") {
		t.Error("loaded dataset missing expected ids")
	}

	entries := ds.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Position == nil || entries[0].Position.Y != -2 {
		t.Errorf("entry position = %+v", entries[0].Position)
	}
}

func TestLoad_Empty(t *testing.T) {
	ds := Load([]byte(`{}`))
	if len(ds.Entries()) != 0 {
		t.Error("empty catalogue should have no entries")
	}
	if ds.IsAstroObject("ANYTHING") {
		t.Error("empty catalogue should report nothing")
	}
}
