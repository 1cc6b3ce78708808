package entity

import "testing"

func TestRegistryAddAndGet(t *testing.T) {
	r, err := NewRegistry(
		Entity{ID: "s0", Symbol: "AAA"},
		Entity{ID: "s1", Symbol: "BBB"},
	)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	e, ok := r.Get("s0")
	if !ok || e.Symbol != "AAA" {
		t.Errorf("Get(s0) = %+v, %v", e, ok)
	}

	e, ok = r.BySymbol("BBB")
	if !ok || e.ID != "s1" {
		t.Errorf("BySymbol(BBB) = %+v, %v", e, ok)
	}

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r, err := NewRegistry(Entity{ID: "s0", Symbol: "AAA"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	if err := r.Add(Entity{ID: "s0"}); err == nil {
		t.Error("duplicate id should be rejected")
	}
	if err := r.Add(Entity{ID: "s9", Symbol: "AAA"}); err == nil {
		t.Error("duplicate symbol should be rejected")
	}
	if err := r.Add(Entity{Symbol: "CCC"}); err == nil {
		t.Error("empty id should be rejected")
	}
}

func TestRegistryResolve(t *testing.T) {
	r, err := NewRegistry(
		Entity{ID: "s0"},
		Entity{ID: "s1"},
	)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	ids, err := r.Resolve([]string{"s1", "s0"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "s1" || ids[1] != "s0" {
		t.Errorf("Resolve returned %v, want [s1 s0]", ids)
	}

	if _, err := r.Resolve([]string{"s0", "nope"}); err == nil {
		t.Error("Resolve should fail for unknown ids")
	}
}

func TestRegistryIDsSorted(t *testing.T) {
	r, err := NewRegistry(
		Entity{ID: "s2"},
		Entity{ID: "s0"},
		Entity{ID: "s1"},
	)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	ids := r.IDs()
	want := []string{"s0", "s1", "s2"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}
}
