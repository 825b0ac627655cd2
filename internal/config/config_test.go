package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultBoundsMatchSpec(t *testing.T) {
	b := DefaultBounds()
	if b.RecursionLimit != 1000 {
		t.Fatalf("recursion limit: got %d want 1000", b.RecursionLimit)
	}
	if b.LoopIterationCap != 1_000_000 {
		t.Fatalf("loop iteration cap: got %d want 1000000", b.LoopIterationCap)
	}
	if b.ResidualizerCeiling != 64 {
		t.Fatalf("residualizer ceiling: got %d want 64", b.ResidualizerCeiling)
	}
}

func TestIsKnownAnnotation(t *testing.T) {
	cfg := Default()
	if !cfg.IsKnownAnnotation("reentrant") {
		t.Fatal("reentrant should be known")
	}
	if cfg.IsKnownAnnotation("bogus") {
		t.Fatal("bogus should not be known")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "pipeline.yaml")
	content := "type_strictness: 2\nallow_process: true\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TypeStrictness != StrictnessFull {
		t.Fatalf("expected full strictness, got %d", cfg.TypeStrictness)
	}
	if !cfg.AllowProcess {
		t.Fatal("expected allow_process true")
	}
	if len(cfg.KnownAnnotations) == 0 {
		t.Fatal("expected default known annotations to be filled in")
	}
}
