package problem

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProblemFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write problem file: %v", err)
	}
	return path
}

func TestLoadFullSpec(t *testing.T) {
	path := writeProblemFile(t, `
name: shifted-quadratic
benchmark: quadratic
dims: 3
lower: [-4, -4, 0]
upper: [4, 4, 8]
integral: [2]
constraints:
  - coeffs: [1, 1, 0]
    offset: -1
training:
  iterations: 500
  samples: 12
  elite: 3
  sigmaScaler: 1.01
  muScaler: 50
  savingInterval: 25
  seed: 99
  stagnation: true
  maxRetries: 200
`)

	run, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if run.Name != "shifted-quadratic" {
		t.Errorf("Expected name 'shifted-quadratic', got %q", run.Name)
	}
	if run.Domain.Dims() != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", run.Domain.Dims())
	}
	if run.Domain.Lower(2) != 0 || run.Domain.Upper(2) != 8 {
		t.Errorf("Dimension 2 bounds: expected [0, 8], got [%g, %g]", run.Domain.Lower(2), run.Domain.Upper(2))
	}
	if run.Domain.Integral(0) || run.Domain.Integral(1) || !run.Domain.Integral(2) {
		t.Error("Expected only dimension 2 to be integral")
	}
	if len(run.Constraints) != 1 {
		t.Fatalf("Expected 1 constraint, got %d", len(run.Constraints))
	}

	cfg := run.Config
	if cfg.Iterations != 500 || cfg.SampleSize != 12 || cfg.EliteLevel != 3 {
		t.Errorf("Wrong training parameters: %+v", cfg)
	}
	if cfg.SigmaScaler != 1.01 || cfg.MuScaler != 50 {
		t.Errorf("Wrong scalers: sigma=%g mu=%g", cfg.SigmaScaler, cfg.MuScaler)
	}
	if cfg.Seed != 99 || !cfg.Stagnation || cfg.MaxSampleRetries != 200 {
		t.Errorf("Wrong run options: %+v", cfg)
	}
}

func TestResolveScalarBounds(t *testing.T) {
	run, err := Resolve(&Spec{
		Benchmark: "sphere",
		Dims:      4,
		Lower:     []float64{-2},
		Upper:     []float64{2},
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		if run.Domain.Lower(i) != -2 || run.Domain.Upper(i) != 2 {
			t.Errorf("dimension %d: expected [-2, 2], got [%g, %g]", i, run.Domain.Lower(i), run.Domain.Upper(i))
		}
	}
}

func TestResolveDefaultBounds(t *testing.T) {
	run, err := Resolve(&Spec{Benchmark: "rastrigin", Dims: 2})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if run.Domain.Lower(0) != -5.12 || run.Domain.Upper(1) != 5.12 {
		t.Errorf("Expected the benchmark's conventional bounds, got [%g, %g]", run.Domain.Lower(0), run.Domain.Upper(1))
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
	}{
		{"missing benchmark", Spec{Dims: 2}},
		{"bad dims", Spec{Benchmark: "sphere", Dims: 0}},
		{"unknown benchmark", Spec{Benchmark: "nope", Dims: 2}},
		{"bound length mismatch", Spec{Benchmark: "sphere", Dims: 3, Lower: []float64{-1, -1}}},
		{"integral out of range", Spec{Benchmark: "sphere", Dims: 2, Integral: []int{5}}},
		{"constraint coeff mismatch", Spec{
			Benchmark:   "sphere",
			Dims:        2,
			Constraints: []LinearSpec{{Coeffs: []float64{1}, Offset: 0}},
		}},
		{"inverted bounds", Spec{Benchmark: "sphere", Dims: 2, Lower: []float64{5}, Upper: []float64{-5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resolve(&tt.spec); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeProblemFile(t, "benchmark: [not: valid")
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
