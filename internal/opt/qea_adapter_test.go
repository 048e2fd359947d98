package opt

import (
	"math"
	"testing"

	"github.com/cwbudde/qevo/internal/qea"
)

func TestQEAAdapterOnSphere(t *testing.T) {
	optimizer := NewQEAWithConfig(qea.Config{
		Iterations:  2000,
		SampleSize:  10,
		EliteLevel:  4,
		SigmaScaler: 1.005,
		MuScaler:    20,
		Seed:        42,
	})

	dim := 2
	lower := []float64{-10, -10}
	upper := []float64{10, 10}

	best, cost := optimizer.Run(sphere, lower, upper, dim)

	if len(best) != dim {
		t.Fatalf("Expected %d parameters, got %d", dim, len(best))
	}
	if cost > 0.01 {
		t.Errorf("Expected cost near 0, got %f", cost)
	}
	for i, v := range best {
		if math.Abs(v) > 0.1 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestQEAAdapterDeterministic(t *testing.T) {
	dim := 2
	lower := []float64{-5, -5}
	upper := []float64{5, 5}

	run := func() ([]float64, float64) {
		return NewQEAWithConfig(qea.Config{
			Iterations:  200,
			SampleSize:  10,
			EliteLevel:  4,
			SigmaScaler: 1.005,
			MuScaler:    20,
			Seed:        123,
		}).Run(sphere, lower, upper, dim)
	}

	best1, cost1 := run()
	best2, cost2 := run()

	if cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
	for i := range best1 {
		if best1[i] != best2[i] {
			t.Errorf("Parameter %d differs: %f vs %f", i, best1[i], best2[i])
		}
	}
}

func TestQEABadConfigFallback(t *testing.T) {
	// SampleSize <= EliteLevel cannot run; the adapter falls back to the zero
	// vector like the mayfly adapter does on library errors.
	optimizer := NewQEAWithConfig(qea.Config{
		Iterations: 10,
		SampleSize: 4,
		EliteLevel: 4,
	})

	best, cost := optimizer.Run(sphere, []float64{-5, -5}, []float64{5, 5}, 2)
	if cost != 0 {
		t.Errorf("Expected sphere(0) = 0 from fallback, got %f", cost)
	}
	for i, v := range best {
		if v != 0 {
			t.Errorf("Parameter %d: expected 0, got %f", i, v)
		}
	}
}
