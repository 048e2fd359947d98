package qea

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestLinearConstraintEvaluate(t *testing.T) {
	// x0 - 5 >= 0
	c := LinearConstraint{Coeffs: []float64{1, 0}, Offset: -5}

	batch := mat.NewDense(3, 2, []float64{
		6, 100,
		5, -3,
		4.9, 0,
	})

	values := c.Evaluate(batch)
	expected := []float64{1, 0, -0.1}
	for i, want := range expected {
		if diff := values[i] - want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("row %d: expected %g, got %g", i, want, values[i])
		}
	}
}

func TestConstraintSetFeasibleMask(t *testing.T) {
	set := ConstraintSet{
		LinearConstraint{Coeffs: []float64{1, 0}, Offset: 0},  // x0 >= 0
		LinearConstraint{Coeffs: []float64{0, -1}, Offset: 2}, // x1 <= 2
	}

	batch := mat.NewDense(4, 2, []float64{
		1, 1, // feasible
		-1, 1, // violates first
		1, 3, // violates second
		-1, 3, // violates both
	})

	mask := set.FeasibleMask(batch)
	expected := []bool{true, false, false, false}
	for i, want := range expected {
		if mask[i] != want {
			t.Errorf("row %d: expected feasible=%v, got %v", i, want, mask[i])
		}
	}
}

func TestConstraintSetEmpty(t *testing.T) {
	var set ConstraintSet
	if !set.Empty() {
		t.Error("nil set should be empty")
	}

	batch := mat.NewDense(2, 1, []float64{1, 2})
	mask := set.FeasibleMask(batch)
	for i, ok := range mask {
		if !ok {
			t.Errorf("row %d: empty set must accept everything", i)
		}
	}
}

func TestConstraintFunc(t *testing.T) {
	called := false
	c := ConstraintFunc(func(batch *mat.Dense) []float64 {
		called = true
		n, _ := batch.Dims()
		return make([]float64, n)
	})

	values := c.Evaluate(mat.NewDense(2, 1, []float64{0, 0}))
	if !called {
		t.Error("adapter should invoke the wrapped function")
	}
	if len(values) != 2 {
		t.Errorf("expected 2 values, got %d", len(values))
	}
}
