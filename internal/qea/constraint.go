package qea

import "gonum.org/v1/gonum/mat"

// Constraint is a feasibility predicate over a batch of candidate points.
// Evaluate returns one value per batch row; a row is feasible iff its value
// is >= 0.
type Constraint interface {
	Evaluate(batch *mat.Dense) []float64
}

// ConstraintFunc adapts a plain function to the Constraint interface.
type ConstraintFunc func(batch *mat.Dense) []float64

// Evaluate implements Constraint.
func (f ConstraintFunc) Evaluate(batch *mat.Dense) []float64 { return f(batch) }

// LinearConstraint represents coeffs·x + offset >= 0. It is the constraint
// form expressible in problem files.
type LinearConstraint struct {
	Coeffs []float64
	Offset float64
}

// Evaluate implements Constraint.
func (c LinearConstraint) Evaluate(batch *mat.Dense) []float64 {
	n, dims := batch.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := batch.RawRowView(i)
		v := c.Offset
		for j := 0; j < dims && j < len(c.Coeffs); j++ {
			v += c.Coeffs[j] * row[j]
		}
		out[i] = v
	}
	return out
}

// ConstraintSet is an ordered collection of constraints. A row is feasible
// under the set iff it is feasible under every member.
type ConstraintSet []Constraint

// Empty reports whether the set has no constraints.
func (cs ConstraintSet) Empty() bool { return len(cs) == 0 }

// FeasibleMask evaluates every constraint over the batch and returns one
// flag per row, true iff all constraint values for that row are >= 0.
func (cs ConstraintSet) FeasibleMask(batch *mat.Dense) []bool {
	n, _ := batch.Dims()
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	for _, c := range cs {
		values := c.Evaluate(batch)
		for i := 0; i < n && i < len(values); i++ {
			if values[i] < 0 {
				mask[i] = false
			}
		}
	}
	return mask
}
