package qea

import (
	"fmt"
	"math"
)

// Domain describes the bounded search space: one lower/upper pair per
// dimension, plus a mask marking dimensions that only take integer values.
// A Domain is immutable after construction.
type Domain struct {
	lower    []float64
	upper    []float64
	integral []bool
}

// NewDomain validates and constructs a search domain. Lower and upper must
// have the same length and satisfy lower[i] <= upper[i]. The integral mask
// may be nil (all dimensions continuous); otherwise its length must match.
func NewDomain(lower, upper []float64, integral []bool) (*Domain, error) {
	if len(lower) == 0 {
		return nil, fmt.Errorf("domain must have at least one dimension")
	}
	if len(lower) != len(upper) {
		return nil, fmt.Errorf("bound lengths differ: lower has %d dimensions, upper has %d", len(lower), len(upper))
	}
	if integral != nil && len(integral) != len(lower) {
		return nil, fmt.Errorf("integral mask has %d entries, expected %d", len(integral), len(lower))
	}
	for i := range lower {
		if lower[i] > upper[i] {
			return nil, fmt.Errorf("dimension %d: lower bound %g exceeds upper bound %g", i, lower[i], upper[i])
		}
	}

	d := &Domain{
		lower: append([]float64{}, lower...),
		upper: append([]float64{}, upper...),
	}
	if integral != nil {
		d.integral = append([]bool{}, integral...)
	} else {
		d.integral = make([]bool, len(lower))
	}
	return d, nil
}

// UniformDomain creates a domain with identical scalar bounds for every
// dimension and no integral dimensions.
func UniformDomain(dims int, lower, upper float64) (*Domain, error) {
	lo := make([]float64, dims)
	hi := make([]float64, dims)
	for i := range lo {
		lo[i] = lower
		hi[i] = upper
	}
	return NewDomain(lo, hi, nil)
}

// Dims returns the dimensionality of the domain.
func (d *Domain) Dims() int { return len(d.lower) }

// Lower returns the lower bound for dimension i.
func (d *Domain) Lower(i int) float64 { return d.lower[i] }

// Upper returns the upper bound for dimension i.
func (d *Domain) Upper(i int) float64 { return d.upper[i] }

// Integral reports whether dimension i only takes integer values.
func (d *Domain) Integral(i int) bool { return d.integral[i] }

// Width returns upper-lower for dimension i.
func (d *Domain) Width(i int) float64 { return d.upper[i] - d.lower[i] }

// Clamp restricts v into [lower, upper] for dimension i and rounds it to the
// nearest integer when the dimension is integral.
func (d *Domain) Clamp(i int, v float64) float64 {
	v = math.Max(d.lower[i], math.Min(d.upper[i], v))
	if d.integral[i] {
		v = math.Round(v)
	}
	return v
}
