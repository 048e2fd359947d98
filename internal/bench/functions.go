// Package bench provides standard benchmark cost functions in the batch form
// the optimizer consumes, plus a registry used by the CLI and job server.
package bench

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/qevo/internal/qea"
)

// Problem bundles a cost function with its conventional search domain.
type Problem struct {
	Name   string
	Dims   int
	Domain *qea.Domain
	Cost   qea.CostFunc
}

// Sphere is f(x) = sum(x_i^2), minimum 0 at the origin.
func Sphere(batch *mat.Dense) []float64 {
	n, dims := batch.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := batch.RawRowView(i)
		var sum float64
		for j := 0; j < dims; j++ {
			sum += row[j] * row[j]
		}
		out[i] = sum
	}
	return out
}

// Quadratic returns f(x) = sum((x_i - c_i)^2) with minimum 0 at center.
func Quadratic(center []float64) qea.CostFunc {
	return func(batch *mat.Dense) []float64 {
		n, dims := batch.Dims()
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			row := batch.RawRowView(i)
			var sum float64
			for j := 0; j < dims; j++ {
				d := row[j] - center[j]
				sum += d * d
			}
			out[i] = sum
		}
		return out
	}
}

// Rosenbrock is the classic banana valley, minimum 0 at (1, ..., 1).
func Rosenbrock(batch *mat.Dense) []float64 {
	n, dims := batch.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := batch.RawRowView(i)
		var sum float64
		for j := 0; j < dims-1; j++ {
			a := row[j+1] - row[j]*row[j]
			b := 1 - row[j]
			sum += 100*a*a + b*b
		}
		out[i] = sum
	}
	return out
}

// Rastrigin is highly multimodal, minimum 0 at the origin.
func Rastrigin(batch *mat.Dense) []float64 {
	n, dims := batch.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := batch.RawRowView(i)
		sum := 10 * float64(dims)
		for j := 0; j < dims; j++ {
			sum += row[j]*row[j] - 10*math.Cos(2*math.Pi*row[j])
		}
		out[i] = sum
	}
	return out
}

// Ackley has a nearly flat outer region and a deep central hole, minimum 0
// at the origin.
func Ackley(batch *mat.Dense) []float64 {
	n, dims := batch.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		row := batch.RawRowView(i)
		var sq, cs float64
		for j := 0; j < dims; j++ {
			sq += row[j] * row[j]
			cs += math.Cos(2 * math.Pi * row[j])
		}
		d := float64(dims)
		out[i] = -20*math.Exp(-0.2*math.Sqrt(sq/d)) - math.Exp(cs/d) + 20 + math.E
	}
	return out
}

// EvalPoint evaluates a batch cost function at a single point, for callers
// that only speak scalar objectives.
func EvalPoint(cost qea.CostFunc, x []float64) float64 {
	row := mat.NewDense(1, len(x), append([]float64{}, x...))
	return cost(row)[0]
}

type factory struct {
	bound float64
	build func(dims int) qea.CostFunc
}

var registry = map[string]factory{
	"sphere":     {bound: 10, build: func(int) qea.CostFunc { return Sphere }},
	"rosenbrock": {bound: 5, build: func(int) qea.CostFunc { return Rosenbrock }},
	"rastrigin":  {bound: 5.12, build: func(int) qea.CostFunc { return Rastrigin }},
	"ackley":     {bound: 32.768, build: func(int) qea.CostFunc { return Ackley }},
	"quadratic": {bound: 10, build: func(dims int) qea.CostFunc {
		center := make([]float64, dims)
		for i := range center {
			center[i] = 3
		}
		return Quadratic(center)
	}},
}

// Names lists the registered benchmark names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds a benchmark problem by name with its conventional symmetric
// domain.
func Lookup(name string, dims int) (*Problem, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown benchmark %q (have %v)", name, Names())
	}
	if dims <= 0 {
		return nil, fmt.Errorf("benchmark %q: dims must be positive, got %d", name, dims)
	}
	domain, err := qea.UniformDomain(dims, -f.bound, f.bound)
	if err != nil {
		return nil, err
	}
	return &Problem{Name: name, Dims: dims, Domain: domain, Cost: f.build(dims)}, nil
}
