package qea

import (
	"golang.org/x/exp/rand"
)

// Individual is the probabilistic state of the optimizer: one mean and one
// standard deviation per dimension, plus the best mean encountered so far.
// It replaces the candidate population of a classical evolutionary algorithm.
//
// An Individual is mutated in place exactly once per iteration, by
// Updater.Update. Nothing else may write to it.
type Individual struct {
	Mean       []float64
	Sigma      []float64
	BestOfBest []float64
}

// NewIndividual initializes the probabilistic state for a domain: the mean is
// drawn uniformly inside the bounds, sigma starts at the full domain width so
// early sampling covers a significant part of the space, and best-of-best
// starts at the initial mean.
func NewIndividual(domain *Domain, rng *rand.Rand) *Individual {
	dims := domain.Dims()
	ind := &Individual{
		Mean:       make([]float64, dims),
		Sigma:      make([]float64, dims),
		BestOfBest: make([]float64, dims),
	}
	for i := 0; i < dims; i++ {
		ind.Mean[i] = domain.Lower(i) + domain.Width(i)*rng.Float64()
		ind.Sigma[i] = domain.Width(i)
	}
	copy(ind.BestOfBest, ind.Mean)
	return ind
}

// Dims returns the dimensionality of the individual.
func (ind *Individual) Dims() int { return len(ind.Mean) }
