package qea

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultMaxSampleRetries bounds the rejection-sampling loop. The reference
// algorithm retried forever; an unreachable feasible region then hangs the
// run, so we fail with InfeasibleRegionError instead.
const DefaultMaxSampleRetries = 1000

// Sampler draws candidate batches from an Individual. Each dimension is drawn
// independently from a normal distribution parameterized by that dimension's
// mean and sigma, clamped into the domain and rounded on integral dimensions.
//
// The random source is explicit and injectable so runs are seedable and
// deterministic under test.
type Sampler struct {
	domain      *Domain
	constraints ConstraintSet
	src         rand.Source
	maxRetries  int
}

// NewSampler creates a sampler for the given domain and constraint set.
// constraints may be nil or empty for unconstrained problems. maxRetries
// bounds the rejection loop; values <= 0 select DefaultMaxSampleRetries.
func NewSampler(domain *Domain, constraints ConstraintSet, src rand.Source, maxRetries int) *Sampler {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxSampleRetries
	}
	return &Sampler{
		domain:      domain,
		constraints: constraints,
		src:         src,
		maxRetries:  maxRetries,
	}
}

// Sample draws n candidate points from the individual. The result is an n×D
// matrix with every value inside the domain bounds and integral dimensions
// rounded. It never fails.
func (s *Sampler) Sample(ind *Individual, n int) *mat.Dense {
	dims := s.domain.Dims()
	batch := mat.NewDense(n, dims, nil)
	for j := 0; j < dims; j++ {
		dist := distuv.Normal{Mu: ind.Mean[j], Sigma: ind.Sigma[j], Src: s.src}
		for i := 0; i < n; i++ {
			batch.Set(i, j, s.domain.Clamp(j, dist.Rand()))
		}
	}
	return batch
}

// SampleFeasible draws n points that all satisfy the constraint set, using
// rejection sampling: infeasible rows are discarded and redrawn until the
// batch is full. When the constraint set is empty it is equivalent to Sample.
//
// Returns InfeasibleRegionError if the batch cannot be filled within the
// retry budget.
func (s *Sampler) SampleFeasible(ind *Individual, n int) (*mat.Dense, error) {
	if s.constraints.Empty() {
		return s.Sample(ind, n), nil
	}

	dims := s.domain.Dims()
	held := mat.NewDense(n, dims, nil)
	count := 0

	for retries := 0; ; retries++ {
		candidates := s.Sample(ind, n-count)
		mask := s.constraints.FeasibleMask(candidates)
		for i, ok := range mask {
			if !ok {
				continue
			}
			held.SetRow(count, candidates.RawRowView(i))
			count++
		}
		if count == n {
			return held, nil
		}
		if retries >= s.maxRetries {
			return nil, &InfeasibleRegionError{Wanted: n, Held: count, Retries: retries}
		}
	}
}
