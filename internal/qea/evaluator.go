package qea

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// CostFunc evaluates a batch of candidate points (n×D) and returns one scalar
// cost per row. It must accept single-row batches as well. Cost functions are
// treated as pure and deterministic; anything they panic with propagates and
// terminates the run.
type CostFunc func(batch *mat.Dense) []float64

// SelectElite evaluates the cost function over the batch, stable-sorts the
// rows by ascending cost and returns the per-dimension mean of the best
// eliteLevel rows.
//
// eliteLevel must be smaller than the batch size; the Trainer checks this
// once before iterating.
func SelectElite(batch *mat.Dense, cost CostFunc, eliteLevel int) []float64 {
	n, dims := batch.Dims()
	costs := cost(batch)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return costs[order[a]] < costs[order[b]]
	})

	target := make([]float64, dims)
	for k := 0; k < eliteLevel; k++ {
		row := batch.RawRowView(order[k])
		for j := 0; j < dims; j++ {
			target[j] += row[j]
		}
	}
	for j := range target {
		target[j] /= float64(eliteLevel)
	}
	return target
}

// costAt evaluates the cost function on a single point by wrapping it into a
// 1×D batch.
func costAt(cost CostFunc, point []float64) float64 {
	row := mat.NewDense(1, len(point), append([]float64{}, point...))
	return cost(row)[0]
}
