package opt

// Optimizer is the scalar-objective interface shared by all algorithms the
// CLI can run, so QEA results can be compared against baselines on the same
// problem.
type Optimizer interface {
	// Run minimizes eval over the box [lower, upper] in dim dimensions and
	// returns the best parameters and their cost.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
