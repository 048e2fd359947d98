package qea

import "math"

// Default update-rule parameters, matching the reference algorithm.
const (
	DefaultSigmaScaler    = 1.00001
	DefaultMuScaler       = 100
	DefaultSigmaFloor     = 1e-12
	DefaultStagnationCost = 10
	stagnationSigma       = 0.001
)

// Updater applies the state transition that nudges an Individual toward the
// elite target while keeping the best point ever seen as a stabilizing
// anchor. It is the only component allowed to mutate an Individual.
type Updater struct {
	// MuScaler divides the combined elite/best-of-best delta; the mean only
	// moves a fraction of the way each iteration.
	MuScaler float64

	// SigmaScaler must be > 1. Sigma shrinks by this factor when the elite
	// target lies within one standard deviation of the mean (refinement) and
	// grows by it otherwise (exploration).
	SigmaScaler float64

	// SigmaFloor keeps sigma strictly positive in finite precision. Repeated
	// shrink steps would otherwise underflow to zero.
	SigmaFloor float64

	// Stagnation enables the anti-stagnation correction: while the candidate
	// mean still costs more than StagnationCost, dimensions whose sigma has
	// collapsed below 0.001 in the shrinking regime are widened again once.
	// The check costs one extra evaluation of the cost function per update.
	Stagnation     bool
	StagnationCost float64

	cost CostFunc
}

// NewUpdater creates an updater with the given scalers. Zero values select
// the defaults.
func NewUpdater(muScaler, sigmaScaler float64, cost CostFunc) *Updater {
	if muScaler == 0 {
		muScaler = DefaultMuScaler
	}
	if sigmaScaler == 0 {
		sigmaScaler = DefaultSigmaScaler
	}
	return &Updater{
		MuScaler:       muScaler,
		SigmaScaler:    sigmaScaler,
		SigmaFloor:     DefaultSigmaFloor,
		StagnationCost: DefaultStagnationCost,
		cost:           cost,
	}
}

// Update moves the individual's mean a fraction of the way toward both the
// elite target and the best-of-best anchor, then narrows or widens each
// dimension's sigma depending on whether the elite target fell inside one
// standard deviation. The individual is mutated in place and returned.
func (u *Updater) Update(ind *Individual, eliteTarget []float64) *Individual {
	dims := ind.Dims()

	deltaElite := make([]float64, dims)
	newMean := make([]float64, dims)
	for j := 0; j < dims; j++ {
		deltaElite[j] = eliteTarget[j] - ind.Mean[j]
		deltaBob := ind.BestOfBest[j] - ind.Mean[j]
		newMean[j] = ind.Mean[j] + (deltaElite[j]+deltaBob)/u.MuScaler
	}

	shrinking := make([]bool, dims)
	newSigma := make([]float64, dims)
	for j := 0; j < dims; j++ {
		if math.Abs(deltaElite[j])/ind.Sigma[j] < 1 {
			shrinking[j] = true
			newSigma[j] = ind.Sigma[j] / u.SigmaScaler
		} else {
			newSigma[j] = ind.Sigma[j] * u.SigmaScaler
		}
		if newSigma[j] < u.SigmaFloor {
			newSigma[j] = u.SigmaFloor
		}
	}

	if u.Stagnation && costAt(u.cost, newMean) > u.StagnationCost {
		// Still far from the optimum: reopen dimensions that collapsed while
		// refining, so no dimension converges prematurely for good.
		for j := 0; j < dims; j++ {
			if shrinking[j] && newSigma[j] < stagnationSigma {
				newSigma[j] *= u.SigmaScaler
			}
		}
	}

	copy(ind.Mean, newMean)
	copy(ind.Sigma, newSigma)
	return ind
}
