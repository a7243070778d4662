package searcher

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"
)

// dirichlet draws n weights from a symmetric Dirichlet(alpha).
func dirichlet(n int, alpha float64, rng *rand.Rand) []float64 {
	concentration := make([]float64, n)
	for i := range concentration {
		concentration[i] = alpha
	}
	return distmv.NewDirichlet(concentration, rng).Rand(nil)
}

// blend mixes noise into priors: p*(1-eps) + noise*eps.
func blend(priors, noise []float64, epsilon float64) {
	for i := range priors {
		priors[i] = priors[i]*(1-epsilon) + noise[i]*epsilon
	}
}
