package searcher

import "math"

type uct struct {
	numerator float64
}

func newUCT(c float64, N float64) uct {
	if N == 0 {
		panic("N cannot be 0")
	}
	return uct{numerator: c * c * math.Log(N)}
}

func (u uct) evaluate(q float64, n float64) float64 {
	// Prioritize unexplored nodes
	if n == 0 {
		return math.Inf(1)
	}
	// UCT = q/n + sqrt(c^2*ln(N)/n)
	return q/n + math.Sqrt(u.numerator/n)
}

type puct struct {
	numerator float64
}

func newPUCT(c float64, N float64) puct {
	return puct{numerator: c * math.Sqrt(N)}
}

func (p puct) evaluate(q float64, n float64, prior float64) float64 {
	exploit := 0.0
	if n > 0 {
		exploit = q / n
	}
	// PUCT = q/n + c*P*sqrt(N)/(1+n)
	return exploit + p.numerator*prior/(1+n)
}
