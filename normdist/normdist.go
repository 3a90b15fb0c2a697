// Package normdist exposes the standard normal distribution functions the
// pricing and sampling packages share.
//
// The implementations delegate to gonum's distuv.UnitNormal; the wrappers
// exist so callers depend on one named surface (CDF, PDF, InvCDF) and so the
// inverse CDF stays finite at the tails, which stratified and quasi-random
// sampling rely on.
package normdist

import "gonum.org/v1/gonum/stat/distuv"

// tailZ bounds the inverse CDF: probabilities at or beyond the representable
// tails map to ±tailZ rather than ±Inf.
const tailZ = 8.0

// CDF returns P(Z <= x) for a standard normal Z.
func CDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// PDF returns the standard normal density at x.
func PDF(x float64) float64 {
	return distuv.UnitNormal.Prob(x)
}

// InvCDF returns the standard normal quantile of u.
//
// u outside (0,1) is clamped to the ±8 sigma tails so that stratum-edge and
// low-discrepancy inputs never produce infinities.
func InvCDF(u float64) float64 {
	if u <= 0 {
		return -tailZ
	}
	if u >= 1 {
		return tailZ
	}
	z := distuv.UnitNormal.Quantile(u)
	if z > tailZ {
		return tailZ
	}
	if z < -tailZ {
		return -tailZ
	}
	return z
}
