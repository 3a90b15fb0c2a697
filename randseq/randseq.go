// Package randseq generates seeded standard-normal sample sequences for the
// Monte Carlo pricers.
//
// Every generator takes an explicit seed and owns its source; there is no
// package-level generator state, so a fixed seed always reproduces the same
// sequence regardless of what else the process is doing.
package randseq

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/optlib/normdist"
)

// Policy selects how a sequence of standard normals is drawn.
type Policy int

const (
	// Plain draws independent pseudo-random normals.
	Plain Policy = iota
	// Antithetic draws pairs (z, -z), halving the independent sample count
	// while keeping the estimator unbiased.
	Antithetic
	// Stratified partitions [0,1] into n equal strata, draws one uniform per
	// stratum and maps it through the inverse normal CDF, guaranteeing
	// coverage across the whole distribution.
	Stratified
	// QuasiRandom uses a base-2 van der Corput sequence through the inverse
	// CDF. It is fully deterministic; the seed is ignored.
	QuasiRandom
)

func (p Policy) String() string {
	switch p {
	case Antithetic:
		return "Antithetic"
	case Stratified:
		return "Stratified"
	case QuasiRandom:
		return "QuasiRandom"
	}
	return "Plain"
}

// Generate returns n standard-normal samples drawn under the given policy.
func Generate(p Policy, n int, seed uint64) []float64 {
	switch p {
	case Antithetic:
		return AntitheticNormals(n, seed)
	case Stratified:
		return StratifiedNormals(n, seed)
	case QuasiRandom:
		return QuasiRandomNormals(n)
	}
	return Normals(n, seed)
}

// Normals returns n independent standard-normal draws from a seeded source.
func Normals(n int, seed uint64) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = dist.Rand()
	}
	return samples
}

// AntitheticNormals returns n samples arranged as consecutive (z, -z) pairs.
// For odd n the final sample is an unpaired draw.
func AntitheticNormals(n int, seed uint64) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
	samples := make([]float64, n)
	half := n / 2
	for i := 0; i < half; i++ {
		z := dist.Rand()
		samples[2*i] = z
		samples[2*i+1] = -z
	}
	if n%2 != 0 {
		samples[n-1] = dist.Rand()
	}
	return samples
}

// StratifiedNormals returns n samples with one draw per stratum of [0,1]:
// u_i = (i + U_i)/n mapped through the inverse normal CDF.
func StratifiedNormals(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]float64, n)
	for i := range samples {
		u := (float64(i) + rng.Float64()) / float64(n)
		samples[i] = normdist.InvCDF(u)
	}
	return samples
}

// QuasiRandomNormals returns n low-discrepancy samples from the base-2 van
// der Corput sequence mapped through the inverse normal CDF.
func QuasiRandomNormals(n int) []float64 {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = normdist.InvCDF(vanDerCorput(i+1, 2))
	}
	return samples
}

// vanDerCorput returns the n-th element of the van der Corput sequence in the
// given base by reflecting the base-b digits of n around the radix point.
func vanDerCorput(n, base int) float64 {
	result := 0.0
	f := 1.0 / float64(base)
	for n > 0 {
		result += f * float64(n%base)
		n /= base
		f /= float64(base)
	}
	return result
}
