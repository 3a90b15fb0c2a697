// Package blackscholes prices European options in closed form under the
// Black-Scholes-Merton model with a continuous dividend yield, and derives
// the first- and second-order Greeks analytically.
//
// Charm and speed have no closed form here; use the greeks package, which
// computes them by finite differences over any pricer.
package blackscholes

import (
	"fmt"
	"math"
	"time"

	"github.com/meenmo/optlib/normdist"
	"github.com/meenmo/optlib/option"
)

// Method is the label stamped on pricing results from this package.
const Method = "Black-Scholes"

// Price computes the Black-Scholes-Merton value of the contract.
//
// The exercise style is ignored: the closed form only holds for European
// exercise. Invalid contracts are rejected before any computation.
func Price(c option.Contract) (option.PricingResult, error) {
	if err := c.Validate(); err != nil {
		return option.PricingResult{}, fmt.Errorf("blackscholes: %w", err)
	}
	start := time.Now()

	d1, d2 := d1d2(c)
	df := math.Exp(-c.Rate * c.Expiry)
	fwd := math.Exp(-c.DivYield * c.Expiry)

	var price float64
	if c.Kind == option.Call {
		price = c.Spot*fwd*normdist.CDF(d1) - c.Strike*df*normdist.CDF(d2)
	} else {
		price = c.Strike*df*normdist.CDF(-d2) - c.Spot*fwd*normdist.CDF(-d1)
	}

	return option.PricingResult{
		Price:   price,
		Elapsed: time.Since(start),
		Method:  Method,
	}, nil
}

// PriceValue is Price without the result envelope, for use as a greeks
// injection target or inside solver loops. The contract must already be
// valid.
func PriceValue(c option.Contract) (float64, error) {
	r, err := Price(c)
	if err != nil {
		return 0, err
	}
	return r.Price, nil
}

// Delta returns dV/dS.
func Delta(c option.Contract) float64 {
	d1, _ := d1d2(c)
	fwd := math.Exp(-c.DivYield * c.Expiry)
	if c.Kind == option.Call {
		return fwd * normdist.CDF(d1)
	}
	return fwd * (normdist.CDF(d1) - 1)
}

// Gamma returns d²V/dS². Identical for calls and puts.
func Gamma(c option.Contract) float64 {
	d1, _ := d1d2(c)
	fwd := math.Exp(-c.DivYield * c.Expiry)
	return fwd * normdist.PDF(d1) / (c.Spot * c.Vol * math.Sqrt(c.Expiry))
}

// Theta returns the time decay per calendar day.
func Theta(c option.Contract) float64 {
	d1, d2 := d1d2(c)
	fwd := math.Exp(-c.DivYield * c.Expiry)
	df := math.Exp(-c.Rate * c.Expiry)

	decay := -(c.Spot * fwd * normdist.PDF(d1) * c.Vol) / (2 * math.Sqrt(c.Expiry))
	if c.Kind == option.Call {
		return (decay + c.DivYield*c.Spot*fwd*normdist.CDF(d1) - c.Rate*c.Strike*df*normdist.CDF(d2)) / 365
	}
	return (decay - c.DivYield*c.Spot*fwd*normdist.CDF(-d1) + c.Rate*c.Strike*df*normdist.CDF(-d2)) / 365
}

// Vega returns the price change per 1% vol move. Identical for calls and puts.
func Vega(c option.Contract) float64 {
	d1, _ := d1d2(c)
	fwd := math.Exp(-c.DivYield * c.Expiry)
	return c.Spot * fwd * normdist.PDF(d1) * math.Sqrt(c.Expiry) / 100
}

// Rho returns the price change per 1% rate move.
func Rho(c option.Contract) float64 {
	_, d2 := d1d2(c)
	df := math.Exp(-c.Rate * c.Expiry)
	if c.Kind == option.Call {
		return c.Strike * c.Expiry * df * normdist.CDF(d2) / 100
	}
	return -c.Strike * c.Expiry * df * normdist.CDF(-d2) / 100
}

// Vanna returns d²V/(dS dσ). Identical for calls and puts.
func Vanna(c option.Contract) float64 {
	d1, d2 := d1d2(c)
	fwd := math.Exp(-c.DivYield * c.Expiry)
	return -fwd * normdist.PDF(d1) * d2 / c.Vol
}

// Volga returns d²V/dσ² (vomma). Identical for calls and puts.
func Volga(c option.Contract) float64 {
	d1, d2 := d1d2(c)
	fwd := math.Exp(-c.DivYield * c.Expiry)
	return c.Spot * fwd * normdist.PDF(d1) * math.Sqrt(c.Expiry) * d1 * d2 / c.Vol
}

// AllGreeks bundles the closed-form sensitivities.
//
// Charm and speed are left zero: they are only available through the finite
// difference engine in the greeks package.
func AllGreeks(c option.Contract) (option.Greeks, error) {
	if err := c.Validate(); err != nil {
		return option.Greeks{}, fmt.Errorf("blackscholes: %w", err)
	}
	start := time.Now()
	g := option.Greeks{
		Delta:  Delta(c),
		Gamma:  Gamma(c),
		Theta:  Theta(c),
		Vega:   Vega(c),
		Rho:    Rho(c),
		Vanna:  Vanna(c),
		Volga:  Volga(c),
		Method: "BS-Analytical",
	}
	g.Elapsed = time.Since(start)
	return g, nil
}

// d1d2 returns the BSM auxiliaries
//
//	d1 = (ln(S/K) + (r - q + σ²/2)·T) / (σ√T)
//	d2 = d1 - σ√T
func d1d2(c option.Contract) (float64, float64) {
	volSqrtT := c.Vol * math.Sqrt(c.Expiry)
	d1 := (math.Log(c.Spot/c.Strike) + (c.Rate-c.DivYield+0.5*c.Vol*c.Vol)*c.Expiry) / volSqrtT
	return d1, d1 - volSqrtT
}
