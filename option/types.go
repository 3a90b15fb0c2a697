package option

import (
	"fmt"
	"math"
	"time"
)

// Kind distinguishes calls from puts.
type Kind int

const (
	Call Kind = iota
	Put
)

func (k Kind) String() string {
	if k == Put {
		return "Put"
	}
	return "Call"
}

// Style distinguishes exercise conventions.
type Style int

const (
	// European options exercise only at expiry.
	European Style = iota
	// American options exercise any time up to expiry.
	American
)

func (s Style) String() string {
	if s == American {
		return "American"
	}
	return "European"
}

// Contract is a fully specified vanilla option pricing request.
//
// It is a plain value: construct one per request and pass it by value.
// Pricing functions never mutate it.
type Contract struct {
	// Spot is the current underlying price. Must be positive.
	Spot float64
	// Strike is the exercise price. Must be positive.
	Strike float64
	// Expiry is the time to expiry in years. Must be positive.
	Expiry float64
	// Rate is the continuously compounded risk-free rate.
	Rate float64
	// Vol is the annualized volatility. Must be positive.
	Vol float64
	// DivYield is the continuous dividend yield.
	DivYield float64

	Kind  Kind
	Style Style
}

// Validate rejects structurally invalid contracts before any computation.
//
// Spot, strike, expiry and volatility must be strictly positive; a violating
// contract is reported immediately rather than letting NaN propagate through
// a pricing or calibration sweep.
func (c Contract) Validate() error {
	switch {
	case c.Spot <= 0:
		return fmt.Errorf("option: spot %w (got %g)", ErrInvalidParameter, c.Spot)
	case c.Strike <= 0:
		return fmt.Errorf("option: strike %w (got %g)", ErrInvalidParameter, c.Strike)
	case c.Expiry <= 0:
		return fmt.Errorf("option: expiry %w (got %g)", ErrInvalidParameter, c.Expiry)
	case c.Vol <= 0:
		return fmt.Errorf("option: vol %w (got %g)", ErrInvalidParameter, c.Vol)
	}
	return nil
}

// Intrinsic returns the exercise value of the contract kind at the given spot.
func Intrinsic(spot, strike float64, kind Kind) float64 {
	if kind == Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

// Moneyness returns spot/strike, or 0 for a non-positive strike.
func Moneyness(spot, strike float64) float64 {
	if strike <= 0 {
		return 0
	}
	return spot / strike
}

// PricingResult is the output of a single pricing call.
//
// StdError and Paths are zero for deterministic methods (analytic, lattice).
type PricingResult struct {
	Price float64
	// StdError is the Monte Carlo standard error of the estimate.
	StdError float64
	Elapsed  time.Duration
	// Method labels the pricer that produced the result, e.g. "Black-Scholes"
	// or "Binomial-500".
	Method string
	// Paths is the number of simulation paths used.
	Paths int
}

// Greeks bundles price sensitivities under the usual desk conventions:
// theta per calendar day, vega per 1% vol move, rho per 1% rate move.
// Vanna, volga, charm and speed use raw per-unit derivatives.
type Greeks struct {
	Delta float64 // dV/dS
	Gamma float64 // d²V/dS²
	Theta float64 // dV/dt, per calendar day
	Vega  float64 // dV/dσ, per 1% vol move
	Rho   float64 // dV/dr, per 1% rate move
	Vanna float64 // d²V/(dS dσ)
	Volga float64 // d²V/dσ²
	Charm float64 // d²V/(dS dT)
	Speed float64 // d³V/dS³

	Elapsed time.Duration
	Method  string
}
