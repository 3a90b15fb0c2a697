// Package impliedvol inverts an observed option price to the
// Black-Scholes-Merton volatility that reproduces it.
//
// The solver tries Newton-Raphson first and falls back to bisection, and it
// always terminates with a finite estimate inside [MinVol, MaxVol] within a
// bounded number of iterations. Non-convergence is reported through
// Result.Converged, never as an error: only structurally invalid inputs fail.
package impliedvol

import (
	"fmt"
	"math"

	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/option"
)

// Solver bounds. Every returned volatility lies in [MinVol, MaxVol].
const (
	MinVol = 0.001
	MaxVol = 10.0

	// guessFloor / guessCeiling clamp the Brenner-Subrahmanyam starting point.
	guessFloor   = 0.01
	guessCeiling = 5.0

	// bisectHi is the upper edge of the bisection bracket.
	bisectHi = 5.0

	// vegaFloor aborts the Newton branch when the next step would divide by a
	// vega too small to be numerically meaningful.
	vegaFloor = 1e-12

	defaultTolerance  = 1e-8
	defaultNewtonIter = 100
	defaultBisectIter = 200
)

// Params identifies the quote being inverted. Vol is the unknown, so the
// struct carries everything of option.Contract except it.
type Params struct {
	Spot     float64
	Strike   float64
	Expiry   float64
	Rate     float64
	DivYield float64
	Kind     option.Kind
}

// Config tunes the iteration budgets and price tolerance.
// Zero fields take the defaults.
type Config struct {
	// Tolerance is the absolute price tolerance. Default 1e-8.
	Tolerance float64
	// NewtonMaxIter is the Newton-Raphson iteration budget. Default 100.
	NewtonMaxIter int
	// BisectMaxIter is the bisection iteration budget. Default 200.
	BisectMaxIter int
}

func (cfg *Config) setDefaults() {
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaultTolerance
	}
	if cfg.NewtonMaxIter <= 0 {
		cfg.NewtonMaxIter = defaultNewtonIter
	}
	if cfg.BisectMaxIter <= 0 {
		cfg.BisectMaxIter = defaultBisectIter
	}
}

// Result is the solver output.
type Result struct {
	// Vol is the implied volatility estimate, always in [MinVol, MaxVol].
	Vol float64
	// Iterations counts the steps taken on the branch that produced Vol.
	Iterations int
	// Method names that branch: "Newton-Raphson" or "Bisection".
	Method string
	// Converged reports whether the price tolerance was met within budget.
	// When false, Vol is the best bracket estimate.
	Converged bool
}

// Solve inverts marketPrice with default budgets and tolerance.
func Solve(marketPrice float64, p Params) (Result, error) {
	return SolveWithConfig(marketPrice, p, Config{})
}

// SolveWithConfig inverts marketPrice to an implied volatility.
//
// The starting point is the Brenner-Subrahmanyam approximation
// σ₀ = √(2π/T)·P/S, clamped to [0.01, 5]. Newton-Raphson then iterates
// σ ← σ - (model - market)/vega, clamped to [MinVol, MaxVol] each step,
// until the model price is within tolerance. If vega degenerates or the
// budget runs out, bisection restarts from the full [MinVol, 5] bracket
// rather than the stale Newton iterate, and the bracket midpoint is returned
// as the final estimate.
func SolveWithConfig(marketPrice float64, p Params, cfg Config) (Result, error) {
	if marketPrice <= 0 {
		return Result{}, fmt.Errorf("impliedvol: market price %w (got %g)", option.ErrInvalidParameter, marketPrice)
	}
	cfg.setDefaults()

	contract := func(vol float64) option.Contract {
		return option.Contract{
			Spot: p.Spot, Strike: p.Strike, Expiry: p.Expiry,
			Rate: p.Rate, Vol: vol, DivYield: p.DivYield,
			Kind: p.Kind,
		}
	}

	// Validate the fixed inputs once, with a representative vol.
	if err := contract(guessFloor).Validate(); err != nil {
		return Result{}, fmt.Errorf("impliedvol: %w", err)
	}

	sigma := clamp(math.Sqrt(2*math.Pi/p.Expiry)*marketPrice/p.Spot, guessFloor, guessCeiling)

	for iter := 0; iter < cfg.NewtonMaxIter; iter++ {
		c := contract(sigma)
		model, err := blackscholes.PriceValue(c)
		if err != nil {
			return Result{}, fmt.Errorf("impliedvol: %w", err)
		}

		diff := model - marketPrice
		if math.Abs(diff) < cfg.Tolerance {
			return Result{Vol: sigma, Iterations: iter + 1, Method: "Newton-Raphson", Converged: true}, nil
		}

		vega := blackscholes.Vega(c) * 100 // per-1% convention back to per-unit
		if math.Abs(vega) < vegaFloor {
			break
		}

		sigma = clamp(sigma-diff/vega, MinVol, MaxVol)
	}

	return bisect(marketPrice, contract, cfg)
}

// bisect narrows [MinVol, bisectHi] against the market price. It never
// fails: exhausting the budget returns the bracket midpoint with
// Converged=false.
func bisect(marketPrice float64, contract func(float64) option.Contract, cfg Config) (Result, error) {
	lo, hi := MinVol, bisectHi

	for iter := 0; iter < cfg.BisectMaxIter; iter++ {
		mid := (lo + hi) / 2
		model, err := blackscholes.PriceValue(contract(mid))
		if err != nil {
			return Result{}, fmt.Errorf("impliedvol: %w", err)
		}

		if math.Abs(model-marketPrice) < cfg.Tolerance {
			return Result{Vol: mid, Iterations: iter + 1, Method: "Bisection", Converged: true}, nil
		}
		// Price is increasing in vol, so the root is below mid iff the model
		// overprices.
		if model > marketPrice {
			hi = mid
		} else {
			lo = mid
		}
	}

	return Result{
		Vol:        (lo + hi) / 2,
		Iterations: cfg.BisectMaxIter,
		Method:     "Bisection",
		Converged:  false,
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
