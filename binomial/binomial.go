// Package binomial prices options on a recombining Cox-Ross-Rubinstein tree.
// It supports both European and American exercise and is the engine of choice
// when an early-exercise premium matters.
package binomial

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/optlib/option"
)

// DefaultSteps is the tree depth used when the caller passes steps <= 0.
const DefaultSteps = 500

// ErrUnstableDiscretization reports a risk-neutral probability outside (0,1):
// the chosen step count is infeasible for the contract's volatility and
// rates. The condition is surfaced, never clamped.
var ErrUnstableDiscretization = errors.New("risk-neutral probability outside (0,1)")

// Price values the contract on a CRR tree with the given number of steps.
//
//	u = e^{σ√dt},  d = 1/u,  p = (e^{(r-q)dt} - d) / (u - d),  dt = T/steps
//
// Terminal payoffs are evaluated at the steps+1 leaves and rolled back one
// level at a time; American nodes take max(continuation, intrinsic). The
// working slice is reused in place, so memory is O(steps) while time is
// O(steps²).
func Price(c option.Contract, steps int) (option.PricingResult, error) {
	if err := c.Validate(); err != nil {
		return option.PricingResult{}, fmt.Errorf("binomial: %w", err)
	}
	if steps <= 0 {
		steps = DefaultSteps
	}
	start := time.Now()

	dt := c.Expiry / float64(steps)
	u := math.Exp(c.Vol * math.Sqrt(dt))
	d := 1 / u
	df := math.Exp(-c.Rate * dt)
	p := (math.Exp((c.Rate-c.DivYield)*dt) - d) / (u - d)

	if p <= 0 || p >= 1 {
		return option.PricingResult{}, fmt.Errorf(
			"binomial: %w (p=%.6f with steps=%d, vol=%g, rate=%g, div=%g)",
			ErrUnstableDiscretization, p, steps, c.Vol, c.Rate, c.DivYield)
	}

	// Terminal payoffs at the leaves: node i has i down-moves.
	values := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		spot := c.Spot * math.Pow(u, float64(steps-i)) * math.Pow(d, float64(i))
		values[i] = option.Intrinsic(spot, c.Strike, c.Kind)
	}

	for level := steps - 1; level >= 0; level-- {
		for i := 0; i <= level; i++ {
			continuation := df * (p*values[i] + (1-p)*values[i+1])
			if c.Style == option.American {
				spot := c.Spot * math.Pow(u, float64(level-i)) * math.Pow(d, float64(i))
				values[i] = math.Max(continuation, option.Intrinsic(spot, c.Strike, c.Kind))
			} else {
				values[i] = continuation
			}
		}
	}

	return option.PricingResult{
		Price:   values[0],
		Elapsed: time.Since(start),
		Method:  fmt.Sprintf("Binomial-%d", steps),
	}, nil
}
