// Package greeks computes the full sensitivity bundle by finite differences
// over any pricing function.
//
// The point of the package is cross-validation and completeness: closed-form
// Greeks from the blackscholes package can be checked against the numerical
// ones here, and charm and speed, which have no closed form in this library,
// are only available through it. Any pricer satisfying PriceFunc can be
// injected: analytic, lattice or simulation.
package greeks

import (
	"fmt"
	"time"

	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/option"
)

// PriceFunc maps a contract to a price. It is the single capability the
// differentiator needs from a pricer.
type PriceFunc func(option.Contract) (float64, error)

// Config sets the perturbation sizes for the difference stencils.
// Zero fields take the documented defaults.
type Config struct {
	// SpotBumpFrac sizes the spot bump as a fraction of spot. Default 0.01.
	SpotBumpFrac float64
	// VolBump is the absolute volatility bump. Default 0.01.
	VolBump float64
	// RateBump is the absolute rate bump. Default 0.01.
	RateBump float64
	// TimeBump is the expiry bump in years. Default 1/365.
	TimeBump float64
}

func (cfg *Config) setDefaults() {
	if cfg.SpotBumpFrac <= 0 {
		cfg.SpotBumpFrac = 0.01
	}
	if cfg.VolBump <= 0 {
		cfg.VolBump = 0.01
	}
	if cfg.RateBump <= 0 {
		cfg.RateBump = 0.01
	}
	if cfg.TimeBump <= 0 {
		cfg.TimeBump = 1.0 / 365.0
	}
}

// Compute returns the finite-difference Greeks of the contract under the
// given pricer with default bump sizes. A nil pricer defaults to the
// Black-Scholes closed form.
func Compute(c option.Contract, price PriceFunc) (option.Greeks, error) {
	return ComputeWithConfig(c, price, Config{})
}

// ComputeWithConfig is Compute with explicit bump sizes.
func ComputeWithConfig(c option.Contract, price PriceFunc, cfg Config) (option.Greeks, error) {
	if err := c.Validate(); err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: %w", err)
	}
	if price == nil {
		price = blackscholes.PriceValue
	}
	cfg.setDefaults()
	start := time.Now()

	dS := c.Spot * cfg.SpotBumpFrac
	dSig := cfg.VolBump
	dR := cfg.RateBump
	dT := cfg.TimeBump

	var g option.Greeks
	var err error

	if g.Delta, err = centralDiff(c, price, bumpSpot, dS); err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: delta: %w", err)
	}
	if g.Gamma, err = secondDiff(c, price, bumpSpot, dS); err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: gamma: %w", err)
	}

	// Theta: V decays as calendar time passes and expiry shrinks, hence the
	// negated sign; scaled from per-year to per-day.
	theta, err := centralDiff(c, price, bumpExpiry, dT)
	if err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: theta: %w", err)
	}
	g.Theta = -theta / 365

	// Vega and rho: per-unit derivatives scaled to the per-1%-move convention.
	vega, err := centralDiff(c, price, bumpVol, dSig)
	if err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: vega: %w", err)
	}
	g.Vega = vega / 100

	rho, err := centralDiff(c, price, bumpRate, dR)
	if err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: rho: %w", err)
	}
	g.Rho = rho / 100

	if g.Vanna, err = crossDiff(c, price, bumpSpot, bumpVol, dS, dSig); err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: vanna: %w", err)
	}
	if g.Volga, err = secondDiff(c, price, bumpVol, dSig); err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: volga: %w", err)
	}
	if g.Charm, err = crossDiff(c, price, bumpSpot, bumpExpiry, dS, dT); err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: charm: %w", err)
	}
	if g.Speed, err = thirdDiff(c, price, bumpSpot, dS); err != nil {
		return option.Greeks{}, fmt.Errorf("greeks: speed: %w", err)
	}

	g.Method = "Finite Difference"
	g.Elapsed = time.Since(start)
	return g, nil
}

// ---------------------------------------------------------------------------
// Difference stencils (unexported)
//
// Each stencil is parameterized by a perturbation axis and a step size, so
// the arithmetic lives in exactly one place per order.
// ---------------------------------------------------------------------------

// bumpFunc returns a copy of the contract with one input shifted by h.
type bumpFunc func(c option.Contract, h float64) option.Contract

func bumpSpot(c option.Contract, h float64) option.Contract   { c.Spot += h; return c }
func bumpVol(c option.Contract, h float64) option.Contract    { c.Vol += h; return c }
func bumpRate(c option.Contract, h float64) option.Contract   { c.Rate += h; return c }
func bumpExpiry(c option.Contract, h float64) option.Contract { c.Expiry += h; return c }

// centralDiff approximates f'(x) with (f(x+h) - f(x-h)) / 2h.
func centralDiff(c option.Contract, price PriceFunc, bump bumpFunc, h float64) (float64, error) {
	up, err := price(bump(c, h))
	if err != nil {
		return 0, err
	}
	down, err := price(bump(c, -h))
	if err != nil {
		return 0, err
	}
	return (up - down) / (2 * h), nil
}

// secondDiff approximates f''(x) with (f(x+h) - 2f(x) + f(x-h)) / h².
func secondDiff(c option.Contract, price PriceFunc, bump bumpFunc, h float64) (float64, error) {
	base, err := price(c)
	if err != nil {
		return 0, err
	}
	up, err := price(bump(c, h))
	if err != nil {
		return 0, err
	}
	down, err := price(bump(c, -h))
	if err != nil {
		return 0, err
	}
	return (up - 2*base + down) / (h * h), nil
}

// thirdDiff approximates f'''(x) with the 4-point stencil
// (f(x+2h) - 2f(x+h) + 2f(x-h) - f(x-2h)) / 2h³.
func thirdDiff(c option.Contract, price PriceFunc, bump bumpFunc, h float64) (float64, error) {
	p2, err := price(bump(c, 2*h))
	if err != nil {
		return 0, err
	}
	p1, err := price(bump(c, h))
	if err != nil {
		return 0, err
	}
	m1, err := price(bump(c, -h))
	if err != nil {
		return 0, err
	}
	m2, err := price(bump(c, -2*h))
	if err != nil {
		return 0, err
	}
	return (p2 - 2*p1 + 2*m1 - m2) / (2 * h * h * h), nil
}

// crossDiff approximates the mixed partial d²f/(dx dy) with the 4-point
// stencil (f(++) - f(+-) - f(-+) + f(--)) / 4·hx·hy.
func crossDiff(c option.Contract, price PriceFunc, bumpX, bumpY bumpFunc, hx, hy float64) (float64, error) {
	pp, err := price(bumpY(bumpX(c, hx), hy))
	if err != nil {
		return 0, err
	}
	pm, err := price(bumpY(bumpX(c, hx), -hy))
	if err != nil {
		return 0, err
	}
	mp, err := price(bumpY(bumpX(c, -hx), hy))
	if err != nil {
		return 0, err
	}
	mm, err := price(bumpY(bumpX(c, -hx), -hy))
	if err != nil {
		return 0, err
	}
	return (pp - pm - mp + mm) / (4 * hx * hy), nil
}
