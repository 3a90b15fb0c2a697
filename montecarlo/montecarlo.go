// Package montecarlo prices options by simulating the risk-neutral terminal
// distribution of the underlying under geometric Brownian motion.
//
// Terminal prices follow
//
//	S_T = S·exp((r - q - σ²/2)·T + σ√T·z)
//
// and the price estimate is the discounted sample mean of the payoffs, with
// its standard error reported alongside. Four variance-reduction modes are
// available; see Reduction.
//
// Payoff evaluation fans out across workers over disjoint index ranges, so
// the compute phase needs no synchronization; the statistical reduction runs
// single-threaded after the join. Single-step results depend only on the
// seed, never on the worker count.
package montecarlo

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/meenmo/optlib/option"
	"github.com/meenmo/optlib/randseq"
)

// Reduction selects the variance-reduction strategy for a pricing call.
type Reduction int

const (
	// None uses plain seeded pseudo-random draws.
	None Reduction = iota
	// Antithetic draws paired (z, -z) samples.
	Antithetic
	// Stratified draws one sample per equal-width stratum of [0,1].
	Stratified
	// ControlVariate uses the terminal asset price as a control: the payoff
	// is regressed against it and the known forward re-centers the estimate.
	// Effective whenever payoff and terminal price are correlated.
	ControlVariate
)

func (r Reduction) String() string {
	switch r {
	case Antithetic:
		return "Antithetic"
	case Stratified:
		return "Stratified"
	case ControlVariate:
		return "Control Variate"
	}
	return "None"
}

// Config controls a simulation run.
type Config struct {
	// Paths is the number of simulated paths. Defaults to 10000.
	Paths int
	// Reduction is the variance-reduction mode.
	Reduction Reduction
	// Seed drives all randomness for the run.
	Seed uint64
	// Workers caps the parallel fan-out. Defaults to GOMAXPROCS.
	Workers int
}

const defaultPaths = 10000

func (cfg *Config) setDefaults() {
	if cfg.Paths <= 0 {
		cfg.Paths = defaultPaths
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Workers > cfg.Paths {
		cfg.Workers = cfg.Paths
	}
}

// Price estimates the contract value from single-step terminal simulation.
//
// All draws are generated up front from cfg.Seed, then payoff evaluation is
// partitioned across workers; the result is therefore reproducible for a
// fixed seed regardless of cfg.Workers.
func Price(c option.Contract, cfg Config) (option.PricingResult, error) {
	if err := c.Validate(); err != nil {
		return option.PricingResult{}, fmt.Errorf("montecarlo: %w", err)
	}
	cfg.setDefaults()
	start := time.Now()

	drift := (c.Rate - c.DivYield - 0.5*c.Vol*c.Vol) * c.Expiry
	volSqrtT := c.Vol * math.Sqrt(c.Expiry)
	df := math.Exp(-c.Rate * c.Expiry)

	z := randseq.Generate(samplingPolicy(cfg.Reduction), cfg.Paths, cfg.Seed)

	terminals := make([]float64, cfg.Paths)
	payoffs := make([]float64, cfg.Paths)

	g := new(errgroup.Group)
	for w := 0; w < cfg.Workers; w++ {
		lo, hi := workerRange(cfg.Paths, cfg.Workers, w)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				st := c.Spot * math.Exp(drift+volSqrtT*z[i])
				terminals[i] = st
				payoffs[i] = option.Intrinsic(st, c.Strike, c.Kind)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return option.PricingResult{}, fmt.Errorf("montecarlo: %w", err)
	}

	var price, stdErr float64
	if cfg.Reduction == ControlVariate {
		price, stdErr = controlVariateEstimate(c, terminals, payoffs, df)
	} else {
		mean, variance := stat.MeanVariance(payoffs, nil)
		price = df * mean
		stdErr = df * math.Sqrt(variance/float64(cfg.Paths))
	}

	return option.PricingResult{
		Price:    math.Max(price, 0),
		StdError: stdErr,
		Elapsed:  time.Since(start),
		Method:   methodLabel(cfg.Reduction),
		Paths:    cfg.Paths,
	}, nil
}

// PriceMultiStep walks numSteps sub-periods per path, the building block for
// path-dependent extensions. Defaults to 252 steps when numSteps <= 0.
//
// Each worker owns an independent stream seeded from (cfg.Seed, worker
// index), so there is no cross-worker contention, at the cost that the
// result set depends on cfg.Workers. Fix both Seed and Workers to reproduce
// a run exactly. cfg.Reduction is ignored here.
func PriceMultiStep(c option.Contract, cfg Config, numSteps int) (option.PricingResult, error) {
	if err := c.Validate(); err != nil {
		return option.PricingResult{}, fmt.Errorf("montecarlo: %w", err)
	}
	cfg.setDefaults()
	if numSteps <= 0 {
		numSteps = 252
	}
	start := time.Now()

	dt := c.Expiry / float64(numSteps)
	drift := (c.Rate - c.DivYield - 0.5*c.Vol*c.Vol) * dt
	volSqrtDt := c.Vol * math.Sqrt(dt)
	df := math.Exp(-c.Rate * c.Expiry)

	payoffs := make([]float64, cfg.Paths)

	g := new(errgroup.Group)
	for w := 0; w < cfg.Workers; w++ {
		lo, hi := workerRange(cfg.Paths, cfg.Workers, w)
		seed := cfg.Seed + uint64(w)*workerSeedStride
		g.Go(func() error {
			dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}
			for i := lo; i < hi; i++ {
				s := c.Spot
				for t := 0; t < numSteps; t++ {
					s *= math.Exp(drift + volSqrtDt*dist.Rand())
				}
				payoffs[i] = option.Intrinsic(s, c.Strike, c.Kind)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return option.PricingResult{}, fmt.Errorf("montecarlo: %w", err)
	}

	mean, variance := stat.MeanVariance(payoffs, nil)
	return option.PricingResult{
		Price:    math.Max(df*mean, 0),
		StdError: df * math.Sqrt(variance/float64(cfg.Paths)),
		Elapsed:  time.Since(start),
		Method:   fmt.Sprintf("MC MultiStep (%d steps)", numSteps),
		Paths:    cfg.Paths,
	}, nil
}

// workerSeedStride separates per-worker streams in PriceMultiStep.
const workerSeedStride = 1_000_003

// controlVariateEstimate applies the terminal-price control variate:
//
//	β    = cov(payoff, S_T) / var(S_T)
//	Y_i  = payoff_i - β·(S_T,i - F),   F = S·e^{(r-q)T}
//
// and returns the discounted mean and standard error of the adjusted sample.
func controlVariateEstimate(c option.Contract, terminals, payoffs []float64, df float64) (float64, float64) {
	n := len(payoffs)
	fwd := c.Spot * math.Exp((c.Rate-c.DivYield)*c.Expiry)

	varControl := stat.Variance(terminals, nil)
	beta := 0.0
	if varControl > 0 {
		beta = stat.Covariance(terminals, payoffs, nil) / varControl
	}

	adjusted := make([]float64, n)
	for i := range adjusted {
		adjusted[i] = payoffs[i] - beta*(terminals[i]-fwd)
	}

	mean, variance := stat.MeanVariance(adjusted, nil)
	return df * mean, df * math.Sqrt(variance/float64(n))
}

// samplingPolicy maps a reduction mode to its draw policy. The control
// variate adjusts plain draws after the fact.
func samplingPolicy(r Reduction) randseq.Policy {
	switch r {
	case Antithetic:
		return randseq.Antithetic
	case Stratified:
		return randseq.Stratified
	}
	return randseq.Plain
}

func methodLabel(r Reduction) string {
	if r == None {
		return "Monte Carlo"
	}
	return fmt.Sprintf("Monte Carlo (%s)", r)
}

// workerRange splits n items across workers into disjoint [lo, hi) ranges;
// the first n%workers ranges carry one extra item.
func workerRange(n, workers, w int) (int, int) {
	base := n / workers
	extra := n % workers
	lo := w*base + min(w, extra)
	hi := lo + base
	if w < extra {
		hi++
	}
	return lo, hi
}
