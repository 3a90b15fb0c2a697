// Package volsurface calibrates an implied-volatility surface from a grid of
// market quotes.
//
// Each quote is independent: the solver runs once per quote across a worker
// pool, every worker writing only its own output slot, and a serial
// reduction afterwards aggregates the error statistics. The summary keeps
// exactly one point per input quote, in input order.
package volsurface

import (
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/impliedvol"
	"github.com/meenmo/optlib/option"
)

// MarketQuote is one observed option price on the grid.
type MarketQuote struct {
	Strike float64
	// Expiry is the time to expiry in years.
	Expiry float64
	// Price is the observed market price.
	Price float64
	Kind  option.Kind
}

// Point is the calibration output for a single quote.
type Point struct {
	Strike      float64
	Expiry      float64
	ImpliedVol  float64
	MarketPrice float64
	// ModelPrice is the analytic re-price at the recovered vol.
	ModelPrice float64
	// AbsError is |ModelPrice - MarketPrice|.
	AbsError float64
}

// Summary aggregates a calibration run.
type Summary struct {
	// Surface holds one point per input quote, in input order.
	Surface []Point
	// RMSE is sqrt(mean(AbsError²)) across the surface.
	RMSE float64
	// MaxError is the largest AbsError on the surface.
	MaxError float64
	Elapsed  time.Duration
	// Quotes is the number of input quotes processed.
	Quotes int
}

// Config tunes a calibration run. Zero fields take defaults.
type Config struct {
	// Workers caps the parallel fan-out. Defaults to GOMAXPROCS.
	Workers int
	// Solver is passed through to the per-quote implied-vol solver.
	Solver impliedvol.Config
}

// Calibrate recovers the implied vol for every quote with default settings.
func Calibrate(quotes []MarketQuote, spot, rate, divYield float64) (Summary, error) {
	return CalibrateWithConfig(quotes, spot, rate, divYield, Config{})
}

// CalibrateWithConfig solves each quote for its implied volatility, re-prices
// it analytically at that vol, and records the absolute error. Quotes are
// partitioned across workers by disjoint index ranges; the RMSE/max-error
// reduction runs after all workers join.
func CalibrateWithConfig(quotes []MarketQuote, spot, rate, divYield float64, cfg Config) (Summary, error) {
	if len(quotes) == 0 {
		return Summary{}, fmt.Errorf("volsurface: no quotes to calibrate")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Workers > len(quotes) {
		cfg.Workers = len(quotes)
	}
	start := time.Now()

	surface := make([]Point, len(quotes))

	g := new(errgroup.Group)
	for w := 0; w < cfg.Workers; w++ {
		lo, hi := workerRange(len(quotes), cfg.Workers, w)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				pt, err := calibrateQuote(quotes[i], spot, rate, divYield, cfg.Solver)
				if err != nil {
					return fmt.Errorf("quote %d (K=%g, T=%g): %w", i, quotes[i].Strike, quotes[i].Expiry, err)
				}
				surface[i] = pt
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, fmt.Errorf("volsurface: %w", err)
	}

	var sse, maxErr float64
	for _, pt := range surface {
		sse += pt.AbsError * pt.AbsError
		maxErr = math.Max(maxErr, pt.AbsError)
	}

	return Summary{
		Surface:  surface,
		RMSE:     math.Sqrt(sse / float64(len(surface))),
		MaxError: maxErr,
		Elapsed:  time.Since(start),
		Quotes:   len(quotes),
	}, nil
}

func calibrateQuote(q MarketQuote, spot, rate, divYield float64, solver impliedvol.Config) (Point, error) {
	res, err := impliedvol.SolveWithConfig(q.Price, impliedvol.Params{
		Spot:     spot,
		Strike:   q.Strike,
		Expiry:   q.Expiry,
		Rate:     rate,
		DivYield: divYield,
		Kind:     q.Kind,
	}, solver)
	if err != nil {
		return Point{}, err
	}

	model, err := blackscholes.PriceValue(option.Contract{
		Spot: spot, Strike: q.Strike, Expiry: q.Expiry,
		Rate: rate, Vol: res.Vol, DivYield: divYield,
		Kind: q.Kind,
	})
	if err != nil {
		return Point{}, err
	}

	return Point{
		Strike:      q.Strike,
		Expiry:      q.Expiry,
		ImpliedVol:  res.Vol,
		MarketPrice: q.Price,
		ModelPrice:  model,
		AbsError:    math.Abs(model - q.Price),
	}, nil
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
