package impliedvol_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/impliedvol"
	"github.com/meenmo/optlib/option"
)

// roundTrip prices the contract at a known vol and asserts the solver
// recovers it within tol.
func roundTrip(t *testing.T, c option.Contract, tol float64) {
	t.Helper()

	price, err := blackscholes.PriceValue(c)
	if err != nil {
		t.Fatalf("price: %v", err)
	}

	res, err := impliedvol.Solve(price, impliedvol.Params{
		Spot: c.Spot, Strike: c.Strike, Expiry: c.Expiry,
		Rate: c.Rate, DivYield: c.DivYield, Kind: c.Kind,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(res.Vol-c.Vol) > tol {
		t.Errorf("recovered vol %.8f, want %.8f ± %g (method=%s, iters=%d)",
			res.Vol, c.Vol, tol, res.Method, res.Iterations)
	}
	if res.Vol < impliedvol.MinVol || res.Vol > impliedvol.MaxVol {
		t.Errorf("vol %.8f outside [%g, %g]", res.Vol, impliedvol.MinVol, impliedvol.MaxVol)
	}
}

func TestSolve_RoundTripTypicalMoneyness(t *testing.T) {
	t.Parallel()

	for _, sigma := range []float64{0.05, 0.10, 0.25, 0.50, 0.75, 1.00} {
		roundTrip(t, option.Contract{
			Spot: 100, Strike: 100, Expiry: 1.0,
			Rate: 0.05, Vol: sigma,
			Kind: option.Call,
		}, 1e-6)
	}
}

func TestSolve_RoundTripPut(t *testing.T) {
	t.Parallel()

	roundTrip(t, option.Contract{
		Spot: 100, Strike: 110, Expiry: 0.5,
		Rate: 0.05, Vol: 0.30,
		Kind: option.Put,
	}, 1e-6)
}

func TestSolve_RoundTripWithDividend(t *testing.T) {
	t.Parallel()

	roundTrip(t, option.Contract{
		Spot: 100, Strike: 95, Expiry: 1.0,
		Rate: 0.05, Vol: 0.22, DivYield: 0.03,
		Kind: option.Call,
	}, 1e-5)
}

func TestSolve_DeepOTMForcesFallback(t *testing.T) {
	t.Parallel()

	// Vega is nearly dead out here; the Newton branch gives up and the
	// bisection restart has to carry the solve. Accuracy degrades to ~1e-4.
	roundTrip(t, option.Contract{
		Spot: 100, Strike: 150, Expiry: 0.25,
		Rate: 0.05, Vol: 0.20,
		Kind: option.Call,
	}, 1e-4)
}

func TestSolve_HighVol(t *testing.T) {
	t.Parallel()

	roundTrip(t, option.Contract{
		Spot: 100, Strike: 100, Expiry: 1.0,
		Rate: 0.05, Vol: 0.80,
		Kind: option.Call,
	}, 1e-4)
}

func TestSolve_AlwaysTerminatesFinite(t *testing.T) {
	t.Parallel()

	// A price no vol in the bracket can reproduce: the solver must still
	// return a finite in-range estimate rather than loop or fail.
	res, err := impliedvol.Solve(150, impliedvol.Params{
		Spot: 100, Strike: 100, Expiry: 1.0, Rate: 0.05, Kind: option.Call,
	})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.IsNaN(res.Vol) || math.IsInf(res.Vol, 0) {
		t.Fatalf("vol = %v, want finite", res.Vol)
	}
	if res.Vol < impliedvol.MinVol || res.Vol > impliedvol.MaxVol {
		t.Errorf("vol %.6f outside solver bounds", res.Vol)
	}
	if res.Converged {
		t.Error("converged = true for an unattainable price")
	}
}

func TestSolve_RejectsInvalidInputs(t *testing.T) {
	t.Parallel()

	valid := impliedvol.Params{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Kind: option.Call}

	if _, err := impliedvol.Solve(0, valid); !errors.Is(err, option.ErrInvalidParameter) {
		t.Errorf("zero price: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := impliedvol.Solve(-3, valid); !errors.Is(err, option.ErrInvalidParameter) {
		t.Errorf("negative price: err = %v, want ErrInvalidParameter", err)
	}

	bad := valid
	bad.Expiry = 0
	if _, err := impliedvol.Solve(10, bad); !errors.Is(err, option.ErrInvalidParameter) {
		t.Errorf("zero expiry: err = %v, want ErrInvalidParameter", err)
	}
}

func TestSolveWithConfig_BudgetsHonored(t *testing.T) {
	t.Parallel()

	c := option.Contract{Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Vol: 0.25, Kind: option.Call}
	price, err := blackscholes.PriceValue(c)
	if err != nil {
		t.Fatalf("price: %v", err)
	}

	cfg := impliedvol.Config{Tolerance: 1e-10, NewtonMaxIter: 50, BisectMaxIter: 100}
	res, err := impliedvol.SolveWithConfig(price, impliedvol.Params{
		Spot: 100, Strike: 100, Expiry: 1, Rate: 0.05, Kind: option.Call,
	}, cfg)
	if err != nil {
		t.Fatalf("SolveWithConfig: %v", err)
	}
	if res.Iterations > 150 {
		t.Errorf("iterations = %d, want within the combined budget", res.Iterations)
	}
	if math.Abs(res.Vol-c.Vol) > 1e-8 {
		t.Errorf("vol = %.10f, want %.10f", res.Vol, c.Vol)
	}
}
