package blackscholes_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/option"
)

// atmCall is the reference contract used across the suite:
// BSM value ~10.4506 (call) / ~5.5735 (put).
var atmCall = option.Contract{
	Spot: 100, Strike: 100, Expiry: 1.0,
	Rate: 0.05, Vol: 0.20,
	Kind: option.Call,
}

func price(t *testing.T, c option.Contract) float64 {
	t.Helper()
	r, err := blackscholes.Price(c)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	return r.Price
}

func TestPrice_ATMScenario(t *testing.T) {
	t.Parallel()

	call := price(t, atmCall)
	if call <= 9 || call >= 12 {
		t.Errorf("ATM call = %.4f, want in (9, 12)", call)
	}

	put := atmCall
	put.Kind = option.Put
	p := price(t, put)
	if p <= 4 || p >= 8 {
		t.Errorf("ATM put = %.4f, want in (4, 8)", p)
	}
}

func TestPrice_PutCallParity(t *testing.T) {
	t.Parallel()

	// C - P = S·e^{-qT} - K·e^{-rT} must hold to numerical precision.
	c := option.Contract{
		Spot: 100, Strike: 105, Expiry: 0.5,
		Rate: 0.05, Vol: 0.25, DivYield: 0.02,
	}
	call := c
	call.Kind = option.Call
	put := c
	put.Kind = option.Put

	parity := price(t, call) - price(t, put)
	want := c.Spot*math.Exp(-c.DivYield*c.Expiry) - c.Strike*math.Exp(-c.Rate*c.Expiry)
	if math.Abs(parity-want) > 1e-8 {
		t.Errorf("parity C-P = %.12f, want %.12f", parity, want)
	}
}

func TestPrice_DeepMoneyness(t *testing.T) {
	t.Parallel()

	// Deep ITM call ~ S - K·e^{-rT} = 200 - 95.12 ≈ 104.88.
	itm := option.Contract{Spot: 200, Strike: 100, Expiry: 1, Rate: 0.05, Vol: 0.20, Kind: option.Call}
	if p := price(t, itm); p <= 100 || p >= 110 {
		t.Errorf("deep ITM call = %.4f, want in (100, 110)", p)
	}

	// The matching put is deep OTM and nearly worthless.
	otm := itm
	otm.Kind = option.Put
	if p := price(t, otm); p >= 0.01 {
		t.Errorf("deep OTM put = %.6f, want < 0.01", p)
	}
}

func TestPrice_NearZeroVol(t *testing.T) {
	t.Parallel()

	// As vol -> 0 the call collapses to its discounted forward intrinsic:
	// max(S·e^{-qT} - K·e^{-rT}, 0) = 100 - 95·e^{-0.05} ≈ 9.63.
	c := option.Contract{Spot: 100, Strike: 95, Expiry: 1, Rate: 0.05, Vol: 0.001, Kind: option.Call}
	want := 100 - 95*math.Exp(-0.05)
	if got := price(t, c); math.Abs(got-want) > 0.5 {
		t.Errorf("near-zero vol call = %.4f, want ~%.4f", got, want)
	}
}

func TestPrice_MonotoneInVol(t *testing.T) {
	t.Parallel()

	for _, kind := range []option.Kind{option.Call, option.Put} {
		prev := -1.0
		for _, vol := range []float64{0.05, 0.10, 0.20, 0.40, 0.80} {
			c := atmCall
			c.Kind = kind
			c.Vol = vol
			p := price(t, c)
			if p <= prev {
				t.Errorf("%s price not increasing in vol: %.6f at vol=%.2f after %.6f", kind, p, vol, prev)
			}
			prev = p
		}
	}
}

func TestPrice_RejectsInvalidInputs(t *testing.T) {
	t.Parallel()

	bad := []option.Contract{
		{Spot: 0, Strike: 100, Expiry: 1, Vol: 0.2},
		{Spot: 100, Strike: -1, Expiry: 1, Vol: 0.2},
		{Spot: 100, Strike: 100, Expiry: 0, Vol: 0.2},
		{Spot: 100, Strike: 100, Expiry: 1, Vol: 0},
	}
	for _, c := range bad {
		if _, err := blackscholes.Price(c); !errors.Is(err, option.ErrInvalidParameter) {
			t.Errorf("Price(%+v): err = %v, want ErrInvalidParameter", c, err)
		}
		if _, err := blackscholes.AllGreeks(c); !errors.Is(err, option.ErrInvalidParameter) {
			t.Errorf("AllGreeks(%+v): err = %v, want ErrInvalidParameter", c, err)
		}
	}
}

func TestGreeks_Bounds(t *testing.T) {
	t.Parallel()

	c := option.Contract{
		Spot: 100, Strike: 100, Expiry: 1,
		Rate: 0.05, Vol: 0.20, DivYield: 0.02,
		Kind: option.Call,
	}

	fwd := math.Exp(c.DivYield * c.Expiry)
	if d := blackscholes.Delta(c) * fwd; d < 0 || d > 1 {
		t.Errorf("call delta·e^{qT} = %.6f, want in [0, 1]", d)
	}

	put := c
	put.Kind = option.Put
	if d := blackscholes.Delta(put) * fwd; d < -1 || d > 0 {
		t.Errorf("put delta·e^{qT} = %.6f, want in [-1, 0]", d)
	}

	if g := blackscholes.Gamma(c); g < 0 {
		t.Errorf("gamma = %.6f, want >= 0", g)
	}
	if v := blackscholes.Vega(c); v < 0 {
		t.Errorf("vega = %.6f, want >= 0", v)
	}
	if th := blackscholes.Theta(atmCall); th >= 0 {
		t.Errorf("ATM call theta = %.6f, want < 0", th)
	}
}

func TestAllGreeks_CharmSpeedLeftToFiniteDifference(t *testing.T) {
	t.Parallel()

	g, err := blackscholes.AllGreeks(atmCall)
	if err != nil {
		t.Fatalf("AllGreeks: %v", err)
	}
	if g.Method != "BS-Analytical" {
		t.Errorf("method = %q, want BS-Analytical", g.Method)
	}
	// No closed form here: only the finite-difference engine fills these.
	if g.Charm != 0 || g.Speed != 0 {
		t.Errorf("charm=%g speed=%g, want both 0 from the analytic bundle", g.Charm, g.Speed)
	}
	if g.Vanna == 0 || g.Volga == 0 {
		t.Errorf("vanna=%g volga=%g, want closed-form values", g.Vanna, g.Volga)
	}
}
