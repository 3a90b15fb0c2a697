package binomial_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/optlib/binomial"
	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/option"
)

var atmCall = option.Contract{
	Spot: 100, Strike: 100, Expiry: 1.0,
	Rate: 0.05, Vol: 0.20,
	Kind: option.Call,
}

func TestPrice_ConvergesToAnalytic(t *testing.T) {
	t.Parallel()

	analytic, err := blackscholes.Price(atmCall)
	if err != nil {
		t.Fatalf("analytic: %v", err)
	}

	coarse, err := binomial.Price(atmCall, 50)
	if err != nil {
		t.Fatalf("Price(50): %v", err)
	}
	fine, err := binomial.Price(atmCall, 2000)
	if err != nil {
		t.Fatalf("Price(2000): %v", err)
	}

	coarseErr := math.Abs(coarse.Price - analytic.Price)
	fineErr := math.Abs(fine.Price - analytic.Price)
	if fineErr >= coarseErr {
		t.Errorf("refinement did not help: |err(2000)|=%.6f >= |err(50)|=%.6f", fineErr, coarseErr)
	}
	// CRR error at 2000 steps should be well inside a cent.
	if fineErr > 0.01 {
		t.Errorf("Binomial(2000) off analytic by %.6f, want <= 0.01", fineErr)
	}
}

func TestPrice_AmericanPutPremium(t *testing.T) {
	t.Parallel()

	euro := option.Contract{
		Spot: 100, Strike: 110, Expiry: 1.0,
		Rate: 0.05, Vol: 0.25,
		Kind: option.Put, Style: option.European,
	}
	amer := euro
	amer.Style = option.American

	pe, err := binomial.Price(euro, 500)
	if err != nil {
		t.Fatalf("european: %v", err)
	}
	pa, err := binomial.Price(amer, 500)
	if err != nil {
		t.Fatalf("american: %v", err)
	}

	// Early exercise is worth something on an ITM put with positive rates.
	if pa.Price < pe.Price {
		t.Errorf("american put %.6f < european put %.6f", pa.Price, pe.Price)
	}
	// An American option is never worth less than immediate exercise.
	if intrinsic := option.Intrinsic(amer.Spot, amer.Strike, amer.Kind); pa.Price < intrinsic-1e-9 {
		t.Errorf("american put %.6f below intrinsic %.6f", pa.Price, intrinsic)
	}
}

func TestPrice_UnstableDiscretization(t *testing.T) {
	t.Parallel()

	// One huge step against a tiny vol pushes the risk-neutral probability
	// far above 1; the tree must refuse rather than clamp.
	c := option.Contract{
		Spot: 100, Strike: 100, Expiry: 1.0,
		Rate: 0.50, Vol: 0.01,
		Kind: option.Call,
	}
	_, err := binomial.Price(c, 1)
	if !errors.Is(err, binomial.ErrUnstableDiscretization) {
		t.Fatalf("err = %v, want ErrUnstableDiscretization", err)
	}
}

func TestPrice_DefaultsAndValidation(t *testing.T) {
	t.Parallel()

	r, err := binomial.Price(atmCall, 0)
	if err != nil {
		t.Fatalf("Price(default): %v", err)
	}
	if r.Method != "Binomial-500" {
		t.Errorf("method = %q, want Binomial-500 from the default depth", r.Method)
	}
	if r.StdError != 0 || r.Paths != 0 {
		t.Errorf("lattice result carries MC fields: stderr=%g paths=%d", r.StdError, r.Paths)
	}

	bad := atmCall
	bad.Expiry = -1
	if _, err := binomial.Price(bad, 100); !errors.Is(err, option.ErrInvalidParameter) {
		t.Errorf("err = %v, want ErrInvalidParameter", err)
	}
}
