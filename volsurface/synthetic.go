package volsurface

import (
	"fmt"
	"math"

	"github.com/meenmo/optlib/blackscholes"
	"github.com/meenmo/optlib/option"
)

// SmileParams parameterizes the synthetic smile
//
//	vol(K,T) = Base + Skew·m·√(0.5/T) + Smile·m²,  m = ln(K/spot)
//
// floored at Floor. The √(0.5/T) factor flattens the skew at longer expiries.
type SmileParams struct {
	// Base is the at-the-money vol level. Default 0.20.
	Base float64
	// Skew tilts vol per unit log-moneyness. Default -0.10.
	Skew float64
	// Smile bends vol quadratically in log-moneyness. Default 0.05.
	Smile float64
	// Floor is the minimum vol. Default 0.05.
	Floor float64
}

// DefaultSmile is the parameter set used when SyntheticQuotes receives the
// zero value.
var DefaultSmile = SmileParams{Base: 0.20, Skew: -0.10, Smile: 0.05, Floor: 0.05}

// SyntheticQuotes prices a strike × expiry grid off a parametric smile and
// returns the quotes in grid order (expiries outer, strikes inner). OTM
// convention: strikes at or above spot quote calls, below spot quote puts.
//
// The generator exists to build round-trip calibration fixtures; it is not
// part of the production calibration path.
func SyntheticQuotes(spot, rate float64, strikes, expiries []float64, smile SmileParams) ([]MarketQuote, error) {
	if spot <= 0 {
		return nil, fmt.Errorf("volsurface: spot %w (got %g)", option.ErrInvalidParameter, spot)
	}
	if smile == (SmileParams{}) {
		smile = DefaultSmile
	}

	quotes := make([]MarketQuote, 0, len(strikes)*len(expiries))
	for _, expiry := range expiries {
		for _, strike := range strikes {
			m := math.Log(strike / spot)
			vol := smile.Base + smile.Skew*m*math.Sqrt(0.5/expiry) + smile.Smile*m*m
			vol = math.Max(vol, smile.Floor)

			kind := option.Put
			if strike >= spot {
				kind = option.Call
			}

			price, err := blackscholes.PriceValue(option.Contract{
				Spot: spot, Strike: strike, Expiry: expiry,
				Rate: rate, Vol: vol,
				Kind: kind,
			})
			if err != nil {
				return nil, fmt.Errorf("volsurface: synthetic quote (K=%g, T=%g): %w", strike, expiry, err)
			}

			quotes = append(quotes, MarketQuote{
				Strike: strike,
				Expiry: expiry,
				Price:  price,
				Kind:   kind,
			})
		}
	}
	return quotes, nil
}
