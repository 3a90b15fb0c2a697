package utils

import (
	"fmt"
	"math"
	"time"
)

// ParseDate converts YYYY-MM-DD to time.Time.
func ParseDate(strDate string) (time.Time, error) {
	const layout = "2006-01-02"
	t, err := time.Parse(layout, strDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("utils: parse date %q: %w", strDate, err)
	}
	return t, nil
}

// Days returns the day count fraction in days between two dates.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// YearsToExpiry returns the ACT/365F year fraction from valuation to expiry.
// Expiries at or before the valuation date are reported as zero.
func YearsToExpiry(valuation, expiry time.Time) float64 {
	if !expiry.After(valuation) {
		return 0
	}
	return YearFraction(valuation, expiry, "ACT/365F")
}

// RoundTo rounds a float to the specified decimal places.
func RoundTo(val float64, decimals uint32) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
