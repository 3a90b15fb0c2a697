package option

import "errors"

// ErrInvalidParameter reports a structurally invalid pricing input, such as a
// non-positive spot, strike, expiry or volatility. It is the only failure the
// engine raises for bad caller data; numerical edge cases inside solvers are
// handled by fallbacks instead.
var ErrInvalidParameter = errors.New("must be positive")
