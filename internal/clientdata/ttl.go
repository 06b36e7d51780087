package clientdata

import "time"

// Default TTLs, overridable through configuration.
const (
	// Daily closes only change once per session.
	TTLPriceHistory = 6 * time.Hour
	// Quotes move continuously; keep just long enough to absorb bursts.
	TTLQuote = time.Minute
)
