package governmentstats

import "time"

type Config struct {
	Enabled    bool
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RateLimit  float64
	// DataYear is the newest survey year requested; zero means last year.
	DataYear int
}
