// Package auth provides bearer-token authentication, password hashing,
// and the gin middlewares that guard the API.
package auth

import "time"

// Config holds authentication configuration.
type Config struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	Issuer     string        `yaml:"issuer"`
	LoginRate  float64       `yaml:"login_rate"` // attempts per minute per client
	LoginBurst int           `yaml:"login_burst"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		TokenTTL:   24 * time.Hour,
		Issuer:     "realty",
		LoginRate:  10,
		LoginBurst: 10,
	}
}
