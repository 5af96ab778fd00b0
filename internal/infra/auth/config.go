package auth

import (
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	JWKSURL  string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

func NewAuthConfig() Config {
	return Config{
		JWKSURL:  env.GetEnv("AUTH_JWKS_URL", ""),
		Issuer:   env.GetEnv("AUTH_ISSUER", ""),
		Audience: env.GetEnv("AUTH_AUDIENCE", ""),
		Leeway:   env.GetDuration("AUTH_LEEWAY", 10*time.Second),
	}
}
