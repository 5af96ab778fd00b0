package cloudflare

import (
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	APIBase   string
	APIToken  string
	ZoneID    string
	ZoneName  string
	AccountID string
	Timeout   time.Duration
}

func NewCloudflareConfig() Config {
	return Config{
		APIBase:   env.GetEnv("CLOUDFLARE_API_BASE", "https://api.cloudflare.com/client/v4"),
		APIToken:  env.GetEnv("CLOUDFLARE_API_TOKEN", ""),
		ZoneID:    env.GetEnv("CLOUDFLARE_ZONE_ID", ""),
		ZoneName:  env.GetEnv("CLOUDFLARE_ZONE_NAME", "orbiter.website"),
		AccountID: env.GetEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		Timeout:   env.GetDuration("CLOUDFLARE_TIMEOUT", 15*time.Second),
	}
}
