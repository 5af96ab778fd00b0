package certs

import (
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	Provider       string
	WorkerScript   string
	MinTLSVersion  string
	DistributionID string
	ACMRegion      string
}

func NewCertsConfig() Config {
	return Config{
		Provider:       env.GetEnv("HOSTNAME_PROVIDER", "cloudflare"),
		WorkerScript:   env.GetEnv("CLOUDFLARE_WORKER_SCRIPT", "orbiter-websites"),
		MinTLSVersion:  env.GetEnv("CLOUDFLARE_MIN_TLS_VERSION", "1.2"),
		DistributionID: env.GetEnv("CLOUDFRONT_DISTRIBUTION_ID", ""),
		// region must be us-east-1 for CloudFront certificates
		ACMRegion: env.GetEnv("ACM_REGION", "us-east-1"),
	}
}
