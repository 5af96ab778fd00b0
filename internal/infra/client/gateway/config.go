package gateway

import (
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type GatewayConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewGatewayConfig() GatewayConfig {
	return GatewayConfig{
		BaseURL: env.GetEnv("CONTENT_GATEWAY_URL", "https://gateway.pinata.cloud"),
		Token:   env.GetEnv("CONTENT_GATEWAY_TOKEN", ""),
		Timeout: env.GetDuration("CONTENT_GATEWAY_TIMEOUT", 10*time.Second),
	}
}
