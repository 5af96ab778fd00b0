package dns

import (
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	Provider          string
	PlatformDomain    string
	EdgeTarget        string
	HostedZoneID      string
	RecordTTL         int64
	DoHEndpoint       string
	DoHTimeout        time.Duration
	ProxyIPs          []string
	RegistrationCheck bool
}

func NewDNSConfig() Config {
	return Config{
		Provider:          env.GetEnv("DNS_PROVIDER", "cloudflare"),
		PlatformDomain:    env.GetEnv("PLATFORM_DOMAIN", "orbiter.website"),
		EdgeTarget:        env.GetEnv("EDGE_TARGET", "orbiter-websites.orbiter-api.workers.dev"),
		HostedZoneID:      env.GetEnv("ROUTE53_HOSTED_ZONE_ID", ""),
		RecordTTL:         int64(env.GetInt("DNS_RECORD_TTL", 300)),
		DoHEndpoint:       env.GetEnv("DOH_ENDPOINT", "https://cloudflare-dns.com/dns-query"),
		DoHTimeout:        env.GetDuration("DOH_TIMEOUT", 5*time.Second),
		ProxyIPs:          env.GetList("PROXY_IPS", nil),
		RegistrationCheck: env.GetBool("DOMAIN_REGISTRATION_CHECK", false),
	}
}

func (c Config) FQDN(name string) string {
	return name + "." + c.PlatformDomain
}
