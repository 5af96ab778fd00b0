package site

import (
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	PlatformDomain string
}

func NewSiteConfig() Config {
	return Config{
		PlatformDomain: env.GetEnv("PLATFORM_DOMAIN", "orbiter.website"),
	}
}

// Keys are the edge key/value namespaces the site router reads.
type Keys struct {
	Sites     interfaces.Namespace
	SiteToOrg interfaces.Namespace
	Redirects interfaces.Namespace
}
