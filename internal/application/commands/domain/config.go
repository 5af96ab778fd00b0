package domain

import (
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type Config struct {
	PlatformDomain    string
	ZoneName          string
	TargetType        consts.RecordType
	ProxyIP           string
	Recheck           consts.RecheckPolicy
	RegistrationCheck bool
}

func NewDomainConfig() Config {
	proxyIP := ""
	if ips := env.GetList("PROXY_IPS", nil); len(ips) > 0 {
		proxyIP = ips[0]
	}
	return Config{
		PlatformDomain:    env.GetEnv("PLATFORM_DOMAIN", "orbiter.website"),
		ZoneName:          env.GetEnv("CLOUDFLARE_ZONE_NAME", "orbiter.website"),
		TargetType:        consts.RecordType(env.GetEnv("DNS_TARGET_TYPE", string(consts.RecordTypeCNAME))),
		ProxyIP:           proxyIP,
		Recheck:           consts.RecheckPolicy(env.GetEnv("VERIFY_RECHECK", string(consts.RecheckNone))),
		RegistrationCheck: env.GetBool("DOMAIN_REGISTRATION_CHECK", false),
	}
}

// Authorizer checks an identity's role against an action.
type Authorizer interface {
	Authorize(identity *auth.Identity, action consts.Action) error
}
