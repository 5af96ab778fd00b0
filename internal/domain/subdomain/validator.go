// Package subdomain enforces naming rules for names under the platform domain.
package subdomain

import (
	"regexp"
	"strings"
)

const (
	MinLength = 3
	MaxLength = 63

	ErrRestricted        = "This subdomain name is restricted"
	ErrTooShort          = "Subdomain must be at least 3 characters long"
	ErrTooLong           = "Subdomain must be less than 64 characters long"
	ErrCharset           = "Subdomain can only contain lowercase letters, numbers, and hyphens. It must start and end with a letter or number"
	ErrConsecutiveHyphen = "Subdomain cannot contain consecutive hyphens"
	ErrMisleading        = "This subdomain name is not allowed as it may be misleading"
)

var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

var restricted = map[string]struct{}{}

func init() {
	for _, name := range []string{
		// system and security
		"admin", "administrator", "root", "system", "sys", "security", "secure", "ssl",
		"certbot", "letsencrypt", "plesk", "cpanel", "whm", "webmail", "mail", "email",
		"smtp", "pop", "pop3", "imap", "app",
		// authentication
		"login", "signin", "signup", "register", "auth", "oauth", "sso", "saml",
		"accounts", "profile", "password",
		// services
		"api", "api-docs", "docs", "status", "health", "staging", "test", "dev",
		"development", "prod", "production", "beta", "alpha", "demo", "internal", "localhost",
		// infrastructure
		"ns", "ns1", "ns2", "nameserver", "dns", "ftp", "sftp", "ssh", "vpn", "proxy",
		"cdn", "assets", "static", "media", "images", "database", "redis",
		"elasticsearch", "mongo",
		// website sections
		"www", "web", "site", "blog", "shop", "store", "support", "help", "faq", "kb",
		"wiki", "portal", "dashboard", "analytics", "stats",
		// payments
		"billing", "payment", "checkout", "cart", "paypal", "stripe", "invoice",
		// protocols and tooling
		"http", "https", "wss", "ws", "git", "svn", "jenkins", "ci", "build",
	} {
		restricted[name] = struct{}{}
	}
}

var deceptiveFragments = []string{
	"paypal", "google", "microsoft", "apple", "amazon", "facebook", "instagram",
	"twitter", "netflix", "login", "signin", "security", "support", "account",
	"update", "verify", "wallet",
}

type Result struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Normalize lower-cases and trims a candidate the same way Validate does.
func Normalize(candidate string) string {
	return strings.ToLower(strings.TrimSpace(candidate))
}

func IsReserved(candidate string) bool {
	_, ok := restricted[Normalize(candidate)]
	return ok
}

// Validate runs every rule and collects all violations.
func Validate(candidate string) Result {
	name := Normalize(candidate)
	res := Result{IsValid: true, Errors: []string{}}
	fail := func(msg string) {
		res.IsValid = false
		res.Errors = append(res.Errors, msg)
	}

	if _, ok := restricted[name]; ok {
		fail(ErrRestricted)
	}
	if len(name) < MinLength {
		fail(ErrTooShort)
	}
	if len(name) > MaxLength {
		fail(ErrTooLong)
	}
	if !labelPattern.MatchString(name) {
		fail(ErrCharset)
	}
	if strings.Contains(name, "--") {
		fail(ErrConsecutiveHyphen)
	}
	for _, fragment := range deceptiveFragments {
		if strings.Contains(name, fragment) {
			fail(ErrMisleading)
			break
		}
	}

	return res
}
