package subdomain_test

import (
	"strings"
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/subdomain"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellFormedNames(t *testing.T) {
	for _, name := range []string{"abc", "my-site", "a1b2c3", "x9-portfolio-2024", strings.Repeat("a", 63), "  Mixed-Case  "} {
		res := subdomain.Validate(name)
		require.True(t, res.IsValid, name)
		require.Empty(t, res.Errors, name)
	}
}

func TestValidateRejectsShortName(t *testing.T) {
	res := subdomain.Validate("ab")

	require.False(t, res.IsValid)
	require.Contains(t, res.Errors, subdomain.ErrTooShort)
}

func TestValidateRejectsLongName(t *testing.T) {
	res := subdomain.Validate(strings.Repeat("a", 64))

	require.False(t, res.IsValid)
	require.Equal(t, []string{subdomain.ErrTooLong}, res.Errors)
}

func TestValidateRejectsDeceptiveNameEvenWhenOtherwiseValid(t *testing.T) {
	res := subdomain.Validate("paypal-login")

	require.False(t, res.IsValid)
	require.Equal(t, []string{subdomain.ErrMisleading}, res.Errors, "misleading message must be reported once")
}

func TestValidateAccumulatesEveryViolation(t *testing.T) {
	res := subdomain.Validate("-a")

	require.False(t, res.IsValid)
	require.Equal(t, []string{subdomain.ErrTooShort, subdomain.ErrCharset}, res.Errors)

	res = subdomain.Validate("my--apple-")
	require.Equal(t, []string{subdomain.ErrCharset, subdomain.ErrConsecutiveHyphen, subdomain.ErrMisleading}, res.Errors)
}

func TestValidateIsCaseInsensitiveForReservedWords(t *testing.T) {
	res := subdomain.Validate("ADMIN")

	require.False(t, res.IsValid)
	require.Equal(t, []string{subdomain.ErrRestricted}, res.Errors)
	require.True(t, subdomain.IsReserved(" Www "))
	require.False(t, subdomain.IsReserved("portfolio"))
}

func TestValidateRejectsCharsOutsideLabelAlphabet(t *testing.T) {
	for _, name := range []string{"under_score", "dot.name", "émoji", "space name"} {
		res := subdomain.Validate(name)
		require.False(t, res.IsValid, name)
		require.Contains(t, res.Errors, subdomain.ErrCharset, name)
	}
}
