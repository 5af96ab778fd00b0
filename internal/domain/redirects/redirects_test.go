package redirects_test

import (
	"testing"

	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/redirects"
	"github.com/stretchr/testify/require"
)

func TestParseReadsRulesAndSkipsNoise(t *testing.T) {
	content := `
# legacy blog
/blog/*   /posts/:splat
/old      /new   302
/api/*    https://api.example.com/:splat 200
/force    /target 301!
broken-line
`
	rules := redirects.Parse(content)

	require.Len(t, rules, 4)
	require.Equal(t, redirects.Rule{Source: "/blog/*", Destination: "/posts/:splat", Status: 301}, rules[0])
	require.Equal(t, 302, rules[1].Status)
	require.True(t, rules[2].Proxy)
	require.Equal(t, 200, rules[2].Status)
	require.True(t, rules[3].Force)
	require.Equal(t, 301, rules[3].Status)
}

func TestParseEmptyFileReturnsEmptySlice(t *testing.T) {
	require.Empty(t, redirects.Parse("\n# nothing here\n"))
}
