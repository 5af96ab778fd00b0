package redirects

import (
	"slices"
	"strconv"
	"strings"
)

// Rule is one line of a Netlify-style _redirects file.
type Rule struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Status      int    `json:"status"`
	Force       bool   `json:"force"`
	Proxy       bool   `json:"proxy"`
}

// Parse skips comments, blank lines and lines with fewer than two fields.
// A missing or unparsable status defaults to 301.
func Parse(content string) []Rule {
	rules := []Rule{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}

		rule := Rule{
			Source:      parts[0],
			Destination: parts[1],
			Status:      301,
			Force:       slices.Contains(parts, "!"),
			Proxy:       slices.Contains(parts, "200"),
		}
		if len(parts) > 2 {
			if status, err := strconv.Atoi(strings.TrimSuffix(parts[2], "!")); err == nil {
				rule.Status = status
			}
			if strings.HasSuffix(parts[2], "!") {
				rule.Force = true
			}
		}
		rules = append(rules, rule)
	}
	return rules
}
