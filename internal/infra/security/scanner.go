// Package security screens uploaded site content for phishing markers.
package security

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/metrics"
)

const (
	PatternInputs        = "input_elements_present"
	PatternLoginForm     = "login_form_present"
	PatternSuspiciousURL = "suspicious_url"
	PatternSensitiveData = "sensitive_data_collection"
	PatternUrgency       = "urgency_language"
	PatternObfuscation   = "obfuscated_content"
	PatternHidden        = "hidden_content"
)

type rule struct {
	name  string
	match func(content string) bool
}

func re(expr string) func(string) bool {
	return regexp.MustCompile(expr).MatchString
}

var (
	hrefPattern  = regexp.MustCompile(`href=["']([^"']*)["']`)
	brandPattern = regexp.MustCompile(`(paypal|google|microsoft|apple|amazon)(\.com|\.net|\.org)?`)
	trustedHref  = regexp.MustCompile(`^https://([\w-]+\.)*(paypal\.com|google\.com|microsoft\.com|apple\.com)/`)
	accountWords = regexp.MustCompile(`login|account|signin|security|verify`)
)

// Each matching rule adds one point to the risk score, so a page can score
// the same pattern name more than once.
var rules = []rule{
	{PatternInputs, re(`<input[^>]*>`)},
	{PatternLoginForm, re(`(?s)<form[^>]*>.*?<input[^>]*(password|login|username)[^>]*>.*?</form>`)},
	{PatternSuspiciousURL, untrustedAccountLink},
	{PatternSuspiciousURL, bareBrandName},
	{PatternSuspiciousURL, re(`\.(tk|xyz|top)\b`)},
	{PatternSensitiveData, re(`<input[^>]*type=["'](password|tel|card|credit|ssn|social)[^>]*>`)},
	{PatternSensitiveData, re(`\b(ssn|social security|credit card|cvv|password)\b`)},
	{PatternUrgency, re(`\b(urgent|immediate|limited time|account.*?suspend|verify.*?account|security.*?breach)\b`)},
	{PatternUrgency, re(`(24 hours|account.*?locked|unusual.*?activity)`)},
	{PatternObfuscation, re(`eval\s*\(`)},
	{PatternObfuscation, re(`document\.write\s*\(`)},
	{PatternObfuscation, re(`(unescape|escape|decodeuricomponent)\s*\(`)},
	{PatternObfuscation, re(`base64[^)]*\)`)},
	{PatternObfuscation, re(`<script[^>]*>[^<]*(\\x[0-9a-f]{2}|\\u[0-9a-f]{4})[^<]*</script>`)},
	{PatternHidden, re(`<[^>]+style=["'][^"']*(display:\s*none|visibility:\s*hidden|opacity:\s*0)[^"']*["']`)},
	{PatternHidden, re(`<div[^>]*hidden[^>]*>`)},
}

func untrustedAccountLink(content string) bool {
	for _, m := range hrefPattern.FindAllStringSubmatch(content, -1) {
		if accountWords.MatchString(m[1]) && !trustedHref.MatchString(m[1]) {
			return true
		}
	}
	return false
}

func bareBrandName(content string) bool {
	for _, m := range brandPattern.FindAllStringSubmatch(content, -1) {
		if m[2] == "" {
			return true
		}
	}
	return false
}

// Detect scores content without side effects.
func Detect(html string) entity.ScanReport {
	content := strings.ToLower(html)
	report := entity.ScanReport{DetectedPatterns: []string{}}
	for _, r := range rules {
		if r.match(content) {
			report.DetectedPatterns = append(report.DetectedPatterns, r.name)
		}
	}
	report.RiskScore = len(report.DetectedPatterns)
	return report
}

// Scanner notifies operators about risky content and, with a reviewer
// configured, lets it decide whether to block the deployment.
type Scanner struct {
	platformDomain string
	reviewer       interfaces.ContentReviewer
	notifier       interfaces.Notifier
}

var _ interfaces.ContentScreen = (*Scanner)(nil)

// NewScanner accepts a nil reviewer when no review model is configured.
func NewScanner(platformDomain string, reviewer interfaces.ContentReviewer, notifier interfaces.Notifier) *Scanner {
	return &Scanner{platformDomain: platformDomain, reviewer: reviewer, notifier: notifier}
}

func (s *Scanner) Screen(ctx context.Context, html, subdomain, cid string) (*entity.ScanReport, error) {
	report := Detect(html)
	if report.RiskScore == 0 {
		metrics.ContentScans.WithLabelValues("clean").Inc()
		return &report, nil
	}

	if s.reviewer != nil {
		blocked, reason, err := s.reviewer.Review(ctx, html, report.DetectedPatterns)
		if err != nil {
			slog.Error("content review failed, allowing deployment", "subdomain", subdomain, "cid", cid, "err", err)
		} else {
			report.Reviewed = true
			report.Blocked = blocked
			report.ReviewReason = reason
		}
	}

	result := "flagged"
	if report.Blocked {
		result = "blocked"
	}
	metrics.ContentScans.WithLabelValues(result).Inc()
	slog.Warn("risky content detected", "subdomain", subdomain, "cid", cid, "score", report.RiskScore,
		"patterns", report.DetectedPatterns, "blocked", report.Blocked)

	msg := fmt.Sprintf("Content with input elements detected (Risk Score %d): https://%s.%s\nCID: %s\nPatterns: %s",
		report.RiskScore, subdomain, s.platformDomain, cid, strings.Join(report.DetectedPatterns, ", "))
	if report.Reviewed {
		msg += fmt.Sprintf("\nReview: blocked=%t %s", report.Blocked, report.ReviewReason)
	}
	if err := s.notifier.Notify(ctx, "Suspicious site content", msg); err != nil {
		slog.Error("err notifying about content", "subdomain", subdomain, "err", err)
	}
	return &report, nil
}
