package goSecure

import (
	"net"
	"net/url"
	"strings"
)

// RedirectValidation reports each redirect-URI check independently.
type RedirectValidation struct {
	Valid         bool
	ProtocolValid bool
	DomainValid   bool
	PathValid     bool
}

// CallbackContext is the observed OAuth callback a caller asks
// [Engine.DetectAttackPattern] to classify.
type CallbackContext struct {
	State               string
	SessionID           string
	ExpectedSessionID   string
	Fingerprint         string
	ExpectedFingerprint string
	RedirectURI         string
}

// AttackReport aggregates independent attack signals into a risk level.
// Classification only: the caller decides whether to log, alert, or block.
type AttackReport struct {
	Detected  bool
	Types     []string
	RiskLevel string
}

// Attack signal identifiers reported by [Engine.DetectAttackPattern].
const (
	// AttackSessionMismatch is an exported constant or variable used by the credential security engine.
	AttackSessionMismatch = "session_id_mismatch"
	// AttackFingerprintMismatch is an exported constant or variable used by the credential security engine.
	AttackFingerprintMismatch = "fingerprint_mismatch"
	// AttackRedirectChaining is an exported constant or variable used by the credential security engine.
	AttackRedirectChaining = "redirect_chaining"
	// AttackPathTraversal is an exported constant or variable used by the credential security engine.
	AttackPathTraversal = "path_traversal"
	// AttackMalformedState is an exported constant or variable used by the credential security engine.
	AttackMalformedState = "malformed_state"
	// AttackStateReuse is an exported constant or variable used by the credential security engine.
	AttackStateReuse = "state_reuse"
)

// Query parameters whose presence with a foreign-origin value indicates a
// nested-redirect attempt.
var nestedRedirectParams = []string{"redirect_uri", "redirect", "url", "next", "return_to", "continue"}

func validateRedirectURI(rawURI string, allowList []string, cfg RedirectConfig) RedirectValidation {
	out := RedirectValidation{}
	if rawURI == "" || len(rawURI) > 2048 {
		return out
	}

	parsed, err := url.Parse(rawURI)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return out
	}

	out.ProtocolValid = protocolAllowed(parsed, cfg.AllowInsecure)
	out.DomainValid = domainAllowed(parsed.Hostname(), allowList)
	out.PathValid = pathAllowed(parsed, cfg.MaxPathLength)
	out.Valid = out.ProtocolValid && out.DomainValid && out.PathValid
	return out
}

func protocolAllowed(u *url.URL, allowInsecure bool) bool {
	switch u.Scheme {
	case "https":
		return true
	case "http":
		return allowInsecure && isLoopbackHost(u.Hostname())
	default:
		return false
	}
}

func isLoopbackHost(host string) bool {
	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// domainAllowed accepts an exact host match or a subdomain separated by a
// dot boundary. Suffix spoofing ("evil-contribux.app" against
// "contribux.app") fails both branches.
func domainAllowed(host string, allowList []string) bool {
	if host == "" || len(allowList) == 0 {
		return false
	}
	host = strings.ToLower(host)

	for _, entry := range allowList {
		allowed := strings.ToLower(entry)
		if u, err := url.Parse(entry); err == nil && u.Host != "" {
			allowed = strings.ToLower(u.Hostname())
		}
		if allowed == "" {
			continue
		}
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

func pathAllowed(u *url.URL, maxPathLength int) bool {
	if maxPathLength <= 0 {
		maxPathLength = 512
	}
	if len(u.Path) > maxPathLength {
		return false
	}
	if strings.Contains(u.Path, "..") || strings.Contains(u.Path, "\\") {
		return false
	}
	if hasNestedRedirect(u) {
		return false
	}
	return true
}

// hasNestedRedirect reports whether the URI carries a redirect-style query
// parameter pointing at a different origin than the URI itself.
func hasNestedRedirect(u *url.URL) bool {
	query := u.Query()
	for _, param := range nestedRedirectParams {
		for _, value := range query[param] {
			if value == "" {
				continue
			}
			nested, err := url.Parse(value)
			if err != nil {
				return true
			}
			if nested.IsAbs() && !strings.EqualFold(nested.Hostname(), u.Hostname()) {
				return true
			}
		}
	}
	return false
}

func detectAttackPattern(cb CallbackContext) AttackReport {
	report := AttackReport{}

	if cb.ExpectedSessionID != "" && cb.SessionID != cb.ExpectedSessionID {
		report.Types = append(report.Types, AttackSessionMismatch)
	}
	if cb.ExpectedFingerprint != "" && cb.Fingerprint != "" && cb.Fingerprint != cb.ExpectedFingerprint {
		report.Types = append(report.Types, AttackFingerprintMismatch)
	}
	if cb.State != "" {
		if _, _, _, ok := splitState(cb.State); !ok {
			report.Types = append(report.Types, AttackMalformedState)
		}
	}
	if cb.RedirectURI != "" {
		if u, err := url.Parse(cb.RedirectURI); err == nil {
			if hasNestedRedirect(u) {
				report.Types = append(report.Types, AttackRedirectChaining)
			}
			if strings.Contains(u.Path, "..") {
				report.Types = append(report.Types, AttackPathTraversal)
			}
		}
	}

	report.Detected = len(report.Types) > 0
	report.RiskLevel = riskLevel(report.Types)
	return report
}

func riskLevel(signals []string) string {
	switch {
	case len(signals) == 0:
		return "none"
	case len(signals) == 1:
		if signals[0] == AttackFingerprintMismatch {
			return "low"
		}
		return "medium"
	default:
		return "high"
	}
}
