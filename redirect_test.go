package goSecure

import "testing"

func testRedirectConfig() RedirectConfig {
	return RedirectConfig{
		AllowList:     []string{"contribux.app", "https://app.example.com/callback"},
		MaxPathLength: 512,
	}
}

func TestRedirectAllowsExactAndSubdomain(t *testing.T) {
	cfg := testRedirectConfig()

	for _, uri := range []string{
		"https://contribux.app/callback",
		"https://auth.contribux.app/callback",
		"https://app.example.com/oauth/done",
	} {
		result := validateRedirectURI(uri, cfg.AllowList, cfg)
		if !result.Valid {
			t.Fatalf("%s rejected: %+v", uri, result)
		}
	}
}

func TestRedirectRejectsSuffixSpoofing(t *testing.T) {
	cfg := testRedirectConfig()

	result := validateRedirectURI("https://evil-contribux.app/callback", cfg.AllowList, cfg)
	if result.DomainValid || result.Valid {
		t.Fatalf("suffix spoof accepted: %+v", result)
	}

	result = validateRedirectURI("https://contribux.app.evil.com/callback", cfg.AllowList, cfg)
	if result.DomainValid || result.Valid {
		t.Fatalf("prefix spoof accepted: %+v", result)
	}
}

func TestRedirectRejectsForeignDomain(t *testing.T) {
	cfg := testRedirectConfig()
	result := validateRedirectURI("https://evil.com/callback", cfg.AllowList, cfg)
	if result.Valid || result.DomainValid {
		t.Fatalf("foreign domain accepted: %+v", result)
	}
	// Protocol and path pass individually; only the domain gate fails.
	if !result.ProtocolValid || !result.PathValid {
		t.Fatalf("unexpected gate results: %+v", result)
	}
}

func TestRedirectProtocolPolicy(t *testing.T) {
	cfg := testRedirectConfig()

	result := validateRedirectURI("http://contribux.app/callback", cfg.AllowList, cfg)
	if result.ProtocolValid {
		t.Fatal("plain http accepted outside loopback")
	}

	cfg.AllowInsecure = true
	cfg.AllowList = append(cfg.AllowList, "localhost", "127.0.0.1")

	result = validateRedirectURI("http://localhost/callback", cfg.AllowList, cfg)
	if !result.Valid {
		t.Fatalf("loopback http rejected with AllowInsecure: %+v", result)
	}
	result = validateRedirectURI("http://127.0.0.1/callback", cfg.AllowList, cfg)
	if !result.Valid {
		t.Fatalf("loopback ip http rejected with AllowInsecure: %+v", result)
	}
	// AllowInsecure never extends to non-loopback hosts.
	result = validateRedirectURI("http://contribux.app/callback", cfg.AllowList, cfg)
	if result.ProtocolValid {
		t.Fatal("non-loopback http accepted with AllowInsecure")
	}
}

func TestRedirectRejectsTraversalAndBackslash(t *testing.T) {
	cfg := testRedirectConfig()

	result := validateRedirectURI("https://contribux.app/cb/../admin", cfg.AllowList, cfg)
	if result.PathValid || result.Valid {
		t.Fatalf("traversal accepted: %+v", result)
	}

	result = validateRedirectURI(`https://contribux.app/cb\admin`, cfg.AllowList, cfg)
	if result.PathValid || result.Valid {
		t.Fatalf("backslash accepted: %+v", result)
	}
}

func TestRedirectRejectsNestedRedirect(t *testing.T) {
	cfg := testRedirectConfig()

	result := validateRedirectURI("https://contribux.app/cb?redirect_uri=https://evil.com/steal", cfg.AllowList, cfg)
	if result.PathValid || result.Valid {
		t.Fatalf("nested foreign redirect accepted: %+v", result)
	}

	// Same-origin nested value is fine.
	result = validateRedirectURI("https://contribux.app/cb?next=https://contribux.app/home", cfg.AllowList, cfg)
	if !result.Valid {
		t.Fatalf("same-origin nested redirect rejected: %+v", result)
	}

	// Relative nested value is fine.
	result = validateRedirectURI("https://contribux.app/cb?next=/home", cfg.AllowList, cfg)
	if !result.Valid {
		t.Fatalf("relative nested redirect rejected: %+v", result)
	}
}

func TestRedirectRejectsMalformedInput(t *testing.T) {
	cfg := testRedirectConfig()

	for _, uri := range []string{"", "not-a-url", "//missing-scheme.com/cb", "ftp://contribux.app/cb"} {
		result := validateRedirectURI(uri, cfg.AllowList, cfg)
		if result.Valid {
			t.Fatalf("%q accepted", uri)
		}
	}
}

func TestDetectAttackPatternSignals(t *testing.T) {
	report := detectAttackPattern(CallbackContext{
		SessionID:         "sess-attacker",
		ExpectedSessionID: "sess-victim",
		RedirectURI:       "https://contribux.app/cb?redirect_uri=https://evil.com/",
	})
	if !report.Detected {
		t.Fatal("attack not detected")
	}
	if report.RiskLevel != "high" {
		t.Fatalf("risk level = %q, want high", report.RiskLevel)
	}

	found := map[string]bool{}
	for _, s := range report.Types {
		found[s] = true
	}
	if !found[AttackSessionMismatch] || !found[AttackRedirectChaining] {
		t.Fatalf("signals = %v", report.Types)
	}
}

func TestDetectAttackPatternCleanCallback(t *testing.T) {
	report := detectAttackPattern(CallbackContext{
		SessionID:         "sess-1",
		ExpectedSessionID: "sess-1",
		RedirectURI:       "https://contribux.app/cb",
	})
	if report.Detected || report.RiskLevel != "none" {
		t.Fatalf("clean callback flagged: %+v", report)
	}
}

func TestDetectAttackPatternMalformedState(t *testing.T) {
	report := detectAttackPattern(CallbackContext{State: "garbage"})
	if !report.Detected {
		t.Fatal("malformed state not flagged")
	}
	if report.Types[0] != AttackMalformedState {
		t.Fatalf("signals = %v", report.Types)
	}
	if report.RiskLevel != "medium" {
		t.Fatalf("risk level = %q, want medium", report.RiskLevel)
	}
}
