package goSecure

import (
	"strings"
	"testing"
)

func TestBackupCodeSetGeneration(t *testing.T) {
	set, err := generateBackupCodeSet("user-1", 10, 10)
	if err != nil {
		t.Fatalf("generateBackupCodeSet failed: %v", err)
	}
	if len(set.PlainText) != 10 || len(set.Records) != 10 {
		t.Fatalf("set sizes = (%d, %d), want (10, 10)", len(set.PlainText), len(set.Records))
	}

	seen := map[string]bool{}
	for _, code := range set.PlainText {
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true

		// 10 characters plus the mid dash.
		if len(code) != 11 {
			t.Fatalf("formatted length = %d for %q", len(code), code)
		}
		if code[5] != '-' {
			t.Fatalf("dash misplaced in %q", code)
		}
		for _, r := range strings.ReplaceAll(code, "-", "") {
			if !strings.ContainsRune(BackupCodeAlphabet, r) {
				t.Fatalf("character %q outside alphabet in %q", r, code)
			}
		}
	}
}

func TestBackupCodeAlphabetExcludesAmbiguous(t *testing.T) {
	for _, r := range "0O1I" {
		if strings.ContainsRune(BackupCodeAlphabet, r) {
			t.Fatalf("ambiguous character %q present in alphabet", r)
		}
	}
}

func TestCanonicalizeBackupCode(t *testing.T) {
	cases := map[string]string{
		"ABCDE-FGHJK":   "ABCDEFGHJK",
		"abcde-fghjk":   "ABCDEFGHJK",
		" ABCDE FGHJK ": "ABCDEFGHJK",
		"ABCDEFGHJK":    "ABCDEFGHJK",
	}
	for in, want := range cases {
		if got := canonicalizeBackupCode(in); got != want {
			t.Fatalf("canonicalizeBackupCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBackupCodeHashBindsUser(t *testing.T) {
	a := backupCodeHash("user-1", "ABCDEFGHJK")
	b := backupCodeHash("user-2", "ABCDEFGHJK")
	if a == b {
		t.Fatal("same code hashed identically for different users")
	}
	if a != backupCodeHash("user-1", "ABCDEFGHJK") {
		t.Fatal("hash not deterministic")
	}
}

func TestMatchBackupCode(t *testing.T) {
	set, err := generateBackupCodeSet("user-1", 5, 10)
	if err != nil {
		t.Fatalf("generateBackupCodeSet failed: %v", err)
	}

	// Submitted exactly as displayed.
	if idx := matchBackupCode("user-1", set.PlainText[2], set.Records); idx != 2 {
		t.Fatalf("match index = %d, want 2", idx)
	}
	// Lowercase without the dash still matches.
	sloppy := strings.ToLower(strings.ReplaceAll(set.PlainText[4], "-", ""))
	if idx := matchBackupCode("user-1", sloppy, set.Records); idx != 4 {
		t.Fatalf("sloppy match index = %d, want 4", idx)
	}

	if idx := matchBackupCode("user-1", "AAAAA-AAAAA", set.Records); idx != -1 {
		t.Fatalf("bogus code matched at %d", idx)
	}
	if idx := matchBackupCode("user-2", set.PlainText[0], set.Records); idx != -1 {
		t.Fatalf("wrong user matched at %d", idx)
	}
	if idx := matchBackupCode("user-1", "", set.Records); idx != -1 {
		t.Fatalf("empty code matched at %d", idx)
	}
}

func TestFormatBackupCodeShortPassthrough(t *testing.T) {
	if got := formatBackupCode("ABCDE"); got != "ABCDE" {
		t.Fatalf("short code reformatted to %q", got)
	}
	if got := formatBackupCode("ABCDEFGH"); got != "ABCD-EFGH" {
		t.Fatalf("8-char code formatted to %q", got)
	}
}
