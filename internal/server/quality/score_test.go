package quality

import (
	"testing"

	"github.com/dmitrijs2005/credsec/internal/server/models"
)

func maxFactors() Factors {
	return Factors{
		HasPassword: true,
		EmailValid:  true,
		DomainValid: true,
		TLDValid:    true,
		LineLength:  200,
		Source:      models.SourceIntelx,
		Verified:    true,
		AgeDays:     0,
	}
}

func TestScore_Bounds(t *testing.T) {
	if got := Score(Factors{}); got < 0 || got > 100 {
		t.Fatalf("empty factors score %d outside [0,100]", got)
	}
	if got := Score(maxFactors()); got != 100 {
		t.Fatalf("maximal factors should clamp to 100, got %d", got)
	}
	if got := Score(Factors{LineLength: -5, AgeDays: 10000}); got < 0 || got > 100 {
		t.Fatalf("degenerate factors score %d outside [0,100]", got)
	}
}

func TestScore_KnownVector(t *testing.T) {
	f := Factors{
		HasPassword: true,                // 20
		EmailValid:  true,                // 15
		DomainValid: true,                // 15
		TLDValid:    true,                // 10
		LineLength:  50,                  // 5
		Source:      models.SourceManual, // 10
		Verified:    false,
		AgeDays:     45, // 3
	}
	if got := Score(f); got != 78 {
		t.Fatalf("Score = %d, want 78", got)
	}
}

func TestScore_MonotoneInEachSignal(t *testing.T) {
	base := Factors{
		LineLength: 40,
		Source:     models.SourceImport,
		AgeDays:    100,
	}
	baseScore := Score(base)

	bump := []struct {
		name string
		mod  func(Factors) Factors
	}{
		{"password", func(f Factors) Factors { f.HasPassword = true; return f }},
		{"email", func(f Factors) Factors { f.EmailValid = true; return f }},
		{"domain", func(f Factors) Factors { f.DomainValid = true; return f }},
		{"tld", func(f Factors) Factors { f.TLDValid = true; return f }},
		{"length", func(f Factors) Factors { f.LineLength = 100; return f }},
		{"source", func(f Factors) Factors { f.Source = models.SourceIntelx; return f }},
		{"verified", func(f Factors) Factors { f.Verified = true; return f }},
		{"freshness", func(f Factors) Factors { f.AgeDays = 0; return f }},
	}

	for _, tc := range bump {
		if got := Score(tc.mod(base)); got < baseScore {
			t.Fatalf("raising %s lowered the score: %d < %d", tc.name, got, baseScore)
		}
	}
}

func TestScore_FreshnessBuckets(t *testing.T) {
	f := func(age int) int { return Score(Factors{AgeDays: age}) }

	if f(0) != f(29) {
		t.Fatal("ages 0 and 29 should land in the same bucket")
	}
	if !(f(29) > f(30) && f(89) > f(90) && f(179) > f(180)) {
		t.Fatal("freshness buckets are not strictly ordered at the boundaries")
	}
	if f(180) != f(5000) {
		t.Fatal("ages past 180 days should all score the same")
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"user@example.com", "a.b+c@mail.example.org"}
	invalid := []string{"", "no-at-symbol", "user@nodot", "user @example.com"}

	for _, s := range valid {
		if !ValidEmail(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range invalid {
		if ValidEmail(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestValidDomainAndTLD(t *testing.T) {
	if !ValidDomain("example") || !ValidDomain("mail.example") || !ValidDomain("ex-ample") {
		t.Fatal("expected domains to validate")
	}
	if ValidDomain("") || ValidDomain("-leading") {
		t.Fatal("expected invalid domains to fail")
	}
	if !ValidTLD("com") || !ValidTLD("museum") {
		t.Fatal("expected TLDs to validate")
	}
	if ValidTLD("c") || ValidTLD("") || ValidTLD("123") {
		t.Fatal("expected invalid TLDs to fail")
	}
}
