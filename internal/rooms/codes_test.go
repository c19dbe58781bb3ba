package rooms

import (
	"regexp"
	"testing"
)

func TestGenerateCode_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^[ABCDEFGHJKMNPQRSTUVWXYZ23456789]{4,6}$`)

	for length := MinCodeLength; length <= MaxCodeLength; length++ {
		for i := 0; i < 100; i++ {
			code, err := GenerateCode(length)
			if err != nil {
				t.Fatalf("GenerateCode(%d) error: %v", length, err)
			}
			if !pattern.MatchString(code) {
				t.Errorf("GenerateCode(%d) = %q, doesn't match expected pattern", length, code)
			}
			if len(code) != length {
				t.Errorf("code length = %d, want %d", len(code), length)
			}
		}
	}
}

func TestGenerateCode_BadLength(t *testing.T) {
	for _, n := range []int{0, 3, 7} {
		if _, err := GenerateCode(n); err == nil {
			t.Errorf("GenerateCode(%d) should fail", n)
		}
	}
}

func TestGenerateCode_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	dupes := 0
	for i := 0; i < 1000; i++ {
		code, err := GenerateCode(MinCodeLength)
		if err != nil {
			t.Fatal(err)
		}
		if seen[code] {
			dupes++
		}
		seen[code] = true
	}
	// With 31^4 combinations, 1000 samples should have essentially no dupes
	if dupes > 5 {
		t.Errorf("too many duplicate codes: %d out of 1000", dupes)
	}
}

func TestGenerateCode_NoAmbiguousChars(t *testing.T) {
	ambiguous := "0OIL1"
	for i := 0; i < 100; i++ {
		code, err := GenerateCode(MaxCodeLength)
		if err != nil {
			t.Fatal(err)
		}
		for _, ch := range code {
			for _, a := range ambiguous {
				if ch == a {
					t.Errorf("code %q contains ambiguous character %c", code, ch)
				}
			}
		}
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode(" abcd "); got != "ABCD" {
		t.Errorf("NormalizeCode = %q, want ABCD", got)
	}
}
