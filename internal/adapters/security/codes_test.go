package security

import (
	"strings"
	"testing"
)

func TestPepperHasherIsDeterministic(t *testing.T) {
	t.Parallel()

	hasher, err := NewPepperHasher("unit-test-pepper-0123456789")
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}

	if a, b := hasher.HashShortCode("00425917"), hasher.HashShortCode("00425917"); a != b {
		t.Fatalf("same input must hash identically, got %s and %s", a, b)
	}
	if a, b := hasher.HashShortCode("00425917"), hasher.HashShortCode("00425918"); a == b {
		t.Fatalf("distinct inputs must not collide")
	}
}

func TestPepperHasherSeparatesDomains(t *testing.T) {
	t.Parallel()

	hasher, err := NewPepperHasher("unit-test-pepper-0123456789")
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}

	// The same raw value hashed as a short code, a link token, and an
	// identifier must produce three different digests.
	value := "shared-value"
	sc := hasher.HashShortCode(value)
	lt := hasher.HashLinkToken(value)
	id := hasher.HashIdentifier(value)
	if sc == lt || sc == id || lt == id {
		t.Fatalf("expected domain separation, got sc=%s lt=%s id=%s", sc, lt, id)
	}
}

func TestPepperHasherDependsOnPepper(t *testing.T) {
	t.Parallel()

	first, err := NewPepperHasher("unit-test-pepper-0123456789")
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	second, err := NewPepperHasher("another-pepper-9876543210abc")
	if err != nil {
		t.Fatalf("new hasher: %v", err)
	}
	if first.HashShortCode("00425917") == second.HashShortCode("00425917") {
		t.Fatalf("hashes under different peppers must differ")
	}
}

func TestNewPepperHasherValidatesLength(t *testing.T) {
	t.Parallel()

	if _, err := NewPepperHasher("too-short"); err == nil {
		t.Fatalf("expected rejection of a short pepper")
	}
	if _, err := NewPepperHasher(strings.Repeat("x", 65)); err == nil {
		t.Fatalf("expected rejection of an oversized pepper")
	}
	if _, err := NewPepperHasher(strings.Repeat("x", 64)); err != nil {
		t.Fatalf("64 byte pepper should be accepted, got %v", err)
	}
}

func TestShortCodeKeepsLeadingZeros(t *testing.T) {
	t.Parallel()

	gen := NewCodeGenerator()
	for i := 0; i < 256; i++ {
		code, err := gen.ShortCode()
		if err != nil {
			t.Fatalf("generate short code: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("expected fixed 8 digit width, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("expected numeric code, got %q", code)
			}
		}
	}
}

func TestLinkTokenAndDependentRefShape(t *testing.T) {
	t.Parallel()

	gen := NewCodeGenerator()

	token, err := gen.LinkToken()
	if err != nil {
		t.Fatalf("generate link token: %v", err)
	}
	if len(token) < 40 {
		t.Fatalf("expected long opaque token, got %d chars", len(token))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("expected URL-safe token, got %q", token)
	}

	ref, err := gen.DependentRef()
	if err != nil {
		t.Fatalf("generate dependent ref: %v", err)
	}
	if !strings.HasPrefix(ref, "dep_") {
		t.Fatalf("expected dep_ prefix, got %q", ref)
	}
}
