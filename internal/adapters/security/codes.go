package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

const shortCodeDigits = 8

// PepperHasher derives deterministic keyed hashes for credential storage and
// lookup. A keyed BLAKE2b MAC keeps leaked table contents useless without the
// pepper while still allowing exact-match lookups, which salted password
// hashing cannot do.
type PepperHasher struct {
	pepper []byte
}

// NewPepperHasher builds a hasher from the configured pepper secret.
func NewPepperHasher(pepper string) (*PepperHasher, error) {
	if len(pepper) < 16 {
		return nil, errors.New("credential pepper must be at least 16 bytes")
	}
	if len(pepper) > 64 {
		return nil, errors.New("credential pepper must be at most 64 bytes")
	}
	return &PepperHasher{pepper: []byte(pepper)}, nil
}

func (h *PepperHasher) HashShortCode(code string) string {
	return h.mac("short-code:" + code)
}

func (h *PepperHasher) HashLinkToken(token string) string {
	return h.mac("link-token:" + token)
}

func (h *PepperHasher) HashIdentifier(value string) string {
	return h.mac("identifier:" + value)
}

func (h *PepperHasher) mac(input string) string {
	mac, err := blake2b.New256(h.pepper)
	if err != nil {
		// Key length is validated in the constructor.
		panic(fmt.Sprintf("blake2b keyed init: %v", err))
	}
	mac.Write([]byte(input))
	return hex.EncodeToString(mac.Sum(nil))
}

// CodeGenerator mints credential secrets from crypto/rand.
type CodeGenerator struct{}

// NewCodeGenerator creates the standard secret generator.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// ShortCode returns a fixed-width numeric code. Leading zeros are kept so
// every code is exactly eight digits.
func (g *CodeGenerator) ShortCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < shortCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate short code: %w", err)
	}
	return fmt.Sprintf("%0*d", shortCodeDigits, n), nil
}

// LinkToken returns a URL-safe opaque token for the deep-link redemption path.
func (g *CodeGenerator) LinkToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DependentRef returns an anonymized dependent handle. It carries no personal
// data and is never shown to the dependent themselves.
func (g *CodeGenerator) DependentRef() (string, error) {
	raw := make([]byte, 12)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate dependent ref: %w", err)
	}
	return "dep_" + base64.RawURLEncoding.EncodeToString(raw), nil
}
