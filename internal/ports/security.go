package ports

import (
	"time"

	"github.com/google/uuid"
)

// CredentialHasher produces the deterministic keyed hashes under which
// credentials are stored and looked up. The pepper never leaves the adapter.
type CredentialHasher interface {
	HashShortCode(code string) string
	HashLinkToken(token string) string
	HashIdentifier(value string) string
}

// CodeGenerator mints the two credential secrets from a secure random source.
type CodeGenerator interface {
	ShortCode() (string, error)
	LinkToken() (string, error)
	DependentRef() (string, error)
}

// CaregiverClaims is the verified identity of an authenticated caregiver.
// Issuing these tokens is an external concern; this service only verifies.
type CaregiverClaims struct {
	CaregiverID uuid.UUID `json:"caregiver_id"`
	Role        string    `json:"role"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenVerifier validates caregiver bearer tokens on the authenticated surface.
type TokenVerifier interface {
	ParseAndValidate(token string) (CaregiverClaims, error)
}
