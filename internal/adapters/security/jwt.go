package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/carerelay/carerelay/internal/ports"
)

// JWTVerifier validates RS256 caregiver bearer tokens issued by the platform
// identity service. Keys are held at adapter level so the application layer
// stays crypto-library agnostic.
type JWTVerifier struct {
	kid        string
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// NewJWTVerifier builds a verifier from a configured public PEM key.
func NewJWTVerifier(kid, publicKeyPEM string) (*JWTVerifier, error) {
	if kid == "" {
		return nil, errors.New("jwt key id (kid) is required")
	}
	if publicKeyPEM == "" {
		return nil, errors.New("jwt public key is required")
	}
	pub, err := parseRSAPublic(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &JWTVerifier{kid: kid, publicKey: pub}, nil
}

// NewEphemeralJWTVerifier creates an in-memory keypair for local/dev use.
// This exists to unblock runtime startup when static keys are intentionally absent.
func NewEphemeralJWTVerifier(kid string) (*JWTVerifier, error) {
	if kid == "" {
		kid = "ephemeral-key-1"
	}
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &JWTVerifier{
		kid:        kid,
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
	}, nil
}

type caregiverJWTClaims struct {
	CaregiverID string `json:"caregiver_id"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// Sign mints a token from the ephemeral keypair. Only dev and test runtimes
// carry a private key; configured verifiers refuse to sign.
func (v *JWTVerifier) Sign(claims ports.CaregiverClaims) (string, error) {
	if v.privateKey == nil {
		return "", errors.New("verifier has no signing key")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, caregiverJWTClaims{
		CaregiverID: claims.CaregiverID.String(),
		Role:        claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})
	token.Header["kid"] = v.kid
	return token.SignedString(v.privateKey)
}

func (v *JWTVerifier) ParseAndValidate(raw string) (ports.CaregiverClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &caregiverJWTClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithLeeway(30*time.Second), jwt.WithExpirationRequired())
	if err != nil {
		return ports.CaregiverClaims{}, err
	}
	claims, ok := parsed.Claims.(*caregiverJWTClaims)
	if !ok || !parsed.Valid {
		return ports.CaregiverClaims{}, errors.New("invalid token claims")
	}

	caregiverID, err := uuid.Parse(claims.CaregiverID)
	if err != nil {
		return ports.CaregiverClaims{}, fmt.Errorf("parse caregiver_id: %w", err)
	}

	// WithExpirationRequired guarantees exp; iat is optional on platform tokens.
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time.UTC()
	}

	return ports.CaregiverClaims{
		CaregiverID: caregiverID,
		Role:        claims.Role,
		IssuedAt:    issuedAt,
		ExpiresAt:   claims.ExpiresAt.Time.UTC(),
	}, nil
}

func parseRSAPublic(raw string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(raw))
	if block == nil {
		return nil, errors.New("invalid public PEM")
	}
	if key, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return key, nil
}
