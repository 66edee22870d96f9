// Package auth issues and verifies the access tokens used by the API.
// Locally issued tokens are HS256; tokens minted by an external identity
// provider are RS256 and verified against its JWKS endpoint.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "gearswap-api"

var (
	// ErrInvalidToken is returned when a token fails signature or claim validation.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier validates a raw bearer token and returns the user ID from its subject.
type Verifier interface {
	Verify(tokenString string) (uint, error)
}

// HSVerifier issues and verifies HS256 tokens signed with a shared secret.
type HSVerifier struct {
	secret   []byte
	audience string
}

// NewHSVerifier creates a verifier for locally issued HS256 tokens.
func NewHSVerifier(secret, audience string) *HSVerifier {
	return &HSVerifier{secret: []byte(secret), audience: audience}
}

// IssueToken creates a signed HS256 token for the given user, valid for 7 days.
func (v *HSVerifier) IssueToken(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Audience:  jwt.ClaimStrings{v.audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(7 * 24 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates an HS256 token and returns the user ID from the subject claim.
func (v *HSVerifier) Verify(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	}, jwt.WithAudience(v.audience), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	return subjectUserID(token)
}

// subjectUserID pulls the numeric user ID out of a validated token's "sub" claim.
func subjectUserID(token *jwt.Token) (uint, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}

// MultiVerifier tries each verifier in order and returns the first success.
// Used to accept both locally issued tokens and identity-provider tokens.
type MultiVerifier struct {
	verifiers []Verifier
}

// NewMultiVerifier combines verifiers; nil entries are skipped.
func NewMultiVerifier(verifiers ...Verifier) *MultiVerifier {
	m := &MultiVerifier{}
	for _, v := range verifiers {
		if v != nil {
			m.verifiers = append(m.verifiers, v)
		}
	}
	return m
}

// Verify returns the user ID from the first verifier that accepts the token.
func (m *MultiVerifier) Verify(tokenString string) (uint, error) {
	for _, v := range m.verifiers {
		if userID, err := v.Verify(tokenString); err == nil {
			return userID, nil
		}
	}
	return 0, ErrInvalidToken
}
