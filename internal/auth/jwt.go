// Package auth issues bill edit tokens and checks bill passphrases.
//
// Anyone may read a bill. Changing it requires an edit token: a signed JWT
// naming the bill it was issued for. The creator receives one when the bill is
// made; others obtain one by presenting the bill's passphrase.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("authorization token required")
	ErrWrongBill    = errors.New("token was issued for another bill")
)

// Issuer is the iss claim of every edit token.
const Issuer = "splitt"

// JWTManager signs and checks edit tokens with an HMAC secret.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	parser *jwt.Parser
}

// Claims are the JWT claims of an edit token. The bill id is also the subject.
type Claims struct {
	BillID string `json:"bill_id"`
	jwt.RegisteredClaims
}

// NewJWTManager returns a manager whose tokens are valid for ttl.
func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		ttl:    ttl,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

// Generate issues an edit token for billID.
func (m *JWTManager) Generate(billID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		BillID: billID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   billID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature, issuer and lifetime of a token and returns its claims.
func (m *JWTManager) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	if _, err := m.parser.ParseWithClaims(token, claims, m.key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.BillID == "" || claims.Subject != claims.BillID {
		return nil, fmt.Errorf("%w: token names no bill", ErrInvalidToken)
	}
	return claims, nil
}

func (m *JWTManager) key(*jwt.Token) (any, error) { return m.secret, nil }

// Authorize checks that claims grant edit access to billID.
func Authorize(claims *Claims, billID string) error {
	if claims == nil {
		return ErrMissingToken
	}
	if claims.BillID != billID {
		return ErrWrongBill
	}
	return nil
}
