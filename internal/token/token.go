package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 15 * time.Minute

var (
	ErrTokenExpired = errors.New("token is expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Claims carry the authenticated identity inside the signed token.
type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies stateless bearer tokens. Tokens are
// unrevocable; the only thing that ends a session is expiry.
type Issuer struct {
	issuer     string
	signingKey []byte
	ttl        time.Duration
}

func NewIssuer(issuer string, signingKey []byte, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Issuer{
		issuer:     issuer,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

// Issue signs an HS256 token carrying the user id and role,
// expiring after the issuer's ttl.
func (i *Issuer) Issue(userID int64, role string) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})

	signed, err := t.SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, issuer and expiry of the given token.
// It returns ErrTokenExpired for an expired token and ErrTokenInvalid
// for everything else; callers gate on both identically and only log
// the difference.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return i.signingKey, nil
		},
		jwt.WithIssuer(i.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := t.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}
