package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the minimal identity envelope carried by an access token.
type AccessClaims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Issuer    string
}

// AccessTokenManager issues and verifies short-lived signed access tokens.
//
// No other component performs signature verification or touches the signing
// secret. Verification is pure: it never consults the session store, so a
// still-valid token is trusted even if the underlying session was revoked.
type AccessTokenManager interface {
	Issue(userID string, now time.Time) (token string, exp time.Time, err error)
	Verify(token string, now time.Time) (AccessClaims, error)
}

// jwtClaims is the wire shape of the access token payload. The user id rides
// in the "_id" claim for compatibility with existing clients.
type jwtClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
}

type hs256Manager struct {
	issuer string
	ttl    time.Duration
	secret []byte
}

// NewHS256Manager builds an AccessTokenManager signing with HMAC-SHA256 and a
// server-wide secret. Any bit flip in a signed token fails verification.
func NewHS256Manager(cfg Config) (AccessTokenManager, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, ErrConfig
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, ErrConfig
	}

	return &hs256Manager{
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL,
		secret: cfg.JWTSecret,
	}, nil
}

func (m *hs256Manager) Issue(userID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(m.ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
	})

	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (m *hs256Manager) Verify(token string, now time.Time) (AccessClaims, error) {
	claims := &jwtClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		// Expiry is the only claim failure reported distinctly; everything
		// else (bad signature, malformed token, wrong issuer) is one bucket.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AccessClaims{}, ErrTokenExpired
		}
		return AccessClaims{}, ErrInvalidSignature
	}
	if !parsed.Valid || claims.UserID == "" {
		return AccessClaims{}, ErrInvalidSignature
	}

	out := AccessClaims{
		UserID: claims.UserID,
		Issuer: claims.Issuer,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
