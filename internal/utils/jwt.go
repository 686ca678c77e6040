package utils // package utils provides password hashing and access token encoding

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Decode failures.  Both mean "reject"; they are kept apart only so the
// caller can log and count them separately.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrExpiredToken   = errors.New("expired token")
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp, truncated to whole seconds exactly as it is encoded.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claim is the decoded identity carried by a token.
type Claim struct {
	Subject string
	Exp     time.Time
}

// TokenCodec issues and decodes HS256 JWTs signed with a shared secret.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec builds a codec around secret.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), now: time.Now}
}

// Issue builds and signs a JWT whose subject is subject and whose expiry is
// now+ttl.  The JWT includes the standard claims sub, exp and iat.  A
// non-positive ttl yields a token that is already expired.
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (AccessToken, error) {
	if subject == "" {
		return AccessToken{}, errors.New("issue token: empty subject")
	}
	now := c.now().UTC()
	exp := jwt.NewNumericDate(now.Add(ttl))
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: exp,
		IssuedAt:  jwt.NewNumericDate(now),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp.Time.UTC()}, nil
}

// Decode verifies the signature and expiry of raw and returns its claim.
// It fails with ErrExpiredToken when exp <= now and with ErrMalformedToken
// for everything else: bad structure, bad signature, a signing method other
// than HS256, or a missing subject or expiry.
func (c *TokenCodec) Decode(raw string) (Claim, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrMalformedToken
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claim{}, ErrExpiredToken
		}
		return Claim{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return Claim{}, ErrMalformedToken
	}
	return Claim{Subject: claims.Subject, Exp: claims.ExpiresAt.Time.UTC()}, nil
}
