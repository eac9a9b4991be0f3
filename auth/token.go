package auth

import (
	"context"
	"drawshare/core"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// Claims are the session token claims. Subject is the user id and ID is a
// unique token id used for revocation.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens.
type Issuer struct {
	secret   []byte
	ttl      time.Duration
	denylist core.TokenDenylist
	now      func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration, denylist core.TokenDenylist) *Issuer {
	return &Issuer{
		secret:   secret,
		ttl:      ttl,
		denylist: denylist,
		now:      time.Now,
	}
}

// TTL is how long an issued token stays valid.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue returns a signed HS256 token for userID and its expiry.
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        ulid.Make().String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (i *Issuer) verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Parse verifies the signature, expiry and revocation state of a token.
// Every rejection wraps core.ErrUnauthorized.
func (i *Issuer) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := i.verify(tokenString)
	if err != nil {
		return nil, core.WrapError(core.ErrUnauthorized, "Not authorized, invalid token.", err)
	}

	if claims.ID != "" && i.denylist != nil {
		revoked, err := i.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, core.Upstream("Could not verify the session, please try again later.", err)
		}
		if revoked {
			return nil, core.Unauthorized("Not authorized, invalid token.")
		}
	}
	return claims, nil
}

// Revoke records a still-valid token as logged out. Invalid or expired
// tokens are ignored since they are rejected anyway.
func (i *Issuer) Revoke(ctx context.Context, tokenString string) error {
	if i.denylist == nil {
		return nil
	}
	claims, err := i.verify(tokenString)
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := i.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return core.Upstream("Logging out failed, please try again later.", err)
	}
	logrus.WithField("user_id", claims.Subject).Info("Session token revoked")
	return nil
}
