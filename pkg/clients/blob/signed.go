package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
)

const signatureParam = "sig"

// ErrInvalidSignature is returned by VerifySignedURL for forged or expired URLs.
var ErrInvalidSignature = errors.New("blob: invalid signature")

// SignedURL returns a time-limited URL for name signed with the account key.
// ttl <= 0 selects DefaultSignedURLTTL. Returns "" when uninitialized.
func (c *Client) SignedURL(ctx context.Context, name string, ttl time.Duration) string {
	if err := c.lc.EnsureReady(ctx); err != nil {
		return ""
	}
	if ttl <= 0 {
		ttl = DefaultSignedURLTTL
	}
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   name,
		Audience:  jwt.ClaimStrings{c.cfg.Container},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		c.lc.Logger().Error("blob sign failed", logger.F("blob", name), logger.Err(err))
		return ""
	}
	return c.BlobURL(name) + "?" + signatureParam + "=" + url.QueryEscape(token)
}

// VerifySignedURL checks the signature on a URL produced by SignedURL and
// returns the blob name it grants access to.
func (c *Client) VerifySignedURL(ctx context.Context, raw string) (string, error) {
	if err := c.lc.EnsureReady(ctx); err != nil {
		return "", err
	}
	name, ok := c.BlobNameFromURL(raw)
	if !ok {
		return "", fmt.Errorf("%w: unrecognised url", ErrInvalidSignature)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	token := parsed.Query().Get(signatureParam)
	if token == "" {
		return "", fmt.Errorf("%w: missing signature", ErrInvalidSignature)
	}
	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(c.cfg.Container),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if claims.Subject != name {
		return "", fmt.Errorf("%w: subject mismatch", ErrInvalidSignature)
	}
	return name, nil
}
