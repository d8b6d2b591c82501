// Package auth issues and verifies signed identity tokens and resolves
// them into request identities.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"sharedepot/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const keyDerivationInfo = "sharedepot token signing key v1"

// Claims is the verified payload of a token. The subject is the user's email.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Email returns the subject the token was issued for.
func (c *Claims) Email() string {
	return c.Subject
}

// Codec signs and verifies HS256 tokens with a key derived once from the
// configured secret.
type Codec struct {
	key      []byte
	validity time.Duration
	issuer   string
	now      func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithIssuer stamps issued tokens with iss and requires it on verification.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) { c.issuer = issuer }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// NewCodec derives the signing key from secret. validity is the lifetime
// of every issued token.
func NewCodec(secret string, validity time.Duration, opts ...CodecOption) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if validity <= 0 {
		return nil, fmt.Errorf("token validity must be positive, got %s", validity)
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyDerivationInfo)), key); err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}

	c := &Codec{key: key, validity: validity, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue creates a token for the given subject email and user id, expiring
// after the configured validity window.
func (c *Codec) Issue(email string, userID uint) (string, error) {
	if email == "" || userID == 0 {
		return "", errors.New("token subject and user id are required")
	}

	now := c.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.validity)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// Every failure is an invalid-credential AppError; expiry is reported with
// its own code.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, tokenError(models.CodeTokenInvalid, "token is empty", nil)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.key, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, tokenError(models.CodeTokenExpired, "token has expired", err)
		}
		return nil, tokenError(models.CodeTokenInvalid, "token is invalid", err)
	}

	if claims.Subject == "" || claims.UserID == 0 {
		return nil, tokenError(models.CodeTokenInvalid, "token is missing identity claims", nil)
	}
	return claims, nil
}

// ExtractSubject verifies raw and returns its subject email.
func (c *Codec) ExtractSubject(raw string) (string, error) {
	claims, err := c.Verify(raw)
	if err != nil {
		return "", err
	}
	return claims.Email(), nil
}

// ExtractUserID verifies raw and returns its user id.
func (c *Codec) ExtractUserID(raw string) (uint, error) {
	claims, err := c.Verify(raw)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// Validity is the lifetime given to issued tokens.
func (c *Codec) Validity() time.Duration {
	return c.validity
}

func tokenError(code, message string, cause error) *models.AppError {
	err := models.NewInvalidCredentialError(code, message)
	err.Err = cause
	return err
}
