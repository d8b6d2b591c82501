package auth

import (
	"errors"
	"testing"
	"time"

	"sharedepot/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestCodec(t *testing.T, now time.Time, opts ...CodecOption) *Codec {
	t.Helper()
	opts = append([]CodecOption{WithClock(fixedClock(now))}, opts...)
	c, err := NewCodec(testSecret, time.Hour, opts...)
	require.NoError(t, err)
	return c
}

func assertTokenCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, models.KindInvalidCredential, appErr.Kind)
	assert.Equal(t, code, appErr.Code)
}

func TestNewCodec_RejectsBadSettings(t *testing.T) {
	t.Parallel()

	_, err := NewCodec("", time.Hour)
	assert.Error(t, err)

	_, err = NewCodec(testSecret, 0)
	assert.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		email  string
		userID uint
	}{
		{"first user", "a@example.com", 1},
		{"large id", "someone@share.depot", 4_000_000_000},
		{"unicode local part", "김철수@example.kr", 42},
	}

	c := newTestCodec(t, epoch)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := c.Issue(tt.email, tt.userID)
			require.NoError(t, err)

			claims, err := c.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.email, claims.Email())
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, epoch, claims.IssuedAt.Time.UTC())
			assert.Equal(t, epoch.Add(time.Hour), claims.ExpiresAt.Time.UTC())

			subject, err := c.ExtractSubject(token)
			require.NoError(t, err)
			assert.Equal(t, tt.email, subject)

			id, err := c.ExtractUserID(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, id)
		})
	}
}

func TestCodec_Issue_RequiresIdentity(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, epoch)
	_, err := c.Issue("", 1)
	assert.Error(t, err)
	_, err = c.Issue("a@example.com", 0)
	assert.Error(t, err)
}

func TestCodec_Verify_Expiry(t *testing.T) {
	t.Parallel()

	issuer := newTestCodec(t, epoch)
	token, err := issuer.Issue("a@example.com", 1)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr bool
	}{
		{"just issued", epoch, false},
		{"one second before expiry", epoch.Add(time.Hour - time.Second), false},
		{"exactly at expiry", epoch.Add(time.Hour), true},
		{"long after expiry", epoch.Add(48 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := newTestCodec(t, tt.at)
			_, err := verifier.Verify(token)
			if tt.wantErr {
				assertTokenCode(t, err, models.CodeTokenExpired)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCodec_Verify_RejectsForgedTokens(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t, epoch)
	valid, err := c.Issue("a@example.com", 1)
	require.NoError(t, err)

	other, err := NewCodec("a-completely-different-secret-value!!", time.Hour, WithClock(fixedClock(epoch)))
	require.NoError(t, err)
	foreign, err := other.Issue("a@example.com", 1)
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@example.com",
			IssuedAt:  jwt.NewNumericDate(epoch),
			ExpiresAt: jwt.NewNumericDate(epoch.Add(time.Hour)),
		},
	}).SignedString(c.key)
	require.NoError(t, err)

	noUserID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a@example.com",
		"iat": epoch.Unix(),
		"exp": epoch.Add(time.Hour).Unix(),
	}).SignedString(c.key)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "a@example.com",
		"user_id": 1,
	}).SignedString(c.key)
	require.NoError(t, err)

	// The raw secret must not verify; only the derived key signs tokens.
	rawSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "a@example.com",
		"user_id": 1,
		"exp":     epoch.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"truncated signature", valid[:len(valid)-4]},
		{"signed with another secret", foreign},
		{"signed with the raw secret", rawSecret},
		{"wrong algorithm", wrongAlg},
		{"missing user id", noUserID},
		{"missing expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token)
			assertTokenCode(t, err, models.CodeTokenInvalid)

			_, err = c.ExtractUserID(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestCodec_Issuer(t *testing.T) {
	t.Parallel()

	signer := newTestCodec(t, epoch, WithIssuer("share-depot"))
	token, err := signer.Issue("a@example.com", 1)
	require.NoError(t, err)

	claims, err := newTestCodec(t, epoch, WithIssuer("share-depot")).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "share-depot", claims.Issuer)

	_, err = newTestCodec(t, epoch, WithIssuer("someone-else")).Verify(token)
	assertTokenCode(t, err, models.CodeTokenInvalid)
}
