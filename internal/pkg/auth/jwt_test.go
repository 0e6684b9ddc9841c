package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbacmaster/internal/model/system"
)

const testSecret = "test_jwt_secret_key_at_least_32_chars"

func newTestJWTManager() *JWTManager {
	return NewJWTManager(testSecret, "rbacmaster-test", "rbacmaster-web", time.Hour, 24*time.Hour)
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	jm := newTestJWTManager()

	token, jti, err := jm.GenerateAccessToken(7, "admin", []string{"SuperAdmin"})
	require.NoError(t, err)
	assert.NotEmpty(t, jti)

	claims, err := jm.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, []string{"SuperAdmin"}, claims.Roles)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.InDelta(t, time.Hour.Seconds(), claims.Remaining(time.Now()).Seconds(), 5)

	_, other, err := jm.GenerateAccessToken(7, "admin", nil)
	require.NoError(t, err)
	assert.NotEqual(t, jti, other)
}

func TestJWTManager_Expired(t *testing.T) {
	jm := newTestJWTManager()
	jm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := jm.GenerateAccessToken(1, "u", nil)
	require.NoError(t, err)

	jm.now = time.Now
	_, err = jm.ValidateAccessToken(token)
	assert.ErrorIs(t, err, system.ErrTokenExpired)
}

func TestJWTManager_RejectsForeignTokens(t *testing.T) {
	jm := newTestJWTManager()
	token, _, err := jm.GenerateAccessToken(1, "u", nil)
	require.NoError(t, err)

	cases := map[string]*JWTManager{
		"wrong secret":   NewJWTManager("another_secret_key_that_is_long_enough", "rbacmaster-test", "rbacmaster-web", time.Hour, time.Hour),
		"wrong issuer":   NewJWTManager(testSecret, "someone-else", "rbacmaster-web", time.Hour, time.Hour),
		"wrong audience": NewJWTManager(testSecret, "rbacmaster-test", "mobile", time.Hour, time.Hour),
	}
	for name, validator := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := validator.ValidateAccessToken(token)
			assert.ErrorIs(t, err, system.ErrTokenInvalid)
		})
	}

	_, err = jm.ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, system.ErrTokenInvalid)
}

func TestJWTManager_RejectsNoneAlgorithm(t *testing.T) {
	jm := newTestJWTManager()
	claims := &JWTClaims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "rbacmaster-test",
			Audience:  []string{"rbacmaster-web"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jm.ValidateAccessToken(unsigned)
	assert.ErrorIs(t, err, system.ErrTokenInvalid)
}

func TestJWTManager_GenerateRefreshToken(t *testing.T) {
	jm := newTestJWTManager()

	a, err := jm.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := jm.GenerateRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
}

func TestJWTClaims_Remaining(t *testing.T) {
	now := time.Now()
	c := &JWTClaims{}
	assert.Zero(t, c.Remaining(now))

	c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	assert.Zero(t, c.Remaining(now))
}
