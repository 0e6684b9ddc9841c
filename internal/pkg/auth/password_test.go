package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordManager_HashAndVerify(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost)

	hash, err := pm.HashPassword("123")
	require.NoError(t, err)
	assert.NotEqual(t, "123", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	ok, err := pm.VerifyPassword("123", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pm.VerifyPassword("1234", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordManager_InvalidInput(t *testing.T) {
	pm := NewPasswordManager(bcrypt.MinCost)

	_, err := pm.HashPassword("")
	assert.Error(t, err)

	_, err = pm.VerifyPassword("", "hash")
	assert.Error(t, err)

	_, err = pm.VerifyPassword("123", "not-a-bcrypt-hash")
	assert.Error(t, err)
}

func TestNewPasswordManager_CostBounds(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordManager(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordManager(99).cost)
	assert.Equal(t, 10, NewPasswordManager(10).cost)
}
