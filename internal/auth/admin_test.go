package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/school-booking/internal/utils"
)

func TestCredentialFromPlainPassword(t *testing.T) {
	c, err := NewCredential("admin", "admin123", "", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, c.Verify("admin", "admin123"))
	assert.False(t, c.Verify("admin", "admin12"))
	assert.False(t, c.Verify("Admin", "admin123"))
	assert.False(t, c.Verify("", ""))
}

func TestCredentialFromHash(t *testing.T) {
	hash, err := utils.HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	c, err := NewCredential("direccion", "ignored", hash, bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, c.Verify("direccion", "s3cret"))
	assert.False(t, c.Verify("direccion", "ignored"))
}

func TestCredentialRejectsBadConfig(t *testing.T) {
	_, err := NewCredential("", "x", "", bcrypt.MinCost)
	assert.Error(t, err)
	_, err = NewCredential("admin", "", "", bcrypt.MinCost)
	assert.Error(t, err)
	_, err = NewCredential("admin", "", "plain-text", bcrypt.MinCost)
	assert.Error(t, err)
}
