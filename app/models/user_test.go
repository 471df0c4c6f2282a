package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	user, err := CreateUser("Awa Diop", "awadiop", "awa@example.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, "Awa Diop", user.Name)
	assert.Equal(t, "awadiop", user.Handle)
	assert.Equal(t, ROLE_USER, user.Role)
	assert.Equal(t, STATUS_INACTIVE, user.Status)
	assert.False(t, user.IsActive(), "new accounts start inactive until activation")

	// Password is stored hashed
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("Awa Diop", "awadiop", "not-an-email", "secret123")
	assert.Error(t, err)

	_, err = CreateUser("Awa Diop", "a", "awa@example.com", "secret123")
	assert.Error(t, err, "handle below minimum length")

	_, err = CreateUser("Awa Diop", "bad handle!", "awa@example.com", "secret123")
	assert.Error(t, err, "handle must be alphanumeric")
}

func TestGenerateActivationToken(t *testing.T) {
	u := &User{}
	require.NoError(t, u.GenerateActivationToken())

	assert.Len(t, u.ActivationToken, 32)
	assert.NotNil(t, u.ActivationSentAt)

	first := u.ActivationToken
	require.NoError(t, u.GenerateActivationToken())
	assert.NotEqual(t, first, u.ActivationToken)
}

func TestSetPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("newpassword"))
	assert.True(t, u.CheckPassword("newpassword"))
}
