package jwt

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	locationID := uuid.New()

	token, err := GenerateToken(userID, "amara@example.com", "Amara", "employee", &locationID, 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "amara@example.com", claims.Email)
	assert.Equal(t, "employee", claims.Role)
	require.NotNil(t, claims.LocationID)
	assert.Equal(t, locationID, *claims.LocationID)
	assert.Equal(t, "branchstock", claims.Issuer)
}

func TestTokenWithoutLocation(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "admin@example.com", "Admin", "admin", nil, 1)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Nil(t, claims.LocationID)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestConfiguredSecretSignsAndValidates(t *testing.T) {
	Configure("rotated-secret")
	t.Cleanup(func() { Configure("") })

	token, err := GenerateToken(uuid.New(), "a@example.com", "A", "admin", nil, 1)
	require.NoError(t, err)
	_, err = ValidateToken(token)
	require.NoError(t, err)

	// a token signed under the previous key must stop validating
	Configure("")
	oldKeyToken, err := GenerateToken(uuid.New(), "a@example.com", "A", "admin", nil, 1)
	require.NoError(t, err)
	Configure("rotated-secret")
	_, err = ValidateToken(oldKeyToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "a@example.com", "A", "admin", nil, 1)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
