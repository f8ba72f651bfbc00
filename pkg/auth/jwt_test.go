package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateValidate_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "maw3id")
	businessID := uuid.New()

	token, err := svc.Generate(Claims{Role: RoleOwner, BusinessID: &businessID}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, claims.Role)
	assert.Equal(t, businessID, *claims.BusinessID)
}

func TestValidate_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "maw3id")
	businessID := uuid.New()

	expired, err := svc.Generate(Claims{Role: RoleOwner, BusinessID: &businessID}, -time.Hour)
	require.NoError(t, err)
	otherIssuer, err := NewJWTService("secret", "someone-else").Generate(Claims{Role: RoleOwner, BusinessID: &businessID}, time.Hour)
	require.NoError(t, err)
	wrongKey, err := NewJWTService("other", "maw3id").Generate(Claims{Role: RoleOwner, BusinessID: &businessID}, time.Hour)
	require.NoError(t, err)
	noScope, err := svc.Generate(Claims{Role: RoleCustomer}, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"other issuer": otherIssuer,
		"wrong key":    wrongKey,
		"no scope":     noScope,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
