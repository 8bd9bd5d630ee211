package authtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hemicycle/pkg/domain-errors"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("test-key", "hemicycle", "hemicycle-api")

	token, err := svc.Generate("ops", time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := New("key-a", "hemicycle", "hemicycle-api").Generate("ops", time.Minute)
	require.NoError(t, err)

	_, err = New("key-b", "hemicycle", "hemicycle-api").ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := New("test-key", "hemicycle", "hemicycle-api")
	token, err := svc.Generate("ops", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidateRejectsWrongAudience(t *testing.T) {
	token, err := New("test-key", "hemicycle", "other-api").Generate("ops", time.Minute)
	require.NoError(t, err)

	_, err = New("test-key", "hemicycle", "hemicycle-api").ValidateToken(token)
	assert.Error(t, err)
}
