package service

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "soporte/pkg/errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secreto", time.Minute, time.Hour, zap.NewNop())

	access, refresh, err := svc.GenerateTokens(42)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.False(t, claims.IsRefreshToken)

	claims, err = svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secreto", -time.Minute, time.Hour, zap.NewNop())
	access, _, err := svc.GenerateTokens(1)
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestJWTService_WrongSecretAndMethod(t *testing.T) {
	other := NewJWTService("otro", time.Minute, time.Hour, zap.NewNop())
	access, _, err := other.GenerateTokens(1)
	require.NoError(t, err)

	svc := NewJWTService("secreto", time.Minute, time.Hour, zap.NewNop())
	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaim{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}
