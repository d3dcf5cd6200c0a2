package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/yourusername/spectra-quiz/internal/pkg/errors"
	"github.com/yourusername/spectra-quiz/pkg/auth"
)

type countingNotifier struct {
	calls int
}

func (n *countingNotifier) LeaderboardChanged(ctx context.Context) {
	n.calls++
}

func newAdminService(t *testing.T, password string, repo *MockAdminRepository, notifier LeaderboardNotifier) (*AdminService, *auth.JWTService) {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret-with-enough-length", time.Hour)
	require.NoError(t, err)

	hash := ""
	if password != "" {
		raw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		hash = string(raw)
	}
	return NewAdminService(repo, jwtService, hash, notifier), jwtService
}

func TestAdminService_Login(t *testing.T) {
	svc, jwtService := newAdminService(t, "hunter22", new(MockAdminRepository), nil)

	token, expiresAt, err := svc.Login("hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := jwtService.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)

	_, _, err = svc.Login("wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAdminService_LoginDisabled(t *testing.T) {
	svc, _ := newAdminService(t, "", new(MockAdminRepository), nil)

	_, _, err := svc.Login("anything")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestAdminService_ClearAll(t *testing.T) {
	ctx := context.Background()
	repo := new(MockAdminRepository)
	notifier := &countingNotifier{}
	svc, _ := newAdminService(t, "hunter22", repo, notifier)

	repo.On("ClearAll", ctx).Return(nil).Once()
	require.NoError(t, svc.ClearAll(ctx))
	assert.Equal(t, 1, notifier.calls)

	repo.On("ClearAll", ctx).Return(errors.New("locked")).Once()
	err := svc.ClearAll(ctx)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Equal(t, 1, notifier.calls)
	repo.AssertExpectations(t)
}
