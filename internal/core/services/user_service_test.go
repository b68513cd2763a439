package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upstart/api/internal/core/domain"
	"github.com/upstart/api/internal/core/ports"
)

func TestUserService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewUserService(f.users, f.hasher)

	user, err := svc.Create(ctx, ports.CreateUserInput{Email: "Profile@Example.com", Password: "password", LastName: ptr("Lovelace")})
	require.NoError(t, err)
	assert.Equal(t, "profile@example.com", user.Email)
	assert.True(t, f.hasher.Compare(user.PasswordHash, "password"))

	_, err = svc.Create(ctx, ports.CreateUserInput{Email: "profile@example.com", Password: "password"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = svc.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	updated, err := svc.UpdateProfile(ctx, domain.UserCaller(user.ID), ports.UpdateProfileInput{FirstName: ptr("Ada")})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.DisplayName())

	_, err = svc.UpdateProfile(ctx, domain.AnonymousCaller(sessionA), ports.UpdateProfileInput{FirstName: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
