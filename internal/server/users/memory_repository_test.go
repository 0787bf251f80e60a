package users

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/siteauth/internal/common"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	u, err := r.Create(ctx, &User{Email: "Neo@Matrix.io", UserName: "neo", PasswordHash: []byte("h")})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	byEmail, err := r.GetUserByLogin(ctx, " neo@matrix.IO ")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byID, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "neo", byID.UserName)

	_, err = r.Create(ctx, &User{Email: "neo@matrix.io"})
	require.ErrorIs(t, err, ErrUserExists)
}

func TestMemoryRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.GetUserByLogin(ctx, "ghost@x.io")
	require.True(t, errors.Is(err, common.ErrorNotFound))

	_, err = r.GetUserByID(ctx, "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.ErrorIs(t, r.Update(ctx, &User{ID: "nope"}), common.ErrorNotFound)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	u, err := r.Create(ctx, &User{Email: "a@x.io", PasswordHash: []byte("hash")})
	require.NoError(t, err)

	u.EmailVerified = true
	u.PasswordHash[0] = 'X'

	again, err := r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, again.EmailVerified)
	require.Equal(t, "hash", string(again.PasswordHash))

	require.NoError(t, r.Update(ctx, u))
	again, err = r.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, again.EmailVerified)
}
