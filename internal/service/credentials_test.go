// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/gameatlas/internal/testutil"
)

func newTestCredentials(t *testing.T) (*Credentials, func()) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	svc, err := NewCredentials(db, testutil.TestLoggerSilent(), bcrypt.MinCost)
	require.NoError(t, err)
	return svc, cleanup
}

func TestCredentials_HashPasswordIsSalted(t *testing.T) {
	svc, cleanup := newTestCredentials(t)
	defer cleanup()

	first, err := svc.HashPassword("pw1")
	require.NoError(t, err)
	second, err := svc.HashPassword("pw1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, svc.Verify("pw1", first))
	assert.True(t, svc.Verify("pw1", second))
	assert.False(t, svc.Verify("pw2", first))
	assert.False(t, svc.Verify("pw1", "not-a-hash"))
}

func TestCredentials_RegisterThenAuthenticate(t *testing.T) {
	svc, cleanup := newTestCredentials(t)
	defer cleanup()
	ctx := context.Background()

	users := []Registration{
		{Name: "ana", Email: "a@x.com", Password: "pw1", ConfirmPassword: "pw1"},
		{Name: "luis", Email: "l@x.com", Password: "otra clave", ConfirmPassword: "otra clave"},
	}

	for _, r := range users {
		created, err := svc.Register(ctx, r)
		require.NoError(t, err)
		assert.False(t, created.IsAdmin)

		user, err := svc.Authenticate(ctx, r.Email, r.Password)
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.Equal(t, r.Name, user.Name)

		_, err = svc.Authenticate(ctx, r.Email, r.Password+"x")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestCredentials_AuthenticateUnknownEmail(t *testing.T) {
	svc, cleanup := newTestCredentials(t)
	defer cleanup()

	_, err := svc.Authenticate(context.Background(), "nobody@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCredentials_RegisterPasswordMismatch(t *testing.T) {
	svc, cleanup := newTestCredentials(t)
	defer cleanup()
	ctx := context.Background()

	_, err := svc.Register(ctx, Registration{Name: "ana", Email: "a@x.com", Password: "pw1", ConfirmPassword: "pw2"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = svc.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCredentials_RegisterDuplicateEmail(t *testing.T) {
	svc, cleanup := newTestCredentials(t)
	defer cleanup()
	ctx := context.Background()

	r := Registration{Name: "ana", Email: "a@x.com", Password: "pw1", ConfirmPassword: "pw1"}
	_, err := svc.Register(ctx, r)
	require.NoError(t, err)

	_, err = svc.Register(ctx, r)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCredentials_InsertDuplicateMapsToEmailTaken(t *testing.T) {
	svc, cleanup := newTestCredentials(t)
	defer cleanup()
	ctx := context.Background()

	u := NewUser{Name: "ana", Email: "a@x.com", PasswordHash: "h"}
	_, err := svc.Insert(ctx, u)
	require.NoError(t, err)

	// Bypasses the lookup fast path, so only the constraint can reject it.
	_, err = svc.Insert(ctx, u)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCredentials_AuthenticateRehashes(t *testing.T) {
	svc, cleanup := newTestCredentials(t)
	defer cleanup()
	ctx := context.Background()

	oldHash, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost+1)
	require.NoError(t, err)
	_, err = svc.Insert(ctx, NewUser{Name: "ana", Email: "a@x.com", PasswordHash: string(oldHash)})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	user, err := svc.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(user.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.True(t, svc.Verify("pw1", user.PasswordHash))
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sqlite", errors.New("UNIQUE constraint failed: usuarios.correo"), true},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false},
		{"other", errors.New("disk I/O error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
