// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "context"

const userColumns = `id, nombre, correo, contraseña, es_admin`

// CreateUserParams holds the values for a new user row.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

const createUser = `INSERT INTO usuarios (nombre, correo, contraseña, es_admin) VALUES (?, ?, ?, ?)`

// CreateUser inserts a user and returns it with the assigned id.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	res, err := q.db.ExecContext(ctx, createUser, arg.Name, arg.Email, arg.PasswordHash, boolToInt(arg.IsAdmin))
	if err != nil {
		return User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return User{
		ID:           id,
		Name:         arg.Name,
		Email:        arg.Email,
		PasswordHash: arg.PasswordHash,
		IsAdmin:      arg.IsAdmin,
	}, nil
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM usuarios WHERE correo = ?`

// GetUserByEmail returns sql.ErrNoRows when no user has the email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin)
	return u, err
}

const getUserByID = `SELECT ` + userColumns + ` FROM usuarios WHERE id = ?`

// GetUserByID returns sql.ErrNoRows when the id is unknown.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserByID, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdmin)
	return u, err
}

const updateUserPassword = `UPDATE usuarios SET contraseña = ? WHERE id = ?`

// UpdateUserPassword replaces the stored hash, used when re-hashing on login.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, passwordHash, id)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
