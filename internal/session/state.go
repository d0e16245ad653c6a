// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"fmt"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/gameatlas/internal/cart"
	"github.com/olegiv/gameatlas/internal/store"
)

// Session keys.
const (
	KeyUserID    = "userId"
	KeyUserName  = "userName"
	KeyUserEmail = "userEmail"
	KeyIsAdmin   = "isAdmin"
	KeyCart      = "cart"
	KeyCartCount = "cartCount"
)

// Identity holds the claims of the signed-in user.
type Identity struct {
	UserID  int64
	Name    string
	Email   string
	IsAdmin bool
}

// State reads and mutates the identity and cart held in a request's session.
// All methods need a context that passed through the manager's LoadAndSave.
type State struct {
	sm *scs.SessionManager
}

// NewState creates a State over the session manager.
func NewState(sm *scs.SessionManager) *State {
	return &State{sm: sm}
}

// Manager returns the underlying session manager.
func (s *State) Manager() *scs.SessionManager {
	return s.sm
}

// Identity returns the signed-in user, or false for anonymous sessions.
func (s *State) Identity(ctx context.Context) (Identity, bool) {
	id := s.sm.GetInt64(ctx, KeyUserID)
	if id == 0 {
		return Identity{}, false
	}
	return Identity{
		UserID:  id,
		Name:    s.sm.GetString(ctx, KeyUserName),
		Email:   s.sm.GetString(ctx, KeyUserEmail),
		IsAdmin: s.IsAdmin(ctx),
	}, true
}

// IsAuthenticated reports whether a user is signed in.
func (s *State) IsAuthenticated(ctx context.Context) bool {
	return s.sm.GetInt64(ctx, KeyUserID) != 0
}

// IsAdmin is true only when the admin flag holds the boolean true.
func (s *State) IsAdmin(ctx context.Context) bool {
	v, ok := s.sm.Get(ctx, KeyIsAdmin).(bool)
	return ok && v
}

// SignIn renews the session token and stores the user's claims.
func (s *State) SignIn(ctx context.Context, u store.User) error {
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	s.sm.Put(ctx, KeyUserID, u.ID)
	s.sm.Put(ctx, KeyUserName, u.Name)
	s.sm.Put(ctx, KeyUserEmail, u.Email)
	s.sm.Put(ctx, KeyIsAdmin, u.IsAdmin)
	return nil
}

// SignOut drops every session value, cart included, and renews the token.
func (s *State) SignOut(ctx context.Context) error {
	if err := s.sm.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if err := s.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	return nil
}

// Cart returns a copy of the session cart. Missing carts are empty.
func (s *State) Cart(ctx context.Context) cart.Cart {
	c, _ := s.sm.Get(ctx, KeyCart).(cart.Cart)
	items := make([]cart.Item, len(c.Items))
	copy(items, c.Items)
	return cart.Cart{Items: items}
}

// CartCount returns the cached number of cart items.
func (s *State) CartCount(ctx context.Context) int {
	return s.sm.GetInt(ctx, KeyCartCount)
}

// AddToCart appends a snapshot of the item and returns the new cart.
func (s *State) AddToCart(ctx context.Context, item cart.Item) cart.Cart {
	c := s.Cart(ctx)
	c.Add(item)
	s.saveCart(ctx, c)
	return c
}

// RemoveFromCart removes the item at index i. Out-of-range is a no-op.
func (s *State) RemoveFromCart(ctx context.Context, i int) bool {
	c := s.Cart(ctx)
	if !c.RemoveAt(i) {
		return false
	}
	s.saveCart(ctx, c)
	return true
}

// ClearCart empties the cart and zeroes the count.
func (s *State) ClearCart(ctx context.Context) {
	s.sm.Remove(ctx, KeyCart)
	s.sm.Put(ctx, KeyCartCount, 0)
}

// saveCart writes the cart and its count from the same value.
func (s *State) saveCart(ctx context.Context, c cart.Cart) {
	s.sm.Put(ctx, KeyCart, c)
	s.sm.Put(ctx, KeyCartCount, c.Count())
}
