// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cart implements the shopping cart kept in the session.
package cart

import "encoding/gob"

func init() {
	// The session codec is gob; concrete types stored in it must be registered.
	gob.Register(Cart{})
}

// Item is a snapshot of a game's display fields taken when it was added.
// Later catalog edits do not change items already in a cart.
type Item struct {
	ID     int64
	Name   string
	Price  float64
	Genre  string
	Rating float64
}

// Cart is an ordered list of items. The zero value is an empty cart.
type Cart struct {
	Items []Item
}

// Add appends an item.
func (c *Cart) Add(item Item) {
	c.Items = append(c.Items, item)
}

// RemoveAt removes the item at index i. Out-of-range indexes are ignored
// and reported as false.
func (c *Cart) RemoveAt(i int) bool {
	if i < 0 || i >= len(c.Items) {
		return false
	}
	c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Count returns the number of items.
func (c Cart) Count() int {
	return len(c.Items)
}

// Empty reports whether the cart has no items.
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// Total returns the plain sum of item prices.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.Price
	}
	return total
}
