// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the persisted entities of the blog and the identity
// contract shared by every entity handled by the generic store.
package models

import "github.com/google/uuid"

// Entity is implemented by every record with a store-assigned identity.
// A uuid.Nil identity marks a transient entity that has not been created yet.
type Entity interface {
	EntityID() uuid.UUID
}

// IsTransient reports whether e has not been assigned an identity yet.
func IsTransient(e Entity) bool {
	return e.EntityID() == uuid.Nil
}

// SameEntity reports whether a and b denote the same persisted record.
// Entities without an identity are never equal to anything, themselves included.
func SameEntity(a, b Entity) bool {
	if a == nil || b == nil {
		return false
	}
	id := a.EntityID()
	return id != uuid.Nil && id == b.EntityID()
}
