// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import "github.com/jackc/pgx/v5"

// Params holds the named bindings of a single named query invocation.
// Params values are immutable: And returns a new value and never changes the
// receiver, so a partially built Params can be reused safely. The zero value
// has no bindings.
type Params struct {
	values map[string]any
}

// With starts a new set of bindings.
//
//	store.With("categories", ids).And("since", t)
func With(name string, value any) Params {
	return Params{}.And(name, value)
}

// And returns a copy of p with name bound to value. A repeated name
// overwrites the earlier binding.
func (p Params) And(name string, value any) Params {
	values := make(map[string]any, len(p.values)+1)
	for k, v := range p.values {
		values[k] = v
	}
	values[name] = value
	return Params{values: values}
}

// Map returns a copy of the name to value mapping.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p.values))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

// Len returns the number of bindings.
func (p Params) Len() int {
	return len(p.values)
}

// args returns the query arguments for p. Bindings are sent as pgx named
// arguments, referenced as @name in the query text.
func (p Params) args() []any {
	if len(p.values) == 0 {
		return nil
	}
	return []any{pgx.NamedArgs(p.Map())}
}
