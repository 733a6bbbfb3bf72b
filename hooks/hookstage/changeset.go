package hookstage

import (
	"strings"
)

type MutationType int

const (
	MutationAdd MutationType = iota
	MutationUpdate
	MutationDelete
)

func (t MutationType) String() string {
	switch t {
	case MutationAdd:
		return "add"
	case MutationUpdate:
		return "update"
	case MutationDelete:
		return "delete"
	}
	return "unknown"
}

// MutationFunc applies a change to the payload and returns the new payload.
type MutationFunc[T any] func(T) (T, error)

// HookMutation is one deferred payload change. Mutations are applied by the
// pipeline after the hook returns, in the order they were added.
type HookMutation[T any] struct {
	fn  MutationFunc[T]
	t   MutationType
	key []string
}

func (m HookMutation[T]) Apply(p T) (T, error) {
	return m.fn(p)
}

func (m HookMutation[T]) Type() MutationType {
	return m.t
}

// Key returns the dot-joined path of the mutated field, used for debug output.
func (m HookMutation[T]) Key() string {
	return strings.Join(m.key, ".")
}

// ChangeSet holds the payload changes a hook wants applied.
type ChangeSet[T any] struct {
	mutations []HookMutation[T]
}

func (c *ChangeSet[T]) Mutations() []HookMutation[T] {
	return c.mutations
}

func (c *ChangeSet[T]) AddMutation(fn MutationFunc[T], t MutationType, key ...string) *ChangeSet[T] {
	c.mutations = append(c.mutations, HookMutation[T]{fn: fn, t: t, key: key})
	return c
}
