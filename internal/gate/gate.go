// Package gate is a small Gate/Policy authorization engine. The Gate is a
// registry of policies keyed by resource type; each Policy decides whether a
// subject may perform an action on a resource. The subject type is generic so
// the engine stays free of domain imports.
package gate

import (
	"context"
	"errors"
)

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Action describes the kind of operation a subject wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// Policy defines authorization rules for one resource type.
// For list/create, resource may be nil (context-only check).
type Policy[S any] interface {
	Can(ctx context.Context, subject S, action Action, resource any) bool
}

// Gate is the central authorization checkpoint. S must be comparable so the
// zero value can stand for "unauthenticated".
type Gate[S comparable] struct {
	policies map[string]Policy[S]
}

func New[S comparable]() *Gate[S] {
	return &Gate[S]{policies: make(map[string]Policy[S])}
}

// Register adds a policy for a resource type (e.g. "mission"), replacing any
// existing one.
func (g *Gate[S]) Register(resourceType string, p Policy[S]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for a zero-value subject or a denied
// action, and ErrNoPolicyDefined when resourceType has no registered policy.
func (g *Gate[S]) Authorize(ctx context.Context, subject S, action Action, resourceType string, resource any) error {
	var zero S
	if subject == zero {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, subject, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is a convenience wrapper returning bool instead of error.
func (g *Gate[S]) Can(ctx context.Context, subject S, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, subject, action, resourceType, resource) == nil
}
