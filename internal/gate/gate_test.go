package gate

import (
	"context"
	"errors"
	"testing"
)

type subject struct {
	ID    uint
	Admin bool
}

type ownerPolicy struct{}

func (ownerPolicy) Can(_ context.Context, s subject, action Action, resource any) bool {
	if s.Admin {
		return true
	}
	owner, ok := resource.(uint)
	if !ok {
		return action == ActionView
	}
	return owner == s.ID
}

func TestGateAuthorize(t *testing.T) {
	g := New[subject]()
	g.Register("document", ownerPolicy{})
	ctx := context.Background()

	if err := g.Authorize(ctx, subject{}, ActionView, "document", nil); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("zero subject: got %v", err)
	}
	if err := g.Authorize(ctx, subject{ID: 1}, ActionView, "widget", nil); !errors.Is(err, ErrNoPolicyDefined) {
		t.Fatalf("unknown resource: got %v", err)
	}
	if err := g.Authorize(ctx, subject{ID: 1}, ActionUpdate, "document", uint(2)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("foreign resource: got %v", err)
	}
	if err := g.Authorize(ctx, subject{ID: 2}, ActionUpdate, "document", uint(2)); err != nil {
		t.Fatalf("owner: got %v", err)
	}
	if !g.Can(ctx, subject{ID: 1, Admin: true}, ActionDelete, "document", uint(2)) {
		t.Fatal("admin should pass")
	}
}

func TestGateRegisterReplaces(t *testing.T) {
	g := New[subject]()
	g.Register("document", ownerPolicy{})
	g.Register("document", denyAll{})

	if g.Can(context.Background(), subject{ID: 1, Admin: true}, ActionView, "document", nil) {
		t.Fatal("replaced policy should deny")
	}
}

type denyAll struct{}

func (denyAll) Can(context.Context, subject, Action, any) bool { return false }
