package services

import (
	"context"
	"errors"
	"testing"

	"github.com/smartsplit/expense-splitter/internal/ledger"
)

func TestGroupCreateAndGet(t *testing.T) {
	svc := NewGroupService(newFakeGroups())
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", "  ski trip ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.Name != "ski trip" {
		t.Fatalf("name = %q, want trimmed", g.Name)
	}
	if g.OwnerID != "alice" {
		t.Fatalf("owner = %q, want alice", g.OwnerID)
	}

	if _, err := svc.Create(ctx, "alice", "   "); err == nil {
		t.Fatal("blank name should be rejected")
	}
	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ledger.ErrGroupNotFound) {
		t.Fatalf("get missing err = %v, want ErrGroupNotFound", err)
	}
}

func TestGroupJoin(t *testing.T) {
	svc := NewGroupService(newFakeGroups())
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", "flat")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	joined, err := svc.Join(ctx, "bob", g.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !joined.IsMemberOrOwner("bob") {
		t.Fatal("bob should be a member after joining")
	}

	if _, err := svc.Join(ctx, "bob", g.ID); err == nil {
		t.Fatal("joining twice should fail")
	}
	if _, err := svc.Join(ctx, "alice", g.ID); err == nil {
		t.Fatal("the owner cannot join their own group")
	}
}

func TestRequireMemberOrOwner(t *testing.T) {
	svc := NewGroupService(newFakeGroups())
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", "flat")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Join(ctx, "bob", g.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.RequireMemberOrOwner(ctx, g.ID, "alice"); err != nil {
		t.Fatalf("owner denied: %v", err)
	}
	if err := svc.RequireMemberOrOwner(ctx, g.ID, "bob"); err != nil {
		t.Fatalf("member denied: %v", err)
	}
	if err := svc.RequireMemberOrOwner(ctx, g.ID, "mallory"); !errors.Is(err, ledger.ErrNotGroupMember) {
		t.Fatalf("stranger err = %v, want ErrNotGroupMember", err)
	}
	if err := svc.RequireMemberOrOwner(ctx, "missing", "alice"); !errors.Is(err, ledger.ErrGroupNotFound) {
		t.Fatalf("missing group err = %v, want ErrGroupNotFound", err)
	}
}
