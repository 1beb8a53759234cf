package tickets

import (
	"context"
	"testing"

	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/ticket"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage/memory"
	svcerr "github.com/zerium/propertyd/internal/errors"
)

func setup(t *testing.T) (*Service, user.User, user.User, property.Property) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	owner, err := store.CreateUser(ctx, user.User{Email: "owner@example.com", FullName: "Owner", Role: user.RoleOwner, IsActive: true})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	tenant, err := store.CreateUser(ctx, user.User{Email: "tenant@example.com", FullName: "Tenant", Role: user.RoleTenant, IsActive: true})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	prop, err := store.CreateProperty(ctx, property.Property{OwnerID: owner.ID, Name: "Edificio Centro"}, nil)
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	return New(store, store, nil), owner, tenant, prop
}

func TestCreateTicket(t *testing.T) {
	svc, _, tenant, prop := setup(t)

	created, err := svc.Create(context.Background(), tenant, CreateInput{
		PropertyID:  prop.ID,
		Title:       "Leaking faucet",
		Description: "Kitchen faucet drips",
		Priority:    "high",
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if created.Status != ticket.StatusOpen || created.Priority != ticket.PriorityHigh {
		t.Fatalf("unexpected ticket state: %#v", created)
	}
	if created.RequesterID != tenant.ID {
		t.Fatalf("requester should be the actor")
	}
}

func TestCreateTicketDefaultsPriority(t *testing.T) {
	svc, _, tenant, prop := setup(t)

	created, err := svc.Create(context.Background(), tenant, CreateInput{PropertyID: prop.ID, Title: "Broken lock"})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if created.Priority != ticket.PriorityMedium {
		t.Fatalf("expected medium default, got %s", created.Priority)
	}
}

func TestCreateTicketUnknownProperty(t *testing.T) {
	svc, _, tenant, _ := setup(t)

	_, err := svc.Create(context.Background(), tenant, CreateInput{PropertyID: "missing", Title: "X"})
	if !svcerr.IsCode(err, svcerr.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateTicketOwnerOnly(t *testing.T) {
	svc, owner, tenant, prop := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, tenant, CreateInput{PropertyID: prop.ID, Title: "Leaking faucet"})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}

	status := "resolved"
	if _, err := svc.Update(ctx, tenant, created.ID, UpdateInput{Status: &status}); !svcerr.IsCode(err, svcerr.CodeForbidden) {
		t.Fatalf("tenant must not update ticket status, got %v", err)
	}

	updated, err := svc.Update(ctx, owner, created.ID, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("update ticket: %v", err)
	}
	if updated.Status != ticket.StatusResolved || updated.ResolvedAt.IsZero() {
		t.Fatalf("resolution should stamp resolved_at: %#v", updated)
	}
}

func TestListForUserScopes(t *testing.T) {
	svc, owner, tenant, prop := setup(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, tenant, CreateInput{PropertyID: prop.ID, Title: "One"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, owner, CreateInput{PropertyID: prop.ID, Title: "Two"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	ownerView, err := svc.ListForUser(ctx, owner)
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(ownerView) != 2 {
		t.Fatalf("owner should see all tickets on the property, got %d", len(ownerView))
	}

	tenantView, err := svc.ListForUser(ctx, tenant)
	if err != nil {
		t.Fatalf("tenant list: %v", err)
	}
	if len(tenantView) != 1 || tenantView[0].Title != "One" {
		t.Fatalf("tenant should see only their own tickets, got %#v", tenantView)
	}
}
