package users

import (
	"context"
	"testing"

	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage/memory"
	svcerr "github.com/zerium/propertyd/internal/errors"
)

func TestRegister(t *testing.T) {
	svc := New(memory.New(), nil)

	created, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Maria@Example.com",
		Password: "password1",
		FullName: "Maria Lopez",
		Role:     "tenant",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Email != "maria@example.com" {
		t.Fatalf("email should be normalized, got %s", created.Email)
	}
	if created.Role != user.RoleTenant || !created.IsActive {
		t.Fatalf("unexpected user state: %#v", created)
	}
	if created.PasswordHash == "password1" || created.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	in := RegisterInput{Email: "maria@example.com", Password: "password1", FullName: "Maria Lopez", Role: "tenant"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, in)
	if !svcerr.IsCode(err, svcerr.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterAcceptsLandlordAlias(t *testing.T) {
	svc := New(memory.New(), nil)

	created, err := svc.Register(context.Background(), RegisterInput{
		Email:    "owner@example.com",
		Password: "password1",
		FullName: "Owner",
		Role:     "landlord",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if created.Role != user.RoleOwner {
		t.Fatalf("landlord should map to owner, got %s", created.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := New(memory.New(), nil)
	ctx := context.Background()

	cases := []RegisterInput{
		{Email: "not-an-email", Password: "password1", FullName: "X", Role: "tenant"},
		{Email: "a@b.com", Password: "short", FullName: "X", Role: "tenant"},
		{Email: "a@b.com", Password: "password1", FullName: "", Role: "tenant"},
		{Email: "a@b.com", Password: "password1", FullName: "X", Role: "astronaut"},
	}
	for i, in := range cases {
		if _, err := svc.Register(ctx, in); !svcerr.IsCode(err, svcerr.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestListRequiresAdmin(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	tenant, err := svc.Register(ctx, RegisterInput{Email: "t@example.com", Password: "password1", FullName: "T", Role: "tenant"})
	if err != nil {
		t.Fatalf("register tenant: %v", err)
	}
	admin, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "password1", FullName: "A", Role: "admin"})
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}

	if _, err := svc.List(ctx, tenant); !svcerr.IsCode(err, svcerr.CodeForbidden) {
		t.Fatalf("expected forbidden for tenant, got %v", err)
	}
	list, err := svc.List(ctx, admin)
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}
}
