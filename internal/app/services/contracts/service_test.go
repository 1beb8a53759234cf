package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/zerium/propertyd/internal/app/domain/contract"
	"github.com/zerium/propertyd/internal/app/domain/document"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage/memory"
	svcerr "github.com/zerium/propertyd/internal/errors"
)

type fixture struct {
	store  *memory.Store
	svc    *Service
	owner  user.User
	tenant user.User
	unit   property.Unit
}

func newFixture(t *testing.T) *fixture {
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
	prop, err := store.CreateProperty(ctx, property.Property{OwnerID: owner.ID, Name: "Edificio Centro"}, []property.Unit{{UnitNumber: "101", BasePrice: 500}})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}

	return &fixture{
		store:  store,
		svc:    New(store, store, store, nil),
		owner:  owner,
		tenant: tenant,
		unit:   prop.Units[0],
	}
}

func (f *fixture) verifyDocument(t *testing.T) {
	t.Helper()
	doc, err := f.store.CreateDocument(context.Background(), document.Document{UserID: f.tenant.ID, DocumentType: "cedula", FileURL: "https://files/doc.pdf", Status: document.StatusVerified})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if doc.Status != document.StatusVerified {
		t.Fatalf("unexpected document status %s", doc.Status)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateComputesTotalAndBalance(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Create(context.Background(), f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.March, 2),
		PaymentDay: 5,
		Amount:     100,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if c.TotalValue != 200 {
		t.Fatalf("expected total 200, got %.2f", c.TotalValue)
	}
	if c.Balance != c.TotalValue {
		t.Fatalf("balance %.2f should equal total %.2f", c.Balance, c.TotalValue)
	}
	if c.Status != contract.StatusPending {
		t.Fatalf("expected pending, got %s", c.Status)
	}
}

func TestCreateMinimumOneMonth(t *testing.T) {
	f := newFixture(t)

	c, err := f.svc.Create(context.Background(), f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.January, 10),
		PaymentDay: 1,
		Amount:     300,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if c.TotalValue != 300 {
		t.Fatalf("expected one-month minimum total 300, got %.2f", c.TotalValue)
	}
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		PaymentDay: 1,
		Amount:     500,
	})
	if err != nil {
		t.Fatalf("create first contract: %v", err)
	}

	_, err = f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.June, 30),
		EndDate:    date(2025, time.December, 31),
		PaymentDay: 1,
		Amount:     500,
	})
	if err == nil {
		t.Fatal("expected overlap conflict")
	}
	se := svcerr.GetServiceError(err)
	if se == nil || se.Code != svcerr.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if se.Details["conflicting_contract_id"] != first.ID {
		t.Fatalf("conflict should name contract %s, got %v", first.ID, se.Details["conflicting_contract_id"])
	}

	// A range after the first contract ends is fine.
	if _, err := f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.July, 1),
		EndDate:    date(2025, time.December, 31),
		PaymentDay: 1,
		Amount:     500,
	}); err != nil {
		t.Fatalf("non-overlapping contract rejected: %v", err)
	}
}

func TestCreateRequiresUnitOwnership(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.tenant, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		PaymentDay: 1,
		Amount:     500,
	})
	if !svcerr.IsCode(err, svcerr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSignRequiresVerifiedDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		PaymentDay: 1,
		Amount:     500,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	if _, err := f.svc.Sign(ctx, f.tenant, c.ID); !svcerr.IsCode(err, svcerr.CodeValidation) {
		t.Fatalf("expected validation error without verified document, got %v", err)
	}

	f.verifyDocument(t)

	signed, err := f.svc.Sign(ctx, f.tenant, c.ID)
	if err != nil {
		t.Fatalf("sign contract: %v", err)
	}
	if signed.Status != contract.StatusSignedByTenant {
		t.Fatalf("expected signed_by_tenant, got %s", signed.Status)
	}
}

func TestSignOnlyByAssignedTenant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		PaymentDay: 1,
		Amount:     500,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	if _, err := f.svc.Sign(ctx, f.owner, c.ID); !svcerr.IsCode(err, svcerr.CodeForbidden) {
		t.Fatalf("expected forbidden for non-tenant, got %v", err)
	}
}

func TestLifecycleUpdatesUnitStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifyDocument(t)

	c, err := f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		PaymentDay: 1,
		Amount:     500,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	// finalize before sign is a conflict
	if _, err := f.svc.Finalize(ctx, f.owner, c.ID); !svcerr.IsCode(err, svcerr.CodeConflict) {
		t.Fatalf("expected conflict finalizing pending contract, got %v", err)
	}

	if _, err := f.svc.Sign(ctx, f.tenant, c.ID); err != nil {
		t.Fatalf("sign: %v", err)
	}

	active, err := f.svc.Finalize(ctx, f.owner, c.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if active.Status != contract.StatusActive || !active.IsActive {
		t.Fatalf("expected active contract, got %#v", active)
	}

	unit, err := f.store.GetUnit(ctx, f.unit.ID)
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if unit.Status != property.UnitOccupied {
		t.Fatalf("expected occupied unit after finalize, got %s", unit.Status)
	}

	terminated, err := f.svc.Terminate(ctx, f.owner, c.ID)
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if terminated.Status != contract.StatusTerminated || terminated.IsActive {
		t.Fatalf("expected terminated contract, got %#v", terminated)
	}

	unit, err = f.store.GetUnit(ctx, f.unit.ID)
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if unit.Status != property.UnitAvailable {
		t.Fatalf("expected available unit after terminate, got %s", unit.Status)
	}
}

func TestRejectOnlyFromPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.verifyDocument(t)

	c, err := f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		PaymentDay: 1,
		Amount:     500,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	rejected, err := f.svc.Reject(ctx, f.owner, c.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != contract.StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}

	// A rejected contract no longer blocks the unit.
	if _, err := f.svc.Create(ctx, f.owner, CreateInput{
		UnitID:     f.unit.ID,
		TenantID:   f.tenant.ID,
		StartDate:  date(2025, time.January, 1),
		EndDate:    date(2025, time.June, 30),
		PaymentDay: 1,
		Amount:     500,
	}); err != nil {
		t.Fatalf("create after reject: %v", err)
	}
}
