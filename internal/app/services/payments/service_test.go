package payments

import (
	"context"
	"testing"
	"time"

	"github.com/zerium/propertyd/internal/app/domain/contract"
	"github.com/zerium/propertyd/internal/app/domain/document"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/user"
	contractsvc "github.com/zerium/propertyd/internal/app/services/contracts"
	"github.com/zerium/propertyd/internal/app/storage/memory"
	svcerr "github.com/zerium/propertyd/internal/errors"
)

type fixture struct {
	store    *memory.Store
	svc      *Service
	owner    user.User
	tenant   user.User
	outsider user.User
	contract contract.Contract
}

// newFixture builds an active two-month contract at 500/month (total 1000).
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
	outsider, err := store.CreateUser(ctx, user.User{Email: "other@example.com", FullName: "Other", Role: user.RoleTenant, IsActive: true})
	if err != nil {
		t.Fatalf("create outsider: %v", err)
	}
	prop, err := store.CreateProperty(ctx, property.Property{OwnerID: owner.ID, Name: "Edificio Centro"}, []property.Unit{{UnitNumber: "101"}})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	if _, err := store.CreateDocument(ctx, document.Document{UserID: tenant.ID, DocumentType: "cedula", FileURL: "https://files/doc.pdf", Status: document.StatusVerified}); err != nil {
		t.Fatalf("create document: %v", err)
	}

	csvc := contractsvc.New(store, store, store, nil)
	c, err := csvc.Create(ctx, owner, contractsvc.CreateInput{
		UnitID:     prop.Units[0].ID,
		TenantID:   tenant.ID,
		StartDate:  time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		PaymentDay: 1,
		Amount:     500,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}
	if c.TotalValue != 1000 {
		t.Fatalf("fixture expects total 1000, got %.2f", c.TotalValue)
	}
	if _, err := csvc.Sign(ctx, tenant, c.ID); err != nil {
		t.Fatalf("sign: %v", err)
	}
	active, err := csvc.Finalize(ctx, owner, c.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	return &fixture{
		store:    store,
		svc:      New(store, store, csvc, nil),
		owner:    owner,
		tenant:   tenant,
		outsider: outsider,
		contract: active,
	}
}

func (f *fixture) balance(t *testing.T) float64 {
	t.Helper()
	c, err := f.store.GetContract(context.Background(), f.contract.ID)
	if err != nil {
		t.Fatalf("get contract: %v", err)
	}
	return c.Balance
}

func TestApplyDecrementsBalanceToZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 600, Method: "transfer"}); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if got := f.balance(t); got != 400 {
		t.Fatalf("expected balance 400, got %.2f", got)
	}

	if _, err := f.svc.Apply(ctx, f.owner, ApplyInput{ContractID: f.contract.ID, Amount: 400, Method: "cash"}); err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if got := f.balance(t); got != 0 {
		t.Fatalf("expected balance 0, got %.2f", got)
	}

	// Settled contracts reject further payments.
	if _, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 1}); !svcerr.IsCode(err, svcerr.CodeConflict) {
		t.Fatalf("expected conflict on settled contract, got %v", err)
	}
}

func TestApplyForbiddenForNonParties(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Apply(context.Background(), f.outsider, ApplyInput{ContractID: f.contract.ID, Amount: 100})
	if !svcerr.IsCode(err, svcerr.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestApplyRejectsExcessBeyondTolerance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 1000.11})
	if !svcerr.IsCode(err, svcerr.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Within the tolerance the overpayment is accepted and the balance snaps
	// to exactly zero.
	if _, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 1000.05}); err != nil {
		t.Fatalf("payment within tolerance: %v", err)
	}
	if got := f.balance(t); got != 0 {
		t.Fatalf("expected snapped balance 0, got %.2f", got)
	}
}

func TestApplySnapsRemainderAtToleranceBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// An underpayment leaving exactly the tolerance behind settles too.
	if _, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 999.90}); err != nil {
		t.Fatalf("payment leaving boundary remainder: %v", err)
	}
	if got := f.balance(t); got != 0 {
		t.Fatalf("remainder at the tolerance should snap to 0, got %.2f", got)
	}

	_, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 0.10})
	if !svcerr.IsCode(err, svcerr.CodeConflict) {
		t.Fatalf("settled contract should reject further payments, got %v", err)
	}
}

func TestApplyRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)

	for _, amount := range []float64{0, -50} {
		if _, err := f.svc.Apply(context.Background(), f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: amount}); !svcerr.IsCode(err, svcerr.CodeValidation) {
			t.Fatalf("amount %.2f: expected validation error, got %v", amount, err)
		}
	}
}

func TestApplyHasNoDeduplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 250, Method: "cash", Notes: "rent"}); err != nil {
			t.Fatalf("payment %d: %v", i+1, err)
		}
	}

	if got := f.balance(t); got != 500 {
		t.Fatalf("identical payments must both apply; expected balance 500, got %.2f", got)
	}

	list, err := f.svc.ListByContract(ctx, f.tenant, f.contract.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(list))
	}
}

func TestListOrderedByPaymentDateDescending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	older := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, time.February, 5, 0, 0, 0, 0, time.UTC)
	if _, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 500, PaymentDate: older}); err != nil {
		t.Fatalf("older payment: %v", err)
	}
	if _, err := f.svc.Apply(ctx, f.tenant, ApplyInput{ContractID: f.contract.ID, Amount: 500, PaymentDate: newer}); err != nil {
		t.Fatalf("newer payment: %v", err)
	}

	list, err := f.svc.ListByContract(ctx, f.owner, f.contract.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(list) != 2 || !list[0].PaymentDate.Equal(newer) {
		t.Fatalf("expected newest first, got %#v", list)
	}

	if _, err := f.svc.ListByContract(ctx, f.outsider, f.contract.ID); !svcerr.IsCode(err, svcerr.CodeForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
}
