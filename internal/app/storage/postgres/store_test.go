package postgres

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"

	"github.com/zerium/propertyd/internal/app/domain/contract"
	"github.com/zerium/propertyd/internal/app/domain/payment"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/platform/migrations"
)

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := New(db)

	owner, err := store.CreateUser(ctx, user.User{Email: "owner@example.com", PasswordHash: "x", FullName: "Owner", Role: user.RoleOwner, IsActive: true})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	tenant, err := store.CreateUser(ctx, user.User{Email: "tenant@example.com", PasswordHash: "x", FullName: "Tenant", Role: user.RoleTenant, IsActive: true})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}

	prop, err := store.CreateProperty(ctx, property.Property{OwnerID: owner.ID, Name: "Edificio Centro", City: "Quito"}, []property.Unit{
		{UnitNumber: "101", BasePrice: 500},
		{UnitNumber: "102", BasePrice: 650},
	})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}
	if len(prop.Units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(prop.Units))
	}

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	c, err := store.CreateContract(ctx, contract.Contract{
		UnitID:     prop.Units[0].ID,
		TenantID:   tenant.ID,
		StartDate:  start,
		EndDate:    end,
		PaymentDay: 5,
		Amount:     500,
		TotalValue: contract.TotalValue(start, end, 500),
		Balance:    contract.TotalValue(start, end, 500),
		Status:     contract.StatusPending,
	})
	if err != nil {
		t.Fatalf("create contract: %v", err)
	}

	c.Status = contract.StatusActive
	c.IsActive = true
	if _, err := store.UpdateContract(ctx, c, property.UnitOccupied); err != nil {
		t.Fatalf("update contract: %v", err)
	}

	unit, err := store.GetUnit(ctx, prop.Units[0].ID)
	if err != nil {
		t.Fatalf("get unit: %v", err)
	}
	if unit.Status != property.UnitOccupied {
		t.Fatalf("expected occupied unit, got %s", unit.Status)
	}

	pay, err := store.RecordPayment(ctx, payment.Payment{ContractID: c.ID, Amount: 500, Method: "cash"}, c.Balance-500)
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if pay.ID == "" {
		t.Fatalf("expected payment id")
	}

	got, err := store.GetContract(ctx, c.ID)
	if err != nil {
		t.Fatalf("get contract: %v", err)
	}
	if got.Balance != c.Balance-500 {
		t.Fatalf("expected balance %.2f, got %.2f", c.Balance-500, got.Balance)
	}

	payments, err := store.ListPaymentsByContract(ctx, c.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
}
