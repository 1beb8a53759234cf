package payments

import (
	"context"
	"time"

	"github.com/zerium/propertyd/internal/app/domain/payment"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/metrics"
	"github.com/zerium/propertyd/internal/app/services/contracts"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
	"github.com/zerium/propertyd/pkg/logger"
)

// Service maintains the append-only payment ledger of each contract.
type Service struct {
	store         storage.PaymentStore
	contractStore storage.ContractStore
	contracts     *contracts.Service
	log           *logger.Logger
}

// New constructs a payment service.
func New(store storage.PaymentStore, contractStore storage.ContractStore, contractsSvc *contracts.Service, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("payments")
	}
	return &Service{store: store, contractStore: contractStore, contracts: contractsSvc, log: log}
}

// ApplyInput carries the fields of a payment request.
type ApplyInput struct {
	ContractID  string
	Amount      float64
	Method      string
	Notes       string
	PaymentDate time.Time
}

// Apply records a payment against a contract and decrements its balance in a
// single transaction. The actor must be the contract's tenant or the owning
// landlord. A settled contract rejects further payments; an amount exceeding
// the balance by more than the tolerance is rejected; overpayment within the
// tolerance snaps the balance to exactly zero. Payments are never deduplicated:
// submitting the same request twice records two ledger entries.
func (s *Service) Apply(ctx context.Context, actor user.User, in ApplyInput) (payment.Payment, error) {
	if in.Amount <= 0 {
		return payment.Payment{}, svcerr.Validation("amount must be positive")
	}

	c, err := s.contractStore.GetContract(ctx, in.ContractID)
	if err != nil {
		return payment.Payment{}, svcerr.NotFound("contract %s not found", in.ContractID)
	}
	if err := s.contracts.RequireParty(ctx, actor, c); err != nil {
		return payment.Payment{}, err
	}

	if c.Balance <= 0 {
		return payment.Payment{}, svcerr.StateConflict("contract %s is already fully paid", c.ID)
	}
	if in.Amount > c.Balance+payment.Epsilon {
		return payment.Payment{}, svcerr.Validation("amount %.2f exceeds remaining balance %.2f", in.Amount, c.Balance).
			WithDetails("balance", c.Balance)
	}

	// A remainder within the tolerance, boundary included, settles the contract.
	newBalance := c.Balance - in.Amount
	if newBalance <= payment.Epsilon {
		newBalance = 0
	}

	recorded, err := s.store.RecordPayment(ctx, payment.Payment{
		ContractID:  c.ID,
		Amount:      in.Amount,
		Method:      in.Method,
		Notes:       in.Notes,
		PaymentDate: in.PaymentDate,
	}, newBalance)
	if err != nil {
		return payment.Payment{}, svcerr.Internal("record payment", err)
	}

	metrics.RecordPaymentApplied(in.Amount, newBalance == 0)
	s.log.WithFields(map[string]interface{}{
		"contract_id": c.ID,
		"payment_id":  recorded.ID,
		"amount":      in.Amount,
		"balance":     newBalance,
	}).Info("payment applied")
	return recorded, nil
}

// ListByContract returns a contract's payments, newest first. Visibility
// follows contract visibility: tenant, owning landlord, or admin.
func (s *Service) ListByContract(ctx context.Context, actor user.User, contractID string) ([]payment.Payment, error) {
	c, err := s.contractStore.GetContract(ctx, contractID)
	if err != nil {
		return nil, svcerr.NotFound("contract %s not found", contractID)
	}
	if err := s.contracts.RequireParty(ctx, actor, c); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByContract(ctx, contractID)
}
