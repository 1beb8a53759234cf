package contracts

import (
	"context"
	"time"

	"github.com/zerium/propertyd/internal/app/domain/contract"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/metrics"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
	"github.com/zerium/propertyd/pkg/logger"
)

// Service drives the lease contract lifecycle.
type Service struct {
	store      storage.ContractStore
	properties storage.PropertyStore
	documents  storage.DocumentStore
	log        *logger.Logger
}

// New constructs a contract service.
func New(store storage.ContractStore, properties storage.PropertyStore, documents storage.DocumentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("contracts")
	}
	return &Service{store: store, properties: properties, documents: documents, log: log}
}

// CreateInput carries the fields of a contract creation request.
type CreateInput struct {
	UnitID     string
	TenantID   string
	StartDate  time.Time
	EndDate    time.Time
	PaymentDay int
	Amount     float64
}

// Create opens a pending contract on a unit the actor owns. The unit must
// have no live contract overlapping the requested date range; live means
// pending, signed_by_tenant or active. The total value and opening balance
// are derived from the date span and monthly amount.
func (s *Service) Create(ctx context.Context, actor user.User, in CreateInput) (contract.Contract, error) {
	if in.Amount <= 0 {
		return contract.Contract{}, svcerr.Validation("amount must be positive")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.EndDate.Before(in.StartDate) {
		return contract.Contract{}, svcerr.Validation("end_date must not be before start_date")
	}
	if in.PaymentDay < 1 || in.PaymentDay > 28 {
		return contract.Contract{}, svcerr.Validation("payment_day must be between 1 and 28")
	}

	unit, err := s.properties.GetUnit(ctx, in.UnitID)
	if err != nil {
		return contract.Contract{}, svcerr.NotFound("unit %s not found", in.UnitID)
	}
	if err := s.requireUnitOwner(ctx, actor, unit); err != nil {
		return contract.Contract{}, err
	}

	live, err := s.store.ListLiveContractsForUnit(ctx, in.UnitID)
	if err != nil {
		return contract.Contract{}, svcerr.Internal("check existing contracts", err)
	}
	for _, existing := range live {
		if contract.Overlaps(in.StartDate, in.EndDate, existing.StartDate, existing.EndDate) {
			return contract.Contract{}, svcerr.StateConflict("unit %s already has contract %s covering the requested dates", in.UnitID, existing.ID).
				WithDetails("conflicting_contract_id", existing.ID)
		}
	}

	total := contract.TotalValue(in.StartDate, in.EndDate, in.Amount)
	created, err := s.store.CreateContract(ctx, contract.Contract{
		UnitID:     in.UnitID,
		TenantID:   in.TenantID,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		PaymentDay: in.PaymentDay,
		Amount:     in.Amount,
		TotalValue: total,
		Balance:    total,
		Status:     contract.StatusPending,
	})
	if err != nil {
		return contract.Contract{}, svcerr.Internal("create contract", err)
	}

	s.log.WithFields(map[string]interface{}{"contract_id": created.ID, "unit_id": created.UnitID, "total": created.TotalValue}).Info("contract created")
	return created, nil
}

// Sign moves a pending contract to signed_by_tenant. Only the assigned tenant
// may sign, and only with at least one verified identity document on file.
func (s *Service) Sign(ctx context.Context, actor user.User, id string) (contract.Contract, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return contract.Contract{}, err
	}
	if c.TenantID != actor.ID {
		return contract.Contract{}, svcerr.Forbidden("contract %s is not assigned to you", id)
	}
	if c.Status != contract.StatusPending {
		return contract.Contract{}, svcerr.StateConflict("contract %s is %s, not pending", id, c.Status)
	}

	verified, err := s.documents.CountVerifiedByUser(ctx, actor.ID)
	if err != nil {
		return contract.Contract{}, svcerr.Internal("check documents", err)
	}
	if verified == 0 {
		return contract.Contract{}, svcerr.Validation("a verified identity document is required before signing")
	}

	c.Status = contract.StatusSignedByTenant
	return s.update(ctx, c, "", "contract signed by tenant")
}

// Finalize activates a tenant-signed contract and marks the unit occupied.
// Only the owning landlord may finalize.
func (s *Service) Finalize(ctx context.Context, actor user.User, id string) (contract.Contract, error) {
	c, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return contract.Contract{}, err
	}
	if c.Status != contract.StatusSignedByTenant {
		return contract.Contract{}, svcerr.StateConflict("contract %s is %s, not signed_by_tenant", id, c.Status)
	}

	c.Status = contract.StatusActive
	c.IsActive = true
	return s.update(ctx, c, property.UnitOccupied, "contract activated")
}

// Terminate ends an active contract and releases the unit. Only the owning
// landlord may terminate.
func (s *Service) Terminate(ctx context.Context, actor user.User, id string) (contract.Contract, error) {
	c, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return contract.Contract{}, err
	}
	if c.Status != contract.StatusActive {
		return contract.Contract{}, svcerr.StateConflict("contract %s is %s, not active", id, c.Status)
	}

	c.Status = contract.StatusTerminated
	c.IsActive = false
	return s.update(ctx, c, property.UnitAvailable, "contract terminated")
}

// Reject declines a pending contract. Only the owning landlord may reject.
func (s *Service) Reject(ctx context.Context, actor user.User, id string) (contract.Contract, error) {
	c, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return contract.Contract{}, err
	}
	if c.Status != contract.StatusPending {
		return contract.Contract{}, svcerr.StateConflict("contract %s is %s, not pending", id, c.Status)
	}

	c.Status = contract.StatusRejected
	return s.update(ctx, c, "", "contract rejected")
}

func (s *Service) update(ctx context.Context, c contract.Contract, unitStatus property.UnitStatus, message string) (contract.Contract, error) {
	updated, err := s.store.UpdateContract(ctx, c, unitStatus)
	if err != nil {
		return contract.Contract{}, svcerr.Internal("update contract", err)
	}
	metrics.RecordContractTransition(string(updated.Status))
	s.log.WithFields(map[string]interface{}{"contract_id": updated.ID, "status": updated.Status}).Info(message)
	return updated, nil
}

// Get retrieves a contract visible to the actor: the assigned tenant, the
// owning landlord, or an admin.
func (s *Service) Get(ctx context.Context, actor user.User, id string) (contract.Contract, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return contract.Contract{}, err
	}
	if err := s.RequireParty(ctx, actor, c); err != nil {
		return contract.Contract{}, err
	}
	return c, nil
}

// ListForUser returns contracts visible to the actor: owners see contracts on
// their units, tenants see their own.
func (s *Service) ListForUser(ctx context.Context, actor user.User) ([]contract.Contract, error) {
	if actor.Role == user.RoleOwner || actor.Role == user.RoleAdmin {
		return s.store.ListContractsByOwner(ctx, actor.ID)
	}
	return s.store.ListContractsByTenant(ctx, actor.ID)
}

// RequireParty verifies that the actor is a party to the contract: the
// assigned tenant, the landlord owning the unit, or an admin.
func (s *Service) RequireParty(ctx context.Context, actor user.User, c contract.Contract) error {
	if actor.Role == user.RoleAdmin || c.TenantID == actor.ID {
		return nil
	}
	owner, err := s.unitOwner(ctx, c.UnitID)
	if err != nil {
		return err
	}
	if owner != actor.ID {
		return svcerr.Forbidden("contract %s does not involve you", c.ID)
	}
	return nil
}

func (s *Service) get(ctx context.Context, id string) (contract.Contract, error) {
	c, err := s.store.GetContract(ctx, id)
	if err != nil {
		return contract.Contract{}, svcerr.NotFound("contract %s not found", id)
	}
	return c, nil
}

func (s *Service) getOwned(ctx context.Context, actor user.User, id string) (contract.Contract, error) {
	c, err := s.get(ctx, id)
	if err != nil {
		return contract.Contract{}, err
	}
	owner, err := s.unitOwner(ctx, c.UnitID)
	if err != nil {
		return contract.Contract{}, err
	}
	if owner != actor.ID && actor.Role != user.RoleAdmin {
		return contract.Contract{}, svcerr.Forbidden("contract %s is not on one of your units", id)
	}
	return c, nil
}

func (s *Service) requireUnitOwner(ctx context.Context, actor user.User, unit property.Unit) error {
	prop, err := s.properties.GetProperty(ctx, unit.PropertyID)
	if err != nil {
		return svcerr.NotFound("property %s not found", unit.PropertyID)
	}
	if prop.OwnerID != actor.ID && actor.Role != user.RoleAdmin {
		return svcerr.Forbidden("unit %s does not belong to you", unit.ID)
	}
	return nil
}

func (s *Service) unitOwner(ctx context.Context, unitID string) (string, error) {
	unit, err := s.properties.GetUnit(ctx, unitID)
	if err != nil {
		return "", svcerr.NotFound("unit %s not found", unitID)
	}
	prop, err := s.properties.GetProperty(ctx, unit.PropertyID)
	if err != nil {
		return "", svcerr.NotFound("property %s not found", unit.PropertyID)
	}
	return prop.OwnerID, nil
}
