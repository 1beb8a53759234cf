package dashboard

import (
	"context"

	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
)

// OwnerStats summarizes an owner's portfolio.
type OwnerStats struct {
	TotalProperties int     `json:"total_properties"`
	TotalUnits      int     `json:"total_units"`
	OccupiedUnits   int     `json:"occupied_units"`
	OccupancyRate   float64 `json:"occupancy_rate"`
	OpenTickets     int     `json:"open_tickets"`
}

// TenantStats summarizes a tenant's activity.
type TenantStats struct {
	ActiveContracts int `json:"active_contracts"`
	OpenTickets     int `json:"open_tickets"`
}

// Stats is the role-dependent dashboard payload. Exactly one of the nested
// blocks is set.
type Stats struct {
	Role   user.Role    `json:"role"`
	Owner  *OwnerStats  `json:"owner,omitempty"`
	Tenant *TenantStats `json:"tenant,omitempty"`
}

// Service aggregates dashboard figures from the stores.
type Service struct {
	properties storage.PropertyStore
	contracts  storage.ContractStore
	tickets    storage.TicketStore
}

// New constructs a dashboard service.
func New(properties storage.PropertyStore, contracts storage.ContractStore, tickets storage.TicketStore) *Service {
	return &Service{properties: properties, contracts: contracts, tickets: tickets}
}

// StatsFor computes the dashboard for the actor's role.
func (s *Service) StatsFor(ctx context.Context, actor user.User) (Stats, error) {
	switch actor.Role {
	case user.RoleOwner, user.RoleAdmin:
		return s.ownerStats(ctx, actor)
	case user.RoleTenant:
		return s.tenantStats(ctx, actor)
	default:
		return Stats{}, svcerr.Forbidden("no dashboard for role %s", actor.Role)
	}
}

func (s *Service) ownerStats(ctx context.Context, actor user.User) (Stats, error) {
	props, err := s.properties.ListPropertiesByOwner(ctx, actor.ID)
	if err != nil {
		return Stats{}, svcerr.Internal("list properties", err)
	}
	total, occupied, err := s.properties.CountUnitsByOwner(ctx, actor.ID)
	if err != nil {
		return Stats{}, svcerr.Internal("count units", err)
	}
	open, err := s.tickets.CountOpenByOwner(ctx, actor.ID)
	if err != nil {
		return Stats{}, svcerr.Internal("count tickets", err)
	}

	rate := 0.0
	if total > 0 {
		rate = float64(occupied) / float64(total)
	}
	return Stats{Role: actor.Role, Owner: &OwnerStats{
		TotalProperties: len(props),
		TotalUnits:      total,
		OccupiedUnits:   occupied,
		OccupancyRate:   rate,
		OpenTickets:     open,
	}}, nil
}

func (s *Service) tenantStats(ctx context.Context, actor user.User) (Stats, error) {
	active, err := s.contracts.CountActiveByTenant(ctx, actor.ID)
	if err != nil {
		return Stats{}, svcerr.Internal("count contracts", err)
	}
	open, err := s.tickets.CountOpenByRequester(ctx, actor.ID)
	if err != nil {
		return Stats{}, svcerr.Internal("count tickets", err)
	}
	return Stats{Role: actor.Role, Tenant: &TenantStats{ActiveContracts: active, OpenTickets: open}}, nil
}
