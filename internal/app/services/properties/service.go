package properties

import (
	"context"
	"strings"

	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
	"github.com/zerium/propertyd/pkg/logger"
)

// Service manages properties and their units.
type Service struct {
	store storage.PropertyStore
	log   *logger.Logger
}

// New constructs a property service.
func New(store storage.PropertyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("properties")
	}
	return &Service{store: store, log: log}
}

// Create registers a property with its initial units in one transaction. Only
// owners may create properties; the owner is always the actor.
func (s *Service) Create(ctx context.Context, actor user.User, prop property.Property, units []property.Unit) (property.Property, error) {
	if actor.Role != user.RoleOwner && actor.Role != user.RoleAdmin {
		return property.Property{}, svcerr.Forbidden("only owners may create properties")
	}
	if strings.TrimSpace(prop.Name) == "" {
		return property.Property{}, svcerr.Validation("name is required")
	}
	for i := range units {
		if strings.TrimSpace(units[i].UnitNumber) == "" {
			return property.Property{}, svcerr.Validation("unit_number is required for every unit")
		}
		if units[i].Status != "" {
			status, err := property.ParseUnitStatus(string(units[i].Status))
			if err != nil {
				return property.Property{}, svcerr.Validation("unit status must be one of available, occupied, maintenance")
			}
			units[i].Status = status
		}
	}

	prop.OwnerID = actor.ID
	created, err := s.store.CreateProperty(ctx, prop, units)
	if err != nil {
		return property.Property{}, svcerr.Internal("create property", err)
	}

	s.log.WithFields(map[string]interface{}{"property_id": created.ID, "units": len(created.Units)}).Info("property created")
	return created, nil
}

// ListMine returns the actor's properties with their units.
func (s *Service) ListMine(ctx context.Context, actor user.User) ([]property.Property, error) {
	return s.store.ListPropertiesByOwner(ctx, actor.ID)
}

// Get retrieves a property. Visible to its owner and to admins.
func (s *Service) Get(ctx context.Context, actor user.User, id string) (property.Property, error) {
	prop, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return property.Property{}, svcerr.NotFound("property %s not found", id)
	}
	if prop.OwnerID != actor.ID && actor.Role != user.RoleAdmin {
		return property.Property{}, svcerr.Forbidden("property %s does not belong to you", id)
	}
	return prop, nil
}

// UnitUpdate carries the editable fields of a unit.
type UnitUpdate struct {
	UnitNumber *string
	Type       *string
	Floor      *int
	Bedrooms   *int
	Bathrooms  *int
	AreaM2     *float64
	BasePrice  *float64
	Status     *string
}

// UpdateUnit edits a unit. Only the owner of the enclosing property may do so.
func (s *Service) UpdateUnit(ctx context.Context, actor user.User, unitID string, in UnitUpdate) (property.Unit, error) {
	unit, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		return property.Unit{}, svcerr.NotFound("unit %s not found", unitID)
	}

	prop, err := s.store.GetProperty(ctx, unit.PropertyID)
	if err != nil {
		return property.Unit{}, svcerr.NotFound("property %s not found", unit.PropertyID)
	}
	if prop.OwnerID != actor.ID && actor.Role != user.RoleAdmin {
		return property.Unit{}, svcerr.Forbidden("unit %s does not belong to you", unitID)
	}

	if in.UnitNumber != nil {
		unit.UnitNumber = strings.TrimSpace(*in.UnitNumber)
	}
	if in.Type != nil {
		unit.Type = *in.Type
	}
	if in.Floor != nil {
		unit.Floor = *in.Floor
	}
	if in.Bedrooms != nil {
		unit.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		unit.Bathrooms = *in.Bathrooms
	}
	if in.AreaM2 != nil {
		unit.AreaM2 = *in.AreaM2
	}
	if in.BasePrice != nil {
		unit.BasePrice = *in.BasePrice
	}
	if in.Status != nil {
		status, err := property.ParseUnitStatus(*in.Status)
		if err != nil {
			return property.Unit{}, svcerr.Validation("unit status must be one of available, occupied, maintenance")
		}
		unit.Status = status
	}

	updated, err := s.store.UpdateUnit(ctx, unit)
	if err != nil {
		return property.Unit{}, svcerr.Internal("update unit", err)
	}
	return updated, nil
}
