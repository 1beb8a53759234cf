package tickets

import (
	"context"
	"strings"
	"time"

	"github.com/zerium/propertyd/internal/app/domain/ticket"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
	"github.com/zerium/propertyd/pkg/logger"
)

// Service manages maintenance tickets.
type Service struct {
	store      storage.TicketStore
	properties storage.PropertyStore
	log        *logger.Logger
}

// New constructs a ticket service.
func New(store storage.TicketStore, properties storage.PropertyStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("tickets")
	}
	return &Service{store: store, properties: properties, log: log}
}

// CreateInput carries the fields of a ticket creation request.
type CreateInput struct {
	PropertyID  string
	Title       string
	Description string
	Priority    string
}

// Create opens a ticket against an existing property.
func (s *Service) Create(ctx context.Context, actor user.User, in CreateInput) (ticket.Ticket, error) {
	if strings.TrimSpace(in.Title) == "" {
		return ticket.Ticket{}, svcerr.Validation("title is required")
	}

	priority := ticket.PriorityMedium
	if in.Priority != "" {
		parsed, err := ticket.ParsePriority(in.Priority)
		if err != nil {
			return ticket.Ticket{}, svcerr.Validation("priority must be one of low, medium, high, emergency")
		}
		priority = parsed
	}

	if _, err := s.properties.GetProperty(ctx, in.PropertyID); err != nil {
		return ticket.Ticket{}, svcerr.NotFound("property %s not found", in.PropertyID)
	}

	created, err := s.store.CreateTicket(ctx, ticket.Ticket{
		PropertyID:  in.PropertyID,
		RequesterID: actor.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Priority:    priority,
		Status:      ticket.StatusOpen,
	})
	if err != nil {
		return ticket.Ticket{}, svcerr.Internal("create ticket", err)
	}

	s.log.WithFields(map[string]interface{}{"ticket_id": created.ID, "property_id": created.PropertyID}).Info("ticket opened")
	return created, nil
}

// ListForUser returns tickets visible to the actor: owners see tickets on
// their properties, everyone sees tickets they raised.
func (s *Service) ListForUser(ctx context.Context, actor user.User) ([]ticket.Ticket, error) {
	if actor.Role == user.RoleOwner || actor.Role == user.RoleAdmin {
		return s.store.ListTicketsByOwner(ctx, actor.ID)
	}
	return s.store.ListTicketsByRequester(ctx, actor.ID)
}

// UpdateInput carries the editable fields of a ticket.
type UpdateInput struct {
	Status   *string
	Priority *string
}

// Update changes a ticket's status or priority. Only the owner of the
// property the ticket targets may update it. Resolving stamps resolved_at.
func (s *Service) Update(ctx context.Context, actor user.User, id string, in UpdateInput) (ticket.Ticket, error) {
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return ticket.Ticket{}, svcerr.NotFound("ticket %s not found", id)
	}

	prop, err := s.properties.GetProperty(ctx, t.PropertyID)
	if err != nil {
		return ticket.Ticket{}, svcerr.NotFound("property %s not found", t.PropertyID)
	}
	if prop.OwnerID != actor.ID && actor.Role != user.RoleAdmin {
		return ticket.Ticket{}, svcerr.Forbidden("ticket %s is not on one of your properties", id)
	}

	if in.Priority != nil {
		priority, err := ticket.ParsePriority(*in.Priority)
		if err != nil {
			return ticket.Ticket{}, svcerr.Validation("priority must be one of low, medium, high, emergency")
		}
		t.Priority = priority
	}
	if in.Status != nil {
		status, err := ticket.ParseStatus(*in.Status)
		if err != nil {
			return ticket.Ticket{}, svcerr.Validation("status must be one of open, in_progress, resolved")
		}
		t.Status = status
		if status == ticket.StatusResolved && t.ResolvedAt.IsZero() {
			t.ResolvedAt = time.Now().UTC()
		}
	}

	updated, err := s.store.UpdateTicket(ctx, t)
	if err != nil {
		return ticket.Ticket{}, svcerr.Internal("update ticket", err)
	}
	return updated, nil
}
