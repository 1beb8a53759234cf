package storage

import (
	"context"

	"github.com/zerium/propertyd/internal/app/domain/contract"
	"github.com/zerium/propertyd/internal/app/domain/document"
	"github.com/zerium/propertyd/internal/app/domain/payment"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/ticket"
	"github.com/zerium/propertyd/internal/app/domain/user"
)

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// PropertyStore persists properties and their units.
type PropertyStore interface {
	// CreateProperty inserts a property and its units in one transaction.
	CreateProperty(ctx context.Context, prop property.Property, units []property.Unit) (property.Property, error)
	GetProperty(ctx context.Context, id string) (property.Property, error)
	ListPropertiesByOwner(ctx context.Context, ownerID string) ([]property.Property, error)

	GetUnit(ctx context.Context, id string) (property.Unit, error)
	UpdateUnit(ctx context.Context, u property.Unit) (property.Unit, error)
	// CountUnitsByOwner returns total and occupied unit counts across an
	// owner's properties.
	CountUnitsByOwner(ctx context.Context, ownerID string) (total int, occupied int, err error)
}

// ContractStore persists lease contracts. Updates that change a contract's
// lifecycle state also refresh the cached unit status inside the same
// transaction.
type ContractStore interface {
	CreateContract(ctx context.Context, c contract.Contract) (contract.Contract, error)
	// UpdateContract persists a contract; when unitStatus is non-empty the
	// contract's unit status is updated atomically with it.
	UpdateContract(ctx context.Context, c contract.Contract, unitStatus property.UnitStatus) (contract.Contract, error)
	GetContract(ctx context.Context, id string) (contract.Contract, error)
	ListContractsByTenant(ctx context.Context, tenantID string) ([]contract.Contract, error)
	ListContractsByOwner(ctx context.Context, ownerID string) ([]contract.Contract, error)
	// ListLiveContractsForUnit returns contracts on a unit whose status still
	// claims the unit (pending, signed_by_tenant, active).
	ListLiveContractsForUnit(ctx context.Context, unitID string) ([]contract.Contract, error)
	CountActiveByTenant(ctx context.Context, tenantID string) (int, error)
}

// PaymentStore persists the append-only payment ledger.
type PaymentStore interface {
	// RecordPayment inserts the payment row and sets the contract's balance in
	// a single transaction; neither change is visible without the other.
	RecordPayment(ctx context.Context, pay payment.Payment, newBalance float64) (payment.Payment, error)
	// ListPaymentsByContract returns payments ordered by payment date descending.
	ListPaymentsByContract(ctx context.Context, contractID string) ([]payment.Payment, error)
}

// TicketStore persists maintenance tickets.
type TicketStore interface {
	CreateTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error)
	UpdateTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error)
	GetTicket(ctx context.Context, id string) (ticket.Ticket, error)
	ListTicketsByRequester(ctx context.Context, requesterID string) ([]ticket.Ticket, error)
	ListTicketsByOwner(ctx context.Context, ownerID string) ([]ticket.Ticket, error)
	CountOpenByRequester(ctx context.Context, requesterID string) (int, error)
	CountOpenByOwner(ctx context.Context, ownerID string) (int, error)
}

// DocumentStore persists identity document records.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc document.Document) (document.Document, error)
	UpdateDocument(ctx context.Context, doc document.Document) (document.Document, error)
	GetDocument(ctx context.Context, id string) (document.Document, error)
	ListDocumentsByUser(ctx context.Context, userID string) ([]document.Document, error)
	CountVerifiedByUser(ctx context.Context, userID string) (int, error)
}
