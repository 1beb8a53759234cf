package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zerium/propertyd/internal/app/domain/contract"
	"github.com/zerium/propertyd/internal/app/domain/document"
	"github.com/zerium/propertyd/internal/app/domain/payment"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/ticket"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	users        map[string]user.User
	usersByEmail map[string]string
	properties   map[string]property.Property
	units        map[string]property.Unit
	contracts    map[string]contract.Contract
	payments     map[string][]payment.Payment
	tickets      map[string]ticket.Ticket
	documents    map[string]document.Document
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PropertyStore = (*Store)(nil)
var _ storage.ContractStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)
var _ storage.TicketStore = (*Store)(nil)
var _ storage.DocumentStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:       1,
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		properties:   make(map[string]property.Property),
		units:        make(map[string]property.Unit),
		contracts:    make(map[string]contract.Contract),
		payments:     make(map[string][]payment.Payment),
		tickets:      make(map[string]ticket.Ticket),
		documents:    make(map[string]document.Document),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.usersByEmail[email]; exists {
		return user.User{}, fmt.Errorf("user with email %s already exists", u.Email)
	}

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	s.usersByEmail[email] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, fmt.Errorf("user %s not found", u.ID)
	}

	u.Email = original.Email
	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return user.User{}, fmt.Errorf("user with email %s not found", email)
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// PropertyStore implementation ------------------------------------------------

func (s *Store) CreateProperty(_ context.Context, prop property.Property, units []property.Unit) (property.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prop.ID == "" {
		prop.ID = s.nextIDLocked()
	} else if _, exists := s.properties[prop.ID]; exists {
		return property.Property{}, fmt.Errorf("property %s already exists", prop.ID)
	}

	now := time.Now().UTC()
	prop.CreatedAt = now
	prop.UpdatedAt = now
	prop.Units = nil

	for i := range units {
		u := units[i]
		u.ID = s.nextIDLocked()
		u.PropertyID = prop.ID
		if u.Status == "" {
			u.Status = property.UnitAvailable
		}
		u.CreatedAt = now
		u.UpdatedAt = now
		s.units[u.ID] = u
		prop.Units = append(prop.Units, u)
	}

	s.properties[prop.ID] = prop
	return prop, nil
}

func (s *Store) GetProperty(_ context.Context, id string) (property.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prop, ok := s.properties[id]
	if !ok {
		return property.Property{}, fmt.Errorf("property %s not found", id)
	}
	prop.Units = s.unitsForPropertyLocked(id)
	return prop, nil
}

func (s *Store) ListPropertiesByOwner(_ context.Context, ownerID string) ([]property.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []property.Property
	for _, prop := range s.properties {
		if prop.OwnerID != ownerID {
			continue
		}
		prop.Units = s.unitsForPropertyLocked(prop.ID)
		result = append(result, prop)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) unitsForPropertyLocked(propertyID string) []property.Unit {
	var units []property.Unit
	for _, u := range s.units {
		if u.PropertyID == propertyID {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].UnitNumber < units[j].UnitNumber })
	return units
}

func (s *Store) GetUnit(_ context.Context, id string) (property.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[id]
	if !ok {
		return property.Unit{}, fmt.Errorf("unit %s not found", id)
	}
	return u, nil
}

func (s *Store) UpdateUnit(_ context.Context, u property.Unit) (property.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateUnitLocked(u)
}

func (s *Store) updateUnitLocked(u property.Unit) (property.Unit, error) {
	original, ok := s.units[u.ID]
	if !ok {
		return property.Unit{}, fmt.Errorf("unit %s not found", u.ID)
	}

	u.PropertyID = original.PropertyID
	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	s.units[u.ID] = u
	return u, nil
}

func (s *Store) CountUnitsByOwner(_ context.Context, ownerID string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, occupied := 0, 0
	for _, u := range s.units {
		prop, ok := s.properties[u.PropertyID]
		if !ok || prop.OwnerID != ownerID {
			continue
		}
		total++
		if u.Status == property.UnitOccupied {
			occupied++
		}
	}
	return total, occupied, nil
}

// ContractStore implementation ------------------------------------------------

func (s *Store) CreateContract(_ context.Context, c contract.Contract) (contract.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.nextIDLocked()
	} else if _, exists := s.contracts[c.ID]; exists {
		return contract.Contract{}, fmt.Errorf("contract %s already exists", c.ID)
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.contracts[c.ID] = c
	return c, nil
}

func (s *Store) UpdateContract(_ context.Context, c contract.Contract, unitStatus property.UnitStatus) (contract.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.contracts[c.ID]
	if !ok {
		return contract.Contract{}, fmt.Errorf("contract %s not found", c.ID)
	}

	c.UnitID = original.UnitID
	c.TenantID = original.TenantID
	c.CreatedAt = original.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	if unitStatus != "" {
		unit, ok := s.units[c.UnitID]
		if !ok {
			return contract.Contract{}, fmt.Errorf("unit %s not found", c.UnitID)
		}
		unit.Status = unitStatus
		if _, err := s.updateUnitLocked(unit); err != nil {
			return contract.Contract{}, err
		}
	}

	s.contracts[c.ID] = c
	return c, nil
}

func (s *Store) GetContract(_ context.Context, id string) (contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return contract.Contract{}, fmt.Errorf("contract %s not found", id)
	}
	return c, nil
}

func (s *Store) ListContractsByTenant(_ context.Context, tenantID string) ([]contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []contract.Contract
	for _, c := range s.contracts {
		if c.TenantID == tenantID {
			result = append(result, c)
		}
	}
	sortContracts(result)
	return result, nil
}

func (s *Store) ListContractsByOwner(_ context.Context, ownerID string) ([]contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []contract.Contract
	for _, c := range s.contracts {
		unit, ok := s.units[c.UnitID]
		if !ok {
			continue
		}
		prop, ok := s.properties[unit.PropertyID]
		if !ok || prop.OwnerID != ownerID {
			continue
		}
		result = append(result, c)
	}
	sortContracts(result)
	return result, nil
}

func (s *Store) ListLiveContractsForUnit(_ context.Context, unitID string) ([]contract.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []contract.Contract
	for _, c := range s.contracts {
		if c.UnitID != unitID {
			continue
		}
		for _, status := range contract.LiveStatuses {
			if c.Status == status {
				result = append(result, c)
				break
			}
		}
	}
	sortContracts(result)
	return result, nil
}

func (s *Store) CountActiveByTenant(_ context.Context, tenantID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.contracts {
		if c.TenantID == tenantID && c.Status == contract.StatusActive {
			count++
		}
	}
	return count, nil
}

func sortContracts(contracts []contract.Contract) {
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.Before(contracts[j].CreatedAt)
	})
}

// PaymentStore implementation -------------------------------------------------

func (s *Store) RecordPayment(_ context.Context, pay payment.Payment, newBalance float64) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[pay.ContractID]
	if !ok {
		return payment.Payment{}, fmt.Errorf("contract %s not found", pay.ContractID)
	}

	if pay.ID == "" {
		pay.ID = s.nextIDLocked()
	}
	now := time.Now().UTC()
	pay.CreatedAt = now
	if pay.PaymentDate.IsZero() {
		pay.PaymentDate = now
	}

	c.Balance = newBalance
	c.UpdatedAt = now
	s.contracts[c.ID] = c
	s.payments[pay.ContractID] = append(s.payments[pay.ContractID], pay)
	return pay, nil
}

func (s *Store) ListPaymentsByContract(_ context.Context, contractID string) ([]payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]payment.Payment, len(s.payments[contractID]))
	copy(result, s.payments[contractID])
	sort.Slice(result, func(i, j int) bool {
		return result[i].PaymentDate.After(result[j].PaymentDate)
	})
	return result, nil
}

// TicketStore implementation --------------------------------------------------

func (s *Store) CreateTicket(_ context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.nextIDLocked()
	} else if _, exists := s.tickets[t.ID]; exists {
		return ticket.Ticket{}, fmt.Errorf("ticket %s already exists", t.ID)
	}

	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	s.tickets[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTicket(_ context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.tickets[t.ID]
	if !ok {
		return ticket.Ticket{}, fmt.Errorf("ticket %s not found", t.ID)
	}

	t.PropertyID = original.PropertyID
	t.RequesterID = original.RequesterID
	t.CreatedAt = original.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	s.tickets[t.ID] = t
	return t, nil
}

func (s *Store) GetTicket(_ context.Context, id string) (ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return ticket.Ticket{}, fmt.Errorf("ticket %s not found", id)
	}
	return t, nil
}

func (s *Store) ListTicketsByRequester(_ context.Context, requesterID string) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ticket.Ticket
	for _, t := range s.tickets {
		if t.RequesterID == requesterID {
			result = append(result, t)
		}
	}
	sortTickets(result)
	return result, nil
}

func (s *Store) ListTicketsByOwner(_ context.Context, ownerID string) ([]ticket.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []ticket.Ticket
	for _, t := range s.tickets {
		prop, ok := s.properties[t.PropertyID]
		if !ok || prop.OwnerID != ownerID {
			continue
		}
		result = append(result, t)
	}
	sortTickets(result)
	return result, nil
}

func (s *Store) CountOpenByRequester(_ context.Context, requesterID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tickets {
		if t.RequesterID == requesterID && t.Status != ticket.StatusResolved {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountOpenByOwner(_ context.Context, ownerID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, t := range s.tickets {
		if t.Status == ticket.StatusResolved {
			continue
		}
		prop, ok := s.properties[t.PropertyID]
		if !ok || prop.OwnerID != ownerID {
			continue
		}
		count++
	}
	return count, nil
}

func sortTickets(tickets []ticket.Ticket) {
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.Before(tickets[j].CreatedAt)
	})
}

// DocumentStore implementation ------------------------------------------------

func (s *Store) CreateDocument(_ context.Context, doc document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.ID == "" {
		doc.ID = s.nextIDLocked()
	} else if _, exists := s.documents[doc.ID]; exists {
		return document.Document{}, fmt.Errorf("document %s already exists", doc.ID)
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	s.documents[doc.ID] = doc
	return doc, nil
}

func (s *Store) UpdateDocument(_ context.Context, doc document.Document) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.documents[doc.ID]
	if !ok {
		return document.Document{}, fmt.Errorf("document %s not found", doc.ID)
	}

	doc.UserID = original.UserID
	doc.CreatedAt = original.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	s.documents[doc.ID] = doc
	return doc, nil
}

func (s *Store) GetDocument(_ context.Context, id string) (document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return document.Document{}, fmt.Errorf("document %s not found", id)
	}
	return doc, nil
}

func (s *Store) ListDocumentsByUser(_ context.Context, userID string) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []document.Document
	for _, doc := range s.documents {
		if doc.UserID == userID {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (s *Store) CountVerifiedByUser(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, doc := range s.documents {
		if doc.UserID == userID && doc.Status == document.StatusVerified {
			count++
		}
	}
	return count, nil
}
