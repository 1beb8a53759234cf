package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zerium/propertyd/internal/app/domain/contract"
	"github.com/zerium/propertyd/internal/app/domain/document"
	"github.com/zerium/propertyd/internal/app/domain/payment"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/ticket"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PropertyStore = (*Store)(nil)
var _ storage.ContractStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)
var _ storage.TicketStore = (*Store)(nil)
var _ storage.DocumentStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, phone_number, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Email, u.PasswordHash, u.FullName, u.PhoneNumber, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}

	u.Email = existing.Email
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, full_name = $3, phone_number = $4, role = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.PasswordHash, u.FullName, u.PhoneNumber, u.Role, u.IsActive, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

const userColumns = `id, email, password_hash, full_name, phone_number, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// --- PropertyStore ----------------------------------------------------------

func (s *Store) CreateProperty(ctx context.Context, prop property.Property, units []property.Unit) (property.Property, error) {
	if prop.ID == "" {
		prop.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	prop.CreatedAt = now
	prop.UpdatedAt = now
	prop.Units = nil

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return property.Property{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO properties (id, owner_id, name, type, address, city, description, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, prop.ID, prop.OwnerID, prop.Name, prop.Type, prop.Address, prop.City, prop.Description, prop.Latitude, prop.Longitude, prop.CreatedAt, prop.UpdatedAt)
	if err != nil {
		return property.Property{}, err
	}

	for i := range units {
		u := units[i]
		u.ID = uuid.NewString()
		u.PropertyID = prop.ID
		if u.Status == "" {
			u.Status = property.UnitAvailable
		}
		u.CreatedAt = now
		u.UpdatedAt = now

		_, err = tx.ExecContext(ctx, `
			INSERT INTO units (id, property_id, unit_number, type, floor, bedrooms, bathrooms, area_m2, base_price, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, u.ID, u.PropertyID, u.UnitNumber, u.Type, u.Floor, u.Bedrooms, u.Bathrooms, u.AreaM2, u.BasePrice, u.Status, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return property.Property{}, err
		}
		prop.Units = append(prop.Units, u)
	}

	if err := tx.Commit(); err != nil {
		return property.Property{}, err
	}
	return prop, nil
}

const propertyColumns = `id, owner_id, name, type, address, city, description, latitude, longitude, created_at, updated_at`

func scanProperty(row interface{ Scan(...interface{}) error }) (property.Property, error) {
	var p property.Property
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Type, &p.Address, &p.City, &p.Description, &p.Latitude, &p.Longitude, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Store) GetProperty(ctx context.Context, id string) (property.Property, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE id = $1
	`, id)
	prop, err := scanProperty(row)
	if err != nil {
		return property.Property{}, err
	}

	units, err := s.listUnitsForProperty(ctx, id)
	if err != nil {
		return property.Property{}, err
	}
	prop.Units = units
	return prop, nil
}

func (s *Store) ListPropertiesByOwner(ctx context.Context, ownerID string) ([]property.Property, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+propertyColumns+`
		FROM properties
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []property.Property
	for rows.Next() {
		prop, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, prop)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		units, err := s.listUnitsForProperty(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Units = units
	}
	return result, nil
}

const unitColumns = `id, property_id, unit_number, type, floor, bedrooms, bathrooms, area_m2, base_price, status, created_at, updated_at`

func scanUnit(row interface{ Scan(...interface{}) error }) (property.Unit, error) {
	var u property.Unit
	err := row.Scan(&u.ID, &u.PropertyID, &u.UnitNumber, &u.Type, &u.Floor, &u.Bedrooms, &u.Bathrooms, &u.AreaM2, &u.BasePrice, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (s *Store) listUnitsForProperty(ctx context.Context, propertyID string) ([]property.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE property_id = $1
		ORDER BY unit_number
	`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []property.Unit
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) GetUnit(ctx context.Context, id string) (property.Unit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+unitColumns+`
		FROM units
		WHERE id = $1
	`, id)
	return scanUnit(row)
}

func (s *Store) UpdateUnit(ctx context.Context, u property.Unit) (property.Unit, error) {
	existing, err := s.GetUnit(ctx, u.ID)
	if err != nil {
		return property.Unit{}, err
	}

	u.PropertyID = existing.PropertyID
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE units
		SET unit_number = $2, type = $3, floor = $4, bedrooms = $5, bathrooms = $6, area_m2 = $7, base_price = $8, status = $9, updated_at = $10
		WHERE id = $1
	`, u.ID, u.UnitNumber, u.Type, u.Floor, u.Bedrooms, u.Bathrooms, u.AreaM2, u.BasePrice, u.Status, u.UpdatedAt)
	if err != nil {
		return property.Unit{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return property.Unit{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) CountUnitsByOwner(ctx context.Context, ownerID string) (int, int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE u.status = 'occupied')
		FROM units u
		JOIN properties p ON p.id = u.property_id
		WHERE p.owner_id = $1
	`, ownerID)

	var total, occupied int
	if err := row.Scan(&total, &occupied); err != nil {
		return 0, 0, err
	}
	return total, occupied, nil
}

// --- ContractStore ----------------------------------------------------------

func (s *Store) CreateContract(ctx context.Context, c contract.Contract) (contract.Contract, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts (id, unit_id, tenant_id, start_date, end_date, payment_day, amount, total_contract_value, balance, status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.ID, c.UnitID, c.TenantID, c.StartDate, c.EndDate, c.PaymentDay, c.Amount, c.TotalValue, c.Balance, c.Status, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return contract.Contract{}, err
	}
	return c, nil
}

func (s *Store) UpdateContract(ctx context.Context, c contract.Contract, unitStatus property.UnitStatus) (contract.Contract, error) {
	existing, err := s.GetContract(ctx, c.ID)
	if err != nil {
		return contract.Contract{}, err
	}

	c.UnitID = existing.UnitID
	c.TenantID = existing.TenantID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contract.Contract{}, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE contracts
		SET start_date = $2, end_date = $3, payment_day = $4, amount = $5, total_contract_value = $6, balance = $7, status = $8, is_active = $9, updated_at = $10
		WHERE id = $1
	`, c.ID, c.StartDate, c.EndDate, c.PaymentDay, c.Amount, c.TotalValue, c.Balance, c.Status, c.IsActive, c.UpdatedAt)
	if err != nil {
		return contract.Contract{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return contract.Contract{}, sql.ErrNoRows
	}

	if unitStatus != "" {
		result, err = tx.ExecContext(ctx, `
			UPDATE units
			SET status = $2, updated_at = $3
			WHERE id = $1
		`, c.UnitID, unitStatus, c.UpdatedAt)
		if err != nil {
			return contract.Contract{}, err
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			return contract.Contract{}, sql.ErrNoRows
		}
	}

	if err := tx.Commit(); err != nil {
		return contract.Contract{}, err
	}
	return c, nil
}

const contractColumns = `id, unit_id, tenant_id, start_date, end_date, payment_day, amount, total_contract_value, balance, status, is_active, created_at, updated_at`

func scanContract(row interface{ Scan(...interface{}) error }) (contract.Contract, error) {
	var c contract.Contract
	err := row.Scan(&c.ID, &c.UnitID, &c.TenantID, &c.StartDate, &c.EndDate, &c.PaymentDay, &c.Amount, &c.TotalValue, &c.Balance, &c.Status, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) GetContract(ctx context.Context, id string) (contract.Contract, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE id = $1
	`, id)
	return scanContract(row)
}

func (s *Store) listContracts(ctx context.Context, query string, args ...interface{}) ([]contract.Contract, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) ListContractsByTenant(ctx context.Context, tenantID string) ([]contract.Contract, error) {
	return s.listContracts(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
}

func (s *Store) ListContractsByOwner(ctx context.Context, ownerID string) ([]contract.Contract, error) {
	return s.listContracts(ctx, `
		SELECT c.id, c.unit_id, c.tenant_id, c.start_date, c.end_date, c.payment_day, c.amount, c.total_contract_value, c.balance, c.status, c.is_active, c.created_at, c.updated_at
		FROM contracts c
		JOIN units u ON u.id = c.unit_id
		JOIN properties p ON p.id = u.property_id
		WHERE p.owner_id = $1
		ORDER BY c.created_at
	`, ownerID)
}

func (s *Store) ListLiveContractsForUnit(ctx context.Context, unitID string) ([]contract.Contract, error) {
	return s.listContracts(ctx, `
		SELECT `+contractColumns+`
		FROM contracts
		WHERE unit_id = $1 AND status IN ('pending', 'signed_by_tenant', 'active')
		ORDER BY created_at
	`, unitID)
}

func (s *Store) CountActiveByTenant(ctx context.Context, tenantID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM contracts
		WHERE tenant_id = $1 AND status = 'active'
	`, tenantID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// --- PaymentStore -----------------------------------------------------------

func (s *Store) RecordPayment(ctx context.Context, pay payment.Payment, newBalance float64) (payment.Payment, error) {
	if pay.ID == "" {
		pay.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	pay.CreatedAt = now
	if pay.PaymentDate.IsZero() {
		pay.PaymentDate = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return payment.Payment{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO payments (id, contract_id, amount, method, notes, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, pay.ID, pay.ContractID, pay.Amount, pay.Method, pay.Notes, pay.PaymentDate, pay.CreatedAt)
	if err != nil {
		return payment.Payment{}, err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE contracts
		SET balance = $2, updated_at = $3
		WHERE id = $1
	`, pay.ContractID, newBalance, now)
	if err != nil {
		return payment.Payment{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return payment.Payment{}, sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return payment.Payment{}, err
	}
	return pay, nil
}

func (s *Store) ListPaymentsByContract(ctx context.Context, contractID string) ([]payment.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, amount, method, notes, payment_date, created_at
		FROM payments
		WHERE contract_id = $1
		ORDER BY payment_date DESC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payment.Payment
	for rows.Next() {
		var p payment.Payment
		if err := rows.Scan(&p.ID, &p.ContractID, &p.Amount, &p.Method, &p.Notes, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// --- TicketStore ------------------------------------------------------------

func (s *Store) CreateTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO maintenance_tickets (id, property_id, requester_id, title, description, priority, status, resolved_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.PropertyID, t.RequesterID, t.Title, t.Description, t.Priority, t.Status, toNullTime(t.ResolvedAt), t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return ticket.Ticket{}, err
	}
	return t, nil
}

func (s *Store) UpdateTicket(ctx context.Context, t ticket.Ticket) (ticket.Ticket, error) {
	existing, err := s.GetTicket(ctx, t.ID)
	if err != nil {
		return ticket.Ticket{}, err
	}

	t.PropertyID = existing.PropertyID
	t.RequesterID = existing.RequesterID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE maintenance_tickets
		SET title = $2, description = $3, priority = $4, status = $5, resolved_at = $6, updated_at = $7
		WHERE id = $1
	`, t.ID, t.Title, t.Description, t.Priority, t.Status, toNullTime(t.ResolvedAt), t.UpdatedAt)
	if err != nil {
		return ticket.Ticket{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ticket.Ticket{}, sql.ErrNoRows
	}
	return t, nil
}

const ticketColumns = `id, property_id, requester_id, title, description, priority, status, resolved_at, created_at, updated_at`

func scanTicket(row interface{ Scan(...interface{}) error }) (ticket.Ticket, error) {
	var (
		t          ticket.Ticket
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.PropertyID, &t.RequesterID, &t.Title, &t.Description, &t.Priority, &t.Status, &resolvedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return ticket.Ticket{}, err
	}
	if resolvedAt.Valid {
		t.ResolvedAt = resolvedAt.Time.UTC()
	}
	return t, nil
}

func (s *Store) GetTicket(ctx context.Context, id string) (ticket.Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+ticketColumns+`
		FROM maintenance_tickets
		WHERE id = $1
	`, id)
	return scanTicket(row)
}

func (s *Store) listTickets(ctx context.Context, query string, args ...interface{}) ([]ticket.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Store) ListTicketsByRequester(ctx context.Context, requesterID string) ([]ticket.Ticket, error) {
	return s.listTickets(ctx, `
		SELECT `+ticketColumns+`
		FROM maintenance_tickets
		WHERE requester_id = $1
		ORDER BY created_at
	`, requesterID)
}

func (s *Store) ListTicketsByOwner(ctx context.Context, ownerID string) ([]ticket.Ticket, error) {
	return s.listTickets(ctx, `
		SELECT t.id, t.property_id, t.requester_id, t.title, t.description, t.priority, t.status, t.resolved_at, t.created_at, t.updated_at
		FROM maintenance_tickets t
		JOIN properties p ON p.id = t.property_id
		WHERE p.owner_id = $1
		ORDER BY t.created_at
	`, ownerID)
}

func (s *Store) CountOpenByRequester(ctx context.Context, requesterID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM maintenance_tickets
		WHERE requester_id = $1 AND status <> 'resolved'
	`, requesterID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) CountOpenByOwner(ctx context.Context, ownerID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM maintenance_tickets t
		JOIN properties p ON p.id = t.property_id
		WHERE p.owner_id = $1 AND t.status <> 'resolved'
	`, ownerID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// --- DocumentStore ----------------------------------------------------------

func (s *Store) CreateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_documents (id, user_id, document_type, file_url, public_id, status, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, doc.ID, doc.UserID, doc.DocumentType, doc.FileURL, doc.PublicID, doc.Status, doc.RejectionReason, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return document.Document{}, err
	}
	return doc, nil
}

func (s *Store) UpdateDocument(ctx context.Context, doc document.Document) (document.Document, error) {
	existing, err := s.GetDocument(ctx, doc.ID)
	if err != nil {
		return document.Document{}, err
	}

	doc.UserID = existing.UserID
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE user_documents
		SET document_type = $2, file_url = $3, public_id = $4, status = $5, rejection_reason = $6, updated_at = $7
		WHERE id = $1
	`, doc.ID, doc.DocumentType, doc.FileURL, doc.PublicID, doc.Status, doc.RejectionReason, doc.UpdatedAt)
	if err != nil {
		return document.Document{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return document.Document{}, sql.ErrNoRows
	}
	return doc, nil
}

const documentColumns = `id, user_id, document_type, file_url, public_id, status, rejection_reason, created_at, updated_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (document.Document, error) {
	var d document.Document
	err := row.Scan(&d.ID, &d.UserID, &d.DocumentType, &d.FileURL, &d.PublicID, &d.Status, &d.RejectionReason, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (s *Store) GetDocument(ctx context.Context, id string) (document.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM user_documents
		WHERE id = $1
	`, id)
	return scanDocument(row)
}

func (s *Store) ListDocumentsByUser(ctx context.Context, userID string) ([]document.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM user_documents
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []document.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *Store) CountVerifiedByUser(ctx context.Context, userID string) (int, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM user_documents
		WHERE user_id = $1 AND status = 'verified'
	`, userID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
