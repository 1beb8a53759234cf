package payment

import "time"

// Epsilon absorbs floating point drift when comparing a payment amount
// against the remaining balance. Overpayment within this tolerance snaps the
// balance to zero.
const Epsilon = 0.10

// Payment is a single entry in a contract's append-only payment ledger.
// Payments are never updated or deleted; corrections are new entries.
type Payment struct {
	ID          string    `json:"id"`
	ContractID  string    `json:"contract_id"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	PaymentDate time.Time `json:"payment_date"`
	CreatedAt   time.Time `json:"created_at"`
}
