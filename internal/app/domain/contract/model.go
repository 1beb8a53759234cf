package contract

import (
	"math"
	"time"
)

// Status is a lease contract lifecycle state.
type Status string

const (
	StatusPending        Status = "pending"
	StatusSignedByTenant Status = "signed_by_tenant"
	StatusActive         Status = "active"
	StatusTerminated     Status = "terminated"
	StatusRejected       Status = "rejected"
)

// LiveStatuses are the states that block another contract from being created
// for the same unit over an overlapping date range.
var LiveStatuses = []Status{StatusPending, StatusSignedByTenant, StatusActive}

// Contract is a lease agreement between a tenant and the unit's owner.
type Contract struct {
	ID         string    `json:"id"`
	UnitID     string    `json:"unit_id"`
	TenantID   string    `json:"tenant_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	PaymentDay int       `json:"payment_day"`
	Amount     float64   `json:"amount"`
	TotalValue float64   `json:"total_contract_value"`
	Balance    float64   `json:"balance"`
	Status     Status    `json:"status"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Months counts billing months between start and end: the day span divided by
// 30, rounded up, with a minimum of one month.
func Months(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	months := int(math.Ceil(days / 30))
	if months < 1 {
		months = 1
	}
	return months
}

// TotalValue computes the full value of a lease as months times the monthly
// amount.
func TotalValue(start, end time.Time, amount float64) float64 {
	return float64(Months(start, end)) * amount
}

// Overlaps reports whether two inclusive date ranges intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}
