package property

import (
	"fmt"
	"strings"
	"time"
)

// UnitStatus is the cached occupancy state of a unit. It is updated in the
// same transaction as the contract transition that caused the change; the
// contract table remains the authoritative record.
type UnitStatus string

const (
	UnitAvailable   UnitStatus = "available"
	UnitOccupied    UnitStatus = "occupied"
	UnitMaintenance UnitStatus = "maintenance"
)

// ParseUnitStatus normalizes a unit status string. "vacant" is accepted as an
// inbound alias for available.
func ParseUnitStatus(raw string) (UnitStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "available", "vacant":
		return UnitAvailable, nil
	case "occupied":
		return UnitOccupied, nil
	case "maintenance":
		return UnitMaintenance, nil
	default:
		return "", fmt.Errorf("unknown unit status %q", raw)
	}
}

// Property is a building or complex owned by a single owner.
type Property struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	Description string    `json:"description,omitempty"`
	Latitude    float64   `json:"latitude,omitempty"`
	Longitude   float64   `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Units       []Unit    `json:"units,omitempty"`
}

// Unit is a rentable space within a property.
type Unit struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	UnitNumber string     `json:"unit_number"`
	Type       string     `json:"type,omitempty"`
	Floor      int        `json:"floor,omitempty"`
	Bedrooms   int        `json:"bedrooms,omitempty"`
	Bathrooms  int        `json:"bathrooms,omitempty"`
	AreaM2     float64    `json:"area_m2,omitempty"`
	BasePrice  float64    `json:"base_price"`
	Status     UnitStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
