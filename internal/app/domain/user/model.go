package user

import (
	"fmt"
	"strings"
	"time"
)

// Role controls what a user may do across the API.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
)

// ParseRole normalizes a role string. "landlord" is accepted as an inbound
// alias for owner.
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return RoleAdmin, nil
	case "owner", "landlord":
		return RoleOwner, nil
	case "tenant":
		return RoleTenant, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User is an account holder: an administrator, a property owner, or a tenant.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
