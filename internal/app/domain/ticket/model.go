package ticket

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a maintenance request.
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityMedium    Priority = "medium"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

// ParsePriority normalizes a priority string.
func ParsePriority(raw string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "emergency":
		return PriorityEmergency, nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// Status is the workflow state of a maintenance ticket.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// ParseStatus normalizes a ticket status string.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open":
		return StatusOpen, nil
	case "in_progress":
		return StatusInProgress, nil
	case "resolved":
		return StatusResolved, nil
	default:
		return "", fmt.Errorf("unknown ticket status %q", raw)
	}
}

// Ticket is a maintenance request raised against a property.
type Ticket struct {
	ID          string    `json:"id"`
	PropertyID  string    `json:"property_id"`
	RequesterID string    `json:"requester_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	ResolvedAt  time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
