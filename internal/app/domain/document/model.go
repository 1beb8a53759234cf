package document

import (
	"fmt"
	"strings"
	"time"
)

// Status is the verification state of an identity document. At least one
// verified document is required before a tenant may sign a contract.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// ParseStatus normalizes a document status string.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending, nil
	case "verified":
		return StatusVerified, nil
	case "rejected":
		return StatusRejected, nil
	default:
		return "", fmt.Errorf("unknown document status %q", raw)
	}
}

// Document is an identity document uploaded by a user for verification.
type Document struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	DocumentType    string    `json:"document_type"`
	FileURL         string    `json:"file_url"`
	PublicID        string    `json:"public_id,omitempty"`
	Status          Status    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
