package restock

import (
	"time"

	"github.com/google/uuid"
)

// Status is the restock lifecycle: PENDING -> APPROVED | REJECTED, then
// APPROVED -> ORDERED -> RECEIVED.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusOrdered  Status = "ORDERED"
	StatusReceived Status = "RECEIVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusOrdered, StatusReceived:
		return true
	}
	return false
}

// Priority orders the manager's pending queue.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank returns the sort position, 1 being most urgent. Matches the CASE
// ranking used in the pending-queue query.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	default:
		return 4
	}
}

// Request maps to the restock_requests table. CurrentStock is a snapshot of
// inventory at request time, kept for the manager's review.
type Request struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	MedicationID      uuid.UUID  `db:"medication_id" json:"medication_id"`
	RequestedQuantity int        `db:"requested_quantity" json:"requested_quantity"`
	CurrentStock      int        `db:"current_stock" json:"current_stock"`
	Priority          Priority   `db:"priority" json:"priority"`
	Reason            string     `db:"reason" json:"reason,omitempty"`
	Status            Status     `db:"status" json:"status"`
	RequesterID       uuid.UUID  `db:"requester_id" json:"requester_id"`
	ApproverID        *uuid.UUID `db:"approver_id" json:"approver_id,omitempty"`
	ManagerNotes      *string    `db:"manager_notes" json:"manager_notes,omitempty"`
	RequestedAt       time.Time  `db:"requested_at" json:"requested_at"`
	DecidedAt         *time.Time `db:"decided_at" json:"decided_at,omitempty"`
}
