package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Status is the prescription lifecycle. Transitions move strictly forward:
// PENDING -> FILLED -> READY_FOR_PICKUP -> COMPLETED. There is no rejection
// or cancellation path and no way to set an arbitrary status.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusFilled         Status = "FILLED"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusCompleted      Status = "COMPLETED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFilled, StatusReadyForPickup, StatusCompleted:
		return true
	}
	return false
}

// next returns the only status s may advance to, or "" for terminal.
func (s Status) next() Status {
	switch s {
	case StatusPending:
		return StatusFilled
	case StatusFilled:
		return StatusReadyForPickup
	case StatusReadyForPickup:
		return StatusCompleted
	}
	return ""
}

// CanAdvanceTo reports whether moving from s to target is a legal step.
func (s Status) CanAdvanceTo(target Status) bool {
	return s.next() == target && target != ""
}

// Prescription maps to the prescriptions table. PharmacistID and FilledAt
// stay null until the pharmacy fills it.
type Prescription struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	AppointmentID   *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	PatientID       uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	MedicationID    uuid.UUID  `db:"medication_id" json:"medication_id"`
	Dosage          string     `db:"dosage" json:"dosage"`
	Quantity        int        `db:"quantity" json:"quantity"`
	Refills         int        `db:"refills" json:"refills"`
	Status          Status     `db:"status" json:"status"`
	IssuedAt        time.Time  `db:"issued_at" json:"issued_at"`
	FilledAt        *time.Time `db:"filled_at" json:"filled_at,omitempty"`
	PharmacistID    *uuid.UUID `db:"pharmacist_id" json:"pharmacist_id,omitempty"`
	PharmacistNotes *string    `db:"pharmacist_notes" json:"pharmacist_notes,omitempty"`
}
