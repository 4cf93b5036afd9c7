package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of appointment states. There is no free-form
// status assignment; transitions go through the service operations.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusNoShow    Status = "NO_SHOW"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Appointment maps to the appointments table. Date carries the calendar day
// and StartTime the wall-clock slot, kept separate as the front desk enters
// them.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	Date      time.Time `db:"appointment_date" json:"appointment_date"`
	StartTime string    `db:"start_time" json:"start_time"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	Status    Status    `db:"status" json:"status"`
	Diagnosis *string   `db:"diagnosis" json:"diagnosis,omitempty"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
