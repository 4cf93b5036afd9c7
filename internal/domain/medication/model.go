package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication maps to the medications table.
type Medication struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	GenericName  *string   `db:"generic_name" json:"generic_name,omitempty"`
	Category     string    `db:"category" json:"category,omitempty"`
	DosageForm   string    `db:"dosage_form" json:"dosage_form,omitempty"`
	Strength     string    `db:"strength" json:"strength,omitempty"`
	Manufacturer *string   `db:"manufacturer" json:"manufacturer,omitempty"`
	UnitPrice    float64   `db:"unit_price" json:"unit_price"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Inventory is the pharmacy stock row for a medication. Every medication has
// exactly one, created alongside it.
type Inventory struct {
	MedicationID      uuid.UUID `db:"medication_id" json:"medication_id"`
	QuantityAvailable int       `db:"quantity_available" json:"quantity_available"`
	ReorderLevel      int       `db:"reorder_level" json:"reorder_level"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// StockedMedication joins a medication with its inventory row for list and
// dashboard views.
type StockedMedication struct {
	Medication
	QuantityAvailable int `db:"quantity_available" json:"quantity_available"`
	ReorderLevel      int `db:"reorder_level" json:"reorder_level"`
}
