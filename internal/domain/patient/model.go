package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. Allergies is free text as recorded at
// the front desk, not a coded list.
type Patient struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FirstName   string    `db:"first_name" json:"first_name"`
	LastName    string    `db:"last_name" json:"last_name"`
	DateOfBirth time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender      string    `db:"gender" json:"gender,omitempty"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	Email       *string   `db:"email" json:"email,omitempty"`
	Address     *string   `db:"address" json:"address,omitempty"`
	BloodGroup  *string   `db:"blood_group" json:"blood_group,omitempty"`
	Allergies   *string   `db:"allergies" json:"allergies,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// FullName joins the name fields for display and logs.
func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
