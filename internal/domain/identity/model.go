package identity

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles. The role decides which route groups
// a user can reach.
type Role string

const (
	RoleDoctor          Role = "doctor"
	RolePharmacist      Role = "pharmacist"
	RoleClinicAdmin     Role = "clinic_admin"
	RolePharmacyManager Role = "pharmacy_manager"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDoctor, RolePharmacist, RoleClinicAdmin, RolePharmacyManager:
		return true
	}
	return false
}

// Enterprise identifies which side of the clinic/pharmacy pair a user
// belongs to.
type Enterprise string

const (
	EnterpriseClinic   Enterprise = "clinic"
	EnterprisePharmacy Enterprise = "pharmacy"
)

func (e Enterprise) Valid() bool {
	return e == EnterpriseClinic || e == EnterprisePharmacy
}

// EnterpriseFor returns the enterprise a role belongs to. Doctors and clinic
// admins work in the clinic; pharmacists and pharmacy managers in the
// pharmacy.
func EnterpriseFor(r Role) Enterprise {
	switch r {
	case RoleDoctor, RoleClinicAdmin:
		return EnterpriseClinic
	default:
		return EnterprisePharmacy
	}
}

// User maps to the users table.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         Role       `db:"role" json:"role"`
	Enterprise   Enterprise `db:"enterprise" json:"enterprise"`
	Email        *string    `db:"email" json:"email,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}
