package domain

import (
	"strings"

	"github.com/google/uuid"
)

// RentalDetails is the view of a rental supplied by the rental service.
type RentalDetails struct {
	RentalID     uuid.UUID `json:"rental_id"`
	TenantUserID uuid.UUID `json:"tenant_user_id"`
	OwnerUserID  uuid.UUID `json:"owner_user_id"`
	Status       string    `json:"status"`
	MonthlyPrice int64     `json:"monthly_price"` // Minor units
}

// IsPayable reports whether the rental is in a state that accepts payment.
func (r *RentalDetails) IsPayable() bool {
	switch strings.ToUpper(r.Status) {
	case "APPROVED", "ACTIVE":
		return true
	}
	return false
}
