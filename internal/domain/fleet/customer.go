package fleet

import (
	"strings"

	"github.com/google/uuid"
)

// Customer is the renter reference record. Registration and profile
// management live outside this service.
type Customer struct {
	ID        uuid.UUID `json:"customer_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// DisplayName builds the customer's display name from first and last name,
// tolerating either being absent.
func (c Customer) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
