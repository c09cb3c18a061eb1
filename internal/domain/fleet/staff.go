package fleet

import "github.com/google/uuid"

// StaffMember is a hub employee record for the admin directory. Hub is nil
// for staff with no assigned hub; the projection keeps that explicit instead
// of collapsing to a zero value.
type StaffMember struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Hub      *Hub      `json:"hub"`
}
