package fleet

import "github.com/google/uuid"

// City is a reference-data city record.
type City struct {
	ID   uuid.UUID `json:"city_id"`
	Name string    `json:"city_name"`
}

// Hub is a physical rental location owning a subset of the fleet. Each hub
// belongs to exactly one city. Read-only from the booking core's perspective.
type Hub struct {
	ID   uuid.UUID `json:"hub_id"`
	Name string    `json:"hub_name"`
	City City      `json:"city"`
}
