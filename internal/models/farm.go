package models

import "time"

// Farm is the target a schedule reports on. Geometry capture happens in the
// map UI; we only keep the centroid and area for the snapshot provider.
type Farm struct {
	ID           int       `json:"id"`
	OwnerID      int       `json:"owner_id"`
	Name         string    `json:"name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	AreaHectares float64   `json:"area_hectares"`
	Crop         string    `json:"crop"`
	CreatedAt    time.Time `json:"created_at"`
}
