package model

import "time"

// Place is a point of interest that can be added to lists.
//
// Coordinates are decimal degrees. Valid rows satisfy latitude ∈ [-90,90]
// and longitude ∈ [-180,180]; the store may contain older rows with junk
// coordinates (imported data), which geospatial queries drop rather than
// surface as errors.
//
// CreatedBy is a weak reference to the owning user's ID. It may be empty
// (places created before attribution existed) and is not enforced with a
// foreign key — wrong attribution is fixed after the fact by the repair
// operation, not prevented up front.
type Place struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Address     string    `json:"address"     db:"address"`
	Latitude    float64   `json:"latitude"    db:"latitude"`
	Longitude   float64   `json:"longitude"   db:"longitude"`
	Category    string    `json:"category"    db:"category"`
	Description string    `json:"description" db:"description"`
	WebsiteURL  string    `json:"websiteUrl"  db:"website_url"`
	ImageURL    string    `json:"imageUrl"    db:"image_url"`
	CreatedBy   string    `json:"createdBy"   db:"created_by"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
