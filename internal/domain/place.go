package domain

import "time"

// Place represents a family-friendly venue extracted from a crawled page.
type Place struct {
	ID             string      `gorm:"type:text;primaryKey" json:"id"`
	SourceURL      string      `gorm:"type:text;not null;index:idx_places_source" json:"source_url"`
	Name           string      `gorm:"type:text" json:"name"`
	Description    string      `gorm:"type:text" json:"description"`
	Category       string      `gorm:"type:text;index:idx_places_category" json:"category"`
	Address        string      `gorm:"type:text" json:"address"`
	Website        string      `gorm:"type:text" json:"website"`
	FamilyFriendly bool        `gorm:"default:false" json:"family_friendly"`
	Tags           StringArray `gorm:"type:text" json:"tags"`
	Approved       bool        `gorm:"index:idx_places_approved;default:false" json:"approved"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Place.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Place) TableName() string {
	return "places"
}
