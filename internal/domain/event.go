package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// StringArray is a custom type for storing string arrays as JSON in the database.
type StringArray []string

// Value implements the driver.Valuer interface for database serialization.
// Parameters: none.
// Returns:
//   - driver.Value: JSON-encoded string representation of the slice.
//   - error: non-nil if marshaling fails.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface for database deserialization.
// Parameters:
//   - value: raw database value to decode.
// Returns:
//   - error: non-nil if decoding fails or the type is unexpected.
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		str, ok := value.(string)
		if !ok {
			return errors.New("failed to scan StringArray")
		}
		bytes = []byte(str)
	}
	return json.Unmarshal(bytes, a)
}

// Event represents a family-oriented event extracted from a crawled page.
// Rows enter the system unapproved; approval is an external admin action.
type Event struct {
	ID           string      `gorm:"type:text;primaryKey" json:"id"`
	SourceURL    string      `gorm:"type:text;not null;index:idx_events_source" json:"source_url"`
	Title        string      `gorm:"type:text" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	StartTime    *time.Time  `json:"start_time,omitempty"`
	EndTime      *time.Time  `json:"end_time,omitempty"`
	LocationName string      `gorm:"type:text" json:"location_name"`
	Address      string      `gorm:"type:text" json:"address"`
	Website      string      `gorm:"type:text" json:"website"`
	Tags         StringArray `gorm:"type:text" json:"tags"`
	Approved     bool        `gorm:"index:idx_events_approved;default:false" json:"approved"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name for Event.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Event) TableName() string {
	return "events"
}
