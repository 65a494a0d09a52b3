package crawler

import (
	"fmt"
	"time"

	"github.com/guanghao479/golden/internal/domain"
)

// RecordSet is the normalized output of one extraction: events or places,
// never both, depending on the crawl category.
type RecordSet struct {
	Events []domain.Event
	Places []domain.Place
}

// Len returns the total number of records in the set.
func (rs RecordSet) Len() int {
	return len(rs.Events) + len(rs.Places)
}

// Normalize converts loosely-typed extracted records into typed domain
// records. It is pure and deterministic: no I/O, and the same input always
// produces the same output.
//
// Coercion rules:
//   - missing or non-string scalar fields become ""
//   - timestamp fields accept RFC3339, then "2006-01-02 15:04" read as UTC,
//     and degrade to nil otherwise; a bad timestamp is never an error
//   - booleans follow truthiness of the raw value, absent means false
//   - tags become an empty list unless the raw value is a list, in which
//     case every element is stringified
//   - every record is stamped with sourceURL, approved=false, and now
func Normalize(raw []map[string]interface{}, crawlType domain.CrawlType, sourceURL string, now time.Time) RecordSet {
	var rs RecordSet

	for _, item := range raw {
		if crawlType == domain.CrawlTypePlaces {
			rs.Places = append(rs.Places, domain.Place{
				SourceURL:      sourceURL,
				Name:           stringField(item, "name"),
				Description:    stringField(item, "description"),
				Category:       stringField(item, "category"),
				Address:        stringField(item, "address"),
				Website:        stringField(item, "website"),
				FamilyFriendly: boolField(item, "family_friendly"),
				Tags:           tagsField(item, "tags"),
				Approved:       false,
				CreatedAt:      now,
			})
			continue
		}

		rs.Events = append(rs.Events, domain.Event{
			SourceURL:    sourceURL,
			Title:        stringField(item, "title"),
			Description:  stringField(item, "description"),
			StartTime:    timeField(item, "start_time"),
			EndTime:      timeField(item, "end_time"),
			LocationName: stringField(item, "location_name"),
			Address:      stringField(item, "address"),
			Website:      stringField(item, "website"),
			Tags:         tagsField(item, "tags"),
			Approved:     false,
			CreatedAt:    now,
		})
	}

	return rs
}

func stringField(m map[string]interface{}, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// timeField parses a timestamp field. Full RFC3339 wins; the bare
// "YYYY-MM-DD HH:MM" pattern is read as UTC; anything else degrades to nil.
func timeField(m map[string]interface{}, key string) *time.Time {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		return &parsed
	}
	if parsed, err := time.ParseInLocation("2006-01-02 15:04", s, time.UTC); err == nil {
		return &parsed
	}
	return nil
}

// boolField coerces via truthiness of the raw value; absent means false.
func boolField(m map[string]interface{}, key string) bool {
	switch v := m[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "false" && v != "0"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return true
	}
}

// tagsField coerces a list-of-strings field. A non-list value yields an
// empty list; list elements of any type are stringified.
func tagsField(m map[string]interface{}, key string) domain.StringArray {
	switch v := m[key].(type) {
	case []string:
		tags := make(domain.StringArray, len(v))
		copy(tags, v)
		return tags
	case []interface{}:
		tags := make(domain.StringArray, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok {
				tags = append(tags, s)
			} else {
				tags = append(tags, fmt.Sprint(el))
			}
		}
		return tags
	default:
		return domain.StringArray{}
	}
}
