package crawler

import (
	"testing"
	"time"

	"github.com/guanghao479/golden/internal/domain"
)

var mapperNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TestNormalizeEventFull verifies that a record with every field present maps
// field-for-field with nothing altered.
func TestNormalizeEventFull(t *testing.T) {
	raw := []map[string]interface{}{
		{
			"title":         "Family Concert",
			"description":   "Outdoor music for kids",
			"start_time":    "2025-07-04T10:00:00Z",
			"end_time":      "2025-07-04 12:30",
			"location_name": "City Park",
			"address":       "1 Park Ave",
			"website":       "https://citypark.example.com",
			"tags":          []interface{}{"music", "outdoor"},
		},
	}

	rs := Normalize(raw, domain.CrawlTypeEvents, "https://x.com/cal", mapperNow)

	if len(rs.Events) != 1 || len(rs.Places) != 0 {
		t.Fatalf("expected 1 event, 0 places, got %d/%d", len(rs.Events), len(rs.Places))
	}

	ev := rs.Events[0]
	if ev.Title != "Family Concert" {
		t.Errorf("title: got %q", ev.Title)
	}
	if ev.Description != "Outdoor music for kids" {
		t.Errorf("description: got %q", ev.Description)
	}
	if ev.StartTime == nil || !ev.StartTime.Equal(time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("start_time: got %v", ev.StartTime)
	}
	// The bare pattern is interpreted as UTC
	if ev.EndTime == nil || !ev.EndTime.Equal(time.Date(2025, 7, 4, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("end_time: got %v", ev.EndTime)
	}
	if ev.LocationName != "City Park" || ev.Address != "1 Park Ave" {
		t.Errorf("location: got %q / %q", ev.LocationName, ev.Address)
	}
	if len(ev.Tags) != 2 || ev.Tags[0] != "music" || ev.Tags[1] != "outdoor" {
		t.Errorf("tags: got %v", ev.Tags)
	}
	if ev.SourceURL != "https://x.com/cal" {
		t.Errorf("source_url: got %q", ev.SourceURL)
	}
	if ev.Approved {
		t.Error("approved must default to false")
	}
	if !ev.CreatedAt.Equal(mapperNow) {
		t.Errorf("created_at: got %v", ev.CreatedAt)
	}
}

// TestNormalizeDegradation verifies the coercion boundary cases: missing or
// malformed input degrades to zero values, never to an error.
func TestNormalizeDegradation(t *testing.T) {
	testCases := []struct {
		name  string
		raw   map[string]interface{}
		check func(t *testing.T, ev domain.Event)
	}{
		{
			name: "missing title becomes empty string",
			raw:  map[string]interface{}{"description": "x"},
			check: func(t *testing.T, ev domain.Event) {
				if ev.Title != "" {
					t.Errorf("got %q", ev.Title)
				}
			},
		},
		{
			name: "non-string title becomes empty string",
			raw:  map[string]interface{}{"title": float64(42)},
			check: func(t *testing.T, ev domain.Event) {
				if ev.Title != "" {
					t.Errorf("got %q", ev.Title)
				}
			},
		},
		{
			name: "unparsable start_time becomes nil",
			raw:  map[string]interface{}{"start_time": "not-a-date"},
			check: func(t *testing.T, ev domain.Event) {
				if ev.StartTime != nil {
					t.Errorf("got %v", ev.StartTime)
				}
			},
		},
		{
			name: "non-string start_time becomes nil",
			raw:  map[string]interface{}{"start_time": float64(1720000000)},
			check: func(t *testing.T, ev domain.Event) {
				if ev.StartTime != nil {
					t.Errorf("got %v", ev.StartTime)
				}
			},
		},
		{
			name: "null tags become empty list",
			raw:  map[string]interface{}{"tags": nil},
			check: func(t *testing.T, ev domain.Event) {
				if ev.Tags == nil || len(ev.Tags) != 0 {
					t.Errorf("got %v", ev.Tags)
				}
			},
		},
		{
			name: "scalar tags become empty list",
			raw:  map[string]interface{}{"tags": "music"},
			check: func(t *testing.T, ev domain.Event) {
				if len(ev.Tags) != 0 {
					t.Errorf("got %v", ev.Tags)
				}
			},
		},
		{
			name: "non-string tag elements are stringified",
			raw:  map[string]interface{}{"tags": []interface{}{"a", float64(3)}},
			check: func(t *testing.T, ev domain.Event) {
				if len(ev.Tags) != 2 || ev.Tags[1] != "3" {
					t.Errorf("got %v", ev.Tags)
				}
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rs := Normalize([]map[string]interface{}{tc.raw}, domain.CrawlTypeEvents, "https://x.com", mapperNow)
			if len(rs.Events) != 1 {
				t.Fatalf("expected 1 event, got %d", len(rs.Events))
			}
			tc.check(t, rs.Events[0])
		})
	}
}

// TestNormalizePlaceTruthiness verifies boolean coercion for places.
func TestNormalizePlaceTruthiness(t *testing.T) {
	testCases := []struct {
		name string
		raw  interface{}
		want bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"absent", nil, false},
		{"string yes", "yes", true},
		{"string false", "false", false},
		{"string zero", "0", false},
		{"empty string", "", false},
		{"number nonzero", float64(1), true},
		{"number zero", float64(0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := map[string]interface{}{"name": "Museum"}
			if tc.raw != nil {
				raw["family_friendly"] = tc.raw
			}
			rs := Normalize([]map[string]interface{}{raw}, domain.CrawlTypePlaces, "https://x.com", mapperNow)
			if len(rs.Places) != 1 {
				t.Fatalf("expected 1 place, got %d", len(rs.Places))
			}
			if rs.Places[0].FamilyFriendly != tc.want {
				t.Errorf("family_friendly: got %v, want %v", rs.Places[0].FamilyFriendly, tc.want)
			}
		})
	}
}

// TestNormalizeEmptyInput verifies an empty input maps to an empty output.
func TestNormalizeEmptyInput(t *testing.T) {
	rs := Normalize(nil, domain.CrawlTypeEvents, "https://x.com", mapperNow)
	if rs.Len() != 0 {
		t.Errorf("expected empty set, got %d records", rs.Len())
	}

	rs = Normalize([]map[string]interface{}{}, domain.CrawlTypePlaces, "https://x.com", mapperNow)
	if rs.Len() != 0 {
		t.Errorf("expected empty set, got %d records", rs.Len())
	}
}

// TestNormalizeDeterministic verifies the same input produces the same
// output field-for-field.
func TestNormalizeDeterministic(t *testing.T) {
	raw := []map[string]interface{}{
		{"title": "A", "start_time": "2025-07-04 09:00", "tags": []interface{}{"x"}},
		{"title": "B", "tags": nil},
	}

	first := Normalize(raw, domain.CrawlTypeEvents, "https://x.com", mapperNow)
	second := Normalize(raw, domain.CrawlTypeEvents, "https://x.com", mapperNow)

	if len(first.Events) != len(second.Events) {
		t.Fatalf("lengths differ: %d vs %d", len(first.Events), len(second.Events))
	}
	for i := range first.Events {
		a, b := first.Events[i], second.Events[i]
		if a.Title != b.Title || a.SourceURL != b.SourceURL || len(a.Tags) != len(b.Tags) {
			t.Errorf("record %d differs: %+v vs %+v", i, a, b)
		}
		if (a.StartTime == nil) != (b.StartTime == nil) {
			t.Errorf("record %d start_time nilness differs", i)
		}
	}
}
