package entity

import (
	"sort"
	"strings"
)

// SortKey selects the field ListFlights orders by.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByDistance SortKey = "distance"
	SortByAirline  SortKey = "airline"
	SortByCreated  SortKey = "created"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterSpec is a read-only predicate and sort descriptor applied to a
// snapshot of the collection. It never mutates stored records.
type FilterSpec struct {
	Search      string    `json:"search,omitempty"`
	Airline     string    `json:"airline,omitempty"`
	DateFrom    string    `json:"dateFrom,omitempty"`
	DateTo      string    `json:"dateTo,omitempty"`
	MinDistance *int      `json:"minDistance,omitempty"`
	MaxDistance *int      `json:"maxDistance,omitempty"`
	Class       Class     `json:"class,omitempty"`
	SortBy      SortKey   `json:"sortBy,omitempty"`
	SortOrder   SortOrder `json:"sortOrder,omitempty"`
}

// Apply filters and sorts a copy of records. The input slice is never
// modified. Default order is date descending.
func (f FilterSpec) Apply(records []FlightRecord) []FlightRecord {
	out := make([]FlightRecord, 0, len(records))
	for _, rec := range records {
		if f.matches(rec) {
			out = append(out, rec)
		}
	}
	f.sortRecords(out)
	return out
}

func (f FilterSpec) matches(rec FlightRecord) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystack := strings.ToLower(strings.Join([]string{
			rec.Airline, rec.FlightNumber, rec.Origin, rec.Destination, rec.Aircraft, rec.Note,
		}, "\x00"))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if f.Airline != "" && !strings.EqualFold(rec.Airline, f.Airline) {
		return false
	}
	if f.DateFrom != "" && rec.Date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && rec.Date > f.DateTo {
		return false
	}
	if f.MinDistance != nil && (rec.Distance == nil || *rec.Distance < *f.MinDistance) {
		return false
	}
	if f.MaxDistance != nil && (rec.Distance == nil || *rec.Distance > *f.MaxDistance) {
		return false
	}
	if f.Class != "" && rec.Class != f.Class {
		return false
	}
	return true
}

func (f FilterSpec) sortRecords(records []FlightRecord) {
	key := f.SortBy
	if key == "" {
		key = SortByDate
	}
	order := f.SortOrder
	if order == "" {
		order = SortDesc
	}

	less := func(a, b FlightRecord) bool {
		switch key {
		case SortByDistance:
			return distanceOrZero(a) < distanceOrZero(b)
		case SortByAirline:
			return strings.ToLower(a.Airline) < strings.ToLower(b.Airline)
		case SortByCreated:
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if order == SortAsc {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}

func distanceOrZero(rec FlightRecord) int {
	if rec.Distance == nil {
		return 0
	}
	return *rec.Distance
}
