package entity

import (
	"time"
)

// DateLayout is the calendar-date wire format used for FlightRecord.Date.
const DateLayout = "2006-01-02"

// Class is the travel class of a flight.
type Class string

const (
	ClassEconomy        Class = "economy"
	ClassPremiumEconomy Class = "premium_economy"
	ClassBusiness       Class = "business"
	ClassFirst          Class = "first"
)

// Reason categorises why a flight was taken.
type Reason string

const (
	ReasonBusiness   Reason = "business"
	ReasonLeisure    Reason = "leisure"
	ReasonPersonal   Reason = "personal"
	ReasonConnecting Reason = "connecting"
	ReasonOther      Reason = "other"
)

// FlightRecord is the canonical local form of a logged flight.
// ID is client-generated and immutable; it doubles as the reconciliation
// key against the remote datastore. CreatedAt never changes after the
// record is first assigned.
type FlightRecord struct {
	ID           string    `json:"id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Airline      string    `json:"airline"`
	FlightNumber string    `json:"flightNumber"`
	Origin       string    `json:"origin"`
	Destination  string    `json:"destination"`
	Aircraft     string    `json:"aircraft,omitempty"`
	Registration string    `json:"registration,omitempty"`
	Seat         string    `json:"seat,omitempty"`
	Distance     *int      `json:"distance,omitempty"` // kilometers
	Duration     string    `json:"duration,omitempty"` // free text, e.g. "2h 30m"
	Class        Class     `json:"class"`
	Reason       Reason    `json:"reason,omitempty"`
	Note         string    `json:"note,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CoerceClass maps an arbitrary wire value to a known class. Unknown or
// empty values fall back to economy; reads are lenient, writes are not.
func CoerceClass(v string) Class {
	switch Class(v) {
	case ClassEconomy, ClassPremiumEconomy, ClassBusiness, ClassFirst:
		return Class(v)
	default:
		return ClassEconomy
	}
}

// CoerceReason maps an arbitrary wire value to a known reason. Unknown
// values coerce to absent rather than being rejected.
func CoerceReason(v string) Reason {
	switch Reason(v) {
	case ReasonBusiness, ReasonLeisure, ReasonPersonal, ReasonConnecting, ReasonOther:
		return Reason(v)
	default:
		return ""
	}
}

// FlightPatch carries a partial update for an existing record. Nil fields
// are left untouched. ID and CreatedAt are not patchable.
type FlightPatch struct {
	Date         *string `json:"date,omitempty"`
	Airline      *string `json:"airline,omitempty"`
	FlightNumber *string `json:"flightNumber,omitempty"`
	Origin       *string `json:"origin,omitempty"`
	Destination  *string `json:"destination,omitempty"`
	Aircraft     *string `json:"aircraft,omitempty"`
	Registration *string `json:"registration,omitempty"`
	Seat         *string `json:"seat,omitempty"`
	Distance     *int    `json:"distance,omitempty"`
	Duration     *string `json:"duration,omitempty"`
	Class        *string `json:"class,omitempty"`
	Reason       *string `json:"reason,omitempty"`
	Note         *string `json:"note,omitempty"`
}

// Apply merges the patch into rec, normalizing the same way record
// creation does. UpdatedAt is the caller's responsibility.
func (p FlightPatch) Apply(rec *FlightRecord) {
	if p.Date != nil {
		rec.Date = trim(*p.Date)
	}
	if p.Airline != nil {
		rec.Airline = trim(*p.Airline)
	}
	if p.FlightNumber != nil {
		rec.FlightNumber = upper(*p.FlightNumber)
	}
	if p.Origin != nil {
		rec.Origin = trim(*p.Origin)
	}
	if p.Destination != nil {
		rec.Destination = trim(*p.Destination)
	}
	if p.Aircraft != nil {
		rec.Aircraft = trim(*p.Aircraft)
	}
	if p.Registration != nil {
		rec.Registration = upper(*p.Registration)
	}
	if p.Seat != nil {
		rec.Seat = upper(*p.Seat)
	}
	if p.Distance != nil {
		d := *p.Distance
		rec.Distance = &d
	}
	if p.Duration != nil {
		rec.Duration = trim(*p.Duration)
	}
	if p.Class != nil {
		rec.Class = CoerceClass(trim(*p.Class))
	}
	if p.Reason != nil {
		rec.Reason = CoerceReason(trim(*p.Reason))
	}
	if p.Note != nil {
		rec.Note = trim(*p.Note)
	}
}

// ParseDate parses a YYYY-MM-DD calendar date in the local timezone.
func ParseDate(v string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, v, time.Local)
}
