package entity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FlightForm is the raw user input for a new flight. All fields arrive as
// text; Validate collects every violation before Normalize turns the form
// into a record.
type FlightForm struct {
	Date         string `json:"date" validate:"required"`
	Airline      string `json:"airline" validate:"required"`
	FlightNumber string `json:"flightNumber" validate:"required"`
	Origin       string `json:"origin" validate:"required"`
	Destination  string `json:"destination" validate:"required"`
	Aircraft     string `json:"aircraft"`
	Registration string `json:"registration"`
	Seat         string `json:"seat"`
	Distance     string `json:"distance"`
	Duration     string `json:"duration"`
	Class        string `json:"class"`
	Reason       string `json:"reason"`
	Note         string `json:"note"`
}

var formFieldNames = map[string]string{
	"Date":         "date",
	"Airline":      "airline",
	"FlightNumber": "flight number",
	"Origin":       "origin",
	"Destination":  "destination",
}

// Validate runs every rule and returns all violations, not just the first.
// An empty slice means the form is valid. ref anchors the future-date check:
// dates after ref's calendar day are rejected, ref's own day is allowed.
// No side effects.
func (f FlightForm) Validate(ref time.Time) []string {
	var messages []string

	trimmed := f.trimmed()
	if err := validate.Struct(trimmed); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, ve := range verrs {
				name := formFieldNames[ve.StructField()]
				if name == "" {
					name = strings.ToLower(ve.StructField())
				}
				messages = append(messages, fmt.Sprintf("%s is required", name))
			}
		} else {
			messages = append(messages, err.Error())
		}
	}

	if trimmed.Date != "" {
		when, err := ParseDate(trimmed.Date)
		if err != nil {
			messages = append(messages, "date must be a valid calendar date (YYYY-MM-DD)")
		} else {
			today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.Local)
			if when.After(today) {
				messages = append(messages, "date must not be in the future")
			}
		}
	}

	if trimmed.Distance != "" {
		d, err := strconv.Atoi(trimmed.Distance)
		if err != nil {
			messages = append(messages, "distance must be a whole number of kilometers")
		} else if d < 0 {
			messages = append(messages, "distance must not be negative")
		}
	}

	return messages
}

// Normalize converts the form into a record without id or timestamps:
// strings trimmed, flight number / registration / seat uppercased,
// distance parsed, class defaulted to economy.
func (f FlightForm) Normalize() FlightRecord {
	trimmed := f.trimmed()

	rec := FlightRecord{
		Date:         trimmed.Date,
		Airline:      trimmed.Airline,
		FlightNumber: strings.ToUpper(trimmed.FlightNumber),
		Origin:       trimmed.Origin,
		Destination:  trimmed.Destination,
		Aircraft:     trimmed.Aircraft,
		Registration: strings.ToUpper(trimmed.Registration),
		Seat:         strings.ToUpper(trimmed.Seat),
		Duration:     trimmed.Duration,
		Class:        CoerceClass(trimmed.Class),
		Reason:       CoerceReason(trimmed.Reason),
		Note:         trimmed.Note,
	}

	if trimmed.Distance != "" {
		if d, err := strconv.Atoi(trimmed.Distance); err == nil && d >= 0 {
			rec.Distance = &d
		}
	}

	return rec
}

func (f FlightForm) trimmed() FlightForm {
	f.Date = trim(f.Date)
	f.Airline = trim(f.Airline)
	f.FlightNumber = trim(f.FlightNumber)
	f.Origin = trim(f.Origin)
	f.Destination = trim(f.Destination)
	f.Aircraft = trim(f.Aircraft)
	f.Registration = trim(f.Registration)
	f.Seat = trim(f.Seat)
	f.Distance = trim(f.Distance)
	f.Duration = trim(f.Duration)
	f.Class = trim(f.Class)
	f.Reason = trim(f.Reason)
	f.Note = trim(f.Note)
	return f
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
