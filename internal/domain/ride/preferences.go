package ride

import (
	"slices"
	"strings"
	"time"

	"ride-share/internal/domain/apperr"
)

// Preferences are the driver's trip rules shown to passengers.
type Preferences struct {
	SmokingAllowed bool `json:"smoking_allowed"`
	PetsAllowed    bool `json:"pets_allowed"`
	MusicAllowed   bool `json:"music_allowed"`
	LuggageAllowed bool `json:"luggage_allowed"`
	WomenOnly      bool `json:"women_only"`
}

// Frequency is how often a recurring ride repeats.
type Frequency string

const (
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekdays Frequency = "WEEKDAYS"
	FrequencyWeekly   Frequency = "WEEKLY"
)

// Recurrence describes a ride that the driver repeats on a schedule.
type Recurrence struct {
	Frequency Frequency      `json:"frequency"`
	Weekdays  []time.Weekday `json:"weekdays,omitempty"` // WEEKLY only
	Until     *time.Time     `json:"until,omitempty"`
}

var ErrInvalidRecurrence = apperr.New(apperr.KindInvalidInput, "INVALID_RECURRENCE", "invalid recurrence")

// ParseFrequency normalizes (uppercases+trims) and validates a frequency string.
func ParseFrequency(in string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(in)))
	switch f {
	case FrequencyDaily, FrequencyWeekdays, FrequencyWeekly:
		return f, nil
	default:
		return "", ErrInvalidRecurrence.WithMsg("unknown recurrence frequency %q", in)
	}
}

// Validate checks the recurrence against the first departure.
func (rec *Recurrence) Validate(departure time.Time) error {
	if rec == nil {
		return nil
	}
	if _, err := ParseFrequency(string(rec.Frequency)); err != nil {
		return err
	}
	if rec.Frequency == FrequencyWeekly {
		if len(rec.Weekdays) == 0 {
			return ErrInvalidRecurrence.WithMsg("weekly recurrence needs at least one weekday")
		}
		for _, d := range rec.Weekdays {
			if d < time.Sunday || d > time.Saturday {
				return ErrInvalidRecurrence.WithMsg("weekday %d out of range", d)
			}
		}
	}
	if rec.Until != nil && !rec.Until.After(departure) {
		return ErrInvalidRecurrence.WithMsg("recurrence end must be after the first departure")
	}
	return nil
}

// Clone returns a deep copy.
func (rec *Recurrence) Clone() *Recurrence {
	if rec == nil {
		return nil
	}
	cp := *rec
	cp.Weekdays = slices.Clone(rec.Weekdays)
	if rec.Until != nil {
		u := *rec.Until
		cp.Until = &u
	}
	return &cp
}
