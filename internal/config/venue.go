package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/BruksfildServices01/barbershop-booking/internal/domain/availability"
	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// Venue is the shop's opening policy. Times are local "HH:MM" strings.
type Venue struct {
	Name    string `toml:"name"`
	Address string `toml:"address"`
	Phone   string `toml:"phone"`

	Timezone       string `toml:"timezone"`
	ClosedWeekdays []int  `toml:"closed_weekdays"`

	FirstSlot         string       `toml:"first_slot"`
	LastSlot          string       `toml:"last_slot"`
	SlotStepMinutes   int          `toml:"slot_step_minutes"`
	Breaks            []VenueBreak `toml:"breaks"`
	MinAdvanceMinutes int          `toml:"min_advance_minutes"`

	schedule availability.Schedule
}

type VenueBreak struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

func DefaultVenue() Venue {
	return Venue{
		Name:            "Barbearia",
		Timezone:        timezone.DefaultTimezone,
		ClosedWeekdays:  []int{int(time.Sunday)},
		FirstSlot:       "09:00",
		LastSlot:        "18:00",
		SlotStepMinutes: 30,
		Breaks:          []VenueBreak{{Start: "12:00", End: "13:00"}},
		schedule:        availability.DefaultSchedule(),
	}
}

// LoadVenue decodes path over the defaults. An empty path yields the defaults.
func LoadVenue(path string) (Venue, error) {
	v := DefaultVenue()
	if path != "" {
		if _, err := toml.DecodeFile(path, &v); err != nil {
			return Venue{}, fmt.Errorf("venue config %s: %w", path, err)
		}
	}
	if err := v.compile(); err != nil {
		return Venue{}, err
	}
	return v, nil
}

// DecodeVenue is LoadVenue over an in-memory document.
func DecodeVenue(doc string) (Venue, error) {
	v := DefaultVenue()
	if _, err := toml.Decode(doc, &v); err != nil {
		return Venue{}, fmt.Errorf("venue config: %w", err)
	}
	if err := v.compile(); err != nil {
		return Venue{}, err
	}
	return v, nil
}

func (v *Venue) compile() error {
	if !timezone.IsValid(v.Timezone) {
		return fmt.Errorf("venue config: unknown timezone %q", v.Timezone)
	}

	first, err := timezone.ParseClock(v.FirstSlot)
	if err != nil {
		return fmt.Errorf("venue config: first_slot: %w", err)
	}
	last, err := timezone.ParseClock(v.LastSlot)
	if err != nil {
		return fmt.Errorf("venue config: last_slot: %w", err)
	}

	s := availability.Schedule{First: first, Last: last, Step: v.SlotStepMinutes}
	for _, b := range v.Breaks {
		start, err := timezone.ParseClock(b.Start)
		if err != nil {
			return fmt.Errorf("venue config: break start: %w", err)
		}
		end, err := timezone.ParseClock(b.End)
		if err != nil {
			return fmt.Errorf("venue config: break end: %w", err)
		}
		s.Breaks = append(s.Breaks, availability.Break{Start: start, End: end})
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("venue config: %w", err)
	}

	for _, d := range v.ClosedWeekdays {
		if d < 0 || d > 6 {
			return fmt.Errorf("venue config: closed weekday %d out of range", d)
		}
	}
	if v.MinAdvanceMinutes < 0 {
		return fmt.Errorf("venue config: min_advance_minutes must not be negative")
	}

	v.schedule = s
	return nil
}

func (v Venue) Schedule() availability.Schedule {
	return v.schedule
}

func (v Venue) Zone() timezone.Zone {
	return timezone.NewZone(v.Timezone)
}

func (v Venue) Closed() []time.Weekday {
	out := make([]time.Weekday, 0, len(v.ClosedWeekdays))
	for _, d := range v.ClosedWeekdays {
		out = append(out, time.Weekday(d))
	}
	return out
}

func (v Venue) MinAdvance() time.Duration {
	return time.Duration(v.MinAdvanceMinutes) * time.Minute
}
