package availability

import (
	"errors"
	"fmt"
	"iter"

	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

// Break is a window [Start, End) in which no slot may start.
type Break struct {
	Start timezone.Clock
	End   timezone.Clock
}

// Schedule is the venue's fixed list of candidate start times, identical for
// every open day.
type Schedule struct {
	First  timezone.Clock
	Last   timezone.Clock
	Step   int
	Breaks []Break
}

// DefaultSchedule is 09:00 to 18:00 every 30 minutes, closed for lunch
// between 12:00 and 13:00.
func DefaultSchedule() Schedule {
	return Schedule{
		First: timezone.NewClock(9, 0),
		Last:  timezone.NewClock(18, 0),
		Step:  30,
		Breaks: []Break{
			{Start: timezone.NewClock(12, 0), End: timezone.NewClock(13, 0)},
		},
	}
}

func (s Schedule) Validate() error {
	if s.Step <= 0 {
		return errors.New("slot step must be positive")
	}
	if s.First < 0 || s.Last >= 24*60 || s.Last < s.First {
		return fmt.Errorf("invalid slot range %s-%s", s.First, s.Last)
	}
	for _, b := range s.Breaks {
		if b.End <= b.Start {
			return fmt.Errorf("invalid break %s-%s", b.Start, b.End)
		}
	}
	return nil
}

// Candidates yields the slot start times in order. The sequence can be
// ranged over any number of times.
func (s Schedule) Candidates() iter.Seq[timezone.Clock] {
	return func(yield func(timezone.Clock) bool) {
		if s.Step <= 0 {
			return
		}
		for c := s.First; c <= s.Last; c += timezone.Clock(s.Step) {
			if s.inBreak(c) {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

func (s Schedule) Contains(c timezone.Clock) bool {
	for cand := range s.Candidates() {
		if cand == c {
			return true
		}
	}
	return false
}

func (s Schedule) Labels() []string {
	var out []string
	for c := range s.Candidates() {
		out = append(out, c.String())
	}
	return out
}

func (s Schedule) inBreak(c timezone.Clock) bool {
	for _, b := range s.Breaks {
		if c >= b.Start && c < b.End {
			return true
		}
	}
	return false
}
