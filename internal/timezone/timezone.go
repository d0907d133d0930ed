package timezone

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const DefaultTimezone = "America/Sao_Paulo"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

// ======================================================
// Day / Clock
// ======================================================

// Day is a calendar date in the venue's local frame.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t), nil
}

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Day) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Weekday()
}

func (d Day) Before(o Day) bool {
	return d.civil().Before(o.civil())
}

func (d Day) AddDays(n int) Day {
	return DayOf(d.civil().AddDate(0, 0, n))
}

func (d Day) civil() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Clock is a wall-clock time of day, in minutes after local midnight.
type Clock int

func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return NewClock(t.Hour(), t.Minute()), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ======================================================
// Zone
// ======================================================

// Zone converts between the venue's local wall clock and absolute instants.
// Stored instants are always UTC.
type Zone struct {
	loc *time.Location
}

func NewZone(tz string) Zone {
	return Zone{loc: Location(tz)}
}

func ZoneFor(loc *time.Location) Zone {
	if loc == nil {
		return NewZone(DefaultTimezone)
	}
	return Zone{loc: loc}
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return Location(DefaultTimezone)
	}
	return z.loc
}

func (z Zone) Name() string {
	return z.Location().String()
}

// Instant resolves a local date and time with the offset in force at that
// wall-clock moment. Wall times skipped by a forward clock change are
// normalized by the time package.
func (z Zone) Instant(d Day, c Clock) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour(), c.Minute(), 0, 0, z.Location()).UTC()
}

// Local is the inverse of Instant for fixed offsets.
func (z Zone) Local(t time.Time) (Day, Clock) {
	lt := t.In(z.Location())
	return DayOf(lt), NewClock(lt.Hour(), lt.Minute())
}

// DayBounds returns [local midnight, next local midnight) as UTC instants.
func (z Zone) DayBounds(d Day) (time.Time, time.Time) {
	return z.Instant(d, 0), z.Instant(d.AddDays(1), 0)
}

func (z Zone) Today(now time.Time) Day {
	return DayOf(now.In(z.Location()))
}

func (z Zone) Now() time.Time {
	return time.Now().In(z.Location())
}
