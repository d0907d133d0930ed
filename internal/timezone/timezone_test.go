package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultTimezone, Location("Mars/Olympus").String())
	assert.Equal(t, DefaultTimezone, Location("").String())
	assert.Equal(t, "Europe/Lisbon", Location("Europe/Lisbon").String())
}

func TestParseDayAndClock(t *testing.T) {
	d, err := ParseDay("2026-03-09")
	require.NoError(t, err)
	assert.Equal(t, Day{Year: 2026, Month: time.March, Day: 9}, d)
	assert.Equal(t, "2026-03-09", d.String())
	assert.Equal(t, time.Monday, d.Weekday())

	_, err = ParseDay("09/03/2026")
	assert.Error(t, err)

	c, err := ParseClock("13:30")
	require.NoError(t, err)
	assert.Equal(t, NewClock(13, 30), c)
	assert.Equal(t, "13:30", c.String())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestDayOrdering(t *testing.T) {
	a := Day{Year: 2026, Month: time.December, Day: 31}
	b := a.AddDays(1)

	assert.Equal(t, Day{Year: 2027, Month: time.January, Day: 1}, b)
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestInstantUsesVenueOffset(t *testing.T) {
	z := NewZone("America/Sao_Paulo")
	d := Day{Year: 2026, Month: time.March, Day: 10}

	got := z.Instant(d, NewClock(10, 0))

	assert.Equal(t, time.Date(2026, time.March, 10, 13, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestInstantLocalRoundTrip(t *testing.T) {
	zones := []Zone{
		NewZone("America/Sao_Paulo"),
		ZoneFor(time.UTC),
		ZoneFor(time.FixedZone("UTC+5:30", 5*3600+1800)),
		ZoneFor(time.FixedZone("UTC-11", -11*3600)),
	}
	days := []Day{
		{Year: 2026, Month: time.January, Day: 1},
		{Year: 2026, Month: time.June, Day: 30},
		{Year: 2028, Month: time.February, Day: 29},
	}

	for _, z := range zones {
		for _, d := range days {
			for c := Clock(0); c < 24*60; c += 15 {
				gotDay, gotClock := z.Local(z.Instant(d, c))
				require.Equal(t, d, gotDay, "zone %s clock %s", z.Name(), c)
				require.Equal(t, c, gotClock, "zone %s day %s", z.Name(), d)
			}
		}
	}
}

func TestDayBoundsAndToday(t *testing.T) {
	z := NewZone("America/Sao_Paulo")
	d := Day{Year: 2026, Month: time.May, Day: 4}

	start, end := z.DayBounds(d)
	assert.Equal(t, time.Date(2026, time.May, 4, 3, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))

	// 01:30 UTC on the 5th is still the 4th in Sao Paulo.
	now := time.Date(2026, time.May, 5, 1, 30, 0, 0, time.UTC)
	assert.Equal(t, d, z.Today(now))
}

func TestZeroZoneUsesDefault(t *testing.T) {
	var z Zone
	assert.Equal(t, DefaultTimezone, z.Name())
}

func TestInstantAcrossClockChange(t *testing.T) {
	z := NewZone("America/New_York")
	before := Day{Year: 2026, Month: time.March, Day: 7}
	change := Day{Year: 2026, Month: time.March, Day: 8}

	assert.Equal(t, time.Date(2026, time.March, 7, 15, 0, 0, 0, time.UTC), z.Instant(before, NewClock(10, 0)))
	assert.Equal(t, time.Date(2026, time.March, 8, 14, 0, 0, 0, time.UTC), z.Instant(change, NewClock(10, 0)))

	start, end := z.DayBounds(change)
	assert.Equal(t, 23*time.Hour, end.Sub(start))
}
