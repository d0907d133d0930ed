package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/timezone"
)

var (
	testDay  = timezone.Day{Year: 2026, Month: time.March, Day: 10}
	barberX  = uuid.MustParse("7d3c7f5e-0d7b-4a43-9d6a-2b1f0d1c1a01")
	barberY  = uuid.MustParse("7d3c7f5e-0d7b-4a43-9d6a-2b1f0d1c1a02")
	morning  = Schedule{First: timezone.NewClock(9, 0), Last: timezone.NewClock(11, 0), Step: 30}
	saoPaulo = timezone.NewZone("America/Sao_Paulo")
)

func occupiedAt(zone timezone.Zone, barber uuid.UUID, h, m, minutes int) Occupied {
	return Occupied{
		BarberID:        barber,
		Start:           zone.Instant(testDay, timezone.NewClock(h, m)),
		DurationMinutes: minutes,
	}
}

func byLabel(slots []Slot) map[string]bool {
	out := make(map[string]bool, len(slots))
	for _, s := range slots {
		out[s.Label] = s.Available
	}
	return out
}

func TestResolveSingleBookingThirtyMinutes(t *testing.T) {
	r := NewResolver(morning, saoPaulo)

	slots := r.Resolve(Request{
		Day:             testDay,
		BarberID:        barberX,
		DurationMinutes: 30,
		Existing:        []Occupied{occupiedAt(saoPaulo, barberX, 10, 0, 30)},
	})

	assert.Equal(t, []Slot{
		{Label: "09:00", Available: true},
		{Label: "09:30", Available: true},
		{Label: "10:00", Available: false},
		{Label: "10:30", Available: true},
		{Label: "11:00", Available: true},
	}, slots)
}

func TestResolveSingleBookingSixtyMinutes(t *testing.T) {
	r := NewResolver(morning, saoPaulo)

	got := byLabel(r.Resolve(Request{
		Day:             testDay,
		BarberID:        barberX,
		DurationMinutes: 60,
		Existing:        []Occupied{occupiedAt(saoPaulo, barberX, 10, 0, 30)},
	}))

	assert.Equal(t, map[string]bool{
		"09:00": true,
		"09:30": false,
		"10:00": false,
		"10:30": true,
		"11:00": true,
	}, got)
}

func TestResolveNoBookings(t *testing.T) {
	r := NewResolver(DefaultSchedule(), saoPaulo)

	slots := r.Resolve(Request{Day: testDay, BarberID: barberX, DurationMinutes: 45})

	require.Len(t, slots, 17)
	for _, s := range slots {
		assert.True(t, s.Available, s.Label)
	}
}

func TestResolveIgnoresOtherBarbers(t *testing.T) {
	r := NewResolver(morning, saoPaulo)

	got := byLabel(r.Resolve(Request{
		Day:             testDay,
		BarberID:        barberX,
		DurationMinutes: 30,
		Existing:        []Occupied{occupiedAt(saoPaulo, barberY, 10, 0, 30)},
	}))

	assert.True(t, got["10:00"])
}

func TestResolveDefaultsDurations(t *testing.T) {
	r := NewResolver(morning, saoPaulo)

	// A booking whose service could not be resolved occupies 30 minutes.
	existing := []Occupied{occupiedAt(saoPaulo, barberX, 10, 0, 0)}

	for _, requested := range []int{0, -15} {
		got := byLabel(r.Resolve(Request{
			Day:             testDay,
			BarberID:        barberX,
			DurationMinutes: requested,
			Existing:        existing,
		}))
		assert.True(t, got["09:30"], "requested %d", requested)
		assert.False(t, got["10:00"], "requested %d", requested)
		assert.True(t, got["10:30"], "requested %d", requested)
	}
}

func TestResolveComparesInVenueFrame(t *testing.T) {
	// The booking is stored as 13:00 UTC, i.e. 10:00 in Sao Paulo.
	stored := time.Date(2026, time.March, 10, 13, 0, 0, 0, time.UTC)
	r := NewResolver(morning, saoPaulo)

	got := byLabel(r.Resolve(Request{
		Day:             testDay,
		BarberID:        barberX,
		DurationMinutes: 30,
		Existing:        []Occupied{{BarberID: barberX, Start: stored, DurationMinutes: 30}},
	}))

	assert.False(t, got["10:00"])
	assert.True(t, got["09:30"])
}

func TestResolveMatchesOverlapPredicate(t *testing.T) {
	r := NewResolver(DefaultSchedule(), saoPaulo)
	existing := []Occupied{
		occupiedAt(saoPaulo, barberX, 9, 15, 30),
		occupiedAt(saoPaulo, barberX, 13, 0, 90),
		occupiedAt(saoPaulo, barberX, 16, 45, 20),
	}

	for _, d := range []int{15, 30, 45, 60} {
		slots := r.Resolve(Request{Day: testDay, BarberID: barberX, DurationMinutes: d, Existing: existing})
		for _, s := range slots {
			c, err := timezone.ParseClock(s.Label)
			require.NoError(t, err)
			candidate := NewInterval(saoPaulo.Instant(testDay, c), d)

			overlapping := false
			for _, o := range existing {
				if Overlaps(candidate, o.Interval()) {
					overlapping = true
				}
			}
			assert.Equal(t, !overlapping, s.Available, "slot %s duration %d", s.Label, d)
		}
	}
}

func TestResolveLongerDurationNeverFreesSlots(t *testing.T) {
	r := NewResolver(DefaultSchedule(), saoPaulo)
	existing := []Occupied{
		occupiedAt(saoPaulo, barberX, 10, 0, 30),
		occupiedAt(saoPaulo, barberX, 14, 30, 60),
	}

	prev := r.Resolve(Request{Day: testDay, BarberID: barberX, DurationMinutes: 15, Existing: existing})
	for d := 30; d <= 180; d += 15 {
		cur := r.Resolve(Request{Day: testDay, BarberID: barberX, DurationMinutes: d, Existing: existing})
		require.Len(t, cur, len(prev))
		for i := range cur {
			if !prev[i].Available {
				assert.False(t, cur[i].Available, "slot %s freed at duration %d", cur[i].Label, d)
			}
		}
		prev = cur
	}
}

func TestResolveIsDeterministicAndPure(t *testing.T) {
	r := NewResolver(DefaultSchedule(), saoPaulo)
	existing := []Occupied{occupiedAt(saoPaulo, barberX, 11, 0, 45)}
	snapshot := append([]Occupied(nil), existing...)
	req := Request{Day: testDay, BarberID: barberX, DurationMinutes: 30, Existing: existing}

	first := r.Resolve(req)
	second := r.Resolve(req)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, existing)
}

func TestConflicts(t *testing.T) {
	existing := []Occupied{occupiedAt(saoPaulo, barberX, 10, 0, 30)}

	assert.True(t, Conflicts(NewInterval(saoPaulo.Instant(testDay, timezone.NewClock(10, 0)), 30), barberX, existing))
	assert.False(t, Conflicts(NewInterval(saoPaulo.Instant(testDay, timezone.NewClock(10, 30)), 30), barberX, existing))
	assert.False(t, Conflicts(NewInterval(saoPaulo.Instant(testDay, timezone.NewClock(10, 0)), 30), barberY, existing))
}
