package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

func TestTransitionStampsTimestamps(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

	b := &models.Booking{Status: string(StatusPending)}
	require.NoError(t, Confirm(b, now))
	assert.Equal(t, string(StatusConfirmed), b.Status)
	require.NotNil(t, b.ConfirmedAt)
	assert.Equal(t, now, *b.ConfirmedAt)

	later := now.Add(time.Hour)
	require.NoError(t, Complete(b, later))
	require.NotNil(t, b.CompletedAt)
	assert.Equal(t, later, *b.CompletedAt)
	assert.Nil(t, b.CancelledAt)
}

func TestTransitionRejectsTerminal(t *testing.T) {
	now := time.Now()
	b := &models.Booking{Status: string(StatusCancelled)}

	assert.Error(t, Confirm(b, now))
	assert.Equal(t, string(StatusCancelled), b.Status)
	assert.Nil(t, b.ConfirmedAt)
}

func TestCancelFromConfirmed(t *testing.T) {
	now := time.Now()
	b := &models.Booking{Status: string(StatusConfirmed)}

	require.NoError(t, Cancel(b, now))
	assert.Equal(t, string(StatusCancelled), b.Status)
	assert.NotNil(t, b.CancelledAt)
}
