package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-booking/pkg/domain"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestNewBooking(t *testing.T) {
	b, err := NewBooking(10, 2, at(time.Second), at(4*time.Second), now)
	require.NoError(t, err)

	assert.Equal(t, StatusWaiting, b.Status())
	assert.Equal(t, int64(10), b.ItemID())
	assert.Equal(t, int64(2), b.BookerID())
	assert.Equal(t, int64(1), b.Version())
	assert.Zero(t, b.ID())
}

func TestNewBooking_InvalidInterval(t *testing.T) {
	tests := []struct {
		name       string
		start, end *time.Time
	}{
		{"equal bounds", at(4 * time.Second), at(4 * time.Second)},
		{"inverted", at(5 * time.Second), at(time.Second)},
		{"missing start", nil, at(time.Second)},
		{"missing end", at(time.Second), nil},
		{"both missing", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(10, 2, tt.start, tt.end, now)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestDecide(t *testing.T) {
	b, err := NewBooking(10, 2, at(time.Second), at(time.Hour), now)
	require.NoError(t, err)

	require.NoError(t, b.Decide(true, now))
	assert.Equal(t, StatusApproved, b.Status())

	err = b.Decide(true, now)
	assert.True(t, domain.IsValidation(err), "repeat approval must fail")

	require.NoError(t, b.Decide(false, now))
	assert.Equal(t, StatusRejected, b.Status())

	err = b.Decide(false, now)
	assert.True(t, domain.IsValidation(err), "repeat rejection must fail")
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, StatusWaiting.CanTransitionTo(StatusApproved))
	assert.True(t, StatusWaiting.CanTransitionTo(StatusRejected))
	assert.False(t, StatusApproved.CanTransitionTo(StatusApproved))
	assert.False(t, StatusRejected.CanTransitionTo(StatusWaiting))
	assert.False(t, StatusWaiting.IsDecided())
	assert.True(t, StatusRejected.IsDecided())

	s, err := ParseBookingStatus("APPROVED")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, s)

	_, err = ParseBookingStatus("CANCELLED")
	assert.Error(t, err)
}

func TestActiveAt(t *testing.T) {
	b := ReconstructBooking(1, 10, 2, now.Add(-time.Hour), now.Add(time.Hour), StatusApproved, 1, now, now)

	assert.True(t, b.ActiveAt(now))
	assert.False(t, b.ActiveAt(now.Add(-time.Hour)), "start bound is exclusive")
	assert.False(t, b.ActiveAt(now.Add(time.Hour)), "end bound is exclusive")
}

func TestSummary(t *testing.T) {
	b := ReconstructBooking(7, 10, 2, now, now.Add(time.Hour), StatusWaiting, 3, now, now)

	assert.Equal(t, Summary{ID: 7, Start: now, End: now.Add(time.Hour), BookerID: 2, Status: StatusWaiting}, b.Summary())
}
