package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloudEventRoundTrip(t *testing.T) {
	type payload struct {
		BookingID int64  `json:"bookingId"`
		Status    string `json:"status"`
	}

	ce, err := NewCloudEvent("service-booking", "booking.created", payload{BookingID: 5, Status: "WAITING"})
	require.NoError(t, err)
	assert.Equal(t, "1.0", ce.SpecVersion)
	assert.NotEmpty(t, ce.ID)
	assert.False(t, ce.Time.IsZero())

	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "booking.created", parsed.Type)

	var got payload
	require.NoError(t, parsed.ParseData(&got))
	assert.Equal(t, payload{BookingID: 5, Status: "WAITING"}, got)
}

func TestParseCloudEvent_Rejects(t *testing.T) {
	_, err := ParseCloudEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"specversion":"1.0","data":{}}`))
	assert.Error(t, err)
}
