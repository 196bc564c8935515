package kafka

import (
	"encoding/json"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCloudEvent_RoundTrip(t *testing.T) {
	type payload struct {
		BookingID string `json:"booking_id"`
	}

	ce, err := NewCloudEvent("service-rental", "booking.approved", payload{BookingID: "b-1"})
	require.NoError(t, err)

	_, err = ulid.Parse(ce.ID)
	assert.NoError(t, err, "event id should be a ULID")
	assert.Equal(t, "1.0", ce.SpecVersion)

	raw, err := json.Marshal(ce)
	require.NoError(t, err)

	parsed, err := ParseCloudEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "booking.approved", parsed.Type)

	var got payload
	require.NoError(t, parsed.ParseData(&got))
	assert.Equal(t, "b-1", got.BookingID)
}

func TestParseCloudEvent_Rejects(t *testing.T) {
	_, err := ParseCloudEvent([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseCloudEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}
