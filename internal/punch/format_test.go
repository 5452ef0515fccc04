package punch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTime_DefaultsToIST(t *testing.T) {
	ts := time.Date(2025, 3, 4, 3, 30, 0, 250*int(time.Millisecond), time.UTC)

	assert.Equal(t, "2025-03-04T09:00:00.250+05:30", FormatTime(ts, nil))
	assert.Equal(t, "2025-03-04T03:30:00.250+00:00", FormatTime(ts, time.UTC))
}

func TestDatePart(t *testing.T) {
	assert.Equal(t, "2025-03-04", DatePart("2025-03-04T09:00:00.000+05:30"))
	assert.Equal(t, "2025-03-04", DatePart("2025-03-04"))
	assert.Equal(t, "", DatePart(""))
}

func TestParseTime(t *testing.T) {
	a, err := ParseTime("2025-03-04T09:00:00.000+05:30")
	require.NoError(t, err)
	b, err := ParseTime("2025-03-04T03:30:00Z")
	require.NoError(t, err)
	assert.True(t, a.Equal(b))

	_, err = ParseTime("yesterday")
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	s := FormatLocation(12.9716, 77.5946)
	assert.Equal(t, "12.9716,77.5946", s)

	lat, lng, err := ParseLocation(" 12.9716 , 77.5946 ")
	require.NoError(t, err)
	assert.Equal(t, 12.9716, lat)
	assert.Equal(t, 77.5946, lng)

	for _, bad := range []string{"", "12.9", "a,b", "91,0", "0,181"} {
		_, _, err := ParseLocation(bad)
		assert.ErrorIs(t, err, ErrInvalidLocation, bad)
	}
}

func TestMapsURL(t *testing.T) {
	url, ok := MapsURL("12.97, 77.59")
	assert.True(t, ok)
	assert.Equal(t, "https://www.google.com/maps?q=12.97,77.59", url)

	url, ok = MapsURL("Head office")
	assert.False(t, ok)
	assert.Equal(t, "Head office", url)
}

func TestDurations(t *testing.T) {
	assert.Equal(t, "1h 1m 1s", FormatDuration(3661))
	assert.Equal(t, "0h 0m 0s", FormatDuration(0))
	assert.Equal(t, "0h 0m 0s", FormatDuration(-5))

	assert.Equal(t, "N/A", FormatTimeSpent(0))
	assert.Equal(t, "2h 0m 5s", FormatTimeSpent(7205))

	assert.Equal(t, 3723, TimeSpent{Hours: 1, Minutes: 2, Seconds: 3}.Total())
}

func TestFormatElapsed(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "00:00:00", FormatElapsed(start, start))
	assert.Equal(t, "01:02:03", FormatElapsed(start, start.Add(time.Hour+2*time.Minute+3*time.Second)))
	assert.Equal(t, "26:00:00", FormatElapsed(start, start.Add(26*time.Hour)))
	assert.Equal(t, "00:00:00", FormatElapsed(start, start.Add(-time.Minute)))
}
