package punch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IST is the default zone punch timestamps are written in.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// TimeLayout is ISO-8601 with milliseconds and a numeric offset.
const TimeLayout = "2006-01-02T15:04:05.000-07:00"

// ErrInvalidLocation is returned for a location that is not "lat,lng".
var ErrInvalidLocation = errors.New(`location must be "lat,lng"`)

// FormatTime renders t in loc using TimeLayout. A nil loc means IST.
func FormatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = IST
	}
	return t.In(loc).Format(TimeLayout)
}

// DatePart returns the calendar date of an ISO timestamp.
func DatePart(ts string) string {
	date, _, _ := strings.Cut(ts, "T")
	return date
}

// ParseTime accepts TimeLayout and plain RFC 3339.
func ParseTime(ts string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, ts); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, ts)
}

// FormatLocation joins coordinates as "lat,lng".
func FormatLocation(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

// ParseLocation splits a "lat,lng" string and range-checks both values.
func ParseLocation(s string) (lat, lng float64, err error) {
	latStr, lngStr, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, ErrInvalidLocation
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("%w: out of range", ErrInvalidLocation)
	}
	return lat, lng, nil
}

// MapsURL links a "lat,lng" location to Google Maps. Anything else is
// returned unchanged with ok=false.
func MapsURL(location string) (url string, ok bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return location, false
	}
	lat := strings.TrimSpace(parts[0])
	lng := strings.TrimSpace(parts[1])
	return "https://www.google.com/maps?q=" + lat + "," + lng, true
}

// FormatDuration renders seconds as "Hh Mm Ss".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatTimeSpent is FormatDuration with "N/A" for an unknown (zero) span.
func FormatTimeSpent(seconds int) string {
	if seconds <= 0 {
		return "N/A"
	}
	return FormatDuration(seconds)
}

// FormatElapsed renders the time between start and now as "HH:MM:SS".
func FormatElapsed(start, now time.Time) string {
	d := now.Sub(start)
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
