package punch

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of a punch record.
type Status string

const (
	// StatusPending marks a punch-in with no punch-out yet.
	StatusPending Status = "PENDING"

	// StatusCompleted marks a closed punch.
	StatusCompleted Status = "COMPLETED"
)

// Record is a single punch session as the backend reports it.
type Record struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Status           Status `json:"status"`
	PunchInTime      string `json:"punchInTime,omitempty"`
	PunchInLocation  string `json:"punchInLocation,omitempty"`
	CustomerName     string `json:"customerName,omitempty"`
	Photo            string `json:"photo,omitempty"`
	PunchOutTime     string `json:"punchOutTime,omitempty"`
	PunchOutLocation string `json:"punchOutLocation,omitempty"`
	PunchOutDate     string `json:"punchOutDate,omitempty"`
}

// IsPending reports whether the record is an open punch.
func (r Record) IsPending() bool {
	return r.Status == StatusPending
}

// UnmarshalJSON accepts the identifier under "id" or "_id", as a string or
// a number, and fills missing fields from a nested "data" object.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var wire struct {
		plain
		ID    flexID          `json:"id"`
		AltID flexID          `json:"_id"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}

	*r = Record(wire.plain)
	r.ID = string(wire.ID)
	if r.ID == "" {
		r.ID = string(wire.AltID)
	}

	if len(wire.Data) > 0 && wire.Data[0] == '{' {
		var nested Record
		if err := json.Unmarshal(wire.Data, &nested); err != nil {
			return fmt.Errorf("punch data: %w", err)
		}
		r.fillFrom(nested)
	}
	return nil
}

// fillFrom copies every field of o into r that r leaves empty.
func (r *Record) fillFrom(o Record) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&r.ID, o.ID)
	fill(&r.Username, o.Username)
	fill(&r.PunchInTime, o.PunchInTime)
	fill(&r.PunchInLocation, o.PunchInLocation)
	fill(&r.CustomerName, o.CustomerName)
	fill(&r.Photo, o.Photo)
	fill(&r.PunchOutTime, o.PunchOutTime)
	fill(&r.PunchOutLocation, o.PunchOutLocation)
	fill(&r.PunchOutDate, o.PunchOutDate)
	if r.Status == "" {
		r.Status = o.Status
	}
}

// flexID decodes a JSON string or number into its string form.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("punch id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// identified reports whether any field that names a punch is set.
func (r Record) identified() bool {
	return r.ID != "" || r.Username != "" || r.Status != ""
}

// FilterPending returns the pending records that belong to username.
// Applying it to its own output yields the same slice.
func FilterPending(records []Record, username string) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Username == username && r.IsPending() {
			out = append(out, r)
		}
	}
	return out
}
