package punch

// Customer is customer/site master data.
type Customer struct {
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Code      string `json:"code,omitempty"`
	Place     string `json:"place,omitempty"`
	SuperCode string `json:"super_code,omitempty"`
}

// User is a row of the admin user listing.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	ClientID string `json:"client_id,omitempty"`
}

// TimeSpent is the server's breakdown of a closed punch.
type TimeSpent struct {
	Hours   int `json:"hours,omitempty"`
	Minutes int `json:"minutes,omitempty"`
	Seconds int `json:"seconds,omitempty"`
}

// Total returns the span in seconds.
func (t TimeSpent) Total() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// Log is a punch record as the admin reporting endpoint returns it.
type Log struct {
	Username         string     `json:"username"`
	ClientID         string     `json:"client_id,omitempty"`
	CustomerName     string     `json:"customer_name,omitempty"`
	PunchDate        string     `json:"punch_date,omitempty"`
	PunchInTime      string     `json:"punch_in_time,omitempty"`
	PunchInLocation  string     `json:"punch_in_location,omitempty"`
	PunchOutTime     string     `json:"punch_out_time,omitempty"`
	PunchOutDate     string     `json:"punch_out_date,omitempty"`
	PunchOutLocation string     `json:"punch_out_location,omitempty"`
	TotalTimeSpent   *TimeSpent `json:"total_time_spent,omitempty"`
	PhotoURL         string     `json:"photo_url,omitempty"`
	PhotoFilename    string     `json:"photo_filename,omitempty"`
}

// Open reports whether the logged punch has no punch-out yet.
func (l Log) Open() bool {
	return l.PunchOutTime == ""
}
