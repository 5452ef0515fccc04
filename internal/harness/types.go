package harness

// Trace event types.
const (
	EventStep     = "step"
	EventRequest  = "request"
	EventNavigate = "navigate"
)

// TraceEvent is one step, backend request or redirect, in the order they
// happened. Requests and redirects follow the step that caused them.
type TraceEvent struct {
	Seq     int               `json:"seq"`
	Type    string            `json:"type"`
	Action  string            `json:"action,omitempty"`
	Args    map[string]string `json:"args,omitempty"`
	Outcome *Outcome          `json:"outcome,omitempty"`
	Request string            `json:"request,omitempty"`
	Auth    string            `json:"auth,omitempty"`
	Route   string            `json:"route,omitempty"`
}

// Outcome is what a step produced.
type Outcome struct {
	Route   string `json:"route,omitempty"`
	Open    *bool  `json:"open,omitempty"`
	Source  string `json:"source,omitempty"`
	PunchID string `json:"punch_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	Trace []TraceEvent `json:"trace"`

	// Errors explains each failure. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (r *Result) add(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
