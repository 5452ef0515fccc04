package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted punch flow.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session seeds the store before the first step.
	Session SessionSeed `yaml:"session,omitempty"`

	// Backend lists the canned replies. Unlisted routes answer 404.
	Backend []Reply `yaml:"backend,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// SessionSeed is the initial session state.
type SessionSeed struct {
	Token       string         `yaml:"token,omitempty"`
	User        *UserSeed      `yaml:"user,omitempty"`
	CachedPunch map[string]any `yaml:"cached_punch,omitempty"`
}

// UserSeed is the signed-in identity.
type UserSeed struct {
	ID       string `yaml:"id"`
	Role     string `yaml:"role,omitempty"`
	ClientID string `yaml:"client_id,omitempty"`
}

// Reply is a canned backend response. Body is encoded as JSON; Raw is
// sent verbatim and wins over Body.
type Reply struct {
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
	Status int    `yaml:"status,omitempty"`
	Body   any    `yaml:"body,omitempty"`
	Raw    string `yaml:"raw,omitempty"`
}

// Step is one client operation.
type Step struct {
	Do     string            `yaml:"do"`
	Args   map[string]string `yaml:"args,omitempty"`
	Expect *Expect           `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step. Only fields that are set are
// compared, except Error: an empty Error requires success.
type Expect struct {
	Route   string `yaml:"route,omitempty"`
	Open    *bool  `yaml:"open,omitempty"`
	Source  string `yaml:"source,omitempty"`
	PunchID string `yaml:"punch_id,omitempty"`
	Error   string `yaml:"error,omitempty"`
}

// Assertion validates requests, navigations or the final session.
type Assertion struct {
	Type string `yaml:"type"`

	// Method and Path select requests (request_count, request_auth).
	Method string `yaml:"method,omitempty"`
	Path   string `yaml:"path,omitempty"`

	// Count is the expected number of matching requests.
	Count *int `yaml:"count,omitempty"`

	// Requests is the expected order, each as "METHOD /path".
	Requests []string `yaml:"requests,omitempty"`

	// Token is the expected bearer token of request_auth.
	Token string `yaml:"token,omitempty"`

	// Routes is the expected redirect list.
	Routes []string `yaml:"routes,omitempty"`

	// Session is the expected final session state.
	Session *SessionExpect `yaml:"session,omitempty"`
}

// SessionExpect describes the session after the last step. Nil fields are
// not checked; an empty CachedPunch or User means none.
type SessionExpect struct {
	Credential  *bool   `yaml:"credential,omitempty"`
	CachedPunch *string `yaml:"cached_punch,omitempty"`
	User        *string `yaml:"user,omitempty"`
}

// Step names.
const (
	StepResolve  = "resolve"
	StepGuard    = "guard"
	StepLogin    = "login"
	StepPunchIn  = "punch_in"
	StepPunchOut = "punch_out"
	StepLogout   = "logout"
)

// Assertion type constants.
const (
	AssertRequestCount = "request_count"
	AssertRequestOrder = "request_order"
	AssertRequestAuth  = "request_auth"
	AssertNavigations  = "navigations"
	AssertSession      = "session"
)

var knownSteps = map[string]bool{
	StepResolve: true, StepGuard: true, StepLogin: true,
	StepPunchIn: true, StepPunchOut: true, StepLogout: true,
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so a typo cannot silently disable a check.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, r := range s.Backend {
		if r.Method == "" || r.Path == "" {
			return fmt.Errorf("backend[%d]: method and path are required", i)
		}
	}
	for i, st := range s.Steps {
		if !knownSteps[st.Do] {
			return fmt.Errorf("steps[%d]: unknown step %q", i, st.Do)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertRequestCount:
		if a.Method == "" || a.Path == "" || a.Count == nil {
			return fmt.Errorf("request_count requires method, path and count")
		}
	case AssertRequestOrder:
		if len(a.Requests) < 2 {
			return fmt.Errorf("request_order requires at least 2 requests")
		}
	case AssertRequestAuth:
		if a.Method == "" || a.Path == "" {
			return fmt.Errorf("request_auth requires method and path")
		}
	case AssertNavigations:
		// An empty list asserts there was no redirect.
	case AssertSession:
		if a.Session == nil {
			return fmt.Errorf("session assertion requires session")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
