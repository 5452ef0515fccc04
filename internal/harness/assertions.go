package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/punchctl/internal/route"
	"github.com/roach88/punchctl/internal/session"
	"github.com/roach88/punchctl/internal/testutil"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		switch ev.Type {
		case EventStep:
			fmt.Fprintf(&buf, "  [%d] %s %v\n", ev.Seq, ev.Action, ev.Args)
		case EventRequest:
			fmt.Fprintf(&buf, "  [%d]   -> %s\n", ev.Seq, ev.Request)
		case EventNavigate:
			fmt.Fprintf(&buf, "  [%d]   => %s\n", ev.Seq, ev.Route)
		}
	}
	return buf.String()
}

// AssertionContext gives assertions access to the run's collaborators.
type AssertionContext struct {
	Ctx     context.Context
	Backend *testutil.Backend
	Session *session.Store
	Nav     *route.Recorder
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertRequestCount:
			err = assertRequestCount(result.Trace, a, actx)
		case AssertRequestOrder:
			err = assertRequestOrder(result.Trace, a)
		case AssertRequestAuth:
			err = assertRequestAuth(result.Trace, a, actx)
		case AssertNavigations:
			err = assertNavigations(result.Trace, a, actx)
		case AssertSession:
			err = assertSession(result.Trace, a, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func assertRequestCount(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	got := actx.Backend.Count(a.Method, a.Path)
	if got == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRequestCount,
		Expected: fmt.Sprintf("%s %s requested %d time(s)", a.Method, a.Path, *a.Count),
		Actual:   fmt.Sprintf("requested %d time(s)", got),
		Trace:    trace,
	}
}

// assertRequestOrder matches on method and path; query strings are ignored.
func assertRequestOrder(trace []TraceEvent, a Assertion) error {
	var seen []string
	for _, ev := range trace {
		if ev.Type == EventRequest {
			line, _, _ := strings.Cut(ev.Request, "?")
			seen = append(seen, line)
		}
	}

	next := 0
	for _, line := range seen {
		if next < len(a.Requests) && line == a.Requests[next] {
			next++
		}
	}
	if next == len(a.Requests) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRequestOrder,
		Expected: strings.Join(a.Requests, " then "),
		Actual:   fmt.Sprintf("%q not found in order in %v", a.Requests[next], seen),
		Trace:    trace,
	}
}

func assertRequestAuth(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	req, ok := actx.Backend.Last(a.Method, a.Path)
	if !ok {
		return &AssertionError{
			Type:     AssertRequestAuth,
			Expected: fmt.Sprintf("%s %s requested", a.Method, a.Path),
			Actual:   "never requested",
			Trace:    trace,
		}
	}

	want := ""
	if a.Token != "" {
		want = "Bearer " + a.Token
	}
	if req.Authorization == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertRequestAuth,
		Expected: fmt.Sprintf("Authorization %q", want),
		Actual:   fmt.Sprintf("Authorization %q", req.Authorization),
		Trace:    trace,
	}
}

func assertNavigations(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	var got []string
	for _, hop := range actx.Nav.Hops() {
		got = append(got, string(hop))
	}
	if slices.Equal(got, a.Routes) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNavigations,
		Expected: fmt.Sprintf("redirects %v", a.Routes),
		Actual:   fmt.Sprintf("redirects %v", got),
		Trace:    trace,
	}
}

func assertSession(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	want := a.Session
	var problems []string

	if want.Credential != nil {
		has, err := actx.Session.HasCredential(actx.Ctx)
		if err != nil {
			return fmt.Errorf("session assertion: %w", err)
		}
		if has != *want.Credential {
			problems = append(problems, fmt.Sprintf("credential present=%v", has))
		}
	}

	if want.CachedPunch != nil {
		rec, ok, err := actx.Session.ReadCachedPunch(actx.Ctx)
		if err != nil {
			return fmt.Errorf("session assertion: %w", err)
		}
		got := ""
		if ok {
			got = rec.ID
		}
		if got != *want.CachedPunch {
			problems = append(problems, fmt.Sprintf("cached punch %q", got))
		}
	}

	if want.User != nil {
		user, ok, err := actx.Session.User(actx.Ctx)
		if err != nil {
			return fmt.Errorf("session assertion: %w", err)
		}
		got := ""
		if ok {
			got = user.ID
		}
		if got != *want.User {
			problems = append(problems, fmt.Sprintf("user %q", got))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertSession,
		Expected: describeSession(want),
		Actual:   strings.Join(problems, ", "),
		Trace:    trace,
	}
}

func describeSession(s *SessionExpect) string {
	var parts []string
	if s.Credential != nil {
		parts = append(parts, fmt.Sprintf("credential present=%v", *s.Credential))
	}
	if s.CachedPunch != nil {
		parts = append(parts, fmt.Sprintf("cached punch %q", *s.CachedPunch))
	}
	if s.User != nil {
		parts = append(parts, fmt.Sprintf("user %q", *s.User))
	}
	return strings.Join(parts, ", ")
}
