package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/roach88/punchctl/internal/api"
	"github.com/roach88/punchctl/internal/gateway"
	"github.com/roach88/punchctl/internal/punch"
	"github.com/roach88/punchctl/internal/reconcile"
	"github.com/roach88/punchctl/internal/route"
	"github.com/roach88/punchctl/internal/session"
	"github.com/roach88/punchctl/internal/testutil"
)

// Default timestamps for punch steps that name none.
const (
	DefaultPunchInTime  = "2025-01-15T09:00:00.000+05:30"
	DefaultPunchOutTime = "2025-01-15T17:30:00.000+05:30"
)

// Harness wires one client stack to one fake backend.
type Harness struct {
	backend *testutil.Backend
	store   *session.Store
	nav     *route.Recorder
	client  *api.Client
	rec     *reconcile.Reconciler

	seenRequests int
	seenHops     int
}

// Run executes a scenario in a fresh in-memory session against a fresh
// fake backend. The returned error is reserved for scenarios that cannot
// run at all; failed expectations are reported in the Result.
func Run(t testing.TB, scenario *Scenario) (*Result, error) {
	t.Helper()

	st, err := session.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory session: %w", err)
	}
	defer st.Close()

	backend := testutil.NewBackend(t)
	for _, r := range scenario.Backend {
		body, err := r.encode()
		if err != nil {
			return nil, fmt.Errorf("backend %s %s: %w", r.Method, r.Path, err)
		}
		backend.Handle(r.Method, r.Path, r.status(), body)
	}

	nav := &route.Recorder{}
	log := zap.NewNop()
	gw := gateway.New(gateway.Config{
		BaseURL:    backend.URL(),
		RequestIDs: gateway.NewFixedGenerator(scenario.Name),
	}, st, nav, log)
	client := api.New(gw, st, api.WithLogger(log))

	h := &Harness{
		backend: backend,
		store:   st,
		nav:     nav,
		client:  client,
		rec:     reconcile.New(st, client, log),
	}

	ctx := context.Background()
	if err := h.seed(ctx, scenario.Session); err != nil {
		return nil, fmt.Errorf("failed to seed session: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		out, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Do, err)
		}

		result.add(TraceEvent{Type: EventStep, Action: step.Do, Args: step.Args, Outcome: &out})
		h.traceSideEffects(result)

		if step.Expect != nil {
			for _, msg := range compareOutcome(*step.Expect, out) {
				result.AddError(fmt.Sprintf("step %d (%s): %s", i, step.Do, msg))
			}
		}
	}

	actx := &AssertionContext{Ctx: ctx, Backend: backend, Session: st, Nav: nav}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

func (r Reply) status() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

func (r Reply) encode() (string, error) {
	if r.Raw != "" {
		return r.Raw, nil
	}
	if r.Body == nil {
		return "", nil
	}
	b, err := json.Marshal(r.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *Harness) seed(ctx context.Context, seed SessionSeed) error {
	if seed.Token != "" {
		if err := h.store.SetCredential(ctx, seed.Token); err != nil {
			return err
		}
	}
	if seed.User != nil {
		id := session.Identity{ID: seed.User.ID, Role: seed.User.Role, ClientID: seed.User.ClientID}
		if err := h.store.SetUser(ctx, id); err != nil {
			return err
		}
	}
	if seed.CachedPunch != nil {
		b, err := json.Marshal(seed.CachedPunch)
		if err != nil {
			return err
		}
		var rec punch.Record
		if err := json.Unmarshal(b, &rec); err != nil {
			return fmt.Errorf("cached_punch: %w", err)
		}
		if err := h.store.CachePunch(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) execute(ctx context.Context, step Step) (Outcome, error) {
	arg := func(key, def string) string {
		if v, ok := step.Args[key]; ok {
			return v
		}
		return def
	}

	switch step.Do {
	case StepResolve:
		state := h.rec.Resolve(ctx)
		return fromState(state.Route(), state), nil

	case StepGuard:
		to, state := h.rec.Guard(ctx, route.Route(arg("want", "")))
		return fromState(to, state), nil

	case StepLogin:
		_, err := h.client.Login(ctx, api.Credentials{
			ID:       arg("id", ""),
			Password: arg("password", ""),
			ClientID: arg("client_id", ""),
		})
		if err != nil {
			return Outcome{Error: errorKind(err)}, nil
		}
		to, state := h.rec.Guard(ctx, "")
		return fromState(to, state), nil

	case StepPunchIn:
		rec, err := h.client.PunchIn(ctx, punch.PunchIn{
			Location:     arg("location", ""),
			Time:         arg("time", DefaultPunchInTime),
			CustomerName: arg("customer", ""),
			Photo:        arg("photo", ""),
		}, nil)
		if err != nil {
			return Outcome{Error: errorKind(err)}, nil
		}
		return Outcome{Route: string(route.PunchOut), PunchID: rec.ID}, nil

	case StepPunchOut:
		id := arg("id", "")
		if id == "" {
			if cached, ok, err := h.store.ReadCachedPunch(ctx); err == nil && ok {
				id = cached.ID
			}
		}
		rec, err := h.client.PunchOut(ctx, punch.PunchOut{
			ID:       id,
			Time:     arg("time", DefaultPunchOutTime),
			Location: arg("location", ""),
		})
		if err != nil {
			return Outcome{Error: errorKind(err)}, nil
		}
		return Outcome{Route: string(route.PunchIn), PunchID: rec.ID}, nil

	case StepLogout:
		if err := h.client.Logout(ctx); err != nil {
			return Outcome{Error: errorKind(err)}, nil
		}
		return Outcome{Route: string(route.Login)}, nil
	}
	return Outcome{}, fmt.Errorf("unknown step %q", step.Do)
}

func fromState(to route.Route, state reconcile.State) Outcome {
	open := state.Open
	return Outcome{
		Route:   string(to),
		Open:    &open,
		Source:  string(state.Source),
		PunchID: state.Punch.ID,
	}
}

// errorKind classifies a client error for comparison with Expect.Error.
func errorKind(err error) string {
	var apiErr *gateway.APIError
	switch {
	case err == nil:
		return ""
	case gateway.IsUnauthorized(err):
		return "unauthorized"
	case punch.IsValidationError(err):
		return "validation"
	case errors.As(err, &apiErr):
		return "api"
	default:
		return "error"
	}
}

// traceSideEffects appends the requests and redirects caused by the last
// step.
func (h *Harness) traceSideEffects(result *Result) {
	reqs := h.backend.Requests()
	for _, r := range reqs[h.seenRequests:] {
		line := r.Method + " " + strings.TrimPrefix(r.Path, testutil.APIPrefix)
		if r.RawQuery != "" {
			line += "?" + r.RawQuery
		}
		result.add(TraceEvent{
			Type:    EventRequest,
			Request: line,
			Auth:    strings.TrimPrefix(r.Authorization, "Bearer "),
		})
	}
	h.seenRequests = len(reqs)

	hops := h.nav.Hops()
	for _, to := range hops[h.seenHops:] {
		result.add(TraceEvent{Type: EventNavigate, Route: string(to)})
	}
	h.seenHops = len(hops)
}

func compareOutcome(want Expect, got Outcome) []string {
	var msgs []string
	if want.Error != got.Error {
		msgs = append(msgs, fmt.Sprintf("error: expected %q, got %q", want.Error, got.Error))
	}
	if want.Route != "" && want.Route != got.Route {
		msgs = append(msgs, fmt.Sprintf("route: expected %q, got %q", want.Route, got.Route))
	}
	if want.Open != nil && (got.Open == nil || *want.Open != *got.Open) {
		msgs = append(msgs, fmt.Sprintf("open: expected %v, got %v", *want.Open, derefBool(got.Open)))
	}
	if want.Source != "" && want.Source != got.Source {
		msgs = append(msgs, fmt.Sprintf("source: expected %q, got %q", want.Source, got.Source))
	}
	if want.PunchID != "" && want.PunchID != got.PunchID {
		msgs = append(msgs, fmt.Sprintf("punch_id: expected %q, got %q", want.PunchID, got.PunchID))
	}
	return msgs
}

func derefBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
