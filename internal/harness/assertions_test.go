package harness

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/punchctl/internal/route"
	"github.com/roach88/punchctl/internal/session"
	"github.com/roach88/punchctl/internal/testutil"
)

func newAssertionContext(t *testing.T) *AssertionContext {
	t.Helper()
	st, err := session.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return &AssertionContext{
		Ctx:     context.Background(),
		Backend: testutil.NewBackend(t),
		Session: st,
		Nav:     &route.Recorder{},
	}
}

func get(t *testing.T, url, token string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
}

func intPtr(n int) *int { return &n }
func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func TestAssertRequestCount(t *testing.T) {
	actx := newAssertionContext(t)
	actx.Backend.Handle(http.MethodGet, "/punch/pending", http.StatusOK, `[]`)
	get(t, actx.Backend.URL()+"/punch/pending", "")

	ok := Assertion{Type: AssertRequestCount, Method: "GET", Path: "/punch/pending", Count: intPtr(1)}
	bad := Assertion{Type: AssertRequestCount, Method: "GET", Path: "/punch/pending", Count: intPtr(0)}

	errs := EvaluateAssertions(NewResult(), []Assertion{ok, bad}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requested 1 time(s)")
}

func TestAssertRequestOrder(t *testing.T) {
	result := NewResult()
	result.add(TraceEvent{Type: EventStep, Action: StepLogin})
	result.add(TraceEvent{Type: EventRequest, Request: "POST /auth/login"})
	result.add(TraceEvent{Type: EventRequest, Request: "GET /punch/completed?limit=10"})
	result.add(TraceEvent{Type: EventRequest, Request: "GET /punch/pending"})

	inOrder := Assertion{Type: AssertRequestOrder, Requests: []string{"POST /auth/login", "GET /punch/pending"}}
	withQuery := Assertion{Type: AssertRequestOrder, Requests: []string{"GET /punch/completed", "GET /punch/pending"}}
	reversed := Assertion{Type: AssertRequestOrder, Requests: []string{"GET /punch/pending", "POST /auth/login"}}

	errs := EvaluateAssertions(result, []Assertion{inOrder, withQuery, reversed}, newAssertionContext(t))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Assertion failed: request_order")
	assert.Contains(t, errs[0], "Full trace:")
	assert.Contains(t, errs[0], "[1] login")
}

func TestAssertRequestAuth(t *testing.T) {
	actx := newAssertionContext(t)
	actx.Backend.Handle(http.MethodGet, "/punch/pending", http.StatusOK, `[]`)
	get(t, actx.Backend.URL()+"/punch/pending", "t1")

	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertRequestAuth, Method: "GET", Path: "/punch/pending", Token: "t1"},
		{Type: AssertRequestAuth, Method: "GET", Path: "/punch/pending"},
		{Type: AssertRequestAuth, Method: "POST", Path: "/punch/punch-in", Token: "t1"},
	}, actx)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], `Authorization "Bearer t1"`)
	assert.Contains(t, errs[1], "never requested")
}

func TestAssertNavigations(t *testing.T) {
	actx := newAssertionContext(t)

	assert.Empty(t, EvaluateAssertions(NewResult(), []Assertion{{Type: AssertNavigations}}, actx))

	actx.Nav.Navigate(route.Login)
	actx.Nav.Navigate(route.Login)
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertNavigations, Routes: []string{"login"}}}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "redirects [login login]")
}

func TestAssertSession(t *testing.T) {
	actx := newAssertionContext(t)
	ctx := actx.Ctx
	require.NoError(t, actx.Session.SetCredential(ctx, "t1"))
	require.NoError(t, actx.Session.SetUser(ctx, session.Identity{ID: "alice"}))

	match := Assertion{Type: AssertSession, Session: &SessionExpect{
		Credential:  boolPtr(true),
		CachedPunch: strPtr(""),
		User:        strPtr("alice"),
	}}
	mismatch := Assertion{Type: AssertSession, Session: &SessionExpect{
		Credential: boolPtr(false),
		User:       strPtr("bob"),
	}}

	errs := EvaluateAssertions(NewResult(), []Assertion{match, mismatch}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "credential present=true")
	assert.Contains(t, errs[0], `user "alice"`)
}
