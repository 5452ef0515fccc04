package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadAll(t *testing.T) []*Scenario {
	t.Helper()
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		require.NoError(t, err, p)
		scenarios = append(scenarios, sc)
	}
	return scenarios
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadAll(t) {
		t.Run(sc.Name, func(t *testing.T) {
			result, err := Run(t, sc)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
		})
	}
}

func TestScenariosGolden(t *testing.T) {
	for _, name := range []string{
		"cached_punch_skips_server",
		"login_lands_on_punch_out",
		"punch_in_then_out",
		"unauthorized_redirects_once",
	} {
		t.Run(name, func(t *testing.T) {
			sc, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, sc)
			require.NoError(t, err)
			assert.True(t, result.Pass, strings.Join(result.Errors, "\n"))
		})
	}
}

func TestRun_ReportsFailedExpectations(t *testing.T) {
	open := true
	sc := &Scenario{
		Name:        "wrong_expectation",
		Description: "expects an open punch that does not exist",
		Session:     SessionSeed{Token: "t1", User: &UserSeed{ID: "alice"}},
		Backend:     []Reply{{Method: "GET", Path: "/punch/pending", Body: []any{}}},
		Steps: []Step{
			{Do: StepResolve, Expect: &Expect{Route: "punch-out", Open: &open}},
		},
	}

	result, err := Run(t, sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], `route: expected "punch-out", got "punch-in"`)
	assert.Contains(t, result.Errors[1], "open: expected true, got false")
}

func TestRun_UnexpectedErrorIsAFailure(t *testing.T) {
	sc := &Scenario{
		Name:        "missing_backend_route",
		Description: "punch-out against a backend that does not know the route",
		Session:     SessionSeed{Token: "t1", User: &UserSeed{ID: "alice"}},
		Steps: []Step{
			{Do: StepPunchOut, Args: map[string]string{"id": "p1", "location": "1,2"}, Expect: &Expect{}},
		},
	}

	result, err := Run(t, sc)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `error: expected "", got "api"`)
}

func TestReplyEncode(t *testing.T) {
	body, err := Reply{Raw: "not json", Body: map[string]any{"a": 1}}.encode()
	require.NoError(t, err)
	assert.Equal(t, "not json", body)

	body, err = Reply{Body: map[string]any{"a": 1}}.encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, body)

	body, err = Reply{}.encode()
	require.NoError(t, err)
	assert.Empty(t, body)

	assert.Equal(t, 200, Reply{}.status())
	assert.Equal(t, 401, Reply{Status: 401}.status())
}
