package admin

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/punchctl/internal/punch"
)

func fixtureUsers() []punch.User {
	return []punch.User{
		{ID: "alice", Name: "Alice", Role: "user", ClientID: "acme"},
		{ID: "bob", Role: "admin"},
	}
}

func fixtureCustomers() []punch.Customer {
	return []punch.Customer{
		{Name: "Acme Corp", Code: "AC01", Place: "Kochi", Address: "1 Main Road"},
		{Name: "Globex", Place: "Chennai"},
		{Name: "Initech"},
	}
}

func fixtureLogs() []punch.Log {
	return []punch.Log{
		{
			Username:       "alice",
			ClientID:       "acme",
			CustomerName:   "Acme Corp",
			PunchDate:      "2025-01-15",
			PunchInTime:    "09:00",
			PunchOutTime:   "17:30",
			TotalTimeSpent: &punch.TimeSpent{Hours: 8, Minutes: 30},
			PhotoURL:       "https://cdn.example/p1.jpg",
		},
		{
			Username:     "bob",
			ClientID:     "globex",
			CustomerName: "Globex",
			PunchDate:    "2025-01-15",
			PunchInTime:  "10:15",
		},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields []string
		want   bool
	}{
		{"empty query", "", []string{"anything"}, true},
		{"blank query", "   ", []string{"anything"}, true},
		{"case-insensitive", "ALI", []string{"alice"}, true},
		{"second field", "acme", []string{"bob", "Acme Corp"}, true},
		{"no match", "zed", []string{"alice", "bob"}, false},
		{"greek final sigma", "\u039b\u039f\u0393\u039f\u03a3", []string{"\u03bb\u03bf\u03b3\u03bf\u03c2"}, true},
		{"decomposed accent", "Jose\u0301", []string{"JOS\u00c9"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.query, tt.fields...))
		})
	}
}

func TestSearch(t *testing.T) {
	users := SearchUsers(fixtureUsers(), "BO")
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].ID)

	customers := SearchCustomers(fixtureCustomers(), "glob")
	require.Len(t, customers, 1)
	assert.Equal(t, "Globex", customers[0].Name)

	logs := SearchLogs(fixtureLogs(), "acme")
	require.Len(t, logs, 1)
	assert.Equal(t, "alice", logs[0].Username)

	assert.Empty(t, SearchUsers(fixtureUsers(), "nobody"))
	assert.NotNil(t, SearchUsers(nil, "x"))
}

func TestPage(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name        string
		page, size  int
		wantFirst   int
		wantLen     int
		wantPages   int
		wantCurrent int
	}{
		{"first page", 1, 10, 0, 10, 3, 1},
		{"last partial page", 3, 10, 20, 3, 3, 3},
		{"past the end clamps", 9, 10, 20, 3, 3, 3},
		{"zero clamps to first", 0, 10, 0, 10, 3, 1},
		{"default size", 2, 0, 10, 10, 3, 2},
		{"one big page", 1, 50, 0, 23, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, pages, current := Page(items, tt.page, tt.size)
			require.Len(t, rows, tt.wantLen)
			assert.Equal(t, tt.wantFirst, rows[0])
			assert.Equal(t, tt.wantPages, pages)
			assert.Equal(t, tt.wantCurrent, current)
		})
	}
}

func TestPageEmpty(t *testing.T) {
	rows, pages, current := Page([]string{}, 4, 10)
	assert.Empty(t, rows)
	assert.Equal(t, 1, pages)
	assert.Equal(t, 1, current)
}

func TestSummarize(t *testing.T) {
	logs := fixtureLogs()
	for i := 0; i < 5; i++ {
		logs = append(logs, punch.Log{Username: "carol", ClientID: "acme", PunchInTime: strconv.Itoa(i)})
	}

	s := Summarize(fixtureUsers(), fixtureCustomers(), logs)

	assert.Equal(t, 2, s.Users)
	assert.Equal(t, 3, s.Customers)
	assert.Equal(t, []string{"acme", "globex"}, s.ClientIDs)
	require.Len(t, s.Recent, RecentLimit)
	assert.Equal(t, "alice", s.Recent[0].Username)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil, nil)
	assert.Zero(t, s.Users)
	assert.Empty(t, s.ClientIDs)
	assert.NotNil(t, s.Recent)
}

func TestExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, fixtureLogs()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "Photo URL", rows[0][10])
	assert.Equal(t, []string{
		"2025-01-15", "alice", "acme", "Acme Corp",
		"09:00", "", "17:30", "", "",
		"8h 30m 0s", "https://cdn.example/p1.jpg",
	}, rows[1])
	assert.Equal(t, "bob", rows[2][1])
	assert.Equal(t, "N/A", rows[2][9])
}

func TestWriteUsersGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteUsers(&buf, fixtureUsers()))
	newGoldie(t).Assert(t, "users_table", buf.Bytes())
}

func TestWriteCustomersGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCustomers(&buf, fixtureCustomers()[:2]))
	newGoldie(t).Assert(t, "customers_table", buf.Bytes())
}

func TestWriteLogsGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLogs(&buf, fixtureLogs()))
	newGoldie(t).Assert(t, "logs_table", buf.Bytes())
}

func TestWriteSummaryGolden(t *testing.T) {
	var buf bytes.Buffer
	s := Summarize(fixtureUsers(), fixtureCustomers(), fixtureLogs())
	require.NoError(t, WriteSummary(&buf, s))
	newGoldie(t).Assert(t, "summary", buf.Bytes())
}

func TestWritePager(t *testing.T) {
	var buf bytes.Buffer
	WritePager(&buf, 2, 5)
	assert.Equal(t, "Page 2 of 5\n", buf.String())
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistory(&buf, []punch.Record{
		{ID: "p1", CustomerName: "Acme", PunchInTime: "09:00", PunchOutTime: "17:00", Status: punch.StatusCompleted},
		{ID: "p2", CustomerName: "Globex", PunchInTime: "10:00", Status: punch.StatusPending},
	}))
	assert.Equal(t,
		"ID  CUSTOMER  PUNCH IN  PUNCH OUT  STATUS\n"+
			"p1  Acme      09:00     17:00      COMPLETED\n"+
			"p2  Globex    10:00     -          PENDING\n",
		buf.String())
}

func TestWriteSummaryGreeting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Summary{Admin: "Ravi"}))
	assert.True(t, strings.HasPrefix(buf.String(), "Welcome, Ravi\n\nUsers:      0\n"), buf.String())
}
