package admin

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/roach88/punchctl/internal/punch"
)

type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cells ...string) {
	for i, c := range cells {
		if c == "" {
			cells[i] = "-"
		}
	}
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

// WriteUsers renders users as an aligned text table.
func WriteUsers(w io.Writer, users []punch.User) error {
	t := newTable(w, "USER ID", "NAME", "ROLE", "CLIENT ID")
	for _, u := range users {
		t.row(u.ID, u.Name, u.Role, u.ClientID)
	}
	return t.flush()
}

// WriteCustomers renders customers as an aligned text table.
func WriteCustomers(w io.Writer, customers []punch.Customer) error {
	t := newTable(w, "CUSTOMER", "CODE", "PLACE", "ADDRESS")
	for _, c := range customers {
		t.row(c.Name, c.Code, c.Place, c.Address)
	}
	return t.flush()
}

// WriteLogs renders punch logs as an aligned text table.
func WriteLogs(w io.Writer, logs []punch.Log) error {
	t := newTable(w, "DATE", "USER", "CUSTOMER", "PUNCH IN", "PUNCH OUT", "TOTAL")
	for _, l := range logs {
		t.row(l.PunchDate, l.Username, l.CustomerName, l.PunchInTime, l.PunchOutTime, totalTime(l))
	}
	return t.flush()
}

// WriteSummary renders the dashboard overview followed by the recent logs.
func WriteSummary(w io.Writer, s Summary) error {
	clients := "-"
	if len(s.ClientIDs) > 0 {
		clients = strings.Join(s.ClientIDs, ", ")
	}
	if s.Admin != "" {
		fmt.Fprintf(w, "Welcome, %s\n\n", s.Admin)
	}
	fmt.Fprintf(w, "Users:      %d\n", s.Users)
	fmt.Fprintf(w, "Customers:  %d\n", s.Customers)
	fmt.Fprintf(w, "Client IDs: %s\n", clients)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recent punches:")
	return WriteLogs(w, s.Recent)
}

// WritePager renders the "Page N of M" footer.
func WritePager(w io.Writer, current, pages int) {
	fmt.Fprintf(w, "Page %d of %d\n", current, pages)
}

// WriteHistory renders a user's own punches, newest first as given.
func WriteHistory(w io.Writer, records []punch.Record) error {
	t := newTable(w, "ID", "CUSTOMER", "PUNCH IN", "PUNCH OUT", "STATUS")
	for _, r := range records {
		t.row(r.ID, r.CustomerName, r.PunchInTime, r.PunchOutTime, string(r.Status))
	}
	return t.flush()
}
