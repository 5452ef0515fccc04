package admin

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/punchctl/internal/punch"
)

var folder = cases.Fold()

// Fold normalizes s for case-insensitive comparison. Composed and
// decomposed forms of the same text fold to the same string.
func Fold(s string) string {
	return folder.String(norm.NFC.String(s))
}

// Match reports whether query occurs in any of fields, ignoring case. An
// empty query matches everything.
func Match(query string, fields ...string) bool {
	q := Fold(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(Fold(f), q) {
			return true
		}
	}
	return false
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// SearchUsers filters users by user id.
func SearchUsers(users []punch.User, query string) []punch.User {
	return filter(users, func(u punch.User) bool { return Match(query, u.ID) })
}

// SearchCustomers filters customers by name.
func SearchCustomers(customers []punch.Customer, query string) []punch.Customer {
	return filter(customers, func(c punch.Customer) bool { return Match(query, c.Name) })
}

// SearchLogs filters punch logs by username or customer.
func SearchLogs(logs []punch.Log, query string) []punch.Log {
	return filter(logs, func(l punch.Log) bool { return Match(query, l.Username, l.CustomerName) })
}
