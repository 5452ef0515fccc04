package admin

import "github.com/roach88/punchctl/internal/punch"

// RecentLimit caps Summary.Recent.
const RecentLimit = 5

// Summary is the dashboard overview. Admin is the greeting name; Summarize
// leaves it for the caller to fill.
type Summary struct {
	Admin     string      `json:"admin,omitempty"`
	Users     int         `json:"users"`
	Customers int         `json:"customers"`
	ClientIDs []string    `json:"client_ids"`
	Recent    []punch.Log `json:"recent"`
}

// Summarize builds the dashboard overview. Client ids keep first-seen
// order and skip blanks. Recent holds the first RecentLimit logs in the
// order the backend returned them.
func Summarize(users []punch.User, customers []punch.Customer, logs []punch.Log) Summary {
	seen := make(map[string]bool)
	clients := []string{}
	for _, l := range logs {
		if l.ClientID == "" || seen[l.ClientID] {
			continue
		}
		seen[l.ClientID] = true
		clients = append(clients, l.ClientID)
	}

	recent := logs[:min(len(logs), RecentLimit)]
	if recent == nil {
		recent = []punch.Log{}
	}

	return Summary{
		Users:     len(users),
		Customers: len(customers),
		ClientIDs: clients,
		Recent:    recent,
	}
}
