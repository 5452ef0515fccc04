// Package admin derives read-only views from data the backend returns:
// filtered and paged listings, the dashboard summary, spreadsheet export
// and plain-text tables. The punch history table is shared with the
// non-admin commands.
package admin
