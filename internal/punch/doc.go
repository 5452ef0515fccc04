// Package punch holds the attendance domain types shared by the client:
// punch records, customers, users and admin punch logs.
//
// # Record identity
//
// Backend revisions disagree on where a punch identifier lives. A record
// decodes its ID from "id", then "_id", then the same two keys nested under
// "data". Numeric identifiers are kept in their decimal string form.
//
// # Pending punches
//
// GET /punch/pending has been observed returning a bare array, an object
// wrapping the array under "data", and a single bare object. DecodeRecords
// is the only place that knows about those shapes; callers always receive
// a slice.
package punch
