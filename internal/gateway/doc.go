// Package gateway is the single HTTP pipeline between the client and the
// attendance backend.
//
// Every request carries the stored credential as a bearer token when one
// exists, and an X-Request-ID for correlation in backend logs. Responses
// with a 2xx status are returned untouched.
//
// # Rejected credentials
//
// A 401 clears the stored credential and the cached punch, then asks the
// navigator for the login screen. This happens once per rejected token:
// a burst of 401s for the same token produces one wipe and one redirect.
// The caller still receives the error.
//
// Every other failure (transport errors, 4xx, 5xx) is returned as is.
// There are no retries.
package gateway
