// Package harness runs punch-flow scenarios against a fake backend.
//
// A scenario seeds the session store, scripts the backend's replies, then
// drives the client through a list of steps and checks what happened:
//
//	name: server_pending_is_cached
//	description: "A pending punch found on the server is cached"
//	session:
//	  token: t1
//	  user: { id: alice }
//	backend:
//	  - method: GET
//	    path: /punch/pending
//	    body: [{ _id: p9, username: alice, status: PENDING }]
//	steps:
//	  - do: resolve
//	    expect: { route: punch-out, open: true, source: server, punch_id: p9 }
//	assertions:
//	  - type: session
//	    session: { cached_punch: p9 }
//
// # Steps
//
//   - resolve: reconcile punch state
//   - guard: route guard for args.want (empty means the landing screen)
//   - login: args id, password, client_id; the outcome route is the landing screen
//   - punch_in: args customer, location, time, photo
//   - punch_out: args id (defaults to the cached punch), location, time
//   - logout
//
// # Assertion Types
//
//   - request_count: method+path was requested exactly count times
//   - request_order: requests appear in the given order, gaps allowed
//   - request_auth: the last method+path request carried token (empty: none)
//   - navigations: the exact list of redirects the gateway issued
//   - session: credential presence, cached punch id, signed-in user
//
// Every run uses a fresh in-memory session store and a fixed request ID,
// so the trace is stable enough for golden comparison.
package harness
