// Package session provides cookie-based, in-memory session tracking for
// single-process HTTP servers.
//
// First-time visitors get a session identifier in the "__session" cookie.
// Returning visitors are recognized by that identifier and their activity
// time is refreshed. Sessions idle longer than the configured expiration are
// evicted.
//
// # Architecture
//
// A Manager reconciles every request against a Store:
//
//	request ──► sweep ──► Reconcile(Cookie header) ──► IssueNew | Reissue | Touch
//	                                                        │
//	                              Set-Cookie + request header rewrite + log event
//
// The Store interface is intentionally narrow. MemoryStore, the default
// implementation, guards its map with a single mutex; every operation,
// including sweeps and snapshots, takes that lock and never performs I/O while
// holding it. Other implementations (sharded maps and the like) can be plugged
// in with WithStore.
//
// Sweeping happens inline with request processing. SweepInterval can limit it
// to once per interval; expired records are still never recognized because
// the store drops them on lookup.
//
// # Cookie repair
//
// Intermediaries sometimes fold several "__session" cookies into a single
// header field separated by ',' or ';'. Reconcile parses the raw header and
// picks the first value (in header order) that names a live session. If no
// value is live the first one is treated as the stale candidate. After the
// manager has run, the request's Cookie header carries exactly one session
// cookie, so r.Cookie(session.CookieName) returns the final identifier.
//
// # Usage
//
//	mgr := session.New(
//	    session.WithExpiration(15*time.Minute),
//	    session.WithLogger(log),
//	)
//
//	r := chi.NewRouter()
//	r.Use(mgr.Middleware)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    sess, ok := mgr.GetSession(r)
//	    ...
//	})
//
// The manager can also be registered in a pipeline.Pipeline: Handle has the
// interceptor signature and always reports the request as not handled.
//
// # Identifiers
//
// DefaultIDGenerator mixes a random UUID with clock readings. It is unique
// within a process but it is not designed to be unguessable. Configure
// SecureIDGenerator (or Config.SecureIDs) when that matters.
//
// # Errors
//
// Nothing in this package returns an error. Absent sessions, malformed cookie
// headers and repeated deletes are reported as false results or no-ops.
package session
