package session

import (
	"net/http"
	"strings"
)

// CookieName is the reserved name of the session cookie.
const CookieName = "__session"

// State classifies the session cookie presented on a request.
type State int

const (
	// StateNoCookie means the request carries no session cookie.
	StateNoCookie State = iota
	// StateUnknownCookie means a session cookie is present but matches no live session.
	StateUnknownCookie
	// StateKnownCookie means a session cookie matches a live session.
	StateKnownCookie
)

func (s State) String() string {
	switch s {
	case StateNoCookie:
		return "no_cookie"
	case StateUnknownCookie:
		return "unknown_cookie"
	case StateKnownCookie:
		return "known_cookie"
	default:
		return "invalid"
	}
}

// Action is what the middleware must do for a given State.
type Action int

const (
	// ActionIssueNew creates a session and sets a new cookie.
	ActionIssueNew Action = iota
	// ActionReissue creates a session and overwrites the stale cookie.
	ActionReissue
	// ActionTouch refreshes the activity time of the known session.
	ActionTouch
)

func (a Action) String() string {
	switch a {
	case ActionIssueNew:
		return "issue_new"
	case ActionReissue:
		return "reissue"
	case ActionTouch:
		return "touch"
	default:
		return "invalid"
	}
}

// Reconciliation is the outcome of matching a request's cookies against the store.
type Reconciliation struct {
	State  State
	Action Action
	// SessionID is the selected cookie value: the live id for StateKnownCookie,
	// the presented but unknown value for StateUnknownCookie, empty otherwise.
	SessionID string
}

// CookiePair is one name=value segment of a Cookie header.
type CookiePair struct {
	Name  string
	Value string
}

// ParseCookieHeader splits raw Cookie header values into name/value pairs.
// Both ';' and ',' are treated as separators because proxies sometimes fold
// several cookies with the same name into a single field. Header order is kept.
func ParseCookieHeader(values ...string) []CookiePair {
	var pairs []CookiePair
	for _, value := range values {
		segments := strings.FieldsFunc(value, func(r rune) bool {
			return r == ';' || r == ','
		})
		for _, segment := range segments {
			name, val, ok := strings.Cut(strings.TrimSpace(segment), "=")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				continue
			}
			pairs = append(pairs, CookiePair{Name: name, Value: strings.TrimSpace(val)})
		}
	}
	return pairs
}

// Reconcile classifies the raw Cookie header values of a request.
// Among all session cookies, the first one (in header order) whose value is a
// live session wins. If none is live, the first presented value is reported
// as the unknown candidate.
func Reconcile(header []string, contains func(id string) bool) Reconciliation {
	var (
		found     bool
		candidate string
	)
	for _, pair := range ParseCookieHeader(header...) {
		if pair.Name != CookieName {
			continue
		}
		if pair.Value != "" && contains(pair.Value) {
			return Reconciliation{State: StateKnownCookie, Action: ActionTouch, SessionID: pair.Value}
		}
		if !found {
			found = true
			candidate = pair.Value
		}
	}

	if !found {
		return Reconciliation{State: StateNoCookie, Action: ActionIssueNew}
	}
	return Reconciliation{State: StateUnknownCookie, Action: ActionReissue, SessionID: candidate}
}

// ReconcileRequest runs Reconcile on the Cookie header fields of r.
func ReconcileRequest(r *http.Request, contains func(id string) bool) Reconciliation {
	return Reconcile(r.Header.Values("Cookie"), contains)
}

// setRequestCookie rewrites the request's Cookie header so that the session
// cookie appears exactly once, first, with the given value. Other cookies keep
// their original order and text; commas are only treated as separators inside
// segments that carry a session cookie.
func setRequestCookie(r *http.Request, value string) {
	parts := []string{CookieName + "=" + value}
	for _, header := range r.Header.Values("Cookie") {
		for _, segment := range strings.Split(header, ";") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			subs := strings.Split(segment, ",")
			if !hasSessionCookie(subs) {
				parts = append(parts, segment)
				continue
			}
			for _, sub := range subs {
				sub = strings.TrimSpace(sub)
				if sub == "" || cookieSegmentName(sub) == CookieName {
					continue
				}
				parts = append(parts, sub)
			}
		}
	}
	r.Header.Set("Cookie", strings.Join(parts, "; "))
}

func hasSessionCookie(segments []string) bool {
	for _, segment := range segments {
		if cookieSegmentName(segment) == CookieName {
			return true
		}
	}
	return false
}

func cookieSegmentName(segment string) string {
	name, _, _ := strings.Cut(segment, "=")
	return strings.TrimSpace(name)
}
