package session_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionkit/pkg/session"
)

func newTestManager(clock *fakeClock, opts ...session.Option) *session.Manager {
	base := []session.Option{
		session.WithClock(clock.Now),
		session.WithGenerator(sequentialIDs("s")),
	}
	return session.New(append(base, opts...)...)
}

func TestManager_Defaults(t *testing.T) {
	t.Parallel()

	m := session.New()
	assert.Equal(t, 30*time.Minute, m.Expiration())
	assert.Equal(t, "/", m.CookiePath())
	assert.Equal(t, 0, m.Len())
}

func TestManager_FirstContact(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)

	r, rec := handle(t, m, "")

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "s1", cookie.Value)
	assert.Equal(t, "/", cookie.Path)

	sess, ok := m.Lookup(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, clock.Now(), sess.CreatedAt)
	assert.Equal(t, clock.Now(), sess.LastActivityAt)

	// the rewritten request header already carries the new id
	got, ok := m.GetSession(r)
	require.True(t, ok)
	assert.Equal(t, sess, got)
}

func TestManager_RecognizedRequest(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)
	start := clock.Now()

	_, rec := handle(t, m, "")
	id := sessionCookie(t, rec).Value

	clock.Advance(time.Minute)
	r, rec := handle(t, m, "__session="+id)

	assert.Nil(t, sessionCookie(t, rec), "recognized requests must not set a cookie")
	assert.Empty(t, rec.Header().Values("Set-Cookie"))

	sess, ok := m.GetSession(r)
	require.True(t, ok)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, start, sess.CreatedAt)
	assert.Equal(t, clock.Now(), sess.LastActivityAt)
	assert.Equal(t, 1, m.Len())
}

func TestManager_UnknownCookieIsReissued(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)

	r, rec := handle(t, m, "__session=forged")

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.NotEqual(t, "forged", cookie.Value)
	assert.Equal(t, "s1", cookie.Value)

	_, ok := m.Lookup("forged")
	assert.False(t, ok, "unknown identifiers are never adopted")

	c, err := r.Cookie(session.CookieName)
	require.NoError(t, err)
	assert.Equal(t, cookie.Value, c.Value)
}

func TestManager_CookieRepair(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)

	_, rec := handle(t, m, "")
	id := sessionCookie(t, rec).Value

	t.Run("duplicate values separated by semicolon", func(t *testing.T) {
		r, rec := handle(t, m, "__session=stale; __session="+id)

		assert.Nil(t, sessionCookie(t, rec))
		c, err := r.Cookie(session.CookieName)
		require.NoError(t, err)
		assert.Equal(t, id, c.Value)
	})

	t.Run("comma folded header keeps other cookies", func(t *testing.T) {
		r, rec := handle(t, m, "theme=dark; __session=stale, __session="+id+"; lang=en")

		assert.Nil(t, sessionCookie(t, rec))
		assert.Equal(t, "__session="+id+"; theme=dark; lang=en", r.Header.Get("Cookie"))

		theme, err := r.Cookie("theme")
		require.NoError(t, err)
		assert.Equal(t, "dark", theme.Value)
	})

	t.Run("all values unknown", func(t *testing.T) {
		r, rec := handle(t, m, "__session=a; __session=b; theme=light")

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.NotEqual(t, id, cookie.Value)
		assert.Equal(t, "__session="+cookie.Value+"; theme=light", r.Header.Get("Cookie"))
	})
}

func TestManager_Expiration(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock, session.WithExpiration(10*time.Minute))

	_, rec := handle(t, m, "")
	id := sessionCookie(t, rec).Value

	clock.Advance(10 * time.Minute)
	_, rec = handle(t, m, "__session="+id)
	assert.Nil(t, sessionCookie(t, rec), "idle exactly for the expiration is still live")

	clock.Advance(10*time.Minute + time.Nanosecond)
	_, rec = handle(t, m, "__session="+id)
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie, "expired session must be replaced")
	assert.NotEqual(t, id, cookie.Value)

	_, ok := m.Lookup(id)
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestManager_SweepsOtherSessions(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock, session.WithExpiration(10*time.Minute))

	_, rec := handle(t, m, "")
	idle := sessionCookie(t, rec).Value
	_, rec = handle(t, m, "")
	active := sessionCookie(t, rec).Value
	require.Equal(t, 2, m.Len())

	clock.Advance(6 * time.Minute)
	handle(t, m, "__session="+active)

	clock.Advance(5 * time.Minute)
	_, rec = handle(t, m, "")
	fresh := sessionCookie(t, rec).Value

	sessions := m.Sessions()
	assert.Len(t, sessions, 2)
	assert.NotContains(t, sessions, idle)
	assert.Contains(t, sessions, active)
	assert.Contains(t, sessions, fresh)
	assert.Equal(t, 2, m.Len(), "idle session evicted by an unrelated request")
}

func TestManager_SweepInterval(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock,
		session.WithExpiration(10*time.Minute),
		session.WithSweepInterval(time.Hour),
	)

	_, rec := handle(t, m, "")
	expired := sessionCookie(t, rec).Value

	clock.Advance(11 * time.Minute)
	handle(t, m, "")
	assert.Equal(t, 2, m.Len(), "sweep is skipped within the interval")

	clock.Advance(time.Hour)
	_, rec = handle(t, m, "")
	latest := sessionCookie(t, rec).Value

	sessions := m.Sessions()
	assert.Len(t, sessions, 1)
	assert.Contains(t, sessions, latest)
	assert.NotContains(t, sessions, expired)
	assert.Equal(t, 1, m.Len())
}

func TestManager_SweepIntervalKeepsExpiryStrict(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock,
		session.WithExpiration(10*time.Minute),
		session.WithSweepInterval(time.Hour),
	)

	_, rec := handle(t, m, "")
	id := sessionCookie(t, rec).Value

	clock.Advance(11 * time.Minute)
	_, rec = handle(t, m, "__session="+id)

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie, "unswept expired session must not be recognized")
	assert.NotEqual(t, id, cookie.Value)
}

func TestManager_CookiePath(t *testing.T) {
	t.Parallel()

	t.Run("custom path", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(newFakeClock(), session.WithCookiePath("/app/"))

		_, rec := handle(t, m, "")
		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.Equal(t, "/app/", cookie.Path)
	})

	t.Run("empty path omits attribute", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(newFakeClock(), session.WithCookiePath(""))

		_, rec := handle(t, m, "")
		header := rec.Header().Get("Set-Cookie")
		assert.Equal(t, "__session=s1", header)
		assert.NotContains(t, header, "Path")
	})
}

func TestManager_ConcurrentFirstContact(t *testing.T) {
	t.Parallel()

	m := session.New()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	const n = 100
	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, n)
	)

	var g errgroup.Group
	for range n {
		g.Go(func() error {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			for _, c := range rec.Result().Cookies() {
				if c.Name == session.CookieName {
					mu.Lock()
					ids[c.Value] = struct{}{}
					mu.Unlock()
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, ids, n, "every first contact gets a distinct session")
	assert.Equal(t, n, m.Len())
	for id := range ids {
		_, ok := m.Lookup(id)
		assert.True(t, ok)
	}
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)

	r, _ := handle(t, m, "")
	sess, ok := m.GetSession(r)
	require.True(t, ok)

	t.Run("delete session of request", func(t *testing.T) {
		m.DeleteSession(r)
		_, ok := m.GetSession(r)
		assert.False(t, ok)
		assert.NotPanics(t, func() { m.DeleteSession(r) })
	})

	t.Run("delete by value and id are idempotent", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.Delete(sess)
			m.Delete(sess)
			m.DeleteID(sess.ID)
			m.DeleteID("")
		})
		assert.Equal(t, 0, m.Len())
	})

	t.Run("request without cookie", func(t *testing.T) {
		assert.NotPanics(t, func() { m.DeleteSession(newRequest("")) })
	})
}

func TestManager_Destroy(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock, session.WithCookiePath("/app/"))

	_, rec := handle(t, m, "")
	id := sessionCookie(t, rec).Value

	rec = httptest.NewRecorder()
	m.Destroy(rec, newRequest("__session="+id))

	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, "/app/", cookie.Path)
	assert.Less(t, cookie.MaxAge, 0)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")

	_, ok := m.Lookup(id)
	assert.False(t, ok)
}

func TestManager_SessionsSnapshot(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)

	for range 3 {
		handle(t, m, "")
	}

	snap := m.Sessions()
	require.Len(t, snap, 3)
	for id, sess := range snap {
		assert.Equal(t, id, sess.ID)
	}

	delete(snap, "s1")
	assert.Equal(t, 3, m.Len(), "snapshot is a copy")

	_, ok := m.Lookup("s1")
	assert.True(t, ok)
	_, ok = m.Lookup("missing")
	assert.False(t, ok)
}

func TestManager_GetSession(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)

	_, ok := m.GetSession(newRequest(""))
	assert.False(t, ok)

	_, ok = m.GetSession(newRequest("__session=unknown"))
	assert.False(t, ok)

	_, rec := handle(t, m, "")
	id := sessionCookie(t, rec).Value

	sess, ok := m.GetSession(newRequest("__session=unknown; __session=" + id))
	require.True(t, ok)
	assert.Equal(t, id, sess.ID)
}

func TestManager_Logging(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	clock := newFakeClock()
	m := newTestManager(clock, session.WithLogger(log))

	_, rec := handle(t, m, "")
	id := sessionCookie(t, rec).Value
	handle(t, m, "__session="+id)
	handle(t, m, "__session=forged")

	var events []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		events = append(events, entry)
	}
	require.Len(t, events, 3)

	want := []struct{ event, id string }{
		{session.EventCreated, "s1"},
		{session.EventRecognized, "s1"},
		{session.EventUpdated, "s2"},
	}
	for i, w := range want {
		assert.Equal(t, w.event, events[i]["event"])
		assert.Equal(t, w.id, events[i]["session_id"])
		assert.Equal(t, "session", events[i]["component"])
	}
}

func TestManager_Middleware(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	m := newTestManager(clock)

	var (
		fromCtx    session.Session
		fromCookie string
	)
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = session.MustFromContext(r.Context())
		c, err := r.Cookie(session.CookieName)
		if err == nil {
			fromCookie = c.Value
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newRequest("__session=stale"))

	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)
	assert.Equal(t, cookie.Value, fromCtx.ID)
	assert.Equal(t, cookie.Value, fromCookie)

	id, ok := session.IDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestManager_WithStore(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	store := session.NewMemoryStore(
		session.WithStoreExpiration(time.Minute),
		session.WithStoreClock(clock.Now),
		session.WithIDGenerator(sequentialIDs("custom-")),
	)
	m := session.New(session.WithStore(store), session.WithClock(clock.Now))

	_, rec := handle(t, m, "")
	assert.Equal(t, "custom-1", sessionCookie(t, rec).Value)
	assert.Equal(t, 1, store.Len())

	clock.Advance(time.Minute + time.Second)
	handle(t, m, "")
	_, ok := store.Get("custom-1")
	assert.False(t, ok, "custom store applies its own expiration")
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	m := session.NewFromConfig(session.Config{
		Expiration: 5 * time.Minute,
		CookiePath: "/api/",
		SecureIDs:  true,
	})
	assert.Equal(t, 5*time.Minute, m.Expiration())
	assert.Equal(t, "/api/", m.CookiePath())

	_, rec := handle(t, m, "")
	cookie := sessionCookie(t, rec)
	require.NotNil(t, cookie)

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}
