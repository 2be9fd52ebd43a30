// Package pipeline runs an ordered list of request interceptors in front of
// an http.Handler.
//
// Each interceptor is registered for a path pattern and an HTTP verb and
// returns true when it has fully handled the request, which stops the chain.
// Returning false passes the request on to the next interceptor and finally
// to the wrapped handler. This is how the session manager is mounted: it is
// registered for AnyPath and AnyVerb and never stops the chain.
//
//	p := pipeline.New(pipeline.WithLogger(log))
//	p.AddHandler(pipeline.AnyPath, pipeline.AnyVerb, sessions.Handle)
//
//	r := chi.NewRouter()
//	r.Use(p.Handler)
package pipeline

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
)

const (
	// AnyPath matches every request path.
	AnyPath = "*"
	// AnyVerb matches every request method.
	AnyVerb = "ANY"
)

// HandlerFunc intercepts a request. It returns true when the request has been
// fully handled and no further handler must run.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) bool

type entry struct {
	pattern string
	verb    string
	fn      HandlerFunc
}

// Pipeline is an ordered set of interceptors. It is safe for concurrent use;
// handlers added while requests are in flight apply to subsequent requests.
type Pipeline struct {
	mu      sync.RWMutex
	entries []entry
	logger  *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used to report stopped requests.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("pipeline"))
	return p
}

// AddHandler appends an interceptor for the given path pattern and verb.
//
// Patterns are AnyPath, an exact path ("/login") or a prefix ending in "/*"
// ("/api/*" matches "/api" and everything below it). Verbs are compared
// case-insensitively; AnyVerb or "" matches all methods. A nil fn is ignored.
func (p *Pipeline) AddHandler(pattern, verb string, fn HandlerFunc) {
	if fn == nil {
		return
	}
	if pattern == "" {
		pattern = AnyPath
	}
	verb = strings.ToUpper(verb)
	if verb == "" {
		verb = AnyVerb
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, entry{pattern: pattern, verb: verb, fn: fn})
}

// Len returns the number of registered interceptors.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Intercept runs the matching interceptors in registration order and reports
// whether one of them handled the request.
func (p *Pipeline) Intercept(w http.ResponseWriter, r *http.Request) bool {
	p.mu.RLock()
	entries := p.entries
	p.mu.RUnlock()

	for i, e := range entries {
		if !e.matches(r) {
			continue
		}
		if e.fn(w, r) {
			p.logger.DebugContext(r.Context(), "request handled by interceptor",
				logger.Path(r.URL.Path),
				slog.Int("index", i),
			)
			return true
		}
	}
	return false
}

// Handler wraps next so every request goes through the pipeline first.
// It has the middleware signature expected by chi's Use.
func (p *Pipeline) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p.Intercept(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP runs the pipeline and answers 404 when no interceptor handled the request.
func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.Handler(http.NotFoundHandler()).ServeHTTP(w, r)
}

func (e entry) matches(r *http.Request) bool {
	if e.verb != AnyVerb && e.verb != strings.ToUpper(r.Method) {
		return false
	}
	return matchPath(e.pattern, r.URL.Path)
}

func matchPath(pattern, path string) bool {
	switch {
	case pattern == AnyPath:
		return true
	case strings.HasSuffix(pattern, "/*"):
		prefix := strings.TrimSuffix(pattern, "/*")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	default:
		return pattern == path
	}
}
