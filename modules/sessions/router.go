package sessions

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/session"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 5 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Message is the payload written to WebSocket clients.
type Message struct {
	Event   string           `json:"event"`
	Session *session.Session `json:"session,omitempty"`
}

// Service exposes the session table over HTTP.
type Service struct {
	manager *session.Manager
	logger  *slog.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(mgr *session.Manager, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		manager: mgr,
		logger:  log.With(logger.Component("sessions")),
	}
}

// Router returns the session routes backed by mgr.
func Router(mgr *session.Manager) chi.Router {
	return NewService(mgr, nil).Router()
}

// Router mounts the service handlers on a new chi router.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Get("/current", s.current)
	r.Delete("/current", s.destroy)
	r.Get("/ws", s.greet)

	return r
}

func (s *Service) list(w http.ResponseWriter, r *http.Request) {
	snapshot := s.manager.Sessions()
	writeJSON(w, http.StatusOK, JSONResponse{
		Code: "sessions",
		Data: snapshot,
		Meta: map[string]any{
			"total":      len(snapshot),
			"expiration": s.manager.Expiration().String(),
		},
	})
}

func (s *Service) current(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.manager.GetSession(r)
	if !ok {
		writeError(w, ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, JSONResponse{
		Code: "session",
		Data: sess,
		Meta: map[string]any{"idle": sess.IdleFor(time.Now()).String()},
	})
}

func (s *Service) destroy(w http.ResponseWriter, r *http.Request) {
	s.manager.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// greet greets the client with its session and closes the connection.
// Set-Cookie headers written earlier in the chain are forwarded in the
// handshake response, since the upgrader ignores w.Header().
func (s *Service) greet(w http.ResponseWriter, r *http.Request) {
	header := http.Header{}
	for _, c := range w.Header().Values("Set-Cookie") {
		header.Add("Set-Cookie", c)
	}

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		// the upgrader has already replied to the client
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	msg := Message{Event: "anonymous"}
	if sess, ok := s.manager.GetSession(r); ok {
		msg = Message{Event: "session", Session: &sess}
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.ErrorContext(r.Context(), "websocket write failed",
			logger.Error(err),
			logger.Event(msg.Event),
		)
		return
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
