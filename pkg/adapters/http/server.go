package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xdsai/persephone"
	"github.com/xdsai/persephone/internal/logging"
	"github.com/xdsai/persephone/internal/presentation/graph"
	"github.com/xdsai/persephone/internal/presentation/tui"
	"github.com/xdsai/persephone/internal/runtime"
	"github.com/xdsai/persephone/pkg/domain"
	"github.com/xdsai/persephone/pkg/observability"
	"github.com/xdsai/persephone/pkg/session"
)

// maxBodySize caps request bodies; a save payload is the largest legitimate one.
const maxBodySize = 1 << 20

var (
	errChoiceUnavailable = errors.New("choice not available")
	errNoWayBack         = errors.New("there is no way back")
	errUnknownNode       = errors.New("unknown node")
	errNothingAnswers    = errors.New("nothing answers")
	errCorruptSave       = errors.New("save payload was rejected")
)

// Server hosts story sessions over HTTP.
type Server struct {
	Manager *session.Manager
	Streams *StreamManager

	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewHandler creates the HTTP handler for manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	server := &Server{
		Manager: manager,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger
	return enableCORS(server.routes())
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", observability.Handler(s.gatherer))
	}

	// Swagger UI
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/choose", s.Choose)
			r.Post("/back", s.Back)
			r.Post("/goto", s.GoTo)
			r.Post("/commands", s.Invoke)
			r.Post("/reset", s.Reset)
			r.Get("/save", s.ExportSave)
			r.Put("/save", s.ImportSave)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Persephone API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetOpenAPI handles the GET /openapi.yaml request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.Write(persephone.OpenAPI)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	story := s.Manager.Story()
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "persephone-http",
		"version": persephone.Version,
		"title":   story.Meta.Title,
		"start":   story.Start,
	})
}

// GetGraph handles the GET /graph request. With ?session=<id> the run is
// drawn as an overlay.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		err := s.Manager.ViewExisting(r.Context(), id, func(e *runtime.Engine) error {
			overlay = &graph.GraphOverlay{VisitedNodes: e.History(), CurrentNode: e.CurrentID()}
			return nil
		})
		if err != nil {
			s.fail(w, err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.Manager.Story(), overlay))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Manager.List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles the POST /sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.NewString()
	if _, err := s.Manager.LoadOrStart(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	var view SessionView
	err := s.Manager.ViewExisting(r.Context(), id, func(e *runtime.Engine) error {
		view = newSessionView(id, e)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.logger.Info("session created", "session_id", id)
	w.Header().Set("Location", "/sessions/"+id)
	s.writeJSON(w, http.StatusCreated, view)
}

// GetSession handles the GET /sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var view SessionView
	err := s.Manager.ViewExisting(r.Context(), id, func(e *runtime.Engine) error {
		view = newSessionView(id, e)
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Manager.Delete(r.Context(), id); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Choose handles the POST /sessions/{id}/choose request.
func (s *Server) Choose(w http.ResponseWriter, r *http.Request) {
	var body chooseRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Index == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("index is required"))
		return
	}
	s.update(w, r, func(e *runtime.Engine, _ *SessionView) error {
		if !e.ChooseOffered(*body.Index) {
			return errChoiceUnavailable
		}
		return nil
	})
}

// Back handles the POST /sessions/{id}/back request.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(e *runtime.Engine, _ *SessionView) error {
		if !e.Back() {
			return errNoWayBack
		}
		return nil
	})
}

// GoTo handles the POST /sessions/{id}/goto request.
func (s *Server) GoTo(w http.ResponseWriter, r *http.Request) {
	var body gotoRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.update(w, r, func(e *runtime.Engine, _ *SessionView) error {
		if !e.GoTo(body.NodeID, body.PushHistory) {
			return errUnknownNode
		}
		return nil
	})
}

// Invoke handles the POST /sessions/{id}/commands request.
func (s *Server) Invoke(w http.ResponseWriter, r *http.Request) {
	var body commandRequest
	if !s.decode(w, r, &body) {
		return
	}
	input, err := tui.SanitizeInput(body.Input)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.update(w, r, func(e *runtime.Engine, view *SessionView) error {
		res, ok := e.Invoke(strings.TrimPrefix(input, tui.CommandPrefix))
		if !ok {
			return errNothingAnswers
		}
		view.Message = res.Message
		return nil
	})
}

// Reset handles the POST /sessions/{id}/reset request.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, func(e *runtime.Engine, _ *SessionView) error {
		e.Reset()
		return nil
	})
}

// ExportSave handles the GET /sessions/{id}/save request.
func (s *Server) ExportSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var payload string
	err := s.Manager.ViewExisting(r.Context(), id, func(e *runtime.Engine) error {
		var err error
		payload, err = e.Serialize()
		return err
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, payload)
}

// ImportSave handles the PUT /sessions/{id}/save request.
func (s *Server) ImportSave(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	s.update(w, r, func(e *runtime.Engine, _ *SessionView) error {
		if !e.Deserialize(string(data)) {
			return errCorruptSave
		}
		return nil
	})
}

// update runs fn inside a session update and answers with the new view.
// When fn fails nothing is saved.
func (s *Server) update(w http.ResponseWriter, r *http.Request, fn func(*runtime.Engine, *SessionView) error) {
	id := chi.URLParam(r, "id")
	var view SessionView
	err := s.Manager.UpdateExisting(r.Context(), id, func(e *runtime.Engine) error {
		if err := fn(e, &view); err != nil {
			return err
		}
		msg := view.Message
		view = newSessionView(id, e)
		view.Message = msg
		return nil
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	if data, err := json.Marshal(view); err == nil {
		s.Streams.Broadcast(id, string(data))
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSaveNotFound):
		s.writeError(w, http.StatusNotFound, errors.New("session not found"))
	case errors.Is(err, errUnknownNode):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, errNothingAnswers):
		s.writeError(w, http.StatusForbidden, err)
	case errors.Is(err, errChoiceUnavailable), errors.Is(err, errNoWayBack):
		s.writeError(w, http.StatusConflict, err)
	case errors.Is(err, errCorruptSave):
		s.writeError(w, http.StatusUnprocessableEntity, err)
	default:
		s.logger.Error("request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
