package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/rootseek/internal/presentation/graph"
	"github.com/aretw0/rootseek/internal/presentation/report"
	"github.com/aretw0/rootseek/pkg/adapters/memory"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/observability"
	"github.com/aretw0/rootseek/pkg/ports"
	"github.com/aretw0/rootseek/pkg/runner"
	"github.com/aretw0/rootseek/pkg/session"
)

// maxBodySize bounds request bodies; every request here is a handful of numbers.
const maxBodySize = 64 << 10

// Server exposes the explorer over HTTP.
type Server struct {
	Engine   ports.Explorer
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Version  string
}

// Option configures the Server.
type Option func(*Server)

// WithSessions serves /sessions from the given manager.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithMetrics exposes /metrics and records one-shot searches.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = l
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the explorer.
// Without WithSessions, sessions live in memory for the life of the handler.
func NewHandler(engine ports.Explorer, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Sessions == nil {
		s.Sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.Logger))
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/equations", s.ListEquations)
	r.Post("/roots", s.FindRoots)
	r.Post("/intersection", s.FindIntersection)
	r.Get("/graph", s.GetGraph)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/", s.StartSession)
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/input", s.SessionInput)
			r.Get("/report", s.SessionReport)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EquationInfo is the public view of a registered equation.
type EquationInfo struct {
	ID    domain.EquationID `json:"id"`
	Label string            `json:"label"`
	Expr  string            `json:"expr,omitempty"`
}

// RootsRequest is the body of POST /roots.
type RootsRequest struct {
	Equation domain.EquationID `json:"equation"`
	Guesses  []float64         `json:"guesses"`
}

// RootResult is one guarded search of POST /roots.
type RootResult struct {
	Guess float64 `json:"guess"`
	Index int     `json:"index"`
	domain.RootOutcome
}

// RootsResponse is the body returned by POST /roots.
type RootsResponse struct {
	Equation domain.EquationID `json:"equation"`
	Label    string            `json:"label"`
	Results  []RootResult      `json:"results"`
}

// IntersectionRequest is the body of POST /intersection.
type IntersectionRequest struct {
	Guess *float64 `json:"guess"`
}

// IntersectionResponse reports the located point and its verdict.
type IntersectionResponse struct {
	Point    domain.IntersectionResult `json:"point"`
	Accepted bool                      `json:"accepted"`
	Message  string                    `json:"message"`
}

// InputRequest is the body of POST /sessions/{id}/input.
type InputRequest struct {
	Input string `json:"input"`
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":      "rootseek",
		"version":   s.Version,
		"equations": len(s.Engine.Equations()),
	})
}

// ListEquations handles GET /equations.
func (s *Server) ListEquations(w http.ResponseWriter, r *http.Request) {
	eqs := s.Engine.Equations()
	out := make([]EquationInfo, 0, len(eqs))
	for _, eq := range eqs {
		out = append(out, EquationInfo{ID: eq.ID, Label: eq.Label, Expr: eq.Expr})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// FindRoots handles POST /roots: one guarded search per guess, in order.
func (s *Server) FindRoots(w http.ResponseWriter, r *http.Request) {
	var body RootsRequest
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.Guesses) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("at least one guess is required"))
		return
	}
	for _, g := range body.Guesses {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: guesses must be finite", domain.ErrNumericInput))
			return
		}
	}

	resp := RootsResponse{Equation: body.Equation}
	for _, eq := range s.Engine.Equations() {
		if eq.ID == body.Equation {
			resp.Label = eq.Label
		}
	}
	for i, g := range body.Guesses {
		out, err := s.Engine.FindRoot(body.Equation, g)
		if err != nil {
			s.writeError(w, statusFor(err), err)
			return
		}
		if s.Metrics != nil {
			s.Metrics.ObserveRoot(body.Equation, out, false)
		}
		resp.Results = append(resp.Results, RootResult{Guess: g, Index: i + 1, RootOutcome: out})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// FindIntersection handles POST /intersection.
// A rejected intersection (validate_intersection) answers 422 with the unvalidated point.
func (s *Server) FindIntersection(w http.ResponseWriter, r *http.Request) {
	var body IntersectionRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Guess == nil || math.IsNaN(*body.Guess) || math.IsInf(*body.Guess, 0) {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("%w: a finite guess is required", domain.ErrNumericInput))
		return
	}

	res, err := s.Engine.FindIntersection(*body.Guess)
	if s.Metrics != nil {
		s.Metrics.ObserveIntersection(res)
	}
	switch {
	case errors.Is(err, domain.ErrToleranceRejected):
		s.writeJSON(w, http.StatusUnprocessableEntity, IntersectionResponse{
			Point:   res,
			Message: fmt.Sprintf("No intersection found near x = %g.", *body.Guess),
		})
	case err != nil:
		s.writeError(w, statusFor(err), err)
	default:
		s.writeJSON(w, http.StatusOK, IntersectionResponse{
			Point:    res,
			Accepted: true,
			Message:  fmt.Sprintf("The equations intersect at the point: (%g, %g)", res.X, res.Y),
		})
	}
}

// GetGraph handles GET /graph, returning the Mermaid diagram of the loop.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, graph.GenerateMermaid(s.Engine.Inspect(), nil))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// StartSession handles POST /sessions/{id}: it resumes or starts the session
// and returns the pending reports and prompt.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, resumed, err := s.Sessions.LoadOrStart(r.Context(), s.Engine, id)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.Logger.Debug("session opened", "session_id", id, "resumed", resumed)

	resp, err := s.drive(r.Context(), id, state)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	code := http.StatusCreated
	if resumed {
		code = http.StatusOK
	}
	s.writeJSON(w, code, resp)
}

// GetSession handles GET /sessions/{id} without advancing the session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	resp, err := runner.Render(r.Context(), s.Engine, state)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionInput handles POST /sessions/{id}/input: one line of input, then
// every phase that needs no input, until the next prompt or the end.
func (s *Server) SessionInput(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body InputRequest
	if !s.decode(w, r, &body) {
		return
	}
	input, err := runner.SanitizeInput(strings.TrimSpace(body.Input))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	state, err := s.Sessions.Navigate(r.Context(), s.Engine, id, input)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	resp, err := s.drive(r.Context(), id, state)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SessionReport handles GET /sessions/{id}/report as markdown.
func (s *Server) SessionReport(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	labels := make(map[domain.EquationID]string)
	for _, eq := range s.Engine.Equations() {
		labels[eq.ID] = eq.Label
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, report.Markdown(state, func(id domain.EquationID) string { return labels[id] }))
}

// drive renders state and keeps navigating with "" while no input is requested,
// collecting every action along the way.
func (s *Server) drive(ctx context.Context, id string, state *domain.State) (*runner.RichResponse, error) {
	var collected []domain.ActionRequest
	for {
		resp, err := runner.Render(ctx, s.Engine, state)
		if err != nil {
			return nil, err
		}
		collected = append(collected, resp.Actions...)
		if resp.Terminal || requestsInput(resp.Actions) {
			resp.Actions = collected
			return resp, nil
		}
		state, err = s.Sessions.Navigate(ctx, s.Engine, id, "")
		if err != nil {
			return nil, err
		}
	}
}

func requestsInput(actions []domain.ActionRequest) bool {
	for _, a := range actions {
		if a.Type == domain.ActionRequestInput {
			return true
		}
	}
	return false
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		s.Logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownEquation), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNumericInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeJSON encodes v before committing the status.
func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.Logger.Error("response encode failed", "err", err)
		code = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "response encode failed"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.Logger.Debug("response write failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, code, map[string]string{"error": err.Error()})
}
