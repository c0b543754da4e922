package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/rootseek/internal/presentation/graph"
	"github.com/aretw0/rootseek/internal/runtime"
	"github.com/aretw0/rootseek/pkg/adapters/memory"
	"github.com/aretw0/rootseek/pkg/domain"
	"github.com/aretw0/rootseek/pkg/ports"
	"github.com/aretw0/rootseek/pkg/runner"
	"github.com/aretw0/rootseek/pkg/session"
)

// GraphURI is the resource holding the Mermaid diagram of the refinement loop.
const GraphURI = "rootseek://graph"

// RenderResponse aligns with the HTTP adapter and provides a unified structure across adapters.
type RenderResponse struct {
	State    *domain.State          `json:"state,omitempty" jsonschema_description:"The current state of the session"`
	Actions  []domain.ActionRequest `json:"actions" jsonschema_description:"Reports, plots and the next prompt"`
	Terminal bool                   `json:"terminal" jsonschema_description:"Indicates if the session is done"`
}

// EquationList is the result of list_equations.
type EquationList struct {
	Equations []EquationInfo `json:"equations"`
}

type EquationInfo struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// RootSearchResult is the result of find_root.
type RootSearchResult struct {
	Equation string        `json:"equation"`
	Results  []GuessResult `json:"results"`
}

type GuessResult struct {
	Guess float64 `json:"guess"`
	Index int     `json:"index"`
	Found bool    `json:"found"`
	Root  float64 `json:"root,omitempty"`
}

// IntersectionResult is the result of find_intersection.
type IntersectionResult struct {
	Point    domain.IntersectionResult `json:"point"`
	Accepted bool                      `json:"accepted"`
	Message  string                    `json:"message"`
}

type findRootArgs struct {
	Equation string `json:"equation"`
	Guesses  string `json:"guesses"`
}

type findIntersectionArgs struct {
	Guess float64 `json:"guess"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
	Input     string `json:"input"`
}

// Server wraps the explorer engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Explorer
	sessions  *session.Manager
	logger    *slog.Logger
	version   string
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSessions backs the session tools with the given manager.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.sessions = m
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithVersion sets the version announced to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Explorer, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}
	s.mcpServer = server.NewMCPServer("rootseek-mcp", s.version)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE on port until ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_equations",
		mcp.WithDescription("List the equations whose roots can be searched."),
		mcp.WithOutputSchema[EquationList](),
	), mcp.NewStructuredToolHandler(s.handleListEquations))

	s.mcpServer.AddTool(mcp.NewTool("find_root",
		mcp.WithDescription("Search a root of one equation near each guess. A root is only reported when |f(root)| is within tolerance."),
		mcp.WithString("equation", mcp.Required(), mcp.Description("Equation ID, e.g. f1")),
		mcp.WithString("guesses", mcp.Required(), mcp.Description("Comma separated starting points, e.g. \"1.0, 2.5\"")),
		mcp.WithOutputSchema[RootSearchResult](),
	), mcp.NewStructuredToolHandler(s.handleFindRoot))

	s.mcpServer.AddTool(mcp.NewTool("find_intersection",
		mcp.WithDescription("Locate where the first two equations intersect, starting from an x guess."),
		mcp.WithNumber("guess", mcp.Required(), mcp.Description("x-coordinate to start from")),
		mcp.WithOutputSchema[IntersectionResult](),
	), mcp.NewStructuredToolHandler(s.handleFindIntersection))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start or resume an interactive exploration session and return its prompt."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartSession))

	s.mcpServer.AddTool(mcp.NewTool("session_input",
		mcp.WithDescription("Answer the pending prompt of a session with one line of input."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The answer, e.g. a guess list, y/n or a number")),
		mcp.WithOutputSchema[RenderResponse](),
	), mcp.NewStructuredToolHandler(s.handleSessionInput))
}

func (s *Server) handleListEquations(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (EquationList, error) {
	out := EquationList{Equations: []EquationInfo{}}
	for _, eq := range s.engine.Equations() {
		out.Equations = append(out.Equations, EquationInfo{ID: string(eq.ID), Label: eq.Label})
	}
	return out, nil
}

func (s *Server) handleFindRoot(ctx context.Context, request mcp.CallToolRequest, args findRootArgs) (RootSearchResult, error) {
	clean, err := runner.SanitizeInput(args.Guesses)
	if err != nil {
		return RootSearchResult{}, fmt.Errorf("input rejected: %w", err)
	}
	values, err := runtime.ParseGuessList(clean)
	if err != nil {
		return RootSearchResult{}, err
	}

	out := RootSearchResult{Equation: args.Equation}
	for i, v := range values {
		res, err := s.engine.FindRoot(domain.EquationID(args.Equation), v)
		if err != nil {
			return RootSearchResult{}, err
		}
		root, found := res.Value()
		out.Results = append(out.Results, GuessResult{Guess: v, Index: i + 1, Found: found, Root: root})
	}
	return out, nil
}

func (s *Server) handleFindIntersection(ctx context.Context, request mcp.CallToolRequest, args findIntersectionArgs) (IntersectionResult, error) {
	res, err := s.engine.FindIntersection(args.Guess)
	switch {
	case errors.Is(err, domain.ErrToleranceRejected):
		return IntersectionResult{Point: res, Message: fmt.Sprintf("No intersection found near x = %g.", args.Guess)}, nil
	case err != nil:
		return IntersectionResult{}, err
	}
	return IntersectionResult{
		Point:    res,
		Accepted: true,
		Message:  fmt.Sprintf("The equations intersect at the point: (%g, %g)", res.X, res.Y),
	}, nil
}

func (s *Server) handleStartSession(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (RenderResponse, error) {
	if args.SessionID == "" {
		return RenderResponse{}, errors.New("session_id is required")
	}
	state, _, err := s.sessions.LoadOrStart(ctx, s.engine, args.SessionID)
	if err != nil {
		return RenderResponse{}, err
	}
	return s.drive(ctx, args.SessionID, state)
}

func (s *Server) handleSessionInput(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (RenderResponse, error) {
	clean, err := runner.SanitizeInput(strings.TrimSpace(args.Input))
	if err != nil {
		s.logger.Warn("MCP input rejected", "err", err, "size", len(args.Input))
		return RenderResponse{}, fmt.Errorf("input rejected: %w", err)
	}
	state, err := s.sessions.Navigate(ctx, s.engine, args.SessionID, clean)
	if err != nil {
		return RenderResponse{}, fmt.Errorf("navigate failed: %w", err)
	}
	return s.drive(ctx, args.SessionID, state)
}

// drive keeps navigating with "" while the session needs no input, so every
// tool call ends at a prompt or at the end of the run.
func (s *Server) drive(ctx context.Context, id string, state *domain.State) (RenderResponse, error) {
	var collected []domain.ActionRequest
	for {
		rich, err := runner.Render(ctx, s.engine, state)
		if err != nil {
			return RenderResponse{}, fmt.Errorf("render failed: %w", err)
		}
		collected = append(collected, rich.Actions...)
		if rich.Terminal || awaitsInput(rich.Actions) {
			return RenderResponse{State: rich.State, Actions: collected, Terminal: rich.Terminal}, nil
		}
		state, err = s.sessions.Navigate(ctx, s.engine, id, "")
		if err != nil {
			return RenderResponse{}, fmt.Errorf("navigate failed: %w", err)
		}
	}
}

func awaitsInput(actions []domain.ActionRequest) bool {
	for _, a := range actions {
		if a.Type == domain.ActionRequestInput {
			return true
		}
	}
	return false
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Refinement loop diagram",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      GraphURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.engine.Inspect(), nil),
			},
		}, nil
	})
}
