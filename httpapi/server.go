// Package httpapi exposes agents over HTTP using gorilla/mux.
//
// Routes:
//
//	POST   /v1/agents/{agent}/runs           run an agent
//	POST   /v1/agents/{agent}/setup          push the agent's configuration
//	DELETE /v1/agents/{agent}/sessions/{id}  delete a session
//	GET    /v1/agents                        list agents
//	GET    /healthz                          liveness
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"

	"github.com/gorilla/mux"

	"github.com/hupe1980/agentkit/agent"
	"github.com/hupe1980/agentkit/core"
	"github.com/hupe1980/agentkit/logging"
)

// RunRequest is the body of a run call.
type RunRequest struct {
	Input     string `json:"input"`
	SessionID string `json:"session_id,omitempty"`
	MaxSteps  int    `json:"max_steps,omitempty"`
}

// ErrorResponse is returned for every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// AgentInfo describes a registered agent.
type AgentInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tools       []string `json:"tools"`
	Ready       bool     `json:"ready"`
}

// Options configures a Server.
type Options struct {
	Logger logging.Logger
}

// Server routes HTTP calls to registered agents.
type Server struct {
	mu     sync.RWMutex
	agents map[string]*agent.Agent
	router *mux.Router
	logger logging.Logger
}

// NewServer creates a server for the given agents.
func NewServer(agents []*agent.Agent, optFns ...func(o *Options)) *Server {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	s := &Server{
		agents: make(map[string]*agent.Agent, len(agents)),
		router: mux.NewRouter(),
		logger: opts.Logger,
	}

	for _, a := range agents {
		s.agents[a.Name()] = a
	}

	s.routes()

	return s
}

// Add registers another agent, replacing one with the same name.
func (s *Server) Add(a *agent.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agents[a.Name()] = a
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(jsonMiddleware)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/agents", s.handleListAgents).Methods(http.MethodGet)
	v1.HandleFunc("/agents/{agent}/runs", s.handleRun).Methods(http.MethodPost)
	v1.HandleFunc("/agents/{agent}/setup", s.handleSetup).Methods(http.MethodPost)
	v1.HandleFunc("/agents/{agent}/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*agent.Agent, bool) {
	name := mux.Vars(r)["agent"]

	s.mu.RLock()
	a, ok := s.agents[name]
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound, "unknown agent "+name)
		return nil, false
	}

	return a, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	infos := make([]AgentInfo, 0, len(s.agents))
	for _, a := range s.agents {
		infos = append(infos, AgentInfo{
			Name:        a.Name(),
			Description: a.Description(),
			Tools:       a.ToolNames(),
			Ready:       a.Ready(),
		})
	}
	s.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if req.Input == "" {
		writeError(w, http.StatusBadRequest, "input is required")
		return
	}

	resp, err := a.Run(r.Context(), req.Input, func(o *agent.RunOptions) {
		o.SessionID = req.SessionID
		o.MaxSteps = req.MaxSteps
	})
	if err != nil {
		s.fail(w, a.Name(), err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := a.Setup(r.Context()); err != nil {
		s.fail(w, a.Name(), err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"agent": a.Name(), "revision": a.Revision()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if err := a.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, a.Name(), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, agentName string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("http.request.failed", "agent", agentName, "status", status, "error", err)
	} else {
		s.logger.Warn("http.request.rejected", "agent", agentName, "status", status, "error", err)
	}

	writeError(w, status, err.Error())
}

// StatusFor maps agent errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSetupRequired):
		return http.StatusConflict
	case errors.Is(err, core.ErrFatalRemote), errors.Is(err, core.ErrSync):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
