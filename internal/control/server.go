// Package control is the HTTP remote for unattended screens. Commands are
// forwarded to the console event loop; nothing here touches cycler state.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"dbviewer/internal/cycler"
	"dbviewer/internal/logger"
)

// Dispatch delivers a command to the event loop. It must not block on the loop
// finishing the command.
type Dispatch func(cycler.Command)

// Server serves command, status and metrics endpoints.
type Server struct {
	addr     string
	dispatch Dispatch
	board    *cycler.Board
	log      logger.Logger
	server   *http.Server
	listener net.Listener
}

// NewServer creates a control server on addr. metrics may be nil.
func NewServer(addr string, dispatch Dispatch, board *cycler.Board, metrics http.Handler, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		addr:     addr,
		dispatch: dispatch,
		board:    board,
		log:      log,
	}
	s.server = &http.Server{
		Handler:           s.routes(metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes(metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/next", s.handleAction(cycler.ActionAdvance))
	mux.HandleFunc("/prev", s.handleAction(cycler.ActionRetreat))
	mux.HandleFunc("/pause", s.handleAction(cycler.ActionTogglePause))
	mux.HandleFunc("/override", s.handleOverride)
	mux.HandleFunc("/status", s.handleStatus)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.log.Info("control server listening", logger.String("addr", ln.Addr().String()))
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("control server", logger.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

type overrideRequest struct {
	Content string `json:"content"`
}

type commandResponse struct {
	Accepted string `json:"accepted"`
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Phase       string    `json:"phase"`
	Index       int       `json:"index"`
	Position    int       `json:"position"`
	Total       int       `json:"total"`
	Current     string    `json:"current,omitempty"`
	Kind        string    `json:"kind,omitempty"`
	LastShown   string    `json:"last_shown,omitempty"`
	Override    string    `json:"override,omitempty"`
	Fallback    bool      `json:"fallback"`
	Title       string    `json:"title"`
	Pending     bool      `json:"pending"`
	RemainingMS int64     `json:"remaining_ms"`
	Items       []string  `json:"items"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *Server) handleAction(a cycler.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.accept(w, cycler.Command{Action: a})
	}
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req overrideRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(req.Content)
	if text == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	s.accept(w, cycler.Command{Action: cycler.ActionOverride, Text: text})
}

func (s *Server) accept(w http.ResponseWriter, cmd cycler.Command) {
	s.log.Info("control command", logger.String("action", cmd.Action.String()))
	s.dispatch(cmd)
	writeJSON(w, http.StatusAccepted, commandResponse{Accepted: cmd.Action.String()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) status() StatusResponse {
	st, title, updated := s.board.Load()
	pos, total := st.Position()
	resp := StatusResponse{
		Phase:       st.Phase.String(),
		Index:       st.Index,
		Position:    pos,
		Total:       total,
		LastShown:   st.LastShown,
		Override:    st.Override,
		Fallback:    st.Fallback,
		Title:       title,
		Pending:     st.Pending,
		RemainingMS: st.Remaining.Milliseconds(),
		Items:       st.Items,
		UpdatedAt:   updated,
	}
	if resp.Items == nil {
		resp.Items = []string{}
	}
	if st.Current.Raw != "" {
		resp.Current = st.Current.Raw
		resp.Kind = st.Current.Kind.String()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
