package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/trustroute"
	"github.com/aretw0/trustroute/pkg/controller"
	"github.com/aretw0/trustroute/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine is the subset of the decision engine exposed over HTTP.
type Engine interface {
	Decide(ctx context.Context, src, dst domain.NodeID, candidates []domain.Action) (domain.Decision, error)
	OnOutcomeObserved(ctx context.Context, outcome domain.Outcome) error
	Trust(ctx context.Context, node domain.NodeID) (float64, error)
	Actions(ctx context.Context, src, dst domain.NodeID) (domain.ActionValues, bool, error)
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Switch handles switch events on behalf of the transport.
type Switch interface {
	HandlePacketIn(ctx context.Context, in controller.PacketIn) (*controller.PacketOut, error)
	HandleSwitchFeatures(ctx context.Context, dpid controller.DatapathID) controller.FlowMod
}

// Server serves the decision API.
type Server struct {
	Engine   Engine
	Switch   Switch
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithSwitch enables the packet-in and switch-features routes.
func WithSwitch(sw Switch) Option {
	return func(s *Server) {
		s.Switch = sw
	}
}

// WithMetrics serves the gatherer on path.
func WithMetrics(gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.Gatherer = gatherer
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine. metricsPath is only used
// when WithMetrics is given.
func NewHandler(engine Engine, metricsPath string, opts ...Option) http.Handler {
	server := &Server{
		Engine: engine,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Gatherer != nil {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.Handle(metricsPath, promhttp.HandlerFor(server.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/decisions", server.PostDecision)
		r.Post("/outcomes", server.PostOutcome)
		r.Get("/trust/{node}", server.GetTrust)
		r.Get("/flows/{src}/{dst}", server.GetFlow)
		r.Get("/snapshot", server.GetSnapshot)
		if server.Switch != nil {
			r.Post("/packet-in", server.PostPacketIn)
			r.Post("/switch-features", server.PostSwitchFeatures)
		}
	})
	return r
}

// DecisionRequest is the body of POST /v1/decisions.
type DecisionRequest struct {
	Src        domain.NodeID   `json:"src"`
	Dst        domain.NodeID   `json:"dst"`
	Candidates []domain.Action `json:"candidates,omitempty"`
}

// SwitchFeaturesRequest is the body of POST /v1/switch-features.
type SwitchFeaturesRequest struct {
	DatapathID controller.DatapathID `json:"datapath_id"`
}

// TrustResponse is returned by GET /v1/trust/{node}.
type TrustResponse struct {
	Node  domain.NodeID `json:"node"`
	Trust float64       `json:"trust"`
}

// FlowResponse is returned by GET /v1/flows/{src}/{dst}.
type FlowResponse struct {
	Src     domain.NodeID       `json:"src"`
	Dst     domain.NodeID       `json:"dst"`
	Found   bool                `json:"found"`
	Actions domain.ActionValues `json:"actions"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PostDecision handles POST /v1/decisions.
func (s *Server) PostDecision(w http.ResponseWriter, r *http.Request) {
	var body DecisionRequest
	if !s.decode(w, r, &body) {
		return
	}
	d, err := s.Engine.Decide(r.Context(), body.Src, body.Dst, body.Candidates)
	if err != nil {
		s.fail(w, r, "Decide failed", err)
		return
	}
	s.reply(w, http.StatusOK, d)
}

// PostOutcome handles POST /v1/outcomes.
func (s *Server) PostOutcome(w http.ResponseWriter, r *http.Request) {
	var body domain.Outcome
	if !s.decode(w, r, &body) {
		return
	}
	if err := s.Engine.OnOutcomeObserved(r.Context(), body); err != nil {
		s.fail(w, r, "Outcome failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostPacketIn handles POST /v1/packet-in. A feedback failure after the decision
// still returns the packet-out, since the frame has to be forwarded.
func (s *Server) PostPacketIn(w http.ResponseWriter, r *http.Request) {
	var body controller.PacketIn
	if !s.decode(w, r, &body) {
		return
	}
	out, err := s.Switch.HandlePacketIn(r.Context(), body)
	if err != nil {
		if out == nil || !errors.Is(err, controller.ErrFeedback) {
			s.fail(w, r, "Packet-in failed", err)
			return
		}
		s.Logger.WarnContext(r.Context(), "Packet-in feedback failed", "decision_id", out.Decision.ID, "err", err)
	}
	s.reply(w, http.StatusOK, out)
}

// PostSwitchFeatures handles POST /v1/switch-features.
func (s *Server) PostSwitchFeatures(w http.ResponseWriter, r *http.Request) {
	var body SwitchFeaturesRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.reply(w, http.StatusOK, s.Switch.HandleSwitchFeatures(r.Context(), body.DatapathID))
}

// GetTrust handles GET /v1/trust/{node}.
func (s *Server) GetTrust(w http.ResponseWriter, r *http.Request) {
	node := domain.NodeID(chi.URLParam(r, "node"))
	trust, err := s.Engine.Trust(r.Context(), node)
	if err != nil {
		s.fail(w, r, "Trust lookup failed", err)
		return
	}
	s.reply(w, http.StatusOK, TrustResponse{Node: node, Trust: trust})
}

// GetFlow handles GET /v1/flows/{src}/{dst}. It never creates the pair.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	src := domain.NodeID(chi.URLParam(r, "src"))
	dst := domain.NodeID(chi.URLParam(r, "dst"))
	actions, found, err := s.Engine.Actions(r.Context(), src, dst)
	if err != nil {
		s.fail(w, r, "Flow lookup failed", err)
		return
	}
	if actions == nil {
		actions = domain.ActionValues{}
	}
	s.reply(w, http.StatusOK, FlowResponse{Src: src, Dst: dst, Found: found, Actions: actions})
}

// GetSnapshot handles GET /v1/snapshot.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Engine.Snapshot(r.Context())
	if err != nil {
		s.fail(w, r, "Snapshot failed", err)
		return
	}
	s.reply(w, http.StatusOK, snap)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]string{
		"app":     "trustroute-http",
		"version": strings.TrimSpace(trustroute.Version),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.Logger.WarnContext(r.Context(), "Invalid request body", "path", r.URL.Path, "err", err)
		s.reply(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.ErrorContext(r.Context(), msg, "err", err)
	} else {
		s.Logger.WarnContext(r.Context(), msg, "err", err)
	}
	s.reply(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "err", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotEthernet):
		return http.StatusUnprocessableEntity
	case errors.Is(err, trustroute.ErrNotInspectable):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
