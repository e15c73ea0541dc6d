package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/actionchain"
	"github.com/aretw0/actionchain/internal/logging"
	"github.com/aretw0/actionchain/pkg/domain"
	"github.com/aretw0/actionchain/pkg/observability"
	"github.com/aretw0/actionchain/pkg/ports"
	"github.com/aretw0/actionchain/pkg/registry"
	"github.com/aretw0/actionchain/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExecuteRequest is the body of POST /execute. Either Chain or ChainID is set.
type ExecuteRequest struct {
	Chain   *schema.ChainConfig `json:"chain,omitempty"`
	ChainID string              `json:"chain_id,omitempty"`
	Input   *domain.Dataset     `json:"input,omitempty"`
	Params  map[string]any      `json:"params,omitempty"`
}

// ExecuteResponse is the body of a successful POST /execute.
type ExecuteResponse struct {
	Result  *domain.Result  `json:"result"`
	Effects []domain.Effect `json:"effects"`
	Trace   string          `json:"trace,omitempty"`
}

// ValidateRequest is the body of POST /validate.
type ValidateRequest struct {
	Chain *schema.ChainConfig `json:"chain"`
}

// ValidateResponse reports every problem of a chain definition.
type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Trace string `json:"trace,omitempty"`
}

// Server exposes chain execution over HTTP.
type Server struct {
	Registry *registry.Registry
	Manager  ports.TransactionManager
	Chains   ports.ChainRepository

	logger   *slog.Logger
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
}

type Option func(*Server)

// WithTransactionManager sets where chains get their transaction handles.
func WithTransactionManager(m ports.TransactionManager) Option {
	return func(s *Server) {
		s.Manager = m
	}
}

// WithRepository enables running stored chains by id.
func WithRepository(repo ports.ChainRepository) Option {
	return func(s *Server) {
		s.Chains = repo
	}
}

// WithMetrics records chain runs in reg and serves them on /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.metrics = observability.NewMetrics(reg)
		s.gatherer = reg
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler. Request bodies are validated against
// the embedded OpenAPI document before they reach the handlers.
func NewHandler(reg *registry.Registry, opts ...Option) (http.Handler, error) {
	s := &Server{Registry: reg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc, s.logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(validate)
		r.Post("/execute", s.Execute)
		r.Post("/validate", s.Validate)
		r.Get("/chains", s.ListChains)
	})

	return r, nil
}

// Execute handles the POST /execute request.
func (s *Server) Execute(w http.ResponseWriter, r *http.Request) {
	var body ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}

	cfg := body.Chain
	if cfg == nil {
		if body.ChainID == "" || s.Chains == nil {
			writeError(w, http.StatusBadRequest, "either chain or chain_id is required", "")
			return
		}
		stored, err := s.Chains.GetChain(r.Context(), body.ChainID)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrChainNotFound) {
				status = http.StatusNotFound
			}
			writeError(w, status, err.Error(), "")
			return
		}
		cfg = stored
	}

	opts := []actionchain.Option{actionchain.WithLogger(s.logger)}
	if s.Manager != nil {
		opts = append(opts, actionchain.WithTransactionManager(s.Manager))
	}
	if s.metrics != nil {
		opts = append(opts, actionchain.WithHooks(s.metrics.Hooks()))
	}

	chain, err := actionchain.Build(cfg, s.Registry, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	outcome, trace, err := chain.Execute(r.Context(), domain.NewTask(body.Input, body.Params), nil)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if domain.IsConfigurationError(err) {
			status = http.StatusBadRequest
		}
		s.logger.Warn("chain failed", "chain", chain.Identity(), "err", err)
		writeError(w, status, err.Error(), trace.String())
		return
	}

	writeJSON(w, http.StatusOK, ExecuteResponse{
		Result:  outcome.Result,
		Effects: outcome.Effects,
		Trace:   trace.String(),
	})
}

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return
	}

	resp := ValidateResponse{Valid: true}
	if err := schema.Validate(body.Chain); err != nil {
		resp.Valid = false
		for _, e := range schema.ValidationErrors(err) {
			resp.Errors = append(resp.Errors, e.Error())
		}
	} else if _, err := actionchain.Build(body.Chain, s.Registry); err != nil {
		resp.Valid = false
		resp.Errors = []string{err.Error()}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListChains handles the GET /chains request.
func (s *Server) ListChains(w http.ResponseWriter, r *http.Request) {
	if s.Chains == nil {
		writeJSON(w, http.StatusOK, []string{})
		return
	}
	ids, err := s.Chains.ListChains(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "actionchain-http",
		"version":     strings.TrimSpace(actionchain.Version),
		"api_version": apiVersion,
	})
}
