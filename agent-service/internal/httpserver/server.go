package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/admission"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/evaluation"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/gateway"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/metrics"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

const (
	agentName        = "vendor-evaluator"
	serviceName      = "agent-service"
	requestTimeout   = 90 * time.Second
	pingTimeout      = 5 * time.Second
	maxBodyBytes     = 1 << 20
	manualReviewHint = "Manual review recommended"
)

type Config struct {
	// RequestTimeout must exceed the model runner timeout so degraded
	// evaluations are still returned to the caller.
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer
	Logger         *slog.Logger
}

type Server struct {
	pipeline  *evaluation.Pipeline
	admission *admission.Controller
	runner    *gateway.Client
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

func New(pipeline *evaluation.Pipeline, controller *admission.Controller, runner *gateway.Client, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = requestTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		pipeline:  pipeline,
		admission: controller,
		runner:    runner,
		cfg:       cfg,
		logger:    logger.With("component", "httpserver"),
		now:       time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/agents", s.handleAgents)
	r.Get("/test-model-runner", s.handleTestModelRunner)
	r.Post("/products/evaluate", s.handleEvaluate)
	r.Post("/products/submit", s.handleSubmit)
	if s.cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.cfg.Gatherer))
	}
	return r
}

type submitRequest struct {
	VendorName  string      `json:"vendorName"`
	ProductName string      `json:"productName"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
}

func (req submitRequest) submission() (models.Submission, error) {
	sub := models.Submission{
		VendorName:  req.VendorName,
		ProductName: req.ProductName,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Price != "" {
		price, err := req.Price.Float64()
		if err != nil {
			return models.Submission{}, fmt.Errorf("price must be a number")
		}
		sub.Price = price
	}
	return sub, nil
}

type failureResponse struct {
	Success            bool               `json:"success"`
	Error              string             `json:"error"`
	FallbackEvaluation *models.Evaluation `json:"fallback_evaluation"`
}

func (s *Server) readSubmission(w http.ResponseWriter, r *http.Request) (models.Submission, bool) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, failureResponse{Error: "invalid request body: " + err.Error()})
		return models.Submission{}, false
	}
	sub, err := req.submission()
	if err != nil {
		respondJSON(w, http.StatusBadRequest, failureResponse{Error: err.Error()})
		return models.Submission{}, false
	}
	return sub, true
}

// evaluate writes the validation failure itself and reports whether to continue.
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, sub models.Submission) (models.Evaluation, bool) {
	ev, err := s.pipeline.Evaluate(r.Context(), sub)
	if err != nil {
		if evaluation.IsValidationError(err) {
			respondJSON(w, http.StatusBadRequest, failureResponse{Error: err.Error()})
			return models.Evaluation{}, false
		}
		s.logger.Error("evaluation failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, failureResponse{Error: err.Error()})
		return models.Evaluation{}, false
	}
	return ev, true
}

func (s *Server) metadata(ev models.Evaluation) map[string]interface{} {
	meta := map[string]interface{}{
		"processing_time_ms": ev.ProcessingTimeMS,
		"agent":              agentName,
		"model":              s.runner.Model(),
		"endpoint":           s.runner.CompletionURL(),
		"timestamp":          s.now().UTC(),
	}
	if ev.Error {
		meta["error_occurred"] = true
		meta["suggested_action"] = manualReviewHint
	}
	return meta
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.readSubmission(w, r)
	if !ok {
		return
	}
	ev, ok := s.evaluate(w, r, sub)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"evaluation": ev,
		"metadata":   s.metadata(ev),
	})
}

type admissionPayload struct {
	Status  models.AdmissionStatus `json:"status"`
	Product *models.CatalogEntry   `json:"product,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, ok := s.readSubmission(w, r)
	if !ok {
		return
	}
	ev, ok := s.evaluate(w, r, sub)
	if !ok {
		return
	}
	result := s.admission.Admit(r.Context(), sub, ev)
	payload := admissionPayload{Status: result.Status, Product: result.Entry}
	if result.Err != nil {
		payload.Error = result.Err.Error()
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"evaluation": ev,
		"admission":  payload,
		"state":      result.Status.FlowState(),
		"message":    admission.Message(result, ev, s.admission.Threshold()),
		"metadata":   s.metadata(ev),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "healthy",
		"service":              serviceName,
		"model_runner_url":     s.runner.BaseURL(),
		"model":                s.runner.Model(),
		"threshold":            s.pipeline.Threshold(),
		"acceptance_threshold": s.admission.Threshold(),
		"timestamp":            s.now().UTC(),
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"agents": []map[string]interface{}{
			{
				"name":        agentName,
				"description": "Scores vendor product submissions and admits approved products to the catalog",
				"model":       s.runner.Model(),
				"threshold":   s.pipeline.Threshold(),
				"criteria":    evaluation.Rubric,
				"endpoints":   []string{"/products/evaluate", "/products/submit"},
			},
		},
	})
}

func (s *Server) handleTestModelRunner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, pingTimeout)
	defer cancel()
	if err := s.runner.Ping(ctx); err != nil {
		resp := map[string]interface{}{
			"success":       false,
			"error":         err.Error(),
			"kind":          gateway.KindOf(err),
			"attempted_url": s.runner.HealthURL(),
		}
		var gwErr *gateway.GatewayError
		if errors.As(err, &gwErr) && gwErr.URL != "" {
			resp["attempted_url"] = gwErr.URL
		}
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"model_runner_url": s.runner.HealthURL(),
		"completion_url":   s.runner.CompletionURL(),
		"model":            s.runner.Model(),
	})
}
