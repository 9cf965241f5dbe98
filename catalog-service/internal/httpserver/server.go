package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ILLUVRSE/VendorCatalog/catalog-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/catalog-service/internal/store"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

const (
	serviceName    = "catalog-service"
	requestTimeout = 30 * time.Second
	pingTimeout    = 2 * time.Second
	maxBodyBytes   = 1 << 20
)

type Server struct {
	store    store.Store
	validate *validator.Validate
	logger   *slog.Logger
	timeout  time.Duration
	now      func() time.Time
}

func New(st store.Store, timeout time.Duration, logger *slog.Logger) *Server {
	if timeout <= 0 {
		timeout = requestTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		store:    st,
		validate: newValidator(),
		logger:   logger.With("component", "httpserver"),
		timeout:  timeout,
		now:      time.Now,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Route("/api/products", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleGet)
	})
	return r
}

type createRequest struct {
	Name         string               `json:"name" validate:"required"`
	Description  string               `json:"description" validate:"required"`
	Price        float64              `json:"price" validate:"gte=0"`
	Vendor       string               `json:"vendor"`
	Category     string               `json:"category"`
	Status       string               `json:"status" validate:"omitempty,oneof=active inactive"`
	AIEvaluation *models.AIEvaluation `json:"ai_evaluation"`
}

func (req createRequest) trimmed() createRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Vendor = strings.TrimSpace(req.Vendor)
	req.Category = strings.TrimSpace(req.Category)
	return req
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFailure(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req = req.trimmed()
	if err := s.validate.Struct(req); err != nil {
		respondFailure(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	product, err := s.store.InsertProduct(r.Context(), store.ProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		Vendor:       req.Vendor,
		Category:     req.Category,
		Status:       req.Status,
		AIEvaluation: req.AIEvaluation,
	})
	if err != nil {
		s.logger.Error("insert product failed", "name", req.Name, "error", err)
		respondFailure(w, http.StatusInternalServerError, "failed to add product")
		return
	}
	s.logger.Info("product added", "id", product.ID, "name", product.Name, "vendor", product.Vendor)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"product": product,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.logger.Error("list products failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	product, err := s.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		s.logger.Error("get product failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, pingTimeout)
	defer cancel()
	payload := map[string]interface{}{
		"service":   serviceName,
		"timestamp": s.now().UTC(),
	}
	if err := s.store.Ping(ctx); err != nil {
		payload["status"] = "unhealthy"
		payload["error"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, payload)
		return
	}
	payload["status"] = "healthy"
	respondJSON(w, http.StatusOK, payload)
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return strings.Join(parts, "; ")
}
