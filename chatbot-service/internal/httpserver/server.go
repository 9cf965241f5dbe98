package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/catalog"
	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/intent"
	"github.com/ILLUVRSE/VendorCatalog/chatbot-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

const (
	serviceName    = "chatbot-service"
	requestTimeout = 60 * time.Second
	pingTimeout    = 2 * time.Second
	maxBodyBytes   = 64 << 10
	chatFailure    = "Sorry, I encountered an error. Please try again."
)

type Catalog interface {
	Search(ctx context.Context, f catalog.Filter) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (models.Stats, error)
	Ping(ctx context.Context) error
}

type Responder interface {
	Reply(ctx context.Context, message string, data models.CatalogData) string
}

type Config struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
	Logger         *slog.Logger
}

type Server struct {
	catalog   Catalog
	assistant Responder
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

func New(c Catalog, assistant Responder, cfg Config) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = requestTimeout
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		catalog:   c,
		assistant: assistant,
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
	r.Use(cors(s.cfg.AllowedOrigins))
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/health", s.handleHealth)
	r.Post("/api/chat", s.handleChat)
	r.Get("/api/products/search", s.handleSearch)
	r.Get("/api/products/{id}", s.handleGetProduct)
	r.Get("/api/categories", s.handleCategories)
	r.Get("/api/stats", s.handleStats)
	return r
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response    string             `json:"response"`
	CatalogData models.CatalogData `json:"catalogData"`
	Intent      intent.Intent      `json:"intent"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	in := intent.Parse(message)
	data, err := s.lookup(r.Context(), message, in)
	if err != nil {
		s.logger.Error("chat catalog lookup failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   chatFailure,
			"details": err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, chatResponse{
		Response:    s.assistant.Reply(r.Context(), message, data),
		CatalogData: data,
		Intent:      in,
	})
}

// lookup gathers the catalog context for a chat message. General questions
// load stats and categories together; anything else becomes a product search.
func (s *Server) lookup(ctx context.Context, message string, in intent.Intent) (models.CatalogData, error) {
	var data models.CatalogData
	switch {
	case in.IsGeneralQuery:
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			stats, err := s.catalog.Stats(gctx)
			if err != nil {
				return err
			}
			data.Stats = &stats
			return nil
		})
		g.Go(func() error {
			categories, err := s.catalog.Categories(gctx)
			if err != nil {
				return err
			}
			data.Categories = categories
			return nil
		})
		if err := g.Wait(); err != nil {
			return models.CatalogData{}, err
		}
	case in.IsProductSearch || in.SearchTerms != "" || in.HasFilters():
		products, err := s.catalog.Search(ctx, catalog.Filter{
			Query:    in.SearchTerms,
			Category: in.Category,
			MinPrice: in.MinPrice,
			MaxPrice: in.MaxPrice,
		})
		if err != nil {
			return models.CatalogData{}, err
		}
		data.Products = products
	default:
		products, err := s.catalog.Search(ctx, catalog.Filter{Query: message})
		if err != nil {
			return models.CatalogData{}, err
		}
		data.Products = products
	}
	return data, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := catalog.Filter{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
		Status:   q.Get("status"),
	}
	var err error
	if filter.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		respondError(w, http.StatusBadRequest, "minPrice must be a number")
		return
	}
	if filter.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		respondError(w, http.StatusBadRequest, "maxPrice must be a number")
		return
	}

	products, err := s.catalog.Search(r.Context(), filter)
	if err != nil {
		s.logger.Error("product search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func parsePrice(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}
	product, err := s.catalog.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		s.logger.Error("product fetch failed", "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"product": product})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.logger.Error("categories fetch failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats fetch failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, pingTimeout)
	defer cancel()
	payload := map[string]interface{}{
		"service":   serviceName,
		"timestamp": s.now().UTC(),
	}
	if err := s.catalog.Ping(ctx); err != nil {
		payload["status"] = "unhealthy"
		payload["error"] = err.Error()
		respondJSON(w, http.StatusServiceUnavailable, payload)
		return
	}
	payload["status"] = "healthy"
	respondJSON(w, http.StatusOK, payload)
}
