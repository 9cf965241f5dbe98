package admission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/metrics"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

const DefaultThreshold = 70

// CatalogStore is the collection of admitted products.
type CatalogStore interface {
	Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error)
	List(ctx context.Context) ([]models.CatalogEntry, error)
}

type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("catalog store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

type Config struct {
	// Threshold is the minimum score admitted. Zero or less selects DefaultThreshold.
	Threshold int
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

type Controller struct {
	store     CatalogStore
	threshold int
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func New(store CatalogStore, cfg Config) *Controller {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		store:     store,
		threshold: threshold,
		logger:    logger.With("component", "admission"),
		metrics:   cfg.Metrics,
		now:       time.Now,
	}
}

func (c *Controller) Threshold() int {
	return c.threshold
}

// Admit inserts the product when the score clears the threshold. The model's
// decision is not consulted. A store failure after approval is FAILED, never REJECTED.
func (c *Controller) Admit(ctx context.Context, sub models.Submission, ev models.Evaluation) models.AdmissionResult {
	if ev.Score < c.threshold {
		c.metrics.IncAdmission(string(models.AdmissionRejected))
		c.logger.Info("product rejected", "product", sub.ProductName, "score", ev.Score, "threshold", c.threshold)
		return models.AdmissionResult{Status: models.AdmissionRejected}
	}

	entry := NewEntry(sub, ev, c.now().UTC())
	stored, err := c.store.Insert(ctx, entry)
	if err != nil {
		c.metrics.IncAdmission(string(models.AdmissionFailed))
		c.logger.Error("approved product not added to catalog", "product", sub.ProductName, "score", ev.Score, "error", err)
		return models.AdmissionResult{Status: models.AdmissionFailed, Err: &StoreError{Op: "insert", Err: err}}
	}

	c.metrics.IncAdmission(string(models.AdmissionAdded))
	c.logger.Info("product added to catalog", "product", sub.ProductName, "id", stored.ID, "score", ev.Score)
	return models.AdmissionResult{Status: models.AdmissionAdded, Entry: &stored}
}

func NewEntry(sub models.Submission, ev models.Evaluation, evaluatedAt time.Time) models.CatalogEntry {
	return models.CatalogEntry{
		Name:        sub.ProductName,
		Description: sub.Description,
		Price:       sub.Price,
		Vendor:      sub.VendorName,
		Category:    sub.Category,
		AIEvaluation: models.EvaluationSummary{
			Score:       ev.Score,
			Decision:    ev.Decision,
			EvaluatedAt: evaluatedAt,
		},
	}
}

// Message is the vendor-facing sentence for an admission outcome.
func Message(result models.AdmissionResult, ev models.Evaluation, threshold int) string {
	switch result.Status {
	case models.AdmissionAdded:
		return fmt.Sprintf("Product approved with a score of %d and added to the catalog.", ev.Score)
	case models.AdmissionRejected:
		return fmt.Sprintf("Product scored %d, below the acceptance threshold of %d.", ev.Score, threshold)
	default:
		return fmt.Sprintf("Product approved with a score of %d but could not be added to the catalog. Please retry.", ev.Score)
	}
}
