package admission_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/admission"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/metrics"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

type failingStore struct {
	inserts int
}

func (f *failingStore) Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	f.inserts++
	return models.CatalogEntry{}, errors.New("catalog returned 503 Service Unavailable")
}

func (f *failingStore) List(ctx context.Context) ([]models.CatalogEntry, error) {
	return nil, nil
}

var smartWatch = models.Submission{
	VendorName:  "TechCorp",
	ProductName: "Smart Watch",
	Description: "A waterproof smart watch.",
	Price:       299.99,
	Category:    "Electronics",
}

func TestAdmitBelowThresholdIsRejected(t *testing.T) {
	store := admission.NewMemoryCatalog()
	c := admission.New(store, admission.Config{Threshold: 70})

	res := c.Admit(context.Background(), smartWatch, models.Evaluation{Score: 69, Decision: models.DecisionApproved})
	assert.Equal(t, models.AdmissionRejected, res.Status)
	assert.Nil(t, res.Entry)
	assert.NoError(t, res.Err)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAdmitAtThresholdInserts(t *testing.T) {
	store := admission.NewMemoryCatalog()
	c := admission.New(store, admission.Config{Threshold: 70})

	res := c.Admit(context.Background(), smartWatch, models.Evaluation{Score: 70, Decision: models.DecisionRejected})
	require.Equal(t, models.AdmissionAdded, res.Status)
	require.NotNil(t, res.Entry)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Smart Watch", entries[0].Name)
	assert.Equal(t, 70, entries[0].AIEvaluation.Score)
}

func TestAdmitBuildsCatalogEntry(t *testing.T) {
	store := admission.NewMemoryCatalog()
	c := admission.New(store, admission.Config{})
	assert.Equal(t, admission.DefaultThreshold, c.Threshold())

	ev := models.Evaluation{Score: 85, Decision: models.DecisionApproved}
	res := c.Admit(context.Background(), smartWatch, ev)

	require.Equal(t, models.AdmissionAdded, res.Status)
	entry := res.Entry
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Smart Watch", entry.Name)
	assert.Equal(t, "A waterproof smart watch.", entry.Description)
	assert.Equal(t, 299.99, entry.Price)
	assert.Equal(t, "TechCorp", entry.Vendor)
	assert.Equal(t, "Electronics", entry.Category)
	assert.Equal(t, 85, entry.AIEvaluation.Score)
	assert.Equal(t, models.DecisionApproved, entry.AIEvaluation.Decision)
	assert.False(t, entry.AIEvaluation.EvaluatedAt.IsZero())
}

func TestAdmitStoreFailureIsFailedNotRejected(t *testing.T) {
	store := &failingStore{}
	m := metrics.New(prometheus.NewRegistry())
	c := admission.New(store, admission.Config{Threshold: 70, Metrics: m})

	res := c.Admit(context.Background(), smartWatch, models.Evaluation{Score: 75, Decision: models.DecisionApproved, Error: true})

	assert.Equal(t, models.AdmissionFailed, res.Status)
	assert.Nil(t, res.Entry)
	assert.Equal(t, 1, store.inserts)
	var storeErr *admission.StoreError
	require.True(t, errors.As(res.Err, &storeErr))
	assert.Equal(t, "insert", storeErr.Op)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Admissions.WithLabelValues("FAILED")))
}
