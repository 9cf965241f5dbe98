package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/admission"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/catalog"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

var _ admission.CatalogStore = (*catalog.Client)(nil)

func TestInsertPostsEntry(t *testing.T) {
	evaluatedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)

		var entry models.CatalogEntry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&entry))
		assert.Equal(t, "Smart Watch", entry.Name)
		assert.Equal(t, 299.99, entry.Price)
		assert.Equal(t, 85, entry.AIEvaluation.Score)
		assert.True(t, evaluatedAt.Equal(entry.AIEvaluation.EvaluatedAt))

		entry.ID = "6f1c2d1e-0000-4000-8000-000000000001"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "product": entry})
	}))
	defer srv.Close()

	c := catalog.New(srv.URL+"/", time.Second)
	stored, err := c.Insert(context.Background(), models.CatalogEntry{
		Name:   "Smart Watch",
		Price:  299.99,
		Vendor: "TechCorp",
		AIEvaluation: models.EvaluationSummary{
			Score:       85,
			Decision:    models.DecisionApproved,
			EvaluatedAt: evaluatedAt,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "6f1c2d1e-0000-4000-8000-000000000001", stored.ID)
}

func TestInsertFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"success":false,"error":"database unavailable"}`))
		},
		"unsuccessful": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":false,"error":"duplicate"}`))
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			_, err := catalog.New(srv.URL, time.Second).Insert(context.Background(), models.CatalogEntry{Name: "x"})
			assert.Error(t, err)
		})
	}
}

func TestInsertTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := catalog.New(srv.URL, 30*time.Millisecond).Insert(context.Background(), models.CatalogEntry{Name: "x"})
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"products":[{"id":"a","name":"Smart Watch","price":299.99,"ai_evaluation":{"score":85,"decision":"APPROVED","evaluated_at":"2026-03-01T12:00:00Z"}}]}`))
	}))
	defer srv.Close()

	products, err := catalog.New(srv.URL, time.Second).List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Smart Watch", products[0].Name)
	assert.Equal(t, models.DecisionApproved, products[0].AIEvaluation.Decision)
}
