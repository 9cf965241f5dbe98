package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/agent"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

func TestEvaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/evaluate", r.URL.Path)
		var sub models.Submission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		assert.Equal(t, "Smart Watch", sub.ProductName)
		_, _ = w.Write([]byte(`{"success":true,"evaluation":{"score":85,"decision":"APPROVED","evaluation_method":"MODEL","threshold":70}}`))
	}))
	defer srv.Close()

	ev, err := agent.New(srv.URL, time.Second).Evaluate(context.Background(), models.Submission{ProductName: "Smart Watch", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, 85, ev.Score)
	assert.Equal(t, models.MethodModel, ev.EvaluationMethod)
}

func TestEvaluateSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"Missing required fields: productName and description are required","fallback_evaluation":null}`))
	}))
	defer srv.Close()

	_, err := agent.New(srv.URL, time.Second).Evaluate(context.Background(), models.Submission{})
	var apiErr *agent.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Missing required fields: productName and description are required", apiErr.Message)
}

func TestEvaluateNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := agent.New(srv.URL, time.Second).Evaluate(context.Background(), models.Submission{ProductName: "a", Description: "b"})
	var apiErr *agent.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
