package portal_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/admission"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/agent"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/portal"
)

type stubEvaluator struct {
	ev  models.Evaluation
	err error
}

func (s stubEvaluator) Evaluate(ctx context.Context, sub models.Submission) (models.Evaluation, error) {
	return s.ev, s.err
}

type downCatalog struct{}

func (downCatalog) Insert(ctx context.Context, entry models.CatalogEntry) (models.CatalogEntry, error) {
	return models.CatalogEntry{}, errors.New("catalog returned 500")
}

func (downCatalog) List(ctx context.Context) ([]models.CatalogEntry, error) { return nil, nil }

var smartWatch = models.Submission{VendorName: "TechCorp", ProductName: "Smart Watch", Description: "d", Price: 299.99, Category: "Electronics"}

func run(t *testing.T, eval portal.Evaluator, store admission.CatalogStore) (portal.Outcome, []models.FlowState, error) {
	t.Helper()
	var states []models.FlowState
	flow := portal.NewFlow(eval, admission.New(store, admission.Config{Threshold: 70}))
	out, err := flow.Run(context.Background(), smartWatch, func(s models.FlowState) { states = append(states, s) })
	return out, states, err
}

func TestFlowApprovedAndAdded(t *testing.T) {
	store := admission.NewMemoryCatalog()
	out, states, err := run(t, stubEvaluator{ev: models.Evaluation{Score: 85, Decision: models.DecisionApproved}}, store)
	require.NoError(t, err)
	assert.Equal(t, []models.FlowState{models.FlowAdding, models.FlowSuccess}, states)
	assert.Equal(t, models.FlowSuccess, out.State)
	require.NotNil(t, out.Result.Entry)
	assert.Equal(t, 299.99, out.Result.Entry.Price)
}

func TestFlowRejectedSkipsAdding(t *testing.T) {
	out, states, err := run(t, stubEvaluator{ev: models.Evaluation{Score: 69}}, admission.NewMemoryCatalog())
	require.NoError(t, err)
	assert.Equal(t, []models.FlowState{models.FlowRejected}, states)
	assert.Equal(t, "Product scored 69, below the acceptance threshold of 70.", out.Message)
}

func TestFlowStoreFailure(t *testing.T) {
	out, states, err := run(t, stubEvaluator{ev: models.Evaluation{Score: 75, Error: true}}, downCatalog{})
	require.NoError(t, err)
	assert.Equal(t, []models.FlowState{models.FlowAdding, models.FlowFailed}, states)
	assert.Equal(t, models.AdmissionFailed, out.Result.Status)
}

func TestFlowTransportErrors(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"refused":   {fmt.Errorf("post: %w", syscall.ECONNREFUSED), "AI service unavailable. Please ensure the agent service is running."},
		"not found": {&agent.APIError{StatusCode: http.StatusNotFound}, "AI evaluation endpoint not found."},
		"invalid":   {&agent.APIError{StatusCode: http.StatusBadRequest, Message: "Missing required fields: productName and description are required"}, "Missing required fields: productName and description are required"},
		"other":     {errors.New("boom"), "Failed to evaluate product: boom"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, states, err := run(t, stubEvaluator{err: tc.err}, admission.NewMemoryCatalog())
			var flowErr *portal.FlowError
			require.True(t, errors.As(err, &flowErr))
			assert.Equal(t, tc.want, flowErr.Message)
			assert.Empty(t, states)
		})
	}
}
