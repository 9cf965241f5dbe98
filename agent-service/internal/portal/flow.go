// Package portal runs the vendor-side submission flow: evaluate through the
// agent service, then admit approved products into the catalog, reporting
// each state change to the caller.
package portal

import (
	"context"
	"errors"
	"net/http"
	"syscall"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/admission"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/clients/agent"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

type Evaluator interface {
	Evaluate(ctx context.Context, sub models.Submission) (models.Evaluation, error)
}

// FlowError is a transport-level failure shown to the vendor as a single line.
type FlowError struct {
	Message string
	Err     error
}

func (e *FlowError) Error() string { return e.Message }
func (e *FlowError) Unwrap() error { return e.Err }

type Outcome struct {
	State      models.FlowState
	Evaluation models.Evaluation
	Result     models.AdmissionResult
	Message    string
}

type Flow struct {
	evaluator Evaluator
	admission *admission.Controller
}

func NewFlow(evaluator Evaluator, controller *admission.Controller) *Flow {
	return &Flow{evaluator: evaluator, admission: controller}
}

// Run evaluates sub and, when the score clears the acceptance threshold,
// stores it. onState may be nil.
func (f *Flow) Run(ctx context.Context, sub models.Submission, onState func(models.FlowState)) (Outcome, error) {
	if onState == nil {
		onState = func(models.FlowState) {}
	}
	ev, err := f.evaluator.Evaluate(ctx, sub)
	if err != nil {
		return Outcome{}, &FlowError{Message: UserMessage(err), Err: err}
	}
	if ev.Score >= f.admission.Threshold() {
		onState(models.FlowAdding)
	}
	result := f.admission.Admit(ctx, sub, ev)
	state := result.Status.FlowState()
	onState(state)
	return Outcome{
		State:      state,
		Evaluation: ev,
		Result:     result,
		Message:    admission.Message(result, ev, f.admission.Threshold()),
	}, nil
}

func UserMessage(err error) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "AI service unavailable. Please ensure the agent service is running."
	}
	var apiErr *agent.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			return "AI evaluation endpoint not found."
		case apiErr.StatusCode == http.StatusBadRequest && apiErr.Message != "":
			return apiErr.Message
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "AI evaluation timed out. Please try again."
	}
	return "Failed to evaluate product: " + err.Error()
}
