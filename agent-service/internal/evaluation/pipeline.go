package evaluation

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/gateway"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/metrics"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
	"github.com/ILLUVRSE/VendorCatalog/pkg/logging"
)

const (
	defaultSideEffectTimeout = 5 * time.Second
	defaultAgentVersion      = "1.0.0"

	missingFieldsMessage = "Missing required fields: productName and description are required"
)

type Gateway interface {
	Invoke(ctx context.Context, messages []gateway.Message) (gateway.Reply, error)
}

// Recorder persists the audit copy of an evaluation.
type Recorder interface {
	Record(ctx context.Context, rec models.EvaluationRecord) error
}

// Publisher emits evaluation events keyed by product name.
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

type Sinks struct {
	Recorder  Recorder
	Publisher Publisher
}

type Config struct {
	Threshold         int
	AgentVersion      string
	SideEffectTimeout time.Duration
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
}

type Pipeline struct {
	gateway  Gateway
	parser   *Parser
	sinks    Sinks
	cfg      Config
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
	inflight sync.WaitGroup
}

func New(gw Gateway, parser *Parser, sinks Sinks, cfg Config) *Pipeline {
	if parser == nil {
		parser = NewParser(nil)
	}
	if cfg.SideEffectTimeout <= 0 {
		cfg.SideEffectTimeout = defaultSideEffectTimeout
	}
	if cfg.AgentVersion == "" {
		cfg.AgentVersion = defaultAgentVersion
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pipeline{
		gateway:  gw,
		parser:   parser,
		sinks:    sinks,
		cfg:      cfg,
		logger:   logger.With("component", "evaluation"),
		validate: newValidator(),
		now:      time.Now,
	}
}

func (p *Pipeline) Threshold() int {
	return p.cfg.Threshold
}

// Evaluate scores one submission. The only error it returns is *ValidationError;
// gateway failures are absorbed into DefaultEvaluation.
func (p *Pipeline) Evaluate(ctx context.Context, sub models.Submission) (models.Evaluation, error) {
	start := p.now()
	sub = normalize(sub)
	if err := p.validateSubmission(sub); err != nil {
		return models.Evaluation{}, err
	}

	// The model call runs to its own timeout even if the caller goes away.
	reply, err := p.gateway.Invoke(context.WithoutCancel(ctx), BuildMessages(sub, p.cfg.Threshold))

	var ev models.Evaluation
	if err != nil {
		p.logger.Warn("model gateway failed, returning default evaluation",
			"product", sub.ProductName,
			"kind", gateway.KindOf(err),
			"error", err,
		)
		ev = DefaultEvaluation(p.cfg.Threshold)
	} else {
		ev = p.parser.Parse(reply, sub, p.cfg.Threshold)
	}
	ev.ProcessingTimeMS = p.now().Sub(start).Milliseconds()
	if ev.ProcessingTimeMS < 0 {
		ev.ProcessingTimeMS = 0
	}

	p.cfg.Metrics.IncEvaluation(string(ev.EvaluationMethod), string(ev.Decision))
	p.logger.Info("product evaluated",
		"product", sub.ProductName,
		"score", ev.Score,
		"decision", ev.Decision,
		"method", ev.EvaluationMethod,
		"processing_time_ms", ev.ProcessingTimeMS,
	)

	p.dispatch(ctx, sub, ev, reply)
	return ev, nil
}

// DefaultEvaluation is returned when the model could not be reached at all.
// It approves so that an outage never silently drops a submission.
func DefaultEvaluation(threshold int) models.Evaluation {
	return models.Evaluation{
		Score:            75,
		Decision:         models.DecisionApproved,
		Reasoning:        "Automatic approval due to AI service error - manual review recommended",
		CategoryMatch:    "Unable to assess due to system error",
		MarketPotential:  models.MarketPotentialMedium,
		Threshold:        threshold,
		EvaluationMethod: models.MethodErrorFallback,
		Error:            true,
	}
}

// Wait blocks until every in-flight audit and publish attempt has finished.
func (p *Pipeline) Wait() {
	p.inflight.Wait()
}

func (p *Pipeline) dispatch(ctx context.Context, sub models.Submission, ev models.Evaluation, reply gateway.Reply) {
	if p.sinks.Recorder == nil && p.sinks.Publisher == nil {
		return
	}
	ts := p.now().UTC()
	record := models.EvaluationRecord{
		ID:           uuid.NewString(),
		Product:      sub,
		Evaluation:   ev,
		RawResponse:  string(reply),
		Timestamp:    ts,
		AgentVersion: p.cfg.AgentVersion,
	}
	event := models.EvaluationEvent{Product: sub, Evaluation: ev, Timestamp: ts}
	base := context.WithoutCancel(ctx)

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		sctx, cancel := context.WithTimeout(base, p.cfg.SideEffectTimeout)
		defer cancel()

		var wg sync.WaitGroup
		if rec := p.sinks.Recorder; rec != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := rec.Record(sctx, record); err != nil {
					p.cfg.Metrics.IncSideEffectFailure("audit")
					p.logger.Warn("audit record failed", "record_id", record.ID, "error", err)
				}
			}()
		}
		if pub := p.sinks.Publisher; pub != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := pub.Publish(sctx, sub.ProductName, event); err != nil {
					p.cfg.Metrics.IncSideEffectFailure("events")
					p.logger.Warn("evaluation event publish failed", "product", sub.ProductName, "error", err)
				}
			}()
		}
		wg.Wait()
	}()
}

func normalize(sub models.Submission) models.Submission {
	sub.VendorName = strings.TrimSpace(sub.VendorName)
	sub.ProductName = strings.TrimSpace(sub.ProductName)
	sub.Description = strings.TrimSpace(sub.Description)
	sub.Category = strings.TrimSpace(sub.Category)
	return sub
}

func (p *Pipeline) validateSubmission(sub models.Submission) error {
	err := p.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error()}
	}
	vErr := &ValidationError{}
	missing := false
	for _, fe := range fieldErrs {
		vErr.Fields = append(vErr.Fields, fe.Field())
		if fe.Tag() == "required" {
			missing = true
		}
	}
	if missing {
		vErr.Message = missingFieldsMessage
	} else {
		vErr.Message = "Invalid fields: " + strings.Join(vErr.Fields, ", ")
	}
	return vErr
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}
