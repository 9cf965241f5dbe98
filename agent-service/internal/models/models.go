package models

import "time"

type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

type MarketPotential string

const (
	MarketPotentialLow    MarketPotential = "LOW"
	MarketPotentialMedium MarketPotential = "MEDIUM"
	MarketPotentialHigh   MarketPotential = "HIGH"
)

type EvaluationMethod string

const (
	MethodModel         EvaluationMethod = "MODEL"
	MethodTextFallback  EvaluationMethod = "TEXT_FALLBACK"
	MethodErrorFallback EvaluationMethod = "ERROR_FALLBACK"
)

// Submission is a vendor's product as entered in the submission form.
type Submission struct {
	VendorName  string  `json:"vendorName" bson:"vendor_name"`
	ProductName string  `json:"productName" bson:"product_name" validate:"required"`
	Description string  `json:"description" bson:"description" validate:"required"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
	Category    string  `json:"category,omitempty" bson:"category,omitempty"`
}

type Evaluation struct {
	Score            int              `json:"score" bson:"score"`
	Decision         Decision         `json:"decision" bson:"decision"`
	Reasoning        string           `json:"reasoning" bson:"reasoning"`
	CategoryMatch    string           `json:"category_match" bson:"category_match"`
	MarketPotential  MarketPotential  `json:"market_potential" bson:"market_potential"`
	Threshold        int              `json:"threshold" bson:"threshold"`
	EvaluationMethod EvaluationMethod `json:"evaluation_method" bson:"evaluation_method"`
	ProcessingTimeMS int64            `json:"processing_time_ms" bson:"processing_time_ms"`
	Error            bool             `json:"error,omitempty" bson:"error,omitempty"`
}

// EvaluationSummary is the slice of an Evaluation embedded in catalog entries.
type EvaluationSummary struct {
	Score       int       `json:"score"`
	Decision    Decision  `json:"decision"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

type CatalogEntry struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        float64           `json:"price"`
	Vendor       string            `json:"vendor"`
	Category     string            `json:"category,omitempty"`
	Status       string            `json:"status,omitempty"`
	AIEvaluation EvaluationSummary `json:"ai_evaluation"`
	CreatedAt    *time.Time        `json:"created_at,omitempty"`
}

type AdmissionStatus string

const (
	AdmissionAdded    AdmissionStatus = "ADDED"
	AdmissionRejected AdmissionStatus = "REJECTED"
	AdmissionFailed   AdmissionStatus = "FAILED"
)

type AdmissionResult struct {
	Status AdmissionStatus `json:"status"`
	Entry  *CatalogEntry   `json:"product,omitempty"`
	Err    error           `json:"-"`
}

// EvaluationRecord is the audit copy of one pipeline run.
type EvaluationRecord struct {
	ID           string     `json:"id" bson:"_id"`
	Product      Submission `json:"product" bson:"product"`
	Evaluation   Evaluation `json:"evaluation" bson:"evaluation"`
	RawResponse  string     `json:"raw_ai_response,omitempty" bson:"raw_ai_response,omitempty"`
	Timestamp    time.Time  `json:"timestamp" bson:"timestamp"`
	AgentVersion string     `json:"agent_version" bson:"agent_version"`
}

// EvaluationEvent is the message published for downstream consumers.
type EvaluationEvent struct {
	Product    Submission `json:"product"`
	Evaluation Evaluation `json:"evaluation"`
	Timestamp  time.Time  `json:"timestamp"`
}

// FlowState is the admission progress shown to the submitting vendor.
type FlowState string

const (
	FlowAdding   FlowState = "adding"
	FlowSuccess  FlowState = "success"
	FlowRejected FlowState = "rejected"
	FlowFailed   FlowState = "failed"
)

func (s AdmissionStatus) FlowState() FlowState {
	switch s {
	case AdmissionAdded:
		return FlowSuccess
	case AdmissionRejected:
		return FlowRejected
	default:
		return FlowFailed
	}
}
