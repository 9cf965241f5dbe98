package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// AIEvaluation is the evaluation summary stored alongside an admitted product.
type AIEvaluation struct {
	Score       int       `json:"score"`
	Decision    string    `json:"decision"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

type Product struct {
	ID           uuid.UUID     `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Price        float64       `json:"price"`
	Vendor       string        `json:"vendor,omitempty"`
	Category     string        `json:"category,omitempty"`
	Status       string        `json:"status"`
	AIEvaluation *AIEvaluation `json:"ai_evaluation,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
