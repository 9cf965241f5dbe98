package evaluation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

const (
	fallbackScoreMin   = 75
	fallbackScoreMax   = 95
	maxReasoningLength = 500
)

var scorePattern = regexp.MustCompile(`(?i)score[:\s]*(\d+)`)

// RandomSource supplies fallback scores. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// Parser turns a raw model reply into an Evaluation. Parse never fails.
type Parser struct {
	mu  sync.Mutex
	rnd RandomSource
}

func NewParser(rnd RandomSource) *Parser {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Parser{rnd: rnd}
}

func NewSeededParser(seed int64) *Parser {
	return NewParser(rand.New(rand.NewSource(seed)))
}

func (p *Parser) Parse(reply []byte, sub models.Submission, threshold int) models.Evaluation {
	content := strings.TrimSpace(ExtractContent(reply))
	var ev models.Evaluation
	switch {
	case content == "":
		ev = p.errorFallback(sub, threshold)
	case json.Valid([]byte(content)):
		var ok bool
		if ev, ok = fromModelJSON(content); !ok {
			ev = p.errorFallback(sub, threshold)
		}
	default:
		ev = p.textFallback(content, threshold)
	}
	ev.Score = clampScore(ev.Score)
	ev.Threshold = threshold
	return ev
}

// ExtractContent returns the assistant text from either a chat completion body
// (choices[0].message.content), a flat {"content": ...} object, a JSON string,
// or a plain text body.
func ExtractContent(reply []byte) string {
	trimmed := bytes.TrimSpace(reply)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '{':
		var shaped struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(trimmed, &shaped); err == nil {
			if shaped.Choices != nil {
				if len(shaped.Choices) == 0 {
					return ""
				}
				return shaped.Choices[0].Message.Content
			}
			if shaped.Content != nil {
				return *shaped.Content
			}
		}
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

func fromModelJSON(content string) (models.Evaluation, bool) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		return models.Evaluation{}, false
	}
	score, ok := fields["score"].(float64)
	if !ok {
		return models.Evaluation{}, false
	}
	decision := strings.ToUpper(strings.TrimSpace(stringField(fields, "decision")))
	if decision == "" {
		return models.Evaluation{}, false
	}
	rounded := int(math.Round(math.Max(0, math.Min(100, score))))
	return models.Evaluation{
		Score:            rounded,
		Decision:         models.Decision(decision),
		Reasoning:        stringField(fields, "reasoning"),
		CategoryMatch:    stringField(fields, "category_match"),
		MarketPotential:  normalizePotential(stringField(fields, "market_potential"), rounded),
		EvaluationMethod: models.MethodModel,
	}, true
}

func (p *Parser) textFallback(content string, threshold int) models.Evaluation {
	score := -1
	if m := scorePattern.FindStringSubmatch(content); m != nil {
		n, err := strconv.Atoi(m[1])
		switch {
		case err == nil:
			score = n
		case errors.Is(err, strconv.ErrRange):
			score = 100
		}
	}
	if score < 0 {
		score = p.randomScore()
	}
	score = clampScore(score)
	reasoning := truncate(content, maxReasoningLength)
	if reasoning == "" {
		reasoning = fmt.Sprintf("Automated evaluation with score %d/100", score)
	}
	return models.Evaluation{
		Score:            score,
		Decision:         decide(score, threshold),
		Reasoning:        reasoning,
		CategoryMatch:    "Extracted from text response",
		MarketPotential:  potentialFor(score),
		EvaluationMethod: models.MethodTextFallback,
	}
}

func (p *Parser) errorFallback(sub models.Submission, threshold int) models.Evaluation {
	score := p.randomScore()
	categoryMatch := "No category specified"
	if sub.Category != "" {
		categoryMatch = "Matches category: " + sub.Category
	}
	return models.Evaluation{
		Score:    score,
		Decision: decide(score, threshold),
		Reasoning: fmt.Sprintf(
			"AI evaluation of %s: Score %d/100 based on product quality, description clarity, and market potential. (Fallback evaluation due to parsing error)",
			sub.ProductName, score,
		),
		CategoryMatch:    categoryMatch,
		MarketPotential:  potentialFor(score),
		EvaluationMethod: models.MethodErrorFallback,
	}
}

func (p *Parser) randomScore() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fallbackScoreMin + p.rnd.Intn(fallbackScoreMax-fallbackScoreMin+1)
}

func decide(score, threshold int) models.Decision {
	if score >= threshold {
		return models.DecisionApproved
	}
	return models.DecisionRejected
}

func potentialFor(score int) models.MarketPotential {
	switch {
	case score >= 85:
		return models.MarketPotentialHigh
	case score >= 70:
		return models.MarketPotentialMedium
	default:
		return models.MarketPotentialLow
	}
}

func normalizePotential(raw string, score int) models.MarketPotential {
	switch mp := models.MarketPotential(strings.ToUpper(strings.TrimSpace(raw))); mp {
	case models.MarketPotentialLow, models.MarketPotentialMedium, models.MarketPotentialHigh:
		return mp
	}
	return potentialFor(score)
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
