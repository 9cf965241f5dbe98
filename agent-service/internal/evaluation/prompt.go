package evaluation

import (
	"fmt"
	"strings"

	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/gateway"
	"github.com/ILLUVRSE/VendorCatalog/agent-service/internal/models"
)

const SystemPrompt = "You are a professional product evaluation AI. Always respond with valid JSON in the exact format requested. Do not include any text outside the JSON object."

// Criterion is one weighted line of the scoring rubric. Weights sum to 100.
type Criterion struct {
	Name   string
	Points int
}

var Rubric = []Criterion{
	{Name: "Product innovation and quality", Points: 25},
	{Name: "Market demand and competitiveness", Points: 25},
	{Name: "Description clarity and completeness", Points: 20},
	{Name: "Price appropriateness for market", Points: 15},
	{Name: "Vendor credibility indicators", Points: 15},
}

// BuildPrompt renders the user prompt. Output depends only on its arguments.
func BuildPrompt(sub models.Submission, threshold int) string {
	var b strings.Builder
	b.WriteString("You are an expert product evaluator for an AI-enhanced e-commerce catalog service.\n\n")
	b.WriteString("Evaluate this product submission and respond with a JSON object in exactly this format:\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"score\": <number between 0-100>,\n")
	b.WriteString("  \"decision\": \"APPROVED\" or \"REJECTED\",\n")
	b.WriteString("  \"reasoning\": \"<detailed explanation of the evaluation>\",\n")
	b.WriteString("  \"category_match\": \"<assessment of how well the product fits its category>\",\n")
	b.WriteString("  \"market_potential\": \"High\" or \"Medium\" or \"Low\"\n")
	b.WriteString("}\n\n")

	b.WriteString("Product Details:\n")
	fmt.Fprintf(&b, "- Vendor: %s\n", orNotSpecified(sub.VendorName))
	fmt.Fprintf(&b, "- Product Name: %s\n", sub.ProductName)
	fmt.Fprintf(&b, "- Description: %s\n", sub.Description)
	fmt.Fprintf(&b, "- Price: $%.2f\n", sub.Price)
	fmt.Fprintf(&b, "- Category: %s\n\n", orNotSpecified(sub.Category))

	total := 0
	for _, c := range Rubric {
		total += c.Points
	}
	fmt.Fprintf(&b, "Evaluation Criteria (%d points total):\n", total)
	for _, c := range Rubric {
		fmt.Fprintf(&b, "- %s (%d points)\n", c.Name, c.Points)
	}
	fmt.Fprintf(&b, "\nMinimum passing score: %d/100\n\n", threshold)
	b.WriteString("Important: Respond ONLY with the JSON object, no additional text before or after.")
	return b.String()
}

func BuildMessages(sub models.Submission, threshold int) []gateway.Message {
	return []gateway.Message{
		{Role: gateway.RoleSystem, Content: SystemPrompt},
		{Role: gateway.RoleUser, Content: BuildPrompt(sub, threshold)},
	}
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}
