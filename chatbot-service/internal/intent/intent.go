// Package intent turns a free-text chat message into catalog search filters.
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

type Intent struct {
	SearchTerms     string   `json:"searchTerms,omitempty"`
	Category        string   `json:"category,omitempty"`
	MinPrice        *float64 `json:"minPrice,omitempty"`
	MaxPrice        *float64 `json:"maxPrice,omitempty"`
	IsGeneralQuery  bool     `json:"isGeneralQuery"`
	IsProductSearch bool     `json:"isProductSearch"`
}

func (i Intent) HasFilters() bool {
	return i.Category != "" || i.MinPrice != nil || i.MaxPrice != nil
}

var Categories = []string{"electronics", "clothing", "books", "home", "sports", "toys"}

const amount = `\$?(\d+(?:\.\d+)?)`

type priceRule struct {
	pattern *regexp.Regexp
	apply   func(in *Intent, values []float64)
}

// Rules run in order against the remaining text; a matched phrase is removed
// before the next rule sees it.
var priceRules = []priceRule{
	{regexp.MustCompile(`between\s+` + amount + `\s*(?:and|to|-)\s*` + amount), setRange},
	{regexp.MustCompile(amount + `\s*(?:to|-)\s*` + amount), setRange},
	{regexp.MustCompile(`(?:under|below|less than|cheaper than|up to)\s+` + amount), setMax},
	{regexp.MustCompile(`(?:over|above|more than|at least)\s+` + amount), setMin},
}

var (
	generalPhrases = []string{"how many", "what categories", "which categories", "statistics", "stats"}
	searchPhrases  = []string{"product", "show", "find"}
	fillerPattern  = regexp.MustCompile(`\b(?:show me|search for|looking for|find|i want|i need|do you have)\b`)
	numberPattern  = regexp.MustCompile(`\$?\d+(?:\.\d+)?`)
	punctuation    = regexp.MustCompile(`[?!.,;:]`)
	categoryWord   = regexp.MustCompile(`\b(` + strings.Join(Categories, "|") + `)\b`)
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "me": {}, "i'm": {}, "im": {}, "please": {},
	"for": {}, "with": {}, "in": {}, "of": {}, "some": {}, "any": {}, "all": {},
	"product": {}, "products": {}, "item": {}, "items": {},
}

func Parse(message string) Intent {
	text := strings.ToLower(strings.TrimSpace(message))
	in := Intent{
		IsGeneralQuery:  containsAny(text, generalPhrases),
		IsProductSearch: containsAny(text, searchPhrases),
	}

	for _, rule := range priceRules {
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		values := make([]float64, 0, len(m)-1)
		for _, raw := range m[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
		rule.apply(&in, values)
		text = strings.Replace(text, m[0], " ", 1)
	}

	if m := categoryWord.FindStringSubmatch(text); m != nil {
		in.Category = m[1]
		text = strings.Replace(text, m[0], " ", 1)
	}

	text = fillerPattern.ReplaceAllString(text, " ")
	text = numberPattern.ReplaceAllString(text, " ")
	text = punctuation.ReplaceAllString(text, " ")
	in.SearchTerms = residue(text)
	return in
}

func residue(text string) string {
	words := strings.Fields(text)
	kept := words[:0]
	for _, w := range words {
		if _, skip := stopWords[w]; skip {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func setRange(in *Intent, values []float64) {
	if len(values) != 2 {
		return
	}
	lo, hi := values[0], values[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	in.MinPrice, in.MaxPrice = &lo, &hi
}

func setMax(in *Intent, values []float64) {
	if len(values) == 1 && in.MaxPrice == nil {
		in.MaxPrice = &values[0]
	}
}

func setMin(in *Intent, values []float64) {
	if len(values) == 1 && in.MinPrice == nil {
		in.MinPrice = &values[0]
	}
}
