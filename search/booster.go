package search

import (
	"math"
	"strings"

	"github.com/poiesic/docrag/core"
)

// Boost multipliers, applied in order and compounding multiplicatively.
const (
	productBoostFactor = 1.5
	titleBoostFactor   = 1.2
	keywordBoostScale  = 0.2
	scoreCeiling       = 1.0
)

// Boost applies service-name and keyword-overlap boosts on top of a raw
// relevance score. Pure and deterministic: same inputs, same output, always
// clamped to [0, 1].
//
// extractedServices is the catalog subset mentioned by the query (see
// ExtractServices); an exact product match multiplies by 1.5 and a title
// mention by 1.2, each short-circuiting on the first matching service.
// Query words longer than three characters that appear in the document
// content multiply by 1 + matchRatio*0.2.
func Boost(raw float64, doc *core.Document, extractedServices []string, query string) float64 {
	score := raw

	if len(extractedServices) > 0 {
		product := strings.ToUpper(doc.Product)
		for _, svc := range extractedServices {
			if product == svc {
				score *= productBoostFactor
				break
			}
		}

		title := strings.ToUpper(doc.Title)
		for _, svc := range extractedServices {
			if strings.Contains(title, svc) {
				score *= titleBoostFactor
				break
			}
		}
	}

	keywords := queryKeywords(query)
	if len(keywords) > 0 {
		content := strings.ToLower(doc.Content)
		matches := 0
		for _, word := range keywords {
			if strings.Contains(content, word) {
				matches++
			}
		}
		if matches > 0 {
			ratio := float64(matches) / float64(len(keywords))
			score *= 1.0 + ratio*keywordBoostScale
		}
	}

	return math.Min(score, scoreCeiling)
}
