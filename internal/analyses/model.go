package analyses

import (
	"fmt"

	"dealscope-backend/internal/llm"
)

// Recommendation values are the closed set the model must pick from.
const (
	RecommendationBuyNow      = "Buy Now"
	RecommendationWaitForSale = "Wait for Sale"
	RecommendationDontBuy     = "Don't Buy"
)

// Confidence values.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceLow    = "Low"
)

// PriceUnreadable is the sentinel for a price the model could not determine.
const PriceUnreadable = "Unreadable"

// Alternative is a comparable product suggestion.
type Alternative struct {
	Name       string  `json:"name"`
	Difference string  `json:"difference"`
	Price      *string `json:"price,omitempty"`
}

// AnalysisResult is one product evaluation. Created once from a model
// response, immutable thereafter.
type AnalysisResult struct {
	ID                      string            `json:"id"`
	Timestamp               int64             `json:"timestamp"`
	ProductName             string            `json:"productName"`
	ExtractedPrice          string            `json:"extractedPrice"`
	Rating                  string            `json:"rating"`
	ValueScore              int               `json:"valueScore"`
	KeyFeatures             []string          `json:"keyFeatures"`
	Rationale               string            `json:"rationale"`
	Recommendation          string            `json:"recommendation"`
	RecommendationReason    []string          `json:"recommendationReason"`
	Alternatives            []Alternative     `json:"alternatives"`
	NegotiationMessage      string            `json:"negotiationMessage"`
	NegotiationMessageHindi *string           `json:"negotiationMessageHindi,omitempty"`
	Confidence              string            `json:"confidence"`
	SearchLinks             []llm.SearchLink  `json:"searchLinks,omitempty"`
	ImageKey                string            `json:"imageKey,omitempty"`
}

// Validate checks the contract fields a model response must populate.
func (a AnalysisResult) Validate() error {
	if a.ProductName == "" {
		return fmt.Errorf("productName is required")
	}
	switch a.Recommendation {
	case RecommendationBuyNow, RecommendationWaitForSale, RecommendationDontBuy:
	default:
		return fmt.Errorf("unknown recommendation %q", a.Recommendation)
	}
	switch a.Confidence {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
	default:
		return fmt.Errorf("unknown confidence %q", a.Confidence)
	}
	if a.ValueScore < 0 || a.ValueScore > 100 {
		return fmt.Errorf("valueScore %d out of range", a.ValueScore)
	}
	return nil
}
