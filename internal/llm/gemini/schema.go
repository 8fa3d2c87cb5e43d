package gemini

// responseSchema is the Gemini structured-output schema declaration.
type responseSchema struct {
	Type       string                     `json:"type"`
	Properties map[string]*responseSchema `json:"properties,omitempty"`
	Items      *responseSchema            `json:"items,omitempty"`
	Enum       []string                   `json:"enum,omitempty"`
	Required   []string                   `json:"required,omitempty"`
}

// analysisSchema declares the deal-analysis shape requested from the model.
// The service assigns id and timestamp; searchLinks come from grounding
// metadata, so none of those appear here.
func analysisSchema() *responseSchema {
	str := &responseSchema{Type: "STRING"}
	strList := &responseSchema{Type: "ARRAY", Items: str}
	return &responseSchema{
		Type: "OBJECT",
		Properties: map[string]*responseSchema{
			"productName":    str,
			"extractedPrice": str,
			"rating":         str,
			"valueScore":     {Type: "INTEGER"},
			"keyFeatures":    strList,
			"rationale":      str,
			"recommendation": {Type: "STRING", Enum: []string{"Buy Now", "Wait for Sale", "Don't Buy"}},
			"recommendationReason": strList,
			"alternatives": {
				Type: "ARRAY",
				Items: &responseSchema{
					Type: "OBJECT",
					Properties: map[string]*responseSchema{
						"name":       str,
						"difference": str,
						"price":      str,
					},
					Required: []string{"name", "difference"},
				},
			},
			"negotiationMessage":      str,
			"negotiationMessageHindi": str,
			"confidence":              {Type: "STRING", Enum: []string{"High", "Medium", "Low"}},
		},
		Required: []string{
			"productName", "extractedPrice", "rating", "valueScore", "keyFeatures",
			"rationale", "recommendation", "recommendationReason", "alternatives",
			"negotiationMessage", "confidence",
		},
	}
}
