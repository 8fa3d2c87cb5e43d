package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dealscope-backend/internal/history"
	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/storage/object/local"
)

type staticAnalysisLLM struct {
	payload string
	links   []llm.SearchLink
	err     error
}

func (s staticAnalysisLLM) AnalyzeProduct(ctx context.Context, image []byte, mimeType, userContext string) (json.RawMessage, []llm.SearchLink, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return json.RawMessage(s.payload), s.links, nil
}

func (s staticAnalysisLLM) SendChatMessage(ctx context.Context, hist []llm.Turn, message string, image *llm.InlineData, extendedReasoning bool) (string, error) {
	return "", errors.New("not used")
}

func (s staticAnalysisLLM) GenerateImage(ctx context.Context, prompt, aspectRatio string) (*llm.GeneratedImage, error) {
	return nil, errors.New("not used")
}

func (s staticAnalysisLLM) DescribeImage(ctx context.Context, image []byte, mimeType string) string {
	return ""
}

const validPayload = `{
	"productName": "Stand Mixer",
	"extractedPrice": "$249",
	"rating": "4.5/5",
	"valueScore": 78,
	"keyFeatures": ["500W motor", "5qt bowl"],
	"rationale": "Solid mid-range mixer at a fair price.",
	"recommendation": "Buy Now",
	"recommendationReason": ["Price matches online average"],
	"alternatives": [{"name": "Budget Mixer", "difference": "Smaller bowl", "price": "$149"}],
	"negotiationMessage": "Would you take $220?",
	"confidence": "High"
}`

func newAnalysisService(t *testing.T, client llm.Client) (*Service, *history.MemoryBackend) {
	t.Helper()
	backend := history.NewMemoryBackend()
	svc := NewService(client, history.NewStore(nil, backend), local.New(t.TempDir()))
	return svc, backend
}

func TestAnalyzeAssignsIdentityAndLinks(t *testing.T) {
	links := []llm.SearchLink{{Title: "Retailer", URI: "https://example.com/mixer"}}
	svc, _ := newAnalysisService(t, staticAnalysisLLM{payload: validPayload, links: links})

	before := time.Now().UnixMilli()
	result, err := svc.Analyze(context.Background(), "user-1", []byte{0xFF, 0xD8}, "image/jpeg", "")
	after := time.Now().UnixMilli()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if result.ID == "" {
		t.Fatal("id not assigned")
	}
	if result.Timestamp < before || result.Timestamp > after {
		t.Fatalf("timestamp %d outside [%d, %d]", result.Timestamp, before, after)
	}
	if len(result.SearchLinks) != 1 || result.SearchLinks[0].URI != "https://example.com/mixer" {
		t.Fatalf("searchLinks = %#v", result.SearchLinks)
	}
	if result.ImageKey == "" {
		t.Fatal("image not archived")
	}
}

func TestAnalyzePersistsToHistory(t *testing.T) {
	svc, backend := newAnalysisService(t, staticAnalysisLLM{payload: validPayload})

	result, err := svc.Analyze(context.Background(), "user-1", []byte{1}, "image/png", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	recs, err := backend.Load(context.Background(), "user-1", history.KindAnalyses, 10)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 1 || recs[0].ID() != result.ID {
		t.Fatalf("persisted = %#v", recs)
	}
}

func TestAnalyzeOmitsAbsentOptionalFields(t *testing.T) {
	svc, backend := newAnalysisService(t, staticAnalysisLLM{payload: validPayload})

	if _, err := svc.Analyze(context.Background(), "user-1", []byte{1}, "image/png", ""); err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	recs, _ := backend.Load(context.Background(), "user-1", history.KindAnalyses, 10)
	if _, ok := recs[0]["negotiationMessageHindi"]; ok {
		t.Fatalf("absent optional field persisted: %#v", recs[0])
	}
	if _, ok := recs[0]["searchLinks"]; ok {
		t.Fatalf("empty searchLinks persisted: %#v", recs[0])
	}
}

func TestAnalyzeRoundTripsThroughList(t *testing.T) {
	svc, _ := newAnalysisService(t, staticAnalysisLLM{payload: validPayload})

	result, err := svc.Analyze(context.Background(), "user-1", []byte{1}, "image/png", "")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	results, err := svc.List(context.Background(), "user-1", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	got := results[0]
	if got.ID != result.ID || got.ProductName != "Stand Mixer" || got.ValueScore != 78 {
		t.Fatalf("round trip mismatch: %#v", got)
	}
	if got.Alternatives[0].Price == nil || *got.Alternatives[0].Price != "$149" {
		t.Fatalf("alternative price = %v", got.Alternatives[0].Price)
	}
}

func TestAnalyzeRejectsInvalidRecommendation(t *testing.T) {
	payload := `{"productName": "X", "recommendation": "Maybe", "confidence": "High", "valueScore": 50}`
	svc, _ := newAnalysisService(t, staticAnalysisLLM{payload: payload})

	if _, err := svc.Analyze(context.Background(), "user-1", []byte{1}, "image/png", ""); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestAnalyzePropagatesModelError(t *testing.T) {
	svc, _ := newAnalysisService(t, staticAnalysisLLM{err: llm.ErrEmptyResponse})

	_, err := svc.Analyze(context.Background(), "user-1", []byte{1}, "image/png", "")
	if !errors.Is(err, llm.ErrEmptyResponse) {
		t.Fatalf("err = %v, want ErrEmptyResponse", err)
	}
}

func TestValidate(t *testing.T) {
	base := AnalysisResult{
		ProductName:    "X",
		Recommendation: RecommendationWaitForSale,
		Confidence:     ConfidenceMedium,
		ValueScore:     50,
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid result rejected: %v", err)
	}

	bad := base
	bad.ValueScore = 101
	if err := bad.Validate(); err == nil {
		t.Fatal("out-of-range valueScore accepted")
	}

	bad = base
	bad.Confidence = "Certain"
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown confidence accepted")
	}

	bad = base
	bad.ProductName = ""
	if err := bad.Validate(); err == nil {
		t.Fatal("missing productName accepted")
	}
}
