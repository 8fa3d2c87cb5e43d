package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealscope-backend/internal/history"
	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/storage/object"
	"dealscope-backend/internal/shared/telemetry"
)

// Service orchestrates product analysis: model call, normalization,
// image archival and history persistence.
type Service struct {
	LLM     llm.Client
	History *history.Store
	Store   object.ObjectStore

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service.
func NewService(client llm.Client, hist *history.Store, store object.ObjectStore) *Service {
	return &Service{
		LLM:     client,
		History: hist,
		Store:   store,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Analyze evaluates a product photo and persists the normalized result to the
// user's history. Persistence is best-effort; the analysis is returned even
// when the cloud write fails.
func (s *Service) Analyze(ctx context.Context, userID string, image []byte, mimeType, userContext string) (AnalysisResult, error) {
	raw, links, err := s.LLM.AnalyzeProduct(ctx, image, mimeType, userContext)
	if err != nil {
		return AnalysisResult{}, err
	}

	var result AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return AnalysisResult{}, fmt.Errorf("analysis payload: %w", err)
	}
	if err := result.Validate(); err != nil {
		return AnalysisResult{}, fmt.Errorf("analysis payload: %w", err)
	}

	if result.ID == "" {
		result.ID = s.newID()
	}
	if result.Timestamp == 0 {
		result.Timestamp = s.now().UnixMilli()
	}
	result.SearchLinks = links

	if s.Store != nil && len(image) > 0 {
		key, _, _, err := s.Store.Save(ctx, userID, "product.jpg", bytes.NewReader(image))
		if err != nil {
			telemetry.Warn("analyses.image_archive_failed", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else {
			result.ImageKey = key
		}
	}

	rec, err := history.EncodeRecord(result)
	if err != nil {
		return AnalysisResult{}, err
	}
	if err := s.History.Save(ctx, userID, history.KindAnalyses, rec); err != nil {
		return AnalysisResult{}, err
	}

	return result, nil
}

// List returns the user's analyses, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]AnalysisResult, error) {
	recs, err := s.History.Load(ctx, userID, history.KindAnalyses, limit)
	if err != nil {
		return nil, err
	}
	out := make([]AnalysisResult, 0, len(recs))
	for _, rec := range recs {
		var result AnalysisResult
		if err := history.DecodeRecord(rec, &result); err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}
