package generations

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealscope-backend/internal/history"
	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/storage/object"
	"dealscope-backend/internal/shared/telemetry"
)

const uiPlaceholderSuffix = " Render as a clean, flat, minimal UI placeholder illustration with soft colors and no text."

// Service runs the image-generation studio: prompt assembly, model call and
// history persistence.
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

// Generate synthesizes an image. A nil record with a nil error is the valid
// "nothing generated" outcome; a record is persisted only after a successful
// generation.
func (s *Service) Generate(ctx context.Context, userID, prompt, aspectRatio, mode string, refImage *llm.InlineData) (*GenerationRecord, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}
	if !llm.ValidAspectRatio(aspectRatio) {
		return nil, fmt.Errorf("unsupported aspect ratio %q", aspectRatio)
	}
	if mode == "" {
		mode = ModeStandard
	}

	finalPrompt := strings.TrimSpace(prompt)

	// A reference image is folded in as a text description so the synthesis
	// call stays text-only. Description failures are non-fatal.
	var refDataURI string
	if refImage != nil && len(refImage.Data) > 0 {
		if desc := s.LLM.DescribeImage(ctx, refImage.Data, refImage.MIMEType); desc != "" {
			finalPrompt += " In the style of: " + desc
		}
		refDataURI = (&llm.GeneratedImage{MIMEType: refImage.MIMEType, Data: refImage.Data}).DataURI()
	}
	if mode == ModeUIPlaceholder {
		finalPrompt += uiPlaceholderSuffix
	}

	img, err := s.LLM.GenerateImage(ctx, finalPrompt, aspectRatio)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, nil
	}

	record := GenerationRecord{
		ID:          s.newID(),
		Timestamp:   s.now().UnixMilli(),
		Prompt:      finalPrompt,
		AspectRatio: &aspectRatio,
		Mode:        mode,
	}
	dataURI := img.DataURI()
	record.ImageData = &dataURI
	if refDataURI != "" {
		record.RefImage = &refDataURI
	}

	if s.Store != nil {
		key, _, _, err := s.Store.Save(ctx, userID, "generated.png", bytes.NewReader(img.Data))
		if err != nil {
			telemetry.Warn("generations.image_archive_failed", map[string]any{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else {
			record.ImageKey = key
		}
	}

	rec, err := history.EncodeRecord(record)
	if err != nil {
		return nil, err
	}
	if err := s.History.Save(ctx, userID, history.KindGenerations, rec); err != nil {
		return nil, err
	}

	return &record, nil
}

// List returns the user's generations, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]GenerationRecord, error) {
	recs, err := s.History.Load(ctx, userID, history.KindGenerations, limit)
	if err != nil {
		return nil, err
	}
	out := make([]GenerationRecord, 0, len(recs))
	for _, rec := range recs {
		var record GenerationRecord
		if err := history.DecodeRecord(rec, &record); err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}
