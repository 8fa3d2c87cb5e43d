package chats

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dealscope-backend/internal/history"
	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/telemetry"
)

// Service runs the chat assistant: model calls, session bookkeeping and
// debounced persistence.
type Service struct {
	LLM      llm.Client
	History  *history.Store
	Autosave *Autosaver

	now   func() time.Time
	newID func() string
}

// NewService constructs a Service with a debounced autosaver writing through
// the history store.
func NewService(client llm.Client, hist *history.Store, autosaveDelay time.Duration) *Service {
	s := &Service{
		LLM:     client,
		History: hist,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	s.Autosave = NewAutosaver(autosaveDelay, s.persistSession)
	return s
}

// SendMessage sends the user's turn to the model and returns the updated
// session plus the model's reply. The session save is debounced.
func (s *Service) SendMessage(ctx context.Context, userID string, session ChatSession, text string, image *Attachment, extendedReasoning bool) (ChatSession, ChatMessage, error) {
	if text == "" && image == nil {
		return session, ChatMessage{}, fmt.Errorf("message or image is required")
	}

	hist, err := toTurns(session.Messages)
	if err != nil {
		return session, ChatMessage{}, err
	}

	var inline *llm.InlineData
	if image != nil {
		data, err := base64.StdEncoding.DecodeString(image.Data)
		if err != nil {
			return session, ChatMessage{}, fmt.Errorf("decode attachment: %w", err)
		}
		inline = &llm.InlineData{MIMEType: image.MIMEType, Data: data}
	}

	reply, err := s.LLM.SendChatMessage(ctx, hist, text, inline, extendedReasoning)
	if err != nil {
		return session, ChatMessage{}, err
	}

	now := s.now().UnixMilli()
	userMsg := ChatMessage{
		ID:         s.newID(),
		Role:       RoleUser,
		Text:       text,
		Timestamp:  now,
		Attachment: image,
	}
	modelMsg := ChatMessage{
		ID:        s.newID(),
		Role:      RoleModel,
		Text:      reply,
		Timestamp: s.now().UnixMilli(),
	}

	if session.ID == "" {
		session.ID = s.newID()
	}
	session.Messages = append(session.Messages, userMsg, modelMsg)
	session.Timestamp = now
	session.Title = DeriveTitle(session.Messages)
	session.LastMessage = DerivePreview(session.Messages)

	s.Autosave.Schedule(userID, session)
	return session, modelMsg, nil
}

// SaveSession overwrites a session in history, debounced like any other
// session change.
func (s *Service) SaveSession(userID string, session ChatSession) error {
	if session.ID == "" {
		return fmt.Errorf("session id is required")
	}
	session.Timestamp = s.now().UnixMilli()
	session.Title = DeriveTitle(session.Messages)
	session.LastMessage = DerivePreview(session.Messages)
	s.Autosave.Schedule(userID, session)
	return nil
}

// List returns the user's sessions, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]ChatSession, error) {
	recs, err := s.History.Load(ctx, userID, history.KindChats, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ChatSession, 0, len(recs))
	for _, rec := range recs {
		var session ChatSession
		if err := history.DecodeRecord(rec, &session); err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}

func (s *Service) persistSession(userID string, session ChatSession) {
	rec, err := history.EncodeRecord(session)
	if err != nil {
		telemetry.Error("chats.encode_session_failed", map[string]any{
			"user_id":    userID,
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return
	}
	if err := s.History.Save(context.Background(), userID, history.KindChats, rec); err != nil {
		telemetry.Error("chats.save_session_failed", map[string]any{
			"user_id":    userID,
			"session_id": session.ID,
			"error":      err.Error(),
		})
	}
}

func toTurns(messages []ChatMessage) ([]llm.Turn, error) {
	turns := make([]llm.Turn, 0, len(messages))
	for _, m := range messages {
		var parts []llm.Part
		if m.Text != "" {
			parts = append(parts, llm.TextPart(m.Text))
		}
		if m.Attachment != nil && m.Attachment.Data != "" {
			data, err := base64.StdEncoding.DecodeString(m.Attachment.Data)
			if err != nil {
				return nil, fmt.Errorf("decode attachment: %w", err)
			}
			parts = append(parts, llm.ImagePart(m.Attachment.MIMEType, data))
		}
		role := llm.RoleModel
		if m.Role == RoleUser {
			role = llm.RoleUser
		}
		turns = append(turns, llm.Turn{Role: role, Parts: parts})
	}
	return turns, nil
}
