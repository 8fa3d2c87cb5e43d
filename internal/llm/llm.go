package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// InlineData carries raw binary content tagged with its media type.
type InlineData struct {
	MIMEType string
	Data     []byte
}

// Part is a tagged union of the content fragments a turn may carry.
// Exactly one of Text or InlineData is meaningful.
type Part struct {
	Text       string
	InlineData *InlineData
}

// TextPart builds a text fragment.
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart builds an inline image fragment.
func ImagePart(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{MIMEType: mimeType, Data: data}}
}

// Empty reports whether the part carries neither text nor inline content.
func (p Part) Empty() bool {
	if strings.TrimSpace(p.Text) != "" {
		return false
	}
	return p.InlineData == nil || len(p.InlineData.Data) == 0
}

// Turn is one conversation turn: a role plus its content parts.
type Turn struct {
	Role  Role
	Parts []Part
}

// SearchLink is a grounding citation attached to a grounded response.
type SearchLink struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// GeneratedImage is the binary result of an image synthesis call.
type GeneratedImage struct {
	MIMEType string
	Data     []byte
}

// DataURI renders the image as a displayable data URI.
func (g *GeneratedImage) DataURI() string {
	if g == nil || len(g.Data) == 0 {
		return ""
	}
	mime := g.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(g.Data))
}

// AspectRatios are the synthesis shapes the image model accepts.
var AspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}

// ValidAspectRatio reports whether ratio is one of the supported shapes.
func ValidAspectRatio(ratio string) bool {
	for _, r := range AspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}

// ErrEmptyResponse signals the model returned no usable content.
var ErrEmptyResponse = errors.New("model returned no content")

// Client abstracts the hosted multimodal model for the three product surfaces.
type Client interface {
	// AnalyzeProduct evaluates a product photo and returns the raw JSON
	// analysis payload plus any grounding citations the model surfaced.
	AnalyzeProduct(ctx context.Context, image []byte, mimeType, userContext string) (json.RawMessage, []SearchLink, error)

	// SendChatMessage continues a conversation and returns the model's text.
	SendChatMessage(ctx context.Context, history []Turn, message string, image *InlineData, extendedReasoning bool) (string, error)

	// GenerateImage synthesizes an image for the prompt. A nil result with a
	// nil error is the valid "nothing generated" outcome.
	GenerateImage(ctx context.Context, prompt, aspectRatio string) (*GeneratedImage, error)

	// DescribeImage produces a best-effort style description of an image.
	// It returns an empty string on any failure.
	DescribeImage(ctx context.Context, image []byte, mimeType string) string
}

// NormalizeHistory prepares a transcript for the hosted chat API: turns that
// are empty after removing content-free parts are dropped, then leading turns
// are dropped until the transcript begins with a user turn. Consecutive
// same-role turns are tolerated as-is.
func NormalizeHistory(history []Turn) []Turn {
	out := make([]Turn, 0, len(history))
	for _, turn := range history {
		parts := make([]Part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			if !p.Empty() {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, Turn{Role: turn.Role, Parts: parts})
	}
	for len(out) > 0 && out[0].Role != RoleUser {
		out = out[1:]
	}
	return out
}
