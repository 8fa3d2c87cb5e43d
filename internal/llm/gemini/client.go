package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/telemetry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds the settings needed to talk to the Gemini API.
type Config struct {
	APIKey         string
	AnalysisModel  string
	ChatModel      string
	ImageModel     string
	ThinkingBudget int
	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
}

// Client implements llm.Client against the Gemini REST API.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Gemini client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(cfg.AnalysisModel) == "" || strings.TrimSpace(cfg.ChatModel) == "" || strings.TrimSpace(cfg.ImageModel) == "" {
		return nil, fmt.Errorf("analysis, chat and image models are required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type genRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type tool struct {
	GoogleSearch *googleSearch `json:"googleSearch,omitempty"`
}

type googleSearch struct{}

type generationConfig struct {
	ResponseMIMEType   string          `json:"responseMimeType,omitempty"`
	ResponseSchema     *responseSchema `json:"responseSchema,omitempty"`
	ThinkingConfig     *thinkingConfig `json:"thinkingConfig,omitempty"`
	ResponseModalities []string        `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig    `json:"imageConfig,omitempty"`
}

type thinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio"`
}

type genResponse struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content           content            `json:"content"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks []groundingChunk `json:"groundingChunks"`
}

type groundingChunk struct {
	Web *webSource `json:"web,omitempty"`
}

type webSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// AnalyzeProduct sends the product photo with search grounding enabled and a
// strict response schema, returning the raw JSON payload plus citations.
func (c *Client) AnalyzeProduct(ctx context.Context, image []byte, mimeType, userContext string) (json.RawMessage, []llm.SearchLink, error) {
	parts := []part{}
	text := "Analyze this product."
	if strings.TrimSpace(userContext) != "" {
		text += " Shopper's context: " + strings.TrimSpace(userContext)
	}
	parts = append(parts, part{Text: text})
	parts = append(parts, part{InlineData: &inlineData{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(image),
	}})

	req := genRequest{
		SystemInstruction: &content{Parts: []part{{Text: analysisSystemPrompt}}},
		Contents:          []content{{Role: "user", Parts: parts}},
		Tools:             []tool{{GoogleSearch: &googleSearch{}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema(),
		},
	}

	resp, err := c.generate(ctx, c.cfg.AnalysisModel, req)
	if err != nil {
		return nil, nil, err
	}

	raw := strings.TrimSpace(firstText(resp))
	if raw == "" {
		return nil, nil, llm.ErrEmptyResponse
	}
	if !json.Valid([]byte(raw)) {
		return nil, nil, fmt.Errorf("invalid JSON from model")
	}
	return json.RawMessage(raw), searchLinks(resp), nil
}

// SendChatMessage continues a conversation with search grounding always on.
func (c *Client) SendChatMessage(ctx context.Context, history []llm.Turn, message string, image *llm.InlineData, extendedReasoning bool) (string, error) {
	contents := encodeTurns(llm.NormalizeHistory(history))

	current := []part{}
	if strings.TrimSpace(message) != "" {
		current = append(current, part{Text: message})
	} else if image != nil {
		current = append(current, part{Text: "Analyze this image."})
	}
	if image != nil {
		current = append(current, part{InlineData: &inlineData{
			MIMEType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}
	if len(current) == 0 {
		return "", fmt.Errorf("message or image is required")
	}
	contents = append(contents, content{Role: string(llm.RoleUser), Parts: current})

	req := genRequest{
		SystemInstruction: &content{Parts: []part{{Text: chatSystemPrompt}}},
		Contents:          contents,
		Tools:             []tool{{GoogleSearch: &googleSearch{}}},
	}
	if extendedReasoning {
		budget := c.cfg.ThinkingBudget
		if budget <= 0 {
			budget = 2048
		}
		req.GenerationConfig = &generationConfig{
			ThinkingConfig: &thinkingConfig{ThinkingBudget: budget},
		}
	}

	resp, err := c.generate(ctx, c.cfg.ChatModel, req)
	if err != nil {
		return "", err
	}
	reply := joinedText(resp)
	if reply == "" {
		return "", llm.ErrEmptyResponse
	}
	return reply, nil
}

// GenerateImage asks the image model for a synthesis constrained to the given
// aspect ratio. A nil result with nil error means nothing was generated.
func (c *Client) GenerateImage(ctx context.Context, prompt, aspectRatio string) (*llm.GeneratedImage, error) {
	if !llm.ValidAspectRatio(aspectRatio) {
		return nil, fmt.Errorf("unsupported aspect ratio %q", aspectRatio)
	}

	req := genRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
			ImageConfig:        &imageConfig{AspectRatio: aspectRatio},
		},
	}

	resp, err := c.generate(ctx, c.cfg.ImageModel, req)
	if err != nil {
		return nil, err
	}

	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode image data: %w", err)
			}
			mime := p.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return &llm.GeneratedImage{MIMEType: mime, Data: data}, nil
		}
	}
	return nil, nil
}

// DescribeImage asks for a style description of the image. Failures yield an
// empty string; this is best-effort enrichment, never fatal.
func (c *Client) DescribeImage(ctx context.Context, image []byte, mimeType string) string {
	req := genRequest{
		Contents: []content{{Role: "user", Parts: []part{
			{Text: describeImagePrompt},
			{InlineData: &inlineData{MIMEType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
		}}},
	}

	resp, err := c.generate(ctx, c.cfg.ChatModel, req)
	if err != nil {
		telemetry.Warn("gemini.describe_image_failed", map[string]any{"error": err.Error()})
		return ""
	}
	return strings.TrimSpace(joinedText(resp))
}

func (c *Client) generate(ctx context.Context, model string, reqBody genRequest) (*genResponse, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("gemini request timeout: %w", err)
		}
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed genResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("gemini error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini status %d", resp.StatusCode)
	}
	return &parsed, nil
}

func encodeTurns(turns []llm.Turn) []content {
	out := make([]content, 0, len(turns))
	for _, turn := range turns {
		parts := make([]part, 0, len(turn.Parts))
		for _, p := range turn.Parts {
			if p.InlineData != nil {
				parts = append(parts, part{InlineData: &inlineData{
					MIMEType: p.InlineData.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
				}})
				continue
			}
			parts = append(parts, part{Text: p.Text})
		}
		out = append(out, content{Role: string(turn.Role), Parts: parts})
	}
	return out
}

func firstText(resp *genResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

func joinedText(resp *genResponse) string {
	for _, cand := range resp.Candidates {
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func searchLinks(resp *genResponse) []llm.SearchLink {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var links []llm.SearchLink
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || strings.TrimSpace(chunk.Web.URI) == "" {
			continue
		}
		links = append(links, llm.SearchLink{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return links
}

var _ llm.Client = (*Client)(nil)
