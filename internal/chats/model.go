package chats

import "strings"

// Roles of a conversation turn.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

const (
	maxTitleLen   = 40
	maxPreviewLen = 100

	// DefaultTitle labels a session before the first user message arrives.
	DefaultTitle = "New Chat"
)

// Attachment is an embedded image carried by a message, base64-encoded.
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// ChatMessage is one conversation turn.
type ChatMessage struct {
	ID         string      `json:"id"`
	Role       string      `json:"role"`
	Text       string      `json:"text"`
	Timestamp  int64       `json:"timestamp"`
	IsThinking *bool       `json:"isThinking,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// ChatSession is one conversation thread. Messages are append-only; the
// session is persisted as a whole-document overwrite keyed by ID.
type ChatSession struct {
	ID          string        `json:"id"`
	Timestamp   int64         `json:"timestamp"`
	LastMessage string        `json:"lastMessage"`
	Title       string        `json:"title"`
	Messages    []ChatMessage `json:"messages"`
}

// DeriveTitle returns the session title: the first user message truncated to
// 40 characters, or the default label.
func DeriveTitle(messages []ChatMessage) string {
	for _, m := range messages {
		if m.Role == RoleUser && strings.TrimSpace(m.Text) != "" {
			return truncate(strings.TrimSpace(m.Text), maxTitleLen)
		}
	}
	return DefaultTitle
}

// DerivePreview returns the most recent message truncated to 100 characters.
func DerivePreview(messages []ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	return truncate(messages[len(messages)-1].Text, maxPreviewLen)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
