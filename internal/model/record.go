// Package model defines data structures for the dialogue archive.
package model

import (
	"time"
)

// Role represents the role of a message within an archived conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single message inside an archived conversation. Speaker
// carries the model/persona label that produced the content, independent of
// the alternating user/assistant role tagging used for archive rendering.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Speaker string `json:"speaker,omitempty"`
}

// ConversationRecord is one immutable entry in the append-only archive.
type ConversationRecord struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Messages  []Message      `json:"messages"`
	Preview   string         `json:"preview"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TranscriptEntry is one turn of a dialogue run before conversion into
// archive message format.
type TranscriptEntry struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ListArchiveResponse is the response for listing archive records.
type ListArchiveResponse struct {
	Items []ConversationRecord `json:"items"`
}

// GenerateResponse is the response after a successful trigger run.
type GenerateResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Preview   string    `json:"preview"`
}

// ModelInfo summarizes the active generation backend.
type ModelInfo struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_new_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}
