package model

import (
	"encoding/json"
	"time"
)

// ContentType is the origin of uploaded material.
type ContentType string

const (
	ContentTypePDF  ContentType = "pdf"
	ContentTypeURL  ContentType = "url"
	ContentTypeText ContentType = "text"
)

// Content is a unit of source material questions are generated from.
type Content struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	ContentType ContentType     `json:"content_type"`
	Title       string          `json:"title"`
	RawText     string          `json:"-"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ContentMetadata is the structured metadata stored alongside raw text.
type ContentMetadata struct {
	WordCount int               `json:"word_count"`
	CharCount int               `json:"char_count"`
	Source    map[string]string `json:"source,omitempty"`
}

// CreateTextContentRequest is the payload for a plain-text upload.
type CreateTextContentRequest struct {
	Title string `json:"title" binding:"required,min=1,max=255"`
	Text  string `json:"text" binding:"required,min=50,max=200000"`
}
