package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/config"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

const (
	DefaultContentPageSize = 20
	MaxContentPageSize     = 100
)

var allDifficulties = []model.Difficulty{model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard}

// ContentService manages uploaded study material.
type ContentService struct {
	contents ContentStore
	cache    Cache
	log      zerolog.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(contents ContentStore, cache Cache, log zerolog.Logger) *ContentService {
	return &ContentService{
		contents: contents,
		cache:    cache,
		log:      log.With().Str("component", "content_service").Logger(),
	}
}

// CreateText stores a plain-text upload with word and character counts.
func (s *ContentService) CreateText(ctx context.Context, userID int64, req model.CreateTextContentRequest) (*model.Content, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrInvalidContent
	}

	meta, err := json.Marshal(model.ContentMetadata{
		WordCount: len(strings.Fields(text)),
		CharCount: utf8.RuneCountInString(text),
		Source:    map[string]string{"kind": string(model.ContentTypeText)},
	})
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	c := &model.Content{
		UserID:      userID,
		ContentType: model.ContentTypeText,
		Title:       strings.TrimSpace(req.Title),
		RawText:     text,
		Metadata:    meta,
	}
	if err := s.contents.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}

	s.log.Info().Int64("content_id", c.ID).Int64("user_id", userID).Msg("Content uploaded")
	return c, nil
}

// Get returns content owned by userID.
func (s *ContentService) Get(ctx context.Context, id, userID int64) (*model.Content, error) {
	c, err := s.contents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	if c.UserID != userID {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns a page of the user's content, newest first.
func (s *ContentService) List(ctx context.Context, userID int64, skip, limit int) ([]model.Content, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultContentPageSize
	}
	limit = min(limit, MaxContentPageSize)

	contents, err := s.contents.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return contents, nil
}

// Delete removes content with its questions and evicts cached question sets.
func (s *ContentService) Delete(ctx context.Context, id, userID int64) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}

	if err := s.contents.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete content: %w", err)
	}

	evicted := 0
	for _, d := range allDifficulties {
		key := config.CacheKey.Questions(id, d)
		if s.cache.Exists(ctx, key) {
			s.cache.Delete(ctx, key)
			evicted++
		}
	}

	s.log.Info().Int64("content_id", id).Int("evicted_sets", evicted).Msg("Content deleted")
	return nil
}
