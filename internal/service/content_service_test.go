package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/config"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

func TestContentLifecycle(t *testing.T) {
	ctx := context.Background()
	contents := newFakeContents()
	cache := newFakeCache()
	svc := NewContentService(contents, cache, zerolog.Nop())

	c, err := svc.CreateText(ctx, ownerID, model.CreateTextContentRequest{Title: " Photosynthesis ", Text: "  Plants convert light into chemical energy.  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Title != "Photosynthesis" || c.ContentType != model.ContentTypeText {
		t.Errorf("unexpected content %+v", c)
	}

	var meta model.ContentMetadata
	if err := json.Unmarshal(c.Metadata, &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.WordCount != 6 || meta.CharCount != 42 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	if _, err := svc.Get(ctx, c.ID, strangerID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for stranger, got %v", err)
	}
	list, _ := svc.List(ctx, ownerID, 0, 0)
	if len(list) != 1 {
		t.Errorf("expected 1 content, got %d", len(list))
	}

	for _, d := range allDifficulties {
		cache.Set(ctx, config.CacheKey.Questions(c.ID, d), []model.Question{{ID: 1}}, 0)
	}
	if err := svc.Delete(ctx, c.ID, strangerID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting foreign content, got %v", err)
	}
	if err := svc.Delete(ctx, c.ID, ownerID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, d := range allDifficulties {
		if cache.has(config.CacheKey.Questions(c.ID, d)) {
			t.Errorf("expected %s question set evicted", d)
		}
	}
	if _, err := svc.Get(ctx, c.ID, ownerID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted content to be gone, got %v", err)
	}
}

func TestCreateTextRejectsBlank(t *testing.T) {
	svc := NewContentService(newFakeContents(), newFakeCache(), zerolog.Nop())
	_, err := svc.CreateText(context.Background(), ownerID, model.CreateTextContentRequest{Title: "t", Text: "   "})
	if !errors.Is(err, ErrInvalidContent) {
		t.Errorf("expected ErrInvalidContent, got %v", err)
	}
}

func TestDeleteAccountEvictsAnalytics(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	cache := newFakeCache()
	svc := NewUserService(users, cache, zerolog.Nop())

	u := &model.User{Username: "ada", Email: "ada@example.com"}
	_ = users.Create(ctx, u)
	cache.Set(ctx, config.CacheKey.Analytics(u.ID), model.AnalyticsResponse{}, 0)

	if err := svc.DeleteAccount(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cache.has(config.CacheKey.Analytics(u.ID)) {
		t.Error("expected analytics entry evicted")
	}
	if err := svc.DeleteAccount(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
