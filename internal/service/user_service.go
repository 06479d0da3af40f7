package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/config"
)

// UserService handles account lifecycle operations.
type UserService struct {
	users UserStore
	cache Cache
	log   zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, cache Cache, log zerolog.Logger) *UserService {
	return &UserService{
		users: users,
		cache: cache,
		log:   log.With().Str("component", "user_service").Logger(),
	}
}

// DeleteAccount removes the user with everything they own and evicts their
// analytics entry.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.cache.Delete(ctx, config.CacheKey.Analytics(userID))
	s.log.Info().Int64("user_id", userID).Msg("Account deleted")
	return nil
}
