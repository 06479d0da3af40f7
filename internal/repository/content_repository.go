package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartquizzer/quizzer-backend/internal/database"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// ContentRepository handles uploaded content data access.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

// Create inserts a new content row.
func (r *ContentRepository) Create(ctx context.Context, c *model.Content) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contents (user_id, content_type, title, raw_text, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		c.UserID, c.ContentType, c.Title, c.RawText, c.Metadata,
	).Scan(&c.ID, &c.CreatedAt)
}

// GetByID retrieves a content row including its raw text.
func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*model.Content, error) {
	c := &model.Content{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, content_type, title, raw_text, metadata, created_at
		 FROM contents WHERE id = $1`, id,
	).Scan(&c.ID, &c.UserID, &c.ContentType, &c.Title, &c.RawText, &c.Metadata, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByUser returns a page of a user's content, newest first, without raw text.
func (r *ContentRepository) ListByUser(ctx context.Context, userID int64, skip, limit int) ([]model.Content, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, content_type, title, metadata, created_at
		 FROM contents WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 OFFSET $2 LIMIT $3`, userID, skip, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contents := make([]model.Content, 0)
	for rows.Next() {
		var c model.Content
		if err := rows.Scan(&c.ID, &c.UserID, &c.ContentType, &c.Title, &c.Metadata, &c.CreatedAt); err != nil {
			return nil, err
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

// Delete removes a content row and its questions in one transaction.
// Quizzes built from it keep their history with content_id set to NULL, and
// the correct-answer counters of quizzes still in progress are recounted.
func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM user_responses
			 WHERE question_id IN (SELECT id FROM questions WHERE content_id = $1)`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE quizzes q
			 SET correct_answers = (
			     SELECT COUNT(*) FROM user_responses r WHERE r.quiz_id = q.id AND r.is_correct)
			 WHERE q.content_id = $1 AND q.status = $2`, id, model.SessionStatusInProgress); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE quizzes SET content_id = NULL WHERE content_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE content_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM contents WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}
