package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/smartquizzer/quizzer-backend/internal/database"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, content_id, question_text, question_type, options, correct_answer,
	explanation, difficulty, topic, created_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.ContentID, &q.QuestionText, &q.QuestionType, &q.Options, &q.CorrectAnswer,
		&q.Explanation, &q.Difficulty, &q.Topic, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// CreateBatch inserts questions in one transaction, filling in IDs and
// creation times in place.
func (r *QuestionRepository) CreateBatch(ctx context.Context, questions []model.Question) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range questions {
			q := &questions[i]
			err := tx.QueryRow(ctx,
				`INSERT INTO questions (content_id, question_text, question_type, options, correct_answer,
				                        explanation, difficulty, topic)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				 RETURNING id, created_at`,
				q.ContentID, q.QuestionText, q.QuestionType, q.Options, q.CorrectAnswer,
				q.Explanation, q.Difficulty, q.Topic,
			).Scan(&q.ID, &q.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID retrieves a single question.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// GetByIDs returns the questions in the order of ids. Missing ids are skipped.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]model.Question, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		byID[q.ID] = *q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lo.FilterMap(ids, func(id int64, _ int) (model.Question, bool) {
		q, ok := byID[id]
		return q, ok
	}), nil
}
