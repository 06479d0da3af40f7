package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartquizzer/quizzer-backend/internal/database"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// QuizRepository handles quiz sessions and their responses.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, user_id, content_id, topic, question_ids, total_questions, initial_difficulty,
	status, score, correct_answers, total_time_seconds, started_at, completed_at`

func scanQuiz(row pgx.Row) (*model.QuizSession, error) {
	s := &model.QuizSession{}
	err := row.Scan(&s.ID, &s.UserID, &s.ContentID, &s.Topic, &s.QuestionIDs, &s.TotalQuestions, &s.InitialDifficulty,
		&s.Status, &s.Score, &s.CorrectAnswers, &s.TotalTimeSeconds, &s.StartedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func collectQuizzes(rows pgx.Rows) ([]model.QuizSession, error) {
	defer rows.Close()

	sessions := make([]model.QuizSession, 0)
	for rows.Next() {
		s, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Create inserts a new in-progress session.
func (r *QuizRepository) Create(ctx context.Context, s *model.QuizSession) error {
	s.Status = model.SessionStatusInProgress
	return r.pool.QueryRow(ctx,
		`INSERT INTO quizzes (user_id, content_id, topic, question_ids, total_questions, initial_difficulty, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, started_at`,
		s.UserID, s.ContentID, s.Topic, s.QuestionIDs, s.TotalQuestions, s.InitialDifficulty, s.Status,
	).Scan(&s.ID, &s.StartedAt)
}

// GetByID retrieves a session.
func (r *QuizRepository) GetByID(ctx context.Context, id int64) (*model.QuizSession, error) {
	return scanQuiz(r.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
}

// ListByUser returns a page of a user's sessions, most recently started first.
func (r *QuizRepository) ListByUser(ctx context.Context, userID int64, skip, limit int) ([]model.QuizSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE user_id = $1
		 ORDER BY started_at DESC, id DESC
		 OFFSET $2 LIMIT $3`, userID, skip, limit)
	if err != nil {
		return nil, err
	}
	return collectQuizzes(rows)
}

// ListCompletedByUser returns every completed session of a user, oldest
// completion first.
func (r *QuizRepository) ListCompletedByUser(ctx context.Context, userID int64) ([]model.QuizSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes
		 WHERE user_id = $1 AND status = $2
		 ORDER BY completed_at ASC, id ASC`, userID, model.SessionStatusCompleted)
	if err != nil {
		return nil, err
	}
	return collectQuizzes(rows)
}

// lockQuiz loads a session with a row lock held until tx ends.
func lockQuiz(ctx context.Context, tx pgx.Tx, id int64) (*model.QuizSession, error) {
	return scanQuiz(tx.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1 FOR UPDATE`, id))
}

// RecordResponse stores an answer and bumps correct_answers when it is
// correct, atomically. check runs against the locked session first and
// aborts the write when it returns an error. A second answer to the same
// question yields ErrDuplicateResponse.
func (r *QuizRepository) RecordResponse(ctx context.Context, resp *model.Response, check func(*model.QuizSession) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := lockQuiz(ctx, tx, resp.QuizID)
		if err != nil {
			return err
		}
		if err := check(s); err != nil {
			return err
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO user_responses (quiz_id, question_id, user_answer, is_correct, time_taken_seconds, difficulty_at_attempt)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (quiz_id, question_id) DO NOTHING
			 RETURNING id, created_at`,
			resp.QuizID, resp.QuestionID, resp.UserAnswer, resp.IsCorrect, resp.TimeTakenSeconds, resp.DifficultyAtAttempt,
		).Scan(&resp.ID, &resp.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrDuplicateResponse
		}
		if err != nil {
			return err
		}

		if resp.IsCorrect {
			if _, err := tx.Exec(ctx,
				`UPDATE quizzes SET correct_answers = correct_answers + 1 WHERE id = $1`, resp.QuizID); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecentResponses returns up to limit of the latest responses of a session,
// newest first.
func (r *QuizRepository) RecentResponses(ctx context.Context, quizID int64, limit int) ([]model.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quiz_id, question_id, user_answer, is_correct, time_taken_seconds, difficulty_at_attempt, created_at
		 FROM user_responses WHERE quiz_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`, quizID, limit)
	if err != nil {
		return nil, err
	}
	return collectResponses(rows)
}

func collectResponses(rows pgx.Rows) ([]model.Response, error) {
	defer rows.Close()

	responses := make([]model.Response, 0)
	for rows.Next() {
		var resp model.Response
		if err := rows.Scan(&resp.ID, &resp.QuizID, &resp.QuestionID, &resp.UserAnswer, &resp.IsCorrect,
			&resp.TimeTakenSeconds, &resp.DifficultyAtAttempt, &resp.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, rows.Err()
}

// Complete finalizes a session. finalize receives the locked session and its
// responses in submission order; its result is written back and the
// responses are returned.
func (r *QuizRepository) Complete(ctx context.Context, id int64, finalize func(*model.QuizSession, []model.Response) (model.Completion, error)) ([]model.Response, error) {
	var responses []model.Response
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := lockQuiz(ctx, tx, id)
		if err != nil {
			return err
		}

		rows, err := tx.Query(ctx,
			`SELECT id, quiz_id, question_id, user_answer, is_correct, time_taken_seconds, difficulty_at_attempt, created_at
			 FROM user_responses WHERE quiz_id = $1
			 ORDER BY created_at ASC, id ASC`, id)
		if err != nil {
			return err
		}
		responses, err = collectResponses(rows)
		if err != nil {
			return err
		}

		c, err := finalize(s, responses)
		if err != nil {
			return err
		}
		if c.CompletedAt.IsZero() {
			c.CompletedAt = time.Now()
		}

		_, err = tx.Exec(ctx,
			`UPDATE quizzes
			 SET status = $1, score = $2, correct_answers = $3, total_time_seconds = $4, completed_at = $5
			 WHERE id = $6`,
			model.SessionStatusCompleted, c.Score, c.CorrectAnswers, c.TotalTimeSeconds, c.CompletedAt, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// Abandon moves a session to abandoned after check accepts the locked row.
func (r *QuizRepository) Abandon(ctx context.Context, id int64, check func(*model.QuizSession) error) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := lockQuiz(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := check(s); err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE quizzes SET status = $1 WHERE id = $2`,
			model.SessionStatusAbandoned, id)
		return err
	})
}
