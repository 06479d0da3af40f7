package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartquizzer/quizzer-backend/internal/database"
	"github.com/smartquizzer/quizzer-backend/internal/model"
)

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, password_hash, full_name, skill_level, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.SkillLevel, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, full_name, skill_level)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.SkillLevel,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return err
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// Delete removes a user with all owned content, questions, quizzes and
// responses in one transaction. Returns pgx.ErrNoRows if the user is absent.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		steps := []string{
			`DELETE FROM user_responses
			 WHERE quiz_id IN (SELECT id FROM quizzes WHERE user_id = $1)
			    OR question_id IN (
			        SELECT q.id FROM questions q JOIN contents c ON c.id = q.content_id
			        WHERE c.user_id = $1)`,
			`DELETE FROM quizzes WHERE user_id = $1`,
			`DELETE FROM questions WHERE content_id IN (SELECT id FROM contents WHERE user_id = $1)`,
			`DELETE FROM contents WHERE user_id = $1`,
		}
		for _, stmt := range steps {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return err
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}
