package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"devshub-backend/internal/models"
)

type CardRepo struct {
	pool *pgxpool.Pool
}

func NewCardRepo(pool *pgxpool.Pool) *CardRepo {
	return &CardRepo{pool: pool}
}

func (r *CardRepo) Create(ctx context.Context, c *models.Card) error {
	c.ID = uuid.New()
	query := `INSERT INTO cards (id, author_id, question, answer)
		VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		c.ID, c.AuthorID, c.Question, c.Answer,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *CardRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Card, error) {
	c := &models.Card{}
	query := `SELECT id, author_id, question, answer, created_at, updated_at
		FROM cards WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.AuthorID, &c.Question, &c.Answer, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CardRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM cards WHERE id = $1", id)
	return err
}
