package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"devshub-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	u.ID = uuid.New()
	query := `INSERT INTO users (id, email, full_name) VALUES ($1, $2, $3) RETURNING created_at`
	return r.pool.QueryRow(ctx, query, u.ID, u.Email, u.FullName).Scan(&u.CreatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u := &models.User{}
	query := `SELECT id, email, full_name, created_at FROM users WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u := &models.User{}
	query := `SELECT id, email, full_name, created_at FROM users WHERE email = $1`
	err := r.pool.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.FullName, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}
