package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stemsi/cyberassess-backend/internal/model"
)

// PostgresAdminRepository handles admin data access on PostgreSQL.
type PostgresAdminRepository struct {
	pool pgxPool
}

// NewPostgresAdminRepository creates a new PostgresAdminRepository.
func NewPostgresAdminRepository(pool pgxPool) *PostgresAdminRepository {
	return &PostgresAdminRepository{pool: pool}
}

// GetByID retrieves an admin by ID.
func (r *PostgresAdminRepository) GetByID(ctx context.Context, id string) (*model.Admin, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	return r.getOne(ctx,
		`SELECT id::text, email, name, role, password_hash, created_at, updated_at
		 FROM admins WHERE id = $1`, id)
}

// GetByEmail retrieves an admin by their unique email.
func (r *PostgresAdminRepository) GetByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return r.getOne(ctx,
		`SELECT id::text, email, name, role, password_hash, created_at, updated_at
		 FROM admins WHERE email = $1`, email)
}

func (r *PostgresAdminRepository) getOne(ctx context.Context, sql string, arg any) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx, sql, arg).
		Scan(&a.ID, &a.Email, &a.Name, &a.Role, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classifyPostgres("get admin", err)
	}
	return a, nil
}

// Create inserts a new admin.
func (r *PostgresAdminRepository) Create(ctx context.Context, a *model.Admin) error {
	a.ID = uuid.NewString()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admins (id, email, name, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		a.ID, a.Email, a.Name, a.Role, a.PasswordHash,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return classifyPostgres("create admin", err)
	}
	return nil
}
