package user

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"booktime-be/internal/logger"
)

type Repository interface {
	Create(ctx context.Context, email, password string, firstName, lastName *string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, email, password string, firstName, lastName *string) (User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "user"),
		zap.String("method", "Create"),
	)

	var u User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, email, password, first_name, last_name, role, created_at`,
		email, password, firstName, lastName,
	).Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt)

	if err != nil {
		log.Error("failed to insert user",
			zap.String("email", email),
			zap.Error(err),
		)
	}

	return u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, password, first_name, last_name, role, created_at FROM users WHERE email=$1",
		email,
	).Scan(&u.ID, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return User{}, ErrUserNotFound
	}

	return u, err
}
