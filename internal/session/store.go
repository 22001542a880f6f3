package session

import (
	"context"
	"database/sql"
	"errors"

	"booktime-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store maps an opaque visitor session token to the basket bound to it.
// The mapping lives for the session's lifetime and is severed at checkout.
type Store interface {
	// Resolve returns the basket id bound to the token, or false when the
	// token is empty, unknown, or no longer bound.
	Resolve(ctx context.Context, token string) (uuid.UUID, bool, error)

	// BindOrGet binds basketID to the token, or returns the basket id that
	// is already bound. Atomic: two racing first-time binds for the same
	// token resolve to one winner.
	BindOrGet(ctx context.Context, token string, basketID uuid.UUID) (uuid.UUID, error)

	// Unbind clears the binding. Unbinding an unknown token is a no-op.
	Unbind(ctx context.Context, token string) error

	// UnbindIfBound clears the binding only while it still points at
	// basketID. A binding replaced by a concurrent request survives.
	UnbindIfBound(ctx context.Context, token string, basketID uuid.UUID) error
}

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) Store {
	return &store{db: db}
}

func (s *store) Resolve(
	ctx context.Context,
	token string,
) (uuid.UUID, bool, error) {

	if token == "" {
		return uuid.Nil, false, nil
	}

	const q = `
	SELECT basket_id
	FROM basket_sessions
	WHERE token = $1
	`

	var basketID uuid.UUID
	err := s.db.QueryRowContext(ctx, q, token).Scan(&basketID)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("session resolve failed",
			zap.Error(err),
		)
		return uuid.Nil, false, err
	}

	return basketID, true, nil
}

func (s *store) BindOrGet(
	ctx context.Context,
	token string,
	basketID uuid.UUID,
) (uuid.UUID, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Session"),
		zap.String("method", "BindOrGet"),
	)

	// Insert-or-return on the token primary key. The no-op DO UPDATE makes
	// RETURNING yield the surviving row whichever request won the insert.
	const q = `
	INSERT INTO basket_sessions (token, basket_id)
	VALUES ($1, $2)
	ON CONFLICT (token) DO UPDATE SET token = EXCLUDED.token
	RETURNING basket_id
	`

	var bound uuid.UUID
	err := s.db.QueryRowContext(ctx, q, token, basketID).Scan(&bound)
	if err != nil {
		log.Error("bind failed", zap.Error(err))
		return uuid.Nil, err
	}

	if bound != basketID {
		log.Debug("token already bound",
			zap.String("basket_id", bound.String()),
		)
	}

	return bound, nil
}

func (s *store) Unbind(
	ctx context.Context,
	token string,
) error {

	if token == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM basket_sessions
		WHERE token = $1
	`, token)

	return err
}

func (s *store) UnbindIfBound(
	ctx context.Context,
	token string,
	basketID uuid.UUID,
) error {

	if token == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM basket_sessions
		WHERE token = $1 AND basket_id = $2
	`, token, basketID)

	return err
}
