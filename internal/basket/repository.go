package basket

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booktime-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, userID *uint) (*Basket, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Basket, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetLines(ctx context.Context, basketID uuid.UUID) ([]Line, error)
	CountLines(ctx context.Context, basketID uuid.UUID) (int, error)

	AddLine(ctx context.Context, basketID uuid.UUID, productID uint, delta int) error
	SetLineQuantity(ctx context.Context, basketID uuid.UUID, productID uint, quantity int) error
	DeleteLine(ctx context.Context, basketID uuid.UUID, productID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(
	ctx context.Context,
	userID *uint,
) (*Basket, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Basket"),
		zap.String("method", "Create"),
	)

	const q = `
	INSERT INTO baskets (id, user_id, status)
	VALUES ($1, $2, 'OPEN')
	RETURNING id, user_id, status, created_at
	`

	b := &Basket{}
	err := r.db.QueryRowContext(ctx, q, uuid.New(), userID).
		Scan(&b.ID, &b.UserID, &b.Status, &b.CreatedAt)
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return nil, err
	}

	log.Info("basket created", zap.String("basket_id", b.ID.String()))
	return b, nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*Basket, error) {

	const q = `
	SELECT id, user_id, status, created_at
	FROM baskets
	WHERE id = $1
	`

	b := &Basket{}
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&b.ID, &b.UserID, &b.Status, &b.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.GetLines(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Lines = lines

	return b, nil
}

// Delete removes a basket and, via cascade, its lines. Only used to discard
// the spare basket created by the loser of a racing first bind.
func (r *repository) Delete(
	ctx context.Context,
	id uuid.UUID,
) error {

	_, err := r.db.ExecContext(ctx, `
		DELETE FROM baskets
		WHERE id = $1 AND status = 'OPEN'
	`, id)

	return err
}

func (r *repository) GetLines(
	ctx context.Context,
	basketID uuid.UUID,
) ([]Line, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Basket"),
		zap.String("method", "GetLines"),
		zap.String("basket_id", basketID.String()),
	)

	start := time.Now()

	const q = `
	SELECT
		l.basket_id,
		l.product_id,
		l.quantity,
		l.created_at,
		l.updated_at,

		p.name,
		p.slug,
		p.price
	FROM basket_lines l
	JOIN products p ON p.id = l.product_id
	WHERE l.basket_id = $1
	ORDER BY l.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, q, basketID)
	if err != nil {
		log.Error("query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer rows.Close()

	var lines []Line

	for rows.Next() {
		var l Line
		if err := rows.Scan(
			&l.BasketID,
			&l.ProductID,
			&l.Quantity,
			&l.CreatedAt,
			&l.UpdatedAt,

			&l.ProductName,
			&l.ProductSlug,
			&l.Price,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	return lines, nil
}

func (r *repository) CountLines(
	ctx context.Context,
	basketID uuid.UUID,
) (int, error) {

	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM basket_lines WHERE basket_id = $1
	`, basketID).Scan(&count)

	return count, err
}

// AddLine increments the line for the product, creating it when absent.
// The basket row is locked first, so an add racing a checkout either runs
// before the status flip (and lands in the order snapshot) or blocks
// behind it and sees the frozen basket.
func (r *repository) AddLine(
	ctx context.Context,
	basketID uuid.UUID,
	productID uint,
	delta int,
) error {

	if delta <= 0 {
		return ErrInvalidQuantity
	}

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Basket"),
		zap.String("method", "AddLine"),
		zap.String("basket_id", basketID.String()),
		zap.Uint("product_id", productID),
		zap.Int("delta", delta),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err := lockOpenBasket(ctx, tx, basketID); err != nil {
		return err
	}

	const q = `
	INSERT INTO basket_lines (basket_id, product_id, quantity)
	VALUES ($1, $2, $3)
	ON CONFLICT (basket_id, product_id)
	DO UPDATE SET
		quantity   = basket_lines.quantity + EXCLUDED.quantity,
		updated_at = NOW()
	`

	if _, err := tx.ExecContext(ctx, q, basketID, productID, delta); err != nil {
		log.Error("upsert failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	log.Debug("line added")
	return nil
}

func (r *repository) SetLineQuantity(
	ctx context.Context,
	basketID uuid.UUID,
	productID uint,
	quantity int,
) error {

	if quantity <= 0 {
		return r.DeleteLine(ctx, basketID, productID)
	}

	const q = `
	UPDATE basket_lines
	SET quantity = $3, updated_at = NOW()
	WHERE basket_id = $1 AND product_id = $2
	`

	return r.mutateLine(ctx, basketID, q, basketID, productID, quantity)
}

func (r *repository) DeleteLine(
	ctx context.Context,
	basketID uuid.UUID,
	productID uint,
) error {

	const q = `
	DELETE FROM basket_lines
	WHERE basket_id = $1 AND product_id = $2
	`

	return r.mutateLine(ctx, basketID, q, basketID, productID)
}

// mutateLine runs a single line statement with the basket row locked.
// Zero rows after a successful lock means the line itself was missing.
func (r *repository) mutateLine(
	ctx context.Context,
	basketID uuid.UUID,
	query string,
	args ...any,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Basket"),
		zap.String("method", "mutateLine"),
		zap.String("basket_id", basketID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err := lockOpenBasket(ctx, tx, basketID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrLineNotFound
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	return nil
}

// lockOpenBasket takes the basket row lock a conversion also takes when it
// flips the status. A mutation arriving mid conversion blocks here until
// the conversion commits, then re-reads the row as SUBMITTED.
func lockOpenBasket(ctx context.Context, tx *sql.Tx, basketID uuid.UUID) error {
	var status Status
	err := tx.QueryRowContext(ctx, `
		SELECT status FROM baskets WHERE id = $1 FOR UPDATE
	`, basketID).Scan(&status)

	if errors.Is(err, sql.ErrNoRows) {
		return ErrBasketNotFound
	}
	if err != nil {
		return err
	}

	if status != StatusOpen {
		return ErrBasketAlreadyConverted
	}

	return nil
}
