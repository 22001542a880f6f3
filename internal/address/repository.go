package address

import (
	"context"
	"database/sql"
	"errors"

	"booktime-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uint) ([]*Address, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Address, error)

	Create(ctx context.Context, addr *Address) error
	Update(ctx context.Context, addr *Address) error
	Delete(ctx context.Context, userID uint, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID uint,
) ([]*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "GetByUserID"),
		zap.Uint("user_id", userID),
	)

	const q = `
	SELECT
		id, user_id,
		name,
		address1, address2,
		zip_code, city, country
	FROM addresses
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var res []*Address

	for rows.Next() {
		var a Address
		if err := rows.Scan(
			&a.ID, &a.UserID,
			&a.Name,
			&a.Address1, &a.Address2,
			&a.ZipCode, &a.City, &a.Country,
		); err != nil {
			log.Error("scan failed", zap.Error(err))
			return nil, err
		}
		res = append(res, &a)
	}

	return res, rows.Err()
}

func (r *repository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*Address, error) {

	const q = `
	SELECT
		id, user_id,
		name,
		address1, address2,
		zip_code, city, country
	FROM addresses
	WHERE id = $1
	LIMIT 1
	`

	var a Address
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.UserID,
		&a.Name,
		&a.Address1, &a.Address2,
		&a.ZipCode, &a.City, &a.Country,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("address query failed", zap.Error(err))
		return nil, err
	}

	return &a, nil
}

func (r *repository) Create(
	ctx context.Context,
	addr *Address,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Create"),
		zap.String("address_id", addr.ID.String()),
	)

	const q = `
	INSERT INTO addresses (
		id, user_id,
		name,
		address1, address2,
		zip_code, city, country
	) VALUES (
		$1, $2,
		$3,
		$4, $5,
		$6, $7, $8
	)
	`

	_, err := r.db.ExecContext(
		ctx, q,
		addr.ID, addr.UserID,
		addr.Name,
		addr.Address1, addr.Address2,
		addr.ZipCode, addr.City, addr.Country,
	)

	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return nil
}

// Update persists the submitted fields in place, scoped to the owning user.
// Orders are unaffected: they carry copied address values, not references.
func (r *repository) Update(
	ctx context.Context,
	addr *Address,
) error {

	const q = `
	UPDATE addresses
	SET
		name = $3,
		address1 = $4,
		address2 = $5,
		zip_code = $6,
		city = $7,
		country = $8
	WHERE id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(
		ctx, q,
		addr.ID, addr.UserID,
		addr.Name,
		addr.Address1, addr.Address2,
		addr.ZipCode, addr.City, addr.Country,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAddressNotFound
	}

	return nil
}

func (r *repository) Delete(
	ctx context.Context,
	userID uint,
	id uuid.UUID,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Delete"),
		zap.String("address_id", id.String()),
	)

	const q = `
	DELETE FROM addresses
	WHERE id = $1 AND user_id = $2
	`

	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		log.Error("delete failed", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAddressNotFound
	}

	return nil
}
