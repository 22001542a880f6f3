package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booktime-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id uint, onlyActive bool) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetTagBySlug(ctx context.Context, slug string) (*Tag, error)
	ListByTag(ctx context.Context, tagID uint, limit, page *uint16) ([]*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(
	ctx context.Context,
	id uint,
	onlyActive bool,
) (*Product, error) {

	query := `
	SELECT
		id, name, slug, description, price, active, created_at, updated_at
	FROM products
	WHERE id = $1
	`
	if onlyActive {
		query += " AND active = true"
	}

	var p Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetBySlug(
	ctx context.Context,
	slug string,
) (*Product, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Catalog"),
		zap.String("method", "GetBySlug"),
		zap.String("slug", slug),
	)

	const q = `
	SELECT
		id, name, slug, description, price, active, created_at, updated_at
	FROM products
	WHERE slug = $1 AND active = true
	LIMIT 1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q, slug).Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description,
		&p.Price, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	tags, err := r.tagsForProduct(ctx, p.ID)
	if err != nil {
		log.Error("tag query failed", zap.Error(err))
		return nil, err
	}
	p.Tags = tags

	return &p, nil
}

func (r *repository) GetTagBySlug(
	ctx context.Context,
	slug string,
) (*Tag, error) {

	const q = `
	SELECT id, name, slug, active
	FROM product_tags
	WHERE slug = $1 AND active = true
	LIMIT 1
	`

	var t Tag
	err := r.db.QueryRowContext(ctx, q, slug).
		Scan(&t.ID, &t.Name, &t.Slug, &t.Active)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) ListByTag(
	ctx context.Context,
	tagID uint,
	limit, page *uint16,
) ([]*Product, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Catalog"),
		zap.String("method", "ListByTag"),
		zap.Uint("tag_id", tagID),
	)

	start := time.Now()

	// ---------- pagination ----------
	finalLimit := uint16(20)
	if limit != nil && *limit > 0 {
		finalLimit = *limit
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	finalPage := uint16(1)
	if page != nil && *page > 0 {
		finalPage = *page
	}

	offset := int((finalPage - 1) * finalLimit)

	const q = `
	SELECT
		p.id, p.name, p.slug, p.description, p.price, p.active,
		p.created_at, p.updated_at
	FROM products p
	JOIN product_tag_links l ON l.product_id = p.id
	WHERE l.tag_id = $1
	  AND p.active = true
	ORDER BY p.name ASC
	LIMIT $2
	OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, q, tagID, finalLimit, offset)
	if err != nil {
		log.Error("query failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}
	defer rows.Close()

	result := make([]*Product, 0, finalLimit)

	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Active,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		result = append(result, &p)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(result)),
		zap.Duration("duration", time.Since(start)),
	)

	return result, nil
}

func (r *repository) tagsForProduct(ctx context.Context, productID uint) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.name, t.slug, t.active
		FROM product_tags t
		JOIN product_tag_links l ON l.tag_id = t.id
		WHERE l.product_id = $1
		ORDER BY t.name ASC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Active); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}
