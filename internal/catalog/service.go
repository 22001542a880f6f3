package catalog

import (
	"context"

	"booktime-be/internal/logger"

	"go.uber.org/zap"
)

// Service defines read-side catalog operations. Catalog writes are owned by
// the administration tooling, not by this service.
type Service interface {
	GetProduct(ctx context.Context, slug string) (*Product, error)
	ListByTag(ctx context.Context, tagSlug string, limit, page *uint16) ([]*Product, error)
	IsActive(ctx context.Context, productID uint) (bool, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProduct(
	ctx context.Context,
	slug string,
) (*Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *service) ListByTag(
	ctx context.Context,
	tagSlug string,
	limit, page *uint16,
) ([]*Product, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Catalog"),
		zap.String("method", "ListByTag"),
		zap.String("tag_slug", tagSlug),
	)

	tag, err := s.repo.GetTagBySlug(ctx, tagSlug)
	if err != nil {
		log.Warn("tag lookup failed", zap.Error(err))
		return nil, err
	}

	return s.repo.ListByTag(ctx, tag.ID, limit, page)
}

func (s *service) IsActive(
	ctx context.Context,
	productID uint,
) (bool, error) {

	p, err := s.repo.GetByID(ctx, productID, true)
	if err != nil {
		return false, err
	}

	return p != nil, nil
}
