package basket

import (
	"context"
	"sort"

	"booktime-be/internal/catalog"
	"booktime-be/internal/logger"
	"booktime-be/internal/metrics"
	"booktime-be/internal/session"
	"booktime-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service owns the basket side of the lifecycle: lazy creation bound to the
// visitor session, line aggregation, and emptiness checks. Conversion to an
// order lives in the order package.
type Service interface {
	// ResolveCurrent returns the open basket bound to the session token, or
	// nil when there is none. A binding left behind by a concurrent checkout
	// resolves to nil, never to an error.
	ResolveCurrent(ctx context.Context, token string) (*Basket, error)

	// GetOrCreate returns the bound basket, creating and binding a fresh one
	// when the session has none. At most one basket is ever bound per token.
	GetOrCreate(ctx context.Context, token string) (*Basket, error)

	// AddItem adds one unit of the product to the session's basket, creating
	// the basket first when needed.
	AddItem(ctx context.Context, token string, productID uint) (*Basket, error)

	SetLineQuantity(ctx context.Context, basketID uuid.UUID, productID uint, quantity int) error

	// UpdateLines bulk-applies quantity edits, each entry following the
	// set-quantity rule (zero or negative deletes the line).
	UpdateLines(ctx context.Context, basketID uuid.UUID, edits map[uint]int) error

	IsEmpty(ctx context.Context, basketID uuid.UUID) (bool, error)
}

type service struct {
	repo     Repository
	sessions session.Store
	catalog  catalog.Service
}

func NewService(repo Repository, sessions session.Store, catalogSvc catalog.Service) Service {
	return &service{
		repo:     repo,
		sessions: sessions,
		catalog:  catalogSvc,
	}
}

func (s *service) ResolveCurrent(
	ctx context.Context,
	token string,
) (*Basket, error) {

	basketID, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	b, err := s.repo.GetByID(ctx, basketID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.Status != StatusOpen {
		// Stale binding: the basket was consumed by a checkout that has not
		// cleared the session yet, or was removed. Soft failure.
		return nil, nil
	}

	return b, nil
}

func (s *service) GetOrCreate(
	ctx context.Context,
	token string,
) (*Basket, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Basket"),
		zap.String("method", "GetOrCreate"),
	)

	boundID, hasBinding, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if hasBinding {
		b, err := s.repo.GetByID(ctx, boundID)
		if err != nil {
			return nil, err
		}
		if b != nil && b.Status == StatusOpen {
			return b, nil
		}
		// Stale binding to a consumed or removed basket. Delete only the
		// row we observed: a blind delete by token would also wipe a fresh
		// binding a concurrent request just won.
		if err := s.sessions.UnbindIfBound(ctx, token, boundID); err != nil {
			return nil, err
		}
	}

	var userID *uint
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		userID = &id
	}

	created, err := s.repo.Create(ctx, userID)
	if err != nil {
		log.Error("failed to create basket", zap.Error(err))
		return nil, ErrFailedCreateBasket
	}

	bound, err := s.sessions.BindOrGet(ctx, token, created.ID)
	if err != nil {
		return nil, err
	}

	if bound != created.ID {
		// Lost the race to a concurrent first add: discard the spare basket
		// and use the one that won.
		log.Debug("discarding spare basket",
			zap.String("spare_id", created.ID.String()),
			zap.String("bound_id", bound.String()),
		)
		if delErr := s.repo.Delete(ctx, created.ID); delErr != nil {
			log.Warn("failed to discard spare basket", zap.Error(delErr))
		}

		winner, err := s.repo.GetByID(ctx, bound)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			return nil, ErrBasketNotFound
		}
		if winner.Status != StatusOpen {
			return nil, ErrBasketAlreadyConverted
		}
		return winner, nil
	}

	metrics.BasketsCreated.Inc()
	log.Info("basket created for session",
		zap.String("basket_id", created.ID.String()),
	)

	return created, nil
}

func (s *service) AddItem(
	ctx context.Context,
	token string,
	productID uint,
) (*Basket, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Basket"),
		zap.String("method", "AddItem"),
		zap.Uint("product_id", productID),
	)

	active, err := s.catalog.IsActive(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !active {
		log.Warn("rejected inactive product")
		return nil, ErrInvalidProduct
	}

	b, err := s.GetOrCreate(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddLine(ctx, b.ID, productID, 1); err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, b.ID)
	if err != nil {
		return nil, ErrFailedGetLines
	}
	b.Lines = lines

	return b, nil
}

func (s *service) SetLineQuantity(
	ctx context.Context,
	basketID uuid.UUID,
	productID uint,
	quantity int,
) error {
	return s.repo.SetLineQuantity(ctx, basketID, productID, quantity)
}

func (s *service) UpdateLines(
	ctx context.Context,
	basketID uuid.UUID,
	edits map[uint]int,
) error {

	// Deterministic order keeps retries and logs stable.
	ids := make([]uint, 0, len(edits))
	for id := range edits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, productID := range ids {
		if err := s.repo.SetLineQuantity(ctx, basketID, productID, edits[productID]); err != nil {
			return err
		}
	}

	return nil
}

func (s *service) IsEmpty(
	ctx context.Context,
	basketID uuid.UUID,
) (bool, error) {

	count, err := s.repo.CountLines(ctx, basketID)
	if err != nil {
		return false, err
	}

	return count == 0, nil
}
