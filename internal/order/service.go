package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"booktime-be/internal/address"
	"booktime-be/internal/basket"
	"booktime-be/internal/db"
	"booktime-be/internal/logger"
	"booktime-be/internal/metrics"
	"booktime-be/internal/notification"
	"booktime-be/internal/session"
	"booktime-be/internal/utils"
)

type Service interface {
	// Checkout converts the caller's current basket into an order using
	// the two selected addresses, then unbinds the session token.
	Checkout(ctx context.Context, token string, billingID, shippingID uuid.UUID) (*Order, error)

	ListOrders(ctx context.Context, filter *Filter, limit, page *int32) ([]*Order, error)
	GetOrderDetail(ctx context.Context, orderID uint) (*Order, error)
	SetStatus(ctx context.Context, orderID uint, status Status) error

	ListPaidOrders(ctx context.Context, limit, page *int32) ([]*Order, error)
	ListPaidOrderLines(ctx context.Context, limit, page *int32) ([]*Line, error)
}

type service struct {
	repo      Repository
	baskets   basket.Service
	addresses address.Repository
	sessions  session.Store
	notifier  notification.Dispatcher
}

func NewService(
	repo Repository,
	baskets basket.Service,
	addresses address.Repository,
	sessions session.Store,
	notifier notification.Dispatcher,
) Service {
	return &service{
		repo:      repo,
		baskets:   baskets,
		addresses: addresses,
		sessions:  sessions,
		notifier:  notifier,
	}
}

func (s *service) Checkout(
	ctx context.Context,
	token string,
	billingID, shippingID uuid.UUID,
) (*Order, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "order"),
		zap.String("method", "Checkout"),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthorized
	}

	b, err := s.baskets.ResolveCurrent(ctx, token)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrEmptyBasketCheckout
	}

	billing, err := s.ownedSnapshot(ctx, billingID, userID)
	if err != nil {
		return nil, err
	}
	shipping, err := s.ownedSnapshot(ctx, shippingID, userID)
	if err != nil {
		return nil, err
	}

	o, err := s.convert(ctx, b.ID, userID, billing, shipping)
	if err != nil {
		return nil, err
	}

	metrics.OrdersConverted.Inc()

	if err := s.sessions.Unbind(ctx, token); err != nil {
		log.Error("failed to unbind session after checkout",
			zap.Uint("order_id", o.ID),
			zap.Error(err),
		)
	}

	if email := utils.GetUserEmailFromContext(ctx); email != "" {
		s.notifier.Notify(ctx, notification.EventOrderPlaced, notification.Payload{
			"email":    email,
			"order_id": fmt.Sprint(o.ID),
		})
	}

	log.Info("checkout completed",
		zap.Uint("order_id", o.ID),
		zap.String("basket_id", b.ID.String()),
	)

	return o, nil
}

// convert runs the conversion transaction, retrying once when Postgres
// aborts it with a serialization failure or deadlock.
func (s *service) convert(
	ctx context.Context,
	basketID uuid.UUID,
	userID uint,
	billing, shipping AddressSnapshot,
) (*Order, error) {

	o, err := s.repo.ConvertBasketTx(ctx, basketID, userID, billing, shipping)
	if err == nil {
		return o, nil
	}
	if !db.IsSerializationFailure(err) {
		return nil, err
	}

	metrics.ConflictRetries.Inc()
	logger.FromCtx(ctx).Warn("conversion aborted by concurrent transaction, retrying",
		zap.String("basket_id", basketID.String()),
		zap.Error(err),
	)

	o, err = s.repo.ConvertBasketTx(ctx, basketID, userID, billing, shipping)
	if err != nil {
		if db.IsSerializationFailure(err) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}

	return o, nil
}

func (s *service) ownedSnapshot(ctx context.Context, addressID uuid.UUID, userID uint) (AddressSnapshot, error) {
	a, err := s.addresses.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, address.ErrAddressNotFound) {
			return AddressSnapshot{}, ErrAddressOwnershipMismatch
		}
		return AddressSnapshot{}, err
	}
	if a.UserID != userID {
		return AddressSnapshot{}, ErrAddressOwnershipMismatch
	}

	return AddressSnapshot{
		Name:     a.Name,
		Address1: a.Address1,
		Address2: a.Address2,
		ZipCode:  a.ZipCode,
		City:     a.City,
		Country:  a.Country,
	}, nil
}

func (s *service) ListOrders(ctx context.Context, filter *Filter, limit, page *int32) ([]*Order, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrNotAuthorized
	}
	return s.repo.GetOrders(ctx, filter, limit, page)
}

func (s *service) GetOrderDetail(ctx context.Context, orderID uint) (*Order, error) {
	o, err := s.repo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if utils.IsStaffFromContext(ctx) {
		return o, nil
	}

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok || o.UserID == nil || *o.UserID != userID {
		return nil, ErrNotAuthorized
	}

	return o, nil
}

func (s *service) SetStatus(ctx context.Context, orderID uint, status Status) error {
	if !utils.IsStaffFromContext(ctx) {
		return ErrNotAuthorized
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}
	return s.repo.UpdateOrderStatus(ctx, orderID, status)
}

func (s *service) ListPaidOrders(ctx context.Context, limit, page *int32) ([]*Order, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrNotAuthorized
	}
	return s.repo.ListPaidOrders(ctx, limit, page)
}

func (s *service) ListPaidOrderLines(ctx context.Context, limit, page *int32) ([]*Line, error) {
	if !utils.IsStaffFromContext(ctx) {
		return nil, ErrNotAuthorized
	}
	return s.repo.ListPaidOrderLines(ctx, limit, page)
}
