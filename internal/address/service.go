package address

import (
	"context"

	"booktime-be/internal/logger"
	"booktime-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service scopes every address operation to the authenticated user.
type Service interface {
	List(ctx context.Context) ([]*Address, error)
	Get(ctx context.Context, addressID uuid.UUID) (*Address, error)

	Create(ctx context.Context, input CreateAddressInput) (*Address, error)
	Update(ctx context.Context, input UpdateAddressInput) (*Address, error)
	Delete(ctx context.Context, addressID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(
	ctx context.Context,
) ([]*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Get(
	ctx context.Context,
	addressID uuid.UUID,
) (*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, err
	}

	if addr.UserID != userID {
		logger.FromCtx(ctx).Warn("unauthorized address access",
			zap.String("address_id", addressID.String()),
		)
		return nil, ErrAddressNotFound
	}

	return addr, nil
}

func (s *service) Create(
	ctx context.Context,
	input CreateAddressInput,
) (*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Create"),
		zap.Uint("user_id", userID),
	)

	addr := &Address{
		ID:       uuid.New(),
		UserID:   userID,
		Name:     input.Name,
		Address1: input.AddressLine1,
		Address2: input.AddressLine2,
		ZipCode:  input.ZipCode,
		City:     input.City,
		Country:  input.Country,
	}

	if err := s.repo.Create(ctx, addr); err != nil {
		log.Error("failed to create address", zap.Error(err))
		return nil, err
	}

	log.Info("address created", zap.String("address_id", addr.ID.String()))
	return addr, nil
}

func (s *service) Update(
	ctx context.Context,
	input UpdateAddressInput,
) (*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Update"),
		zap.Uint("user_id", userID),
	)

	id, err := uuid.Parse(input.AddressID)
	if err != nil {
		return nil, ErrInvalidAddressID
	}

	addr := &Address{
		ID:       id,
		UserID:   userID,
		Name:     input.Name,
		Address1: input.AddressLine1,
		Address2: input.AddressLine2,
		ZipCode:  input.ZipCode,
		City:     input.City,
		Country:  input.Country,
	}

	if err := s.repo.Update(ctx, addr); err != nil {
		log.Error("failed to update address", zap.Error(err))
		return nil, err
	}

	log.Info("address updated", zap.String("address_id", id.String()))
	return addr, nil
}

func (s *service) Delete(
	ctx context.Context,
	addressID uuid.UUID,
) error {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrNotAuthenticated
	}

	return s.repo.Delete(ctx, userID, addressID)
}
