package user

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"booktime-be/internal/db"
	"booktime-be/internal/logger"
	"booktime-be/internal/notification"
)

type Service interface {
	Signup(ctx context.Context, email, password string, firstName, lastName *string) (string, User, error)
	Login(ctx context.Context, email, password string) (string, User, error)
}

type service struct {
	repo     Repository
	notifier notification.Dispatcher
}

func NewService(repo Repository, notifier notification.Dispatcher) Service {
	return &service{repo: repo, notifier: notifier}
}

func (s *service) Signup(ctx context.Context, email, password string, firstName, lastName *string) (string, User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "user"),
		zap.String("method", "Signup"),
	)

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", User{}, err
	}

	u, err := s.repo.Create(ctx, email, hashed, firstName, lastName)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return "", User{}, ErrEmailExists
		}
		log.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return "", User{}, err
	}

	token, err := GenerateJWT(u.ID, string(u.Role), email)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", fmt.Sprint(u.ID)), zap.Error(err))
		return "", User{}, err
	}

	s.notifier.Notify(ctx, notification.EventSignup, notification.Payload{
		"email": u.Email,
	})

	log.Info("signup completed",
		zap.String("user_id", fmt.Sprint(u.ID)),
		zap.String("email", email),
	)

	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "user"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Info("email not found", zap.String("email", email))
		return "", User{}, ErrInvalidCredentials
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("password mismatch", zap.String("email", email))
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, string(u.Role), email)
	return token, u, err
}
