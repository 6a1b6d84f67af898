package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stagegear/internal/domain"
	"stagegear/internal/pkg/jwt"
	"stagegear/internal/repository"
)

type Service struct {
	users *repository.UserRepository
	jwt   *jwt.Service
	log   *zap.Logger
}

func NewService(users *repository.UserRepository, jwtService *jwt.Service, log *zap.Logger) *Service {
	return &Service{users: users, jwt: jwtService, log: log}
}

// Login accepts a username or email plus password and returns a signed token.
// Lookup failures and bad passwords report the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByLogin(ctx, req.Login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return &LoginResponse{Token: token, User: user}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.User, error) {
	return s.users.List(ctx, activeOnly, limit, offset)
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	if !req.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	s.log.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user updated", zap.String("user_id", user.ID))
	return user, nil
}

// Deactivate is a soft delete so the audit trail keeps resolving user ids.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	user.IsActive = false
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info("user deactivated", zap.String("user_id", user.ID))
	return nil
}
