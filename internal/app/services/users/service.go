package users

import (
	"context"
	"strings"

	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/services/auth"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
	"github.com/zerium/propertyd/pkg/logger"
)

// Service manages user accounts.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// RegisterInput carries the fields of a signup request.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	Role        string
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, svcerr.Validation("a valid email is required")
	}
	if len(in.Password) < 8 {
		return user.User{}, svcerr.Validation("password must be at least 8 characters")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return user.User{}, svcerr.Validation("full_name is required")
	}

	role, err := user.ParseRole(in.Role)
	if err != nil {
		return user.User{}, svcerr.Validation("role must be one of owner, tenant, admin")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return user.User{}, svcerr.Conflict("email %s is already registered", email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return user.User{}, svcerr.Internal("hash password", err)
	}

	created, err := s.store.CreateUser(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return user.User{}, svcerr.Conflict("email %s is already registered", email)
	}

	s.log.WithFields(map[string]interface{}{"user_id": created.ID, "role": created.Role}).Info("user registered")
	return created, nil
}

// Get retrieves a user by identifier.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return user.User{}, svcerr.NotFound("user %s not found", id)
	}
	return u, nil
}

// UpdateProfile lets a user change their own name and phone number.
func (s *Service) UpdateProfile(ctx context.Context, actor user.User, fullName, phoneNumber string) (user.User, error) {
	if strings.TrimSpace(fullName) != "" {
		actor.FullName = strings.TrimSpace(fullName)
	}
	actor.PhoneNumber = strings.TrimSpace(phoneNumber)

	updated, err := s.store.UpdateUser(ctx, actor)
	if err != nil {
		return user.User{}, svcerr.NotFound("user %s not found", actor.ID)
	}
	return updated, nil
}

// List returns all users. Admin only.
func (s *Service) List(ctx context.Context, actor user.User) ([]user.User, error) {
	if actor.Role != user.RoleAdmin {
		return nil, svcerr.Forbidden("only admins may list users")
	}
	return s.store.ListUsers(ctx)
}
