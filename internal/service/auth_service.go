package service

import (
	"context"
	"fmt"
	"strings"

	"invoicer/internal/dto"
	"invoicer/internal/model"
	"invoicer/internal/repository"
	"invoicer/internal/token"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AuthService orchestrates registration, login, token refresh and the
// admin-only user creation with explicit roles.
type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	CreateUserWithRoles(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
}

type authService struct {
	users repository.UserRepository
	roles repository.RoleRepository
	codec *token.Codec
}

func NewAuthService(users repository.UserRepository, roles repository.RoleRepository, codec *token.Codec) AuthService {
	return &authService{users: users, roles: roles, codec: codec}
}

// Register creates an account with the default USER role (created lazily on
// first registration; the store's unique name constraint settles the race)
// and returns a freshly issued token pair.
func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	user, err := s.validateAndBuildUser(ctx, req.FullName, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	defaultRole, err := s.roles.FindOrCreate(ctx, model.RoleUser)
	if err != nil {
		return nil, err
	}
	user.Roles = []model.Role{*defaultRole}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.buildAuthResponse(user)
}

// Login verifies credentials and issues a fresh token pair. Previously
// issued tokens stay valid until their own expiry — there is no revocation.
func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.buildAuthResponse(user)
}

// Refresh redeems a refresh token for a new pair. The subject's CURRENT
// roles are reloaded from the store — this is the one path where role
// changes since last login take effect.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if claims.Kind != token.KindRefresh {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.buildAuthResponse(user)
}

// CreateUserWithRoles is the admin path: roles come from the request and
// every requested name must already exist. Role resolution is atomic —
// one missing role fails the whole operation, nothing is persisted.
func (s *authService) CreateUserWithRoles(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	user, err := s.validateAndBuildUser(ctx, req.FullName, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	roles := make([]model.Role, 0, len(req.Roles))
	for _, name := range req.Roles {
		role, err := s.roles.FindByName(ctx, strings.ToUpper(name))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
		}
		roles = append(roles, *role)
	}
	user.Roles = roles

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return &dto.UserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Roles:    user.RoleNames(),
	}, nil
}

// validateAndBuildUser runs BOTH uniqueness checks before any write and
// returns the hashed, unsaved user.
func (s *authService) validateAndBuildUser(ctx context.Context, fullName, username, email, password string) (*model.User, error) {
	usernameTaken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	emailTaken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if usernameTaken || emailTaken {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	return &model.User{
		FullName:     fullName,
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}, nil
}

func (s *authService) buildAuthResponse(user *model.User) (*dto.AuthResponse, error) {
	roles := user.RoleNames()

	accessToken, err := s.codec.IssueAccess(user.Username, roles)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.codec.IssueRefresh(user.Username)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Username:     user.Username,
		Email:        user.Email,
		FullName:     user.FullName,
		Roles:        roles,
		TokenType:    "Bearer",
	}, nil
}
