package user

import (
	"Food-Rescue-Coordinator/domain"
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils/database"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type (
	// UserService is the identity and role resolver. The identity provider
	// authenticates the principal; this service maps it to a stored user.
	UserService interface {
		ResolveRole(ctx context.Context, principalID string) (*entities.User, error)
		ResolvePrincipal(ctx context.Context, principalID string) (domain.Principal, error)
		CreateUser(ctx context.Context, req domain.CreateUserRequest) (*entities.User, error)
	}

	userService struct {
		userRepository UserRepository
	}
)

func NewUserService(userRepository UserRepository) UserService {
	return &userService{userRepository: userRepository}
}

func (s *userService) ResolveRole(ctx context.Context, principalID string) (*entities.User, error) {
	if _, err := uuid.Parse(principalID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotFound, domain.ErrParseUUID)
	}
	user, err := s.userRepository.GetUserByID(ctx, principalID)
	if err != nil {
		return nil, database.MapError(err)
	}
	if !domain.IsValidRole(user.Role) {
		return nil, fmt.Errorf("%w: %v %q", domain.ErrForbidden, domain.ErrInvalidRole, user.Role)
	}
	return user, nil
}

func (s *userService) ResolvePrincipal(ctx context.Context, principalID string) (domain.Principal, error) {
	user, err := s.ResolveRole(ctx, principalID)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{UserID: user.ID.String(), Role: user.Role}, nil
}

// CreateUser registers a user with a fixed role. Roles never change afterwards.
func (s *userService) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*entities.User, error) {
	if !domain.IsValidRole(req.Role) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, domain.ErrInvalidRole)
	}
	user := &entities.User{
		ID:    uuid.New(),
		Name:  req.Name,
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Phone: req.Phone,
		Role:  req.Role,
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return nil, database.MapError(err)
	}
	return user, nil
}
