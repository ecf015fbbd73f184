package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abnahid/Vehicle-Rental-System/internal/auth"
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	bookingDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/booking"
	userDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/user"
)

// UpdateUserRequest holds the updatable account fields. Nil pointers leave
// the field untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}

// UserService handles account administration.
type UserService struct {
	users    userDomain.Repository
	bookings bookingDomain.Repository
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users userDomain.Repository, bookings bookingDomain.Repository, logger *zap.Logger) *UserService {
	return &UserService{users: users, bookings: bookings, logger: logger}
}

// ListUsers returns every account (admin).
func (s *UserService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	return dtos, nil
}

// GetUser retrieves one account; non-admins may only view their own.
func (s *UserService) GetUser(ctx context.Context, actor auth.Actor, userID uuid.UUID) (*UserDTO, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := toUserDTO(u)
	return &result, nil
}

// UpdateUser changes account fields; non-admins may only update themselves
// and may not change roles.
func (s *UserService) UpdateUser(ctx context.Context, actor auth.Actor, userID uuid.UUID, req UpdateUserRequest) (*UserDTO, error) {
	if err := auth.Authorize(actor, userID); err != nil {
		return nil, err
	}
	if req.Name == nil && req.Email == nil && req.Phone == nil && req.Role == nil {
		return nil, domain.NewValidationError("no fields to update")
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := u.UpdateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := u.UpdateEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		u.UpdatePhone(*req.Phone)
	}
	if req.Role != nil {
		if err := auth.RequireAdmin(actor); err != nil {
			return nil, err
		}
		role, err := userDomain.ParseRole(*req.Role)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
		if err := u.ChangeRole(role); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}

	result := toUserDTO(u)
	return &result, nil
}

// DeleteUser removes an account (admin). Accounts holding active bookings
// cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	active, err := s.bookings.CountActiveByCustomer(ctx, userID)
	if err != nil {
		return err
	}
	if active > 0 {
		return domain.NewConflictError(fmt.Sprintf("cannot delete user with %d active booking(s)", active))
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", userID.String()))
	return nil
}
