package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abnahid/Vehicle-Rental-System/internal/auth"
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
	userDomain "github.com/abnahid/Vehicle-Rental-System/internal/domain/user"
)

// SignupRequest holds the data needed to register a new account.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// SigninRequest holds login credentials.
type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserDTO is the response representation of a user. The password hash never
// leaves the service layer.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// SigninDTO is the login response: a signed token plus the user it belongs to.
type SigninDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// AuthService handles account registration and login.
type AuthService struct {
	users  userDomain.Repository
	jwt    *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users userDomain.Repository, jwt *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, logger: logger}
}

// Signup registers a new account. The role defaults to customer; a duplicate
// email is a conflict.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*UserDTO, error) {
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, domain.NewConflictError("email already registered")
	} else if !domain.IsCode(err, domain.CodeNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	role := userDomain.RoleCustomer
	if req.Role != "" {
		role, err = userDomain.ParseRole(req.Role)
		if err != nil {
			return nil, domain.NewValidationError(err.Error())
		}
	}

	u, err := userDomain.NewUser(req.Name, req.Email, hash, req.Phone, role)
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID().String()),
		zap.String("role", string(u.Role())),
	)

	result := toUserDTO(u)
	return &result, nil
}

// Signin checks credentials and issues an access token. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Signin(ctx context.Context, req SigninRequest) (*SigninDTO, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			return nil, domain.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if !auth.VerifyPassword(req.Password, u.PasswordHash()) {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}

	token, err := s.jwt.Generate(u)
	if err != nil {
		return nil, err
	}

	return &SigninDTO{Token: token, User: toUserDTO(u)}, nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Name:      u.Name(),
		Email:     u.Email(),
		Phone:     u.Phone(),
		Role:      string(u.Role()),
		CreatedAt: u.CreatedAt(),
	}
}
