package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abnahid/Vehicle-Rental-System/internal/auth"
	"github.com/abnahid/Vehicle-Rental-System/internal/domain"
)

func newAuthService() (*AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	return NewAuthService(users, jwtManager, zap.NewNop()), users
}

func TestSignup(t *testing.T) {
	svc, _ := newAuthService()

	dto, err := svc.Signup(context.Background(), SignupRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "s3cret-pass",
		Phone:    "0123456789",
	})
	require.NoError(t, err)

	assert.Equal(t, "Alice", dto.Name)
	assert.Equal(t, "alice@example.com", dto.Email)
	// Role defaults to customer when not supplied.
	assert.Equal(t, "customer", dto.Role)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	req := SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"}
	_, err := svc.Signup(ctx, req)
	require.NoError(t, err)

	_, err = svc.Signup(ctx, req)
	assert.True(t, domain.IsCode(err, domain.CodeConflict), "got %v", err)
}

func TestSignupRejectsBadInput(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Name: "Bob", Email: "bob@example.com", Password: "short"})
	assert.True(t, domain.IsCode(err, domain.CodeValidation), "got %v", err)

	_, err = svc.Signup(ctx, SignupRequest{Name: "Bob", Email: "bob@example.com", Password: "s3cret-pass", Role: "superuser"})
	assert.True(t, domain.IsCode(err, domain.CodeValidation), "got %v", err)

	_, err = svc.Signup(ctx, SignupRequest{Name: "Bob", Email: "not-an-email", Password: "s3cret-pass"})
	assert.True(t, domain.IsCode(err, domain.CodeValidation), "got %v", err)
}

func TestSignin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass", Role: "admin"})
	require.NoError(t, err)

	dto, err := svc.Signin(ctx, SigninRequest{Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, dto.Token)
	assert.Equal(t, "admin", dto.User.Role)
}

func TestSigninBadCredentials(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupRequest{Name: "Alice", Email: "alice@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	// Wrong password and unknown email yield the same error.
	_, err = svc.Signin(ctx, SigninRequest{Email: "alice@example.com", Password: "wrong-pass"})
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized), "got %v", err)

	_, err2 := svc.Signin(ctx, SigninRequest{Email: "nobody@example.com", Password: "s3cret-pass"})
	assert.True(t, domain.IsCode(err2, domain.CodeUnauthorized), "got %v", err2)
	assert.Equal(t, err.Error(), err2.Error())
}
