package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/markvl91/helpdesk-service/internal/auth"
	"github.com/markvl91/helpdesk-service/internal/domain"
	"github.com/markvl91/helpdesk-service/internal/repository"
	"github.com/markvl91/helpdesk-service/pkg/errorutil"
)

// AuthDependencies wires the auth service.
type AuthDependencies struct {
	Employees     repository.EmployeeRepository
	ResetTokens   repository.PasswordResetRepository
	Tokens        *auth.TokenManager
	BcryptCost    int
	ResetTokenTTL time.Duration
	Logger        *zap.Logger
}

// AuthService handles login and password management.
type AuthService struct {
	employees     repository.EmployeeRepository
	resetTokens   repository.PasswordResetRepository
	tokens        *auth.TokenManager
	bcryptCost    int
	resetTokenTTL time.Duration
	logger        *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		employees:     deps.Employees,
		resetTokens:   deps.ResetTokens,
		tokens:        deps.Tokens,
		bcryptCost:    deps.BcryptCost,
		resetTokenTTL: deps.ResetTokenTTL,
		logger:        deps.Logger,
	}
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Employee  *domain.Employee
	Token     string
	ExpiresAt time.Time
}

// Login authenticates an employee by email and password. Unknown emails and
// wrong passwords report the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errorutil.IsCode(errorutil.MapError(err), "NOT_FOUND") {
			return nil, errorutil.NewUnauthorized("invalid email or password")
		}
		return nil, errorutil.MapError(err)
	}
	if employee.Status != domain.EmployeeStatusActive {
		return nil, errorutil.NewUnauthorized("account is not active")
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, errorutil.NewUnauthorized("invalid email or password")
	}

	token, expiresAt, err := s.tokens.GenerateToken(employee.ID, employee.Capability)
	if err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	s.logger.Info("employee logged in", zap.String("employee_id", employee.ID))
	return &LoginResult{Employee: employee, Token: token, ExpiresAt: expiresAt}, nil
}

// RequestPasswordReset issues a single-use reset token. The token is
// returned for delivery by the notification layer; an unknown email
// produces no token and no error, so the endpoint does not leak accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	employee, err := s.employees.GetByEmail(ctx, email)
	if err != nil {
		if errorutil.IsCode(errorutil.MapError(err), "NOT_FOUND") {
			return nil, nil
		}
		return nil, errorutil.MapError(err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, errorutil.NewInternalError(err)
	}
	token := &repository.PasswordResetToken{
		EmployeeID: employee.ID,
		Token:      hex.EncodeToString(raw),
		ExpiresAt:  time.Now().UTC().Add(s.resetTokenTTL),
	}
	if err := s.resetTokens.Create(ctx, token); err != nil {
		return nil, errorutil.MapError(err)
	}
	return token, nil
}

// ConfirmPasswordReset exchanges a valid reset token for a new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return errorutil.NewValidationError("password must be at least 8 characters", nil)
	}

	token, err := s.resetTokens.GetByToken(ctx, tokenStr)
	if err != nil {
		if errorutil.IsCode(errorutil.MapError(err), "NOT_FOUND") {
			return errorutil.NewValidationError("reset token is invalid", nil)
		}
		return errorutil.MapError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return errorutil.NewValidationError("reset token is expired or already used", nil)
	}

	employee, err := s.employees.GetByID(ctx, token.EmployeeID)
	if err != nil {
		return errorutil.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	employee.PasswordHash = hash
	if err := s.employees.Update(ctx, employee); err != nil {
		return errorutil.MapError(err)
	}
	if err := s.resetTokens.MarkUsed(ctx, token.ID); err != nil {
		s.logger.Warn("reset token mark-used failed", zap.String("token_id", token.ID), zap.Error(err))
	}
	return nil
}

// ChangePassword lets an authenticated employee rotate their own password.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.Employee, currentPassword, newPassword string) error {
	if err := auth.ComparePassword(actor.PasswordHash, currentPassword); err != nil {
		return errorutil.NewUnauthorized("current password is incorrect")
	}
	if len(newPassword) < 8 {
		return errorutil.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return errorutil.NewInternalError(err)
	}
	actor.PasswordHash = hash
	if err := s.employees.Update(ctx, actor); err != nil {
		return errorutil.MapError(err)
	}
	return nil
}
