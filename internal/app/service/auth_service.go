package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"miniblog/internal/common"
	"miniblog/internal/common/security"
	"miniblog/internal/domain/model"
	"miniblog/internal/domain/repository"

	"github.com/google/uuid"
)

// AuthService owns the login/lockout state machine and token issuance.
type AuthService struct {
	userRepo         repository.UserRepository
	tokens           *security.TokenManager
	maxLoginAttempts int
	lockoutDuration  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenManager, maxLoginAttempts int, lockoutDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		tokens:           tokens,
		maxLoginAttempts: maxLoginAttempts,
		lockoutDuration:  lockoutDuration,
	}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeEmail(req.Email)

	if len(username) < 3 {
		return nil, fmt.Errorf("username must be at least 3 characters: %w", common.ErrValidation)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required: %w", common.ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", common.ErrValidation)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("username or email already exists: %w", common.ErrValidation)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("username or email already exists: %w", common.ErrValidation)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing username: %w", err)
	}

	// Hashing happens here, before anything is persisted. The repository never
	// sees a plaintext password.
	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict when the unique index catches a
		// duplicate that raced past the checks above.
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Login runs the lockout state machine:
//  1. unknown email fails exactly like a wrong password
//  2. an active lock rejects the attempt before any hash comparison and
//     without touching the counter
//  3. a mismatch increments the counter atomically; hitting the threshold
//     arms a lock
//  4. a match resets the counter, clears the lock, and issues a token
//
// The counter is never reset except on success, so one failure right after a
// lock expires re-arms the lock immediately.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("email and password are required: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := time.Now()
	if user.Locked(now) {
		return nil, &common.AccountLockedError{RemainingMinutes: minutesUntil(*user.LockUntil, now)}
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		_, lockUntil, err := s.userRepo.RecordFailedLogin(ctx, user.ID, s.maxLoginAttempts, s.lockoutDuration)
		if err != nil {
			return nil, fmt.Errorf("failed to record login attempt: %w", err)
		}
		// Measure the remainder from a fresh clock: the hash comparison above
		// takes long enough that reusing the pre-verification timestamp would
		// round a just-armed lock up past its full duration.
		if now := time.Now(); lockUntil != nil && lockUntil.After(now) {
			return nil, &common.AccountLockedError{RemainingMinutes: minutesUntil(*lockUntil, now)}
		}
		return nil, common.ErrInvalidCredentials
	}

	if err := s.userRepo.ResetLoginAttempts(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to reset login attempts: %w", err)
	}
	user.LoginAttempts = 0
	user.LockUntil = nil

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Authenticate resolves a verified token's account id to a live account.
// Every failure collapses to ErrUnauthorized so callers cannot distinguish a
// deleted account from a bad token.
func (s *AuthService) Authenticate(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, common.ErrUnauthorized
	}
	user.HashedPassword = ""
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// minutesUntil rounds the remaining lock time up to whole minutes.
func minutesUntil(t, now time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}
