package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"time"

	"authservice/internal/common"
	"authservice/internal/common/security"
	"authservice/internal/domain/model"
	"authservice/internal/domain/repository"

	"github.com/google/uuid"
)

// LoginThrottle limits failed login attempts per account. A nil-safe fake
// is enough for tests; production wires the redis-backed limiter.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// AuthService orchestrates registration, login and refresh-token exchange.
// It holds no state of its own: token validity is proven entirely by
// signature and expiry, never by a server-side session record.
type AuthService struct {
	userRepo   repository.UserRepository
	verifier   *CredentialVerifier
	codec      *security.TokenCodec
	throttle   LoginThrottle
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	codec *security.TokenCodec,
	throttle LoginThrottle,
	accessTTL, refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		verifier:   NewCredentialVerifier(userRepo),
		codec:      codec,
		throttle:   throttle,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
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

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (req *RegisterRequest) validate() error {
	if len(req.Username) < 3 || len(req.Username) > 20 {
		return fmt.Errorf("%w: username must be between 3 and 20 characters", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("%w: email must be a valid address", common.ErrValidation)
	}
	if len(req.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", common.ErrValidation)
	}
	return nil
}

// Register creates a new account with a hashed password and the default
// role. Uniqueness is pre-checked so callers get the precise conflict, and
// enforced again by the store's unique constraints for concurrent races.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, common.ErrEmailTaken
	}

	taken, err = s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, common.ErrUsernameTaken
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrEmailTaken) || errors.Is(err, common.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.HashedPassword = "" // Clear before returning
	return user, nil
}

// Login verifies the credentials and issues an access/refresh token pair,
// both carrying the user's email as subject. The two tokens differ only in
// TTL.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	allowed, err := s.throttle.Allow(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check login throttle: %w", err)
	}
	if !allowed {
		return nil, common.ErrTooManyAttempts
	}

	user, err := s.verifier.Verify(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) || errors.Is(err, common.ErrBadCredentials) {
			if rerr := s.throttle.RecordFailure(ctx, req.Email); rerr != nil {
				log.Printf("login throttle record failed for %s: %v", req.Email, rerr)
			}
		}
		return nil, err
	}

	if err := s.throttle.Reset(ctx, req.Email); err != nil {
		log.Printf("login throttle reset failed for %s: %v", req.Email, err)
	}

	accessToken, err := s.codec.Issue(user.Email, user.Role, s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.codec.Issue(user.Email, user.Role, s.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a valid, unexpired refresh token for a new access
// token. The refresh token itself is not rotated; it stays valid until its
// natural expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.Decode(refreshToken)
	if err != nil {
		return "", common.ErrRefreshInvalid
	}
	if s.codec.Expired(claims) {
		return "", common.ErrRefreshExpired
	}

	// The account may have disappeared since the token was issued.
	user, err := s.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return "", common.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	accessToken, err := s.codec.Issue(user.Email, user.Role, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// CurrentUser resolves the account behind an authenticated subject.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
