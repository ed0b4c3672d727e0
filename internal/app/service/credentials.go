package service

import (
	"context"
	"errors"
	"fmt"

	"authservice/internal/common"
	"authservice/internal/common/security"
	"authservice/internal/domain/model"
	"authservice/internal/domain/repository"
)

// CredentialVerifier checks a plaintext password against the stored hash
// for the account registered under an email. It is read-only.
//
// The two failure modes stay distinct (unknown email vs wrong password),
// matching the reference policy; callers that prefer not to leak which one
// occurred can collapse them at the boundary.
type CredentialVerifier struct {
	userRepo repository.UserRepository
}

func NewCredentialVerifier(userRepo repository.UserRepository) *CredentialVerifier {
	return &CredentialVerifier{userRepo: userRepo}
}

func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*model.User, error) {
	user, err := v.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, common.ErrBadCredentials
	}
	return user, nil
}
