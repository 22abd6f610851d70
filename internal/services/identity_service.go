package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/terraincognita07/elan/internal/models"
	"github.com/terraincognita07/elan/internal/security"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

type IdentityUserRepository interface {
	FindActiveByNormalizedEmail(ctx context.Context, email string) (models.User, bool, error)
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateName(ctx context.Context, userID uint, name string) error
	UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error
	UpdateRole(ctx context.Context, userID uint, role string) error
	TouchLastLogin(ctx context.Context, userID uint, at time.Time) error
	SoftDeleteWithProgress(ctx context.Context, userID uint) error
}

type RegistrationInput struct {
	Email    string
	Name     string
	Password string
}

// IdentityService is the directory of learner accounts keyed by email.
type IdentityService struct {
	users IdentityUserRepository
	now   func() time.Time
}

func NewIdentityService(users IdentityUserRepository) *IdentityService {
	return &IdentityService{users: users, now: time.Now}
}

func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil || parsed.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Resolve returns nil when no live account matches the email.
func (service *IdentityService) Resolve(ctx context.Context, email string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, nil
	}
	user, found, err := service.users.FindActiveByNormalizedEmail(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &user, nil
}

func (service *IdentityService) Register(ctx context.Context, input RegistrationInput) (models.User, error) {
	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(input.Password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		Name:         TrimProfileName(input.Name),
		Role:         models.RoleUser,
		PasswordHash: passwordHash,
	}
	if err := service.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (service *IdentityService) Authenticate(ctx context.Context, email string, password string) (models.User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	user, found, err := service.users.FindActiveByNormalizedEmail(ctx, normalized)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrInvalidCredentials
	}
	if err := security.ComparePassword(user.PasswordHash, password); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	now := service.now().UTC()
	if err := service.users.TouchLastLogin(ctx, user.ID, now); err == nil {
		user.LastLoginAt = &now
	}
	return user, nil
}

// EnsureForMagicLink returns the live account for email, creating a
// passwordless one on first issuance.
func (service *IdentityService) EnsureForMagicLink(ctx context.Context, email string) (models.User, bool, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return models.User{}, false, err
	}
	user, found, err := service.users.FindActiveByNormalizedEmail(ctx, normalized)
	if err != nil {
		return models.User{}, false, fmt.Errorf("load user: %w", err)
	}
	if found {
		return user, false, nil
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, normalized)
	if err != nil {
		return models.User{}, false, fmt.Errorf("check email: %w", err)
	}
	if exists {
		// A soft-deleted account keeps its email reserved.
		return models.User{}, false, ErrEmailTaken
	}

	user = models.User{Email: normalized, Role: models.RoleUser}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}

func (service *IdentityService) UpdateProfileName(ctx context.Context, userID uint, name string) (string, error) {
	trimmed := TrimProfileName(name)
	if err := service.users.UpdateName(ctx, userID, trimmed); err != nil {
		return "", fmt.Errorf("update name: %w", err)
	}
	return trimmed, nil
}

func (service *IdentityService) ChangePassword(ctx context.Context, user *models.User, currentPassword string, newPassword string) error {
	if user.HasPassword() {
		if err := security.ComparePassword(user.PasswordHash, currentPassword); err != nil {
			return ErrInvalidCredentials
		}
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (service *IdentityService) SetPassword(ctx context.Context, userID uint, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return service.users.UpdatePasswordHash(ctx, userID, hash)
}

func (service *IdentityService) PromoteToAdmin(ctx context.Context, userID uint) error {
	return service.users.UpdateRole(ctx, userID, models.RoleAdmin)
}

// DeleteAccount soft-deletes the user and removes their learning records.
func (service *IdentityService) DeleteAccount(ctx context.Context, user *models.User, password string) error {
	if user.HasPassword() {
		if err := security.ComparePassword(user.PasswordHash, strings.TrimSpace(password)); err != nil {
			return ErrInvalidCredentials
		}
	}
	if err := service.users.SoftDeleteWithProgress(ctx, user.ID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
