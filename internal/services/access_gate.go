package services

import (
	"context"

	"github.com/terraincognita07/elan/internal/models"
)

const (
	DenyAuth       = "auth"
	DenyUser       = "user"
	DenyEnrollment = "enrollment"
)

type AccessDecision struct {
	OK          bool
	UserID      uint
	Email       string
	ProgramSlug string
	Reason      string
	Enrollment  *models.Enrollment
}

type SessionValidator interface {
	Validate(token string) (string, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, email string) (*models.User, error)
}

type EnrollmentFinder interface {
	FindActiveOrCompleted(ctx context.Context, userID uint, programSlugLike string) (*models.Enrollment, error)
}

// AccessGate decides whether a session may open a program's content.
// It has no HTTP side effects; callers map Reason to a response.
type AccessGate struct {
	sessions    SessionValidator
	users       UserResolver
	enrollments EnrollmentFinder
}

func NewAccessGate(sessions SessionValidator, users UserResolver, enrollments EnrollmentFinder) *AccessGate {
	return &AccessGate{sessions: sessions, users: users, enrollments: enrollments}
}

// RequireEnrollment checks session, user, slug and enrollment in that order
// and stops at the first failure. Lookup errors deny rather than propagate.
func (gate *AccessGate) RequireEnrollment(ctx context.Context, sessionToken string, programSlugLike string) AccessDecision {
	if sessionToken == "" {
		return AccessDecision{Reason: DenyAuth}
	}
	email, err := gate.sessions.Validate(sessionToken)
	if err != nil {
		return AccessDecision{Reason: DenyAuth}
	}

	user, err := gate.users.Resolve(ctx, email)
	if err != nil || user == nil {
		return AccessDecision{Reason: DenyUser, Email: email}
	}

	programSlug := NormalizeProgramSlug(programSlugLike)
	denied := AccessDecision{Reason: DenyEnrollment, UserID: user.ID, Email: user.Email, ProgramSlug: programSlug}
	if programSlug == "" {
		return denied
	}
	enrollment, err := gate.enrollments.FindActiveOrCompleted(ctx, user.ID, programSlug)
	if err != nil || enrollment == nil {
		return denied
	}

	return AccessDecision{
		OK:          true,
		UserID:      user.ID,
		Email:       user.Email,
		ProgramSlug: programSlug,
		Enrollment:  enrollment,
	}
}
