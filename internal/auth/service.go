// internal/auth/service.go
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

// Mailer sends the post-registration verification email.
type Mailer interface {
	SendVerification(ctx context.Context, to, username, verifyURL string) error
}

// Service handles registration and credential login. Password hashes never
// leave this package.
type Service struct {
	repo       *Repository
	sessions   *Sessions
	mailer     Mailer // nil when email is disabled
	verifyBase string
	bcryptCost int
	now        func() time.Time
	logger     logger.Logger
}

// NewService wires the auth flows. mailer may be nil; registration then
// skips the verification email.
func NewService(repo *Repository, sessions *Sessions, mailer Mailer, verifyBase string, bcryptCost int, log logger.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		sessions:   sessions,
		mailer:     mailer,
		verifyBase: verifyBase,
		bcryptCost: bcryptCost,
		now:        time.Now,
		logger:     log,
	}
}

// Register creates a new account. Email uniqueness is checked before
// username so the caller always learns about the email conflict first.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewDuplicateError("an account with this email already exists")
	}

	existing, err = s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.NewDuplicateError("this username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Verification email is best effort: the account exists either way.
	if s.mailer != nil {
		verifyURL := s.verifyBase + "/verify/" + user.ID
		if err := s.mailer.SendVerification(ctx, user.Email, user.Username, verifyURL); err != nil {
			s.logger.Warn("failed to send verification email", map[string]interface{}{
				"userId": user.ID,
				"error":  err.Error(),
			})
		}
	}

	s.logger.Info("user registered", map[string]interface{}{"userId": user.ID})
	return &user, nil
}

// Login checks credentials against the stored hash and opens a session.
// Unknown account and wrong password produce the same error so the endpoint
// does not leak which accounts exist.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.User, string, error) {
	if err := in.Validate(); err != nil {
		return nil, "", errors.NewValidationError(err.Error())
	}

	identifier := strings.TrimSpace(in.Identifier)
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(identifier))
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		user, err = s.repo.GetByUsername(ctx, identifier)
		if err != nil {
			return nil, "", err
		}
	}
	if user == nil {
		return nil, "", errors.NewAuthenticationError("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, "", errors.NewAuthenticationError("invalid credentials")
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout invalidates the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// CurrentUser resolves a session token to its account.
func (s *Service) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.UserID(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.NewAuthenticationError("account no longer exists")
	}
	return user, nil
}

// Verify completes the email round-trip for a user id.
func (s *Service) Verify(ctx context.Context, userID string) error {
	return s.repo.MarkVerified(ctx, userID)
}
