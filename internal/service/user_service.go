package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/weiawesome/wes-chat/internal/audit"
	"github.com/weiawesome/wes-chat/internal/domain"
	"github.com/weiawesome/wes-chat/internal/repository"
	"github.com/weiawesome/wes-chat/pkg/log"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	ErrWrongPassword      = &domain.ValidationError{Field: "old", Reason: "does not match the current password"}
)

// TokenIssuer mints a fresh credential for a user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// CredentialEvictor drops any cached resolution of the given credentials.
type CredentialEvictor interface {
	Forget(ctx context.Context, tokens ...string)
}

// userServiceImpl implements UserService interface.
type userServiceImpl struct {
	repo       repository.UserRepository
	issuer     TokenIssuer
	evictor    CredentialEvictor
	bcryptCost int
}

// NewUserService creates a new user service. evictor may be nil.
func NewUserService(repo repository.UserRepository, issuer TokenIssuer, evictor CredentialEvictor, bcryptCost int) UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userServiceImpl{
		repo:       repo,
		issuer:     issuer,
		evictor:    evictor,
		bcryptCost: bcryptCost,
	}
}

// SignUp registers a new user. No credential is issued until sign-in.
func (s *userServiceImpl) SignUp(ctx context.Context, req *domain.SignUpRequest) (*domain.UserResponse, error) {
	l := log.Ctx(ctx)
	creds := req.Credentials

	email := strings.TrimSpace(strings.ToLower(creds.Email))
	screenName := strings.TrimSpace(creds.ScreenName)
	switch {
	case email == "":
		return nil, domain.NewValidationError("email", "is required")
	case screenName == "":
		return nil, domain.NewValidationError("screen_name", "is required")
	case creds.Password == "":
		return nil, domain.NewValidationError("password", "is required")
	case creds.Password != creds.PasswordConfirmation:
		return nil, domain.NewValidationError("password_confirmation", "does not match password")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewValidationError("email", "is already taken")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.bcryptCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		ScreenName:   screenName,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewValidationError("screen_name", "is already taken")
		}
		return nil, err
	}

	audit.Log(ctx, audit.ActionSignUp, user.ID, "user signed up")

	resp := user.ToResponse()
	return &resp, nil
}

// SignIn verifies the password and issues a new credential, replacing the
// previous one.
func (s *userServiceImpl) SignIn(ctx context.Context, req *domain.SignInRequest) (*domain.SignInResponse, error) {
	l := log.Ctx(ctx)
	email := strings.TrimSpace(strings.ToLower(req.Credentials.Email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			audit.LogWithDetail(ctx, audit.ActionSignInFailed, "", email, "sign-in failed: user not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Credentials.Password)); err != nil {
		audit.LogWithDetail(ctx, audit.ActionSignInFailed, user.ID, email, "sign-in failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	previous := user.Token
	token, err := s.rotate(ctx, user.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldUserID, user.ID).Msg("failed to issue credential")
		return nil, err
	}
	s.forget(ctx, previous)

	audit.Log(ctx, audit.ActionSignIn, user.ID, "user signed in")

	return &domain.SignInResponse{
		User:  user.ToResponse(),
		Token: token,
	}, nil
}

// ChangePassword replaces the password of the principal after checking the
// old one.
func (s *userServiceImpl) ChangePassword(ctx context.Context, principal *domain.Principal, token string, req *domain.ChangePasswordRequest) error {
	l := log.Ctx(ctx)

	if req.Passwords.New == "" {
		return domain.NewValidationError("new", "is required")
	}

	user, err := s.repo.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.ErrUnauthenticated
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Passwords.Old)); err != nil {
		return ErrWrongPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Passwords.New), s.bcryptCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return err
	}

	if err := s.repo.SetPasswordHash(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}
	s.forget(ctx, token)

	audit.Log(ctx, audit.ActionChangePassword, user.ID, "password changed")
	return nil
}

// SignOut invalidates the presented credential by rotating it to a value
// that is never handed out.
func (s *userServiceImpl) SignOut(ctx context.Context, principal *domain.Principal, token string) error {
	if _, err := s.rotate(ctx, principal.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.ErrUnauthenticated
		}
		return err
	}
	s.forget(ctx, token)

	audit.Log(ctx, audit.ActionSignOut, principal.ID, "user signed out")
	return nil
}

func (s *userServiceImpl) rotate(ctx context.Context, userID string) (string, error) {
	token, err := s.issuer.Issue(userID)
	if err != nil {
		return "", err
	}
	if err := s.repo.SetToken(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

func (s *userServiceImpl) forget(ctx context.Context, token string) {
	if s.evictor != nil && token != "" {
		s.evictor.Forget(ctx, token)
	}
}
