package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sakif/community-forum/internal/apperror"
	"github.com/sakif/community-forum/internal/auth"
	"github.com/sakif/community-forum/internal/model"
	"github.com/sakif/community-forum/internal/repository"
)

const (
	MinPasswordLength = 8
	MinNicknameLength = 2
	MaxNicknameLength = 30
	MaxEmailLength    = 254
)

// invalidCredentials is the single message for every login failure, so the
// response never reveals whether the email exists.
const invalidCredentials = "invalid email or password"

// PasswordHasher is satisfied by *auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// TokenIssuer is satisfied by *auth.TokenService.
type TokenIssuer interface {
	Issue(subjectID int64, role auth.Role, ttl time.Duration) (string, error)
}

// AuthService handles signup, login and account management.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users   repository.UserRepository → read/write user records
//   - hasher  PasswordHasher            → bcrypt hashing
//   - tokens  TokenIssuer               → sign access tokens
//   - ttl     time.Duration             → lifetime of issued tokens
type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	ttl    time.Duration
	logger *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	ttl time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		ttl:    ttl,
		logger: logger,
	}
}

// AuthResult bundles the user and the issued token.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresIn time.Duration
}

// Signup validates and creates a MEMBER account.
//
// Email and nickname uniqueness are checked up front for a friendly error;
// the UNIQUE constraints in storage still catch a concurrent signup and
// surface it as the same apperror.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, email, password, nickname string) (*model.User, error) {
	email = normalizeEmail(email)
	nickname = strings.TrimSpace(nickname)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}

	taken, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("user", "email", email)
	}
	taken, err = s.users.ExistsByNickname(ctx, nickname)
	if err != nil {
		return nil, fmt.Errorf("checking nickname: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("user", "nickname", nickname)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: hash,
		Role:         string(auth.RoleMember),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user signed up", slog.Int64("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and issues an access token.
//
// An unknown email and a wrong password produce the identical
// apperror.ErrUnauthorized. For an unknown email a dummy hash is still
// verified so both paths cost one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_, _ = s.hasher.Verify(password, s.dummy())
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", slog.Int64("user_id", user.ID))
		return nil, err
	}
	if !ok {
		s.logger.Debug("login rejected", slog.Int64("user_id", user.ID))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	role, err := auth.ParseRole(user.Role)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", user.ID, err)
	}
	token, err := s.tokens.Issue(user.ID, role, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	s.logger.Info("user logged in", slog.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token, ExpiresIn: s.ttl}, nil
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, userID int64) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, nickname string) (*model.User, error) {
	nickname = strings.TrimSpace(nickname)
	if err := validateNickname(nickname); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Nickname == nickname {
		return user, nil
	}

	user.Nickname = nickname
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

// ChangePassword requires the current password. Existing tokens stay valid
// until they expire; there is no server-side revocation.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := validatePassword(next); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(current, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Unauthorized("current password is incorrect")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.logger.Info("password changed", slog.Int64("user_id", userID))
	return nil
}

// DeleteAccount removes the user and, by cascade, everything they authored.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("account deleted", slog.Int64("user_id", userID))
	return nil
}

// dummy returns a hash of a random secret, computed once with the
// configured cost.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(rand.Text())
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return apperror.ValidationFailed("email", "email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return apperror.ValidationFailed("email", "invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

func validateNickname(nickname string) error {
	n := utf8.RuneCountInString(nickname)
	if n < MinNicknameLength || n > MaxNicknameLength {
		return apperror.ValidationFailed("nickname",
			fmt.Sprintf("nickname must be between %d and %d characters", MinNicknameLength, MaxNicknameLength))
	}
	return nil
}
