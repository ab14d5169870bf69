package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/port"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrPasswordTooShort   = errors.New("password is too short")
)

const minPasswordLength = 8

type AuthService struct {
	users      port.UserRepository
	tokens     port.TokenStore
	tokenTTL   time.Duration
	bcryptCost int
}

func NewAuthService(users port.UserRepository, tokens port.TokenStore, tokenTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

type SignupInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// Signup registers a new account. Self-registered accounts always get the
// plain user role; admins are promoted out of band.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if in.Username == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("lookup username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}
	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  in.PhoneNumber,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

// Login verifies the credentials and mints an opaque bearer token bound
// to the user's id and role for the configured TTL.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	session := domain.Session{UserID: user.ID, Role: user.Role}
	if err := s.tokens.Save(ctx, token, session, s.tokenTTL); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	return token, user, nil
}

// Logout revokes the bearer token. Revocation is immediate: the next
// request carrying the token fails authentication.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := s.tokens.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to the session it was minted for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	session, err := s.tokens.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	if session == nil {
		return nil, ErrInvalidToken
	}
	return session, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, session domain.Session) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", session.UserID, domain.ErrNotFound)
	}
	return user, nil
}

// ChangePassword re-verifies the old password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, session domain.Session, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.CurrentUser(ctx, session)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// ListUsers is admin-only.
func (s *AuthService) ListUsers(ctx context.Context, session domain.Session) ([]domain.User, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.users.List(ctx)
}

// DeleteUser soft-deletes an account. Admin-only; admins cannot delete
// themselves.
func (s *AuthService) DeleteUser(ctx context.Context, session domain.Session, userID string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if userID == session.UserID {
		return fmt.Errorf("%w: cannot delete own account", ErrInvalidInput)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return s.users.SoftDelete(ctx, userID)
}
