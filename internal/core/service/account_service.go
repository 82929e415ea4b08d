package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/mestakip/internal/core/domain"
	"github.com/rl1809/mestakip/internal/port"
)

type NewUser struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      domain.Role `json:"role"`
	Telephone string      `json:"telephone"`
}

type AdminSpec struct {
	Username string
	Email    string
	Password string
}

type AccountService struct {
	users    port.UserRepository
	log      logrus.FieldLogger
	hashCost int
	now      func() time.Time
}

func NewAccountService(users port.UserRepository, log logrus.FieldLogger) *AccountService {
	return &AccountService{
		users:    users,
		log:      log,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// Authenticate checks a username/password pair. Unknown users, wrong
// passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Warnf("login failed: unknown user %q", username)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Warnf("login failed: wrong password for user %q", username)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	if !user.IsActive || user.Status == domain.ProfileInactive {
		s.log.Warnf("login failed: user %q is inactive", username)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *AccountService) ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.ListUsers(ctx)
}

// CreateUser registers a regular account. An existing username is a conflict
// and leaves the stored user untouched.
func (s *AccountService) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return nil, invalidf("username cannot be empty")
	}
	if in.Password == "" {
		return nil, invalidf("password cannot be empty")
	}
	if in.Role == "" {
		in.Role = domain.RoleOperative
	}
	if !in.Role.Valid() {
		return nil, invalidf("role must be one of AD, EX, OP")
	}

	_, err := s.users.GetUserByUsername(ctx, in.Username)
	if err == nil {
		return nil, fmt.Errorf("%w: user %q already exists", domain.ErrConflict, in.Username)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		Username:     in.Username,
		Email:        strings.TrimSpace(in.Email),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		IsActive:     true,
		IsStaff:      in.Role == domain.RoleAdmin,
		Role:         in.Role,
		Status:       domain.ProfileActive,
		Telephone:    in.Telephone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Infof("user %q created with role %s", user.Username, user.Role)
	return user, nil
}

// EnsureAdmin creates the administrator account or, when it exists, resets
// its password and privileges. It is safe to run on every start.
func (s *AccountService) EnsureAdmin(ctx context.Context, want AdminSpec) (*domain.User, bool, error) {
	if want.Username == "" || want.Password == "" {
		return nil, false, invalidf("admin username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(want.Password), s.hashCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user, err := s.users.GetUserByUsername(ctx, want.Username)
	created := false
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created = true
		user = &domain.User{
			Username:  want.Username,
			Email:     want.Email,
			CreatedAt: now,
		}
	case err != nil:
		return nil, false, fmt.Errorf("load admin: %w", err)
	}

	user.PasswordHash = string(hash)
	user.IsSuperuser = true
	user.IsStaff = true
	user.IsActive = true
	user.Role = domain.RoleAdmin
	user.Status = domain.ProfileActive
	user.UpdatedAt = now

	if created {
		err = s.users.CreateUser(ctx, user)
	} else {
		err = s.users.UpdateUser(ctx, user)
	}
	if err != nil {
		return nil, false, fmt.Errorf("save admin: %w", err)
	}
	return user, created, nil
}
