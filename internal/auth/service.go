package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/database"
	"github.com/spellbook-app/spellbook/internal/entities"
	"github.com/spellbook-app/spellbook/internal/id"
	"github.com/spellbook-app/spellbook/internal/validation"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-20 characters, letters, digits, underscore or hyphen")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
	ErrInvalidLogin     = errors.New("invalid email or password")
)

// UserStore is the slice of the users repository the service relies on.
type UserStore interface {
	Create(user *entities.User) error
	GetByID(id string) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	UsernameTaken(username, exceptUserID string) (bool, error)
	RecordLoginSuccess(id string, at time.Time) error
	RecordLoginFailure(id string, failedCount int, lockedUntil *time.Time) error
	SetPasswordHash(id, hash string) error
}

// RegisterInput carries the fields of an explicit sign-up.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string
}

// Service handles authentication and account creation.
type Service struct {
	users  UserStore
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(users UserStore, cfg config.Auth) *Service {
	return &Service{
		users:  users,
		config: cfg,
		now:    time.Now,
	}
}

// Register creates an account with a password. A username is derived from the
// email when none is given.
func (s *Service) Register(in RegisterInput) (*entities.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	username := in.Username
	if username != "" {
		if !validation.UsernamePattern.MatchString(username) {
			return nil, ErrUsernameInvalid
		}
		taken, err := s.users.UsernameTaken(username, "")
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	} else {
		var err error
		if username, err = s.uniqueUsername(email); err != nil {
			return nil, err
		}
	}

	hash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	name := in.Name
	if name == "" {
		name = localPart(email)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, err
	}
	user := &entities.User{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Username:     username,
		IsPublic:     true,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user. Unknown emails are
// registered on the spot when auto-registration is enabled; the second return
// value reports whether that happened.
func (s *Service) Authenticate(email, password string) (*entities.User, bool, error) {
	if email == "" || password == "" {
		return nil, false, ErrInvalidLogin
	}

	user, err := s.users.GetByEmail(email)
	if errors.Is(err, database.ErrNotFound) {
		if !s.config.AutoRegister {
			return nil, false, ErrInvalidLogin
		}
		created, err := s.Register(RegisterInput{Email: email, Password: password})
		if err != nil {
			return nil, false, err
		}
		return created, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find user: %w", err)
	}

	now := s.now()
	if user.IsLocked(now) {
		return nil, false, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if err := s.recordFailedLogin(user, now); err != nil {
			return nil, false, fmt.Errorf("failed to record failed login: %w", err)
		}
		return nil, false, ErrInvalidLogin
	}

	if err := s.users.RecordLoginSuccess(user.ID, now); err != nil {
		return nil, false, fmt.Errorf("failed to record login: %w", err)
	}
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	return user, false, nil
}

// recordFailedLogin increments the failed login counter and locks the account if threshold reached.
func (s *Service) recordFailedLogin(user *entities.User, now time.Time) error {
	user.FailedLoginCount++

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var lockedUntil *time.Time
	if user.FailedLoginCount >= maxAttempts {
		lockout := s.config.LockoutDuration
		if lockout == 0 {
			lockout = 30 * time.Minute
		}
		until := now.Add(lockout)
		lockedUntil = &until
	}
	user.LockedUntil = lockedUntil

	return s.users.RecordLoginFailure(user.ID, user.FailedLoginCount, lockedUntil)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(userID string) (*entities.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword updates a user's password after verifying the old one.
// Accounts without a password may set one without the check.
func (s *Service) ChangePassword(userID, oldPassword, newPassword string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != "" {
		if err := CheckPassword(oldPassword, user.PasswordHash); err != nil {
			return err
		}
	}

	hash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(userID, hash)
}

// uniqueUsername turns the email local part into a free username by
// lowercasing, dropping everything outside [a-z0-9] and appending a counter
// until no one holds it.
func (s *Service) uniqueUsername(email string) (string, error) {
	base := UsernameBase(email)
	candidate := base
	for n := 1; ; n++ {
		taken, err := s.users.UsernameTaken(candidate, "")
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := strconv.Itoa(n)
		trimmed := base
		if len(trimmed)+len(suffix) > 20 {
			trimmed = trimmed[:20-len(suffix)]
		}
		candidate = trimmed + suffix
	}
}

// UsernameBase derives the username stem from an email address. The result
// always satisfies the username format.
func UsernameBase(email string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(localPart(email)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	base := b.String()
	if base == "" {
		base = "wizard"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	for len(base) < 3 {
		base += "0"
	}
	return base
}

func localPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
