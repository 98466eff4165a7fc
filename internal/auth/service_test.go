package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spellbook-app/spellbook/internal/config"
	"github.com/spellbook-app/spellbook/internal/database/dbtest"
	"github.com/spellbook-app/spellbook/internal/database/users"
)

func newTestService(t *testing.T, cfg config.Auth) (*Service, *users.Repository) {
	t.Helper()
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 4
	}
	repo := users.NewRepository(dbtest.Open(t))
	return NewService(repo, cfg), repo
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t, config.Auth{})

	user, err := svc.Register(RegisterInput{Email: "merlin@camelot.uk", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "merlin", user.Username)
	assert.Equal(t, "merlin", user.Name)
	assert.True(t, user.IsPublic)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NoError(t, CheckPassword("password123", user.PasswordHash))

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"duplicate email", RegisterInput{Email: "MERLIN@camelot.uk", Password: "password123"}, ErrUserExists},
		{"missing email", RegisterInput{Password: "password123"}, ErrEmailRequired},
		{"invalid email", RegisterInput{Email: "merlin", Password: "password123"}, ErrEmailInvalid},
		{"missing password", RegisterInput{Email: "a@b.io"}, ErrPasswordRequired},
		{"short password", RegisterInput{Email: "a@b.io", Password: "short"}, ErrPasswordTooShort},
		{"invalid username", RegisterInput{Email: "a@b.io", Password: "password123", Username: "a b"}, ErrUsernameInvalid},
		{"taken username", RegisterInput{Email: "a@b.io", Password: "password123", Username: "merlin"}, ErrUsernameTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_RegisterDerivesUniqueUsernames(t *testing.T) {
	svc, _ := newTestService(t, config.Auth{})

	first, err := svc.Register(RegisterInput{Email: "Mer.Lin@a.io", Password: "password123"})
	require.NoError(t, err)
	second, err := svc.Register(RegisterInput{Email: "merlin@b.io", Password: "password123"})
	require.NoError(t, err)
	third, err := svc.Register(RegisterInput{Email: "merlin@c.io", Password: "password123"})
	require.NoError(t, err)

	assert.Equal(t, "merlin", first.Username)
	assert.Equal(t, "merlin1", second.Username)
	assert.Equal(t, "merlin2", third.Username)
}

func TestUsernameBase(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"merlin@camelot.uk", "merlin"},
		{"Mer.Lin+spam@x.io", "merlinspam"},
		{"__@x.io", "wizard"},
		{"ab@x.io", "ab0"},
		{"averyveryverylongemailaddress@x.io", "averyveryverylongema"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, UsernameBase(tt.email))
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := newTestService(t, config.Auth{})
	_, err := svc.Register(RegisterInput{Email: "merlin@camelot.uk", Password: "password123"})
	require.NoError(t, err)

	user, created, err := svc.Authenticate("merlin@camelot.uk", "password123")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NotNil(t, user.LastLoginAt)

	_, _, err = svc.Authenticate("merlin@camelot.uk", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, _, err = svc.Authenticate("nobody@camelot.uk", "password123")
	assert.ErrorIs(t, err, ErrInvalidLogin)

	_, _, err = svc.Authenticate("", "")
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestService_AuthenticateAutoRegisters(t *testing.T) {
	svc, _ := newTestService(t, config.Auth{AutoRegister: true})

	user, created, err := svc.Authenticate("morgana@avalon.uk", "password123")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "morgana", user.Username)

	again, created, err := svc.Authenticate("morgana@avalon.uk", "password123")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, again.ID)
}

func TestService_AuthenticateLocksAccount(t *testing.T) {
	svc, repo := newTestService(t, config.Auth{MaxLoginAttempts: 2, LockoutDuration: time.Minute})
	_, err := svc.Register(RegisterInput{Email: "merlin@camelot.uk", Password: "password123"})
	require.NoError(t, err)

	now := time.Now()
	svc.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, _, err = svc.Authenticate("merlin@camelot.uk", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidLogin)
	}

	_, _, err = svc.Authenticate("merlin@camelot.uk", "password123")
	assert.ErrorIs(t, err, ErrAccountLocked)

	stored, err := repo.GetByEmail("merlin@camelot.uk")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.FailedLoginCount)

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, _, err = svc.Authenticate("merlin@camelot.uk", "password123")
	require.NoError(t, err)

	stored, err = repo.GetByEmail("merlin@camelot.uk")
	require.NoError(t, err)
	assert.Zero(t, stored.FailedLoginCount)
	assert.Nil(t, stored.LockedUntil)
}

type failingFailureStore struct {
	*users.Repository
}

func (failingFailureStore) RecordLoginFailure(string, int, *time.Time) error {
	return errors.New("database is locked")
}

func TestService_AuthenticateReportsFailureWriteError(t *testing.T) {
	svc, repo := newTestService(t, config.Auth{})
	_, err := svc.Register(RegisterInput{Email: "merlin@camelot.uk", Password: "password123"})
	require.NoError(t, err)

	svc.users = failingFailureStore{repo}
	_, _, err = svc.Authenticate("merlin@camelot.uk", "wrong-password")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidLogin)
	assert.ErrorContains(t, err, "database is locked")
}

func TestService_ChangePassword(t *testing.T) {
	svc, _ := newTestService(t, config.Auth{})
	user, err := svc.Register(RegisterInput{Email: "merlin@camelot.uk", Password: "password123"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "wrong-password", "newpassword1"), ErrInvalidPassword)
	assert.ErrorIs(t, svc.ChangePassword(user.ID, "password123", "short"), ErrPasswordTooShort)
	require.NoError(t, svc.ChangePassword(user.ID, "password123", "newpassword1"))

	_, _, err = svc.Authenticate("merlin@camelot.uk", "newpassword1")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword("usr-missing", "x", "newpassword1"), ErrUserNotFound)
}
