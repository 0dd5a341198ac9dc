package user

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
	"github.com/trezcool/scorebook/core/rubric"
)

type memRepo struct {
	users   map[string]User
	session *Session
	saveErr error
}

func (r *memRepo) LoadUsers(context.Context) (map[string]User, error) {
	users := make(map[string]User, len(r.users))
	for k, v := range r.users {
		users[k] = v
	}
	return users, nil
}

func (r *memRepo) SaveUsers(_ context.Context, users map[string]User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.users = users
	return nil
}

func (r *memRepo) LoadSession(context.Context) (*Session, error) { return r.session, nil }

func (r *memRepo) SaveSession(_ context.Context, sess *Session) error {
	r.session = sess
	return nil
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	bcryptCost = bcrypt.MinCost
	repo := &memRepo{users: map[string]User{}}
	validate, translator := core.NewValidator()
	return NewService(repo, validate, translator, nil), repo
}

func TestLegacyChecksum(t *testing.T) {
	assert.Equal(t, "0", legacyChecksum(""))
	assert.Equal(t, "2p", legacyChecksum("a"))
	assert.Equal(t, "1s0ua", legacyChecksum("abcd"))
	assert.Equal(t, legacyChecksum("şifre"), legacyChecksum("şifre"))
	assert.NotEqual(t, legacyChecksum("abcd"), legacyChecksum("abce"))
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	usr, err := svc.Signup(ctx, NewUser{Username: " Ahmet ", Password: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "ahmet", usr.Username)
	assert.Equal(t, "Ahmet", usr.DisplayName)
	assert.NotEqual(t, "1234", usr.PasswordHash)
	assert.Empty(t, usr.Data.Classes)
	assert.Nil(t, usr.Data.Criteria)

	assert.True(t, svc.IsAuthenticated())
	assert.Equal(t, "ahmet", svc.Current())
	assert.Equal(t, &Session{Username: "ahmet"}, repo.session)
	assert.Contains(t, repo.users, "ahmet")

	tests := []struct {
		name      string
		nu        NewUser
		wantField string
		wantErr   error
	}{
		{name: "short username", nu: NewUser{Username: "ab", Password: "1234"}, wantField: "username"},
		{name: "blank username", nu: NewUser{Username: "   ", Password: "1234"}, wantField: "username"},
		{name: "short password", nu: NewUser{Username: "mehmet", Password: "123"}, wantField: "password"},
		{name: "taken username", nu: NewUser{Username: "AHMET", Password: "abcd"}, wantField: "username", wantErr: ErrUsernameExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(repo.users)
			_, err := svc.Signup(ctx, tt.nu)

			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			require.NotEmpty(t, vErr.Fields)
			assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			assert.Len(t, repo.users, before, "no side effect")
		})
	}
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	_, err := svc.Signup(ctx, NewUser{Username: "Ahmet", Password: "1234"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, repo.session)
	assert.Contains(t, repo.users, "ahmet", "logout keeps the account")

	tests := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{name: "unknown user", creds: Credentials{Username: "nobody", Password: "1234"}, wantErr: ErrNotFound},
		{name: "wrong password", creds: Credentials{Username: "ahmet", Password: "4321"}, wantErr: ErrWrongPassword},
		{name: "case-insensitive", creds: Credentials{Username: " AHMET ", Password: "1234"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.creds)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantErr == nil, svc.IsAuthenticated())
		})
	}

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(ctx, Credentials{Username: "ahmet"})
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_Login_legacyVerifier(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)
	repo.users["eski"] = User{Username: "eski", DisplayName: "Eski", PasswordHash: legacyChecksum("parola")}

	_, err := svc.Login(ctx, Credentials{Username: "eski", Password: "yanlis"})
	assert.Equal(t, ErrWrongPassword, err)
	assert.Equal(t, legacyChecksum("parola"), repo.users["eski"].PasswordHash)

	_, err = svc.Login(ctx, Credentials{Username: "eski", Password: "parola"})
	require.NoError(t, err)

	upgraded := repo.users["eski"]
	require.True(t, upgraded.hasBcryptHash())
	needsUpgrade, err := upgraded.CheckPassword("parola")
	require.NoError(t, err)
	assert.False(t, needsUpgrade)
}

func TestService_Resume(t *testing.T) {
	ctx := context.Background()

	t.Run("existing identity", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.users["ahmet"] = User{Username: "ahmet"}
		repo.session = &Session{Username: "ahmet"}

		ok, err := svc.Resume(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, svc.IsAuthenticated())
	})

	t.Run("deleted identity", func(t *testing.T) {
		svc, repo := newTestService(t)
		repo.session = &Session{Username: "ghost"}

		ok, err := svc.Resume(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.False(t, svc.IsAuthenticated())
		assert.Nil(t, repo.session, "dangling session is discarded")
	})

	t.Run("no session", func(t *testing.T) {
		svc, _ := newTestService(t)
		ok, err := svc.Resume(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestService_userData(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	snap, err := svc.UserData(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.NoError(t, svc.SaveUserData(ctx, roster.DefaultSnapshot()), "no-op without identity")
	name, _ := svc.DisplayName(ctx)
	assert.Empty(t, name)

	_, err = svc.Signup(ctx, NewUser{Username: "Ahmet", Password: "1234"})
	require.NoError(t, err)

	name, err = svc.DisplayName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ahmet", name)

	snap, err = svc.UserData(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Classes)
	assert.Nil(t, snap.Criteria)

	data := roster.Snapshot{Classes: []roster.Class{{ID: "c1", Name: "6D", Students: []roster.Student{}}}, Criteria: rubric.Defaults()}
	require.NoError(t, svc.SaveUserData(ctx, data))
	assert.Equal(t, data, repo.users["ahmet"].Data)

	t.Run("save failure is returned", func(t *testing.T) {
		repo.saveErr = errors.New("quota exceeded")
		defer func() { repo.saveErr = nil }()
		assert.Error(t, svc.SaveUserData(ctx, roster.DefaultSnapshot()))
	})
}

func TestService_OpenBook(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	_, err := svc.OpenBook(ctx, roster.Deps{})
	assert.Equal(t, ErrNotAuthenticated, err)

	_, err = svc.Signup(ctx, NewUser{Username: "ahmet", Password: "1234"})
	require.NoError(t, err)
	book, err := svc.OpenBook(ctx, roster.Deps{})
	require.NoError(t, err)
	assert.Equal(t, 100, book.MaxTotal())

	// another account logs in: the book still writes to its owner
	_, err = svc.Signup(ctx, NewUser{Username: "ayse", Password: "1234"})
	require.NoError(t, err)
	_, err = book.AddClass(ctx, "6D")
	require.NoError(t, err)

	assert.Len(t, repo.users["ahmet"].Data.Classes, 1)
	assert.Empty(t, repo.users["ayse"].Data.Classes)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	_, err := svc.Signup(ctx, NewUser{Username: "ahmet", Password: "1234"})
	require.NoError(t, err)

	assert.Equal(t, ErrNotFound, svc.Delete(ctx, "nobody"))
	require.NoError(t, svc.Delete(ctx, "AHMET"))
	assert.NotContains(t, repo.users, "ahmet")
	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, repo.session)
}
