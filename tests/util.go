package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
	"github.com/trezcool/scorebook/core/user"
)

// KVStore runs the behaviour every core.KVStore must share against `store`.
// Keys are prefixed with `prefix` so runs against shared servers do not collide.
func KVStore(t *testing.T, store core.KVStore, prefix string) {
	t.Helper()
	ctx := context.Background()
	key := prefix + "ogrenci_puanlama_data_v2"
	t.Cleanup(func() { _ = store.Delete(ctx, key) })

	_, err := store.Get(ctx, key)
	assert.Equal(t, core.ErrKeyNotFound, err, "missing key")

	require.NoError(t, store.Set(ctx, key, []byte(`{"classes":[]}`)))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"classes":[]}`, string(got))

	require.NoError(t, store.Set(ctx, key, []byte(`{"classes":[],"criteria":null}`)), "overwrite")
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"classes":[],"criteria":null}`, string(got))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.Equal(t, core.ErrKeyNotFound, err, "deleted key")
	assert.NoError(t, store.Delete(ctx, key), "deleting a missing key")

	unicodeKey := prefix + "öğrenci/ğ ş"
	t.Cleanup(func() { _ = store.Delete(ctx, unicodeKey) })
	require.NoError(t, store.Set(ctx, unicodeKey, []byte("ok")))
	got, err = store.Get(ctx, unicodeKey)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(got))
}

// CreateUser stores an account straight into `repo`, with a cheap hash and no session.
func CreateUser(t *testing.T, repo user.Repository, uname, pwd string, data ...roster.Snapshot) user.User {
	t.Helper()
	ctx := context.Background()

	users, err := repo.LoadUsers(ctx)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	if users == nil {
		users = make(map[string]user.User)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	usr := user.User{
		Username:     core.CleanString(uname, true /* lower */),
		DisplayName:  uname,
		PasswordHash: string(hash),
		CreatedAt:    core.NowFunc(),
		Data:         roster.NewSnapshot(),
	}
	if len(data) > 0 {
		usr.Data = data[0]
	}
	users[usr.Username] = usr
	if err = repo.SaveUsers(ctx, users); err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}
