package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/user"
)

type userRepository struct {
	kv  core.KVStore
	log core.Logger
}

func NewUserRepository(kv core.KVStore, log core.Logger) user.Repository {
	return &userRepository{kv: kv, log: log}
}

// LoadUsers never returns a nil map. A corrupt accounts record reads as empty.
func (repo *userRepository) LoadUsers(ctx context.Context) (map[string]user.User, error) {
	users := make(map[string]user.User)
	b, err := repo.kv.Get(ctx, UsersKey)
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return users, nil
		}
		return nil, core.NewStorageError("load", UsersKey, err)
	}
	if err = json.Unmarshal(b, &users); err != nil {
		if repo.log != nil {
			repo.log.Warn("stored accounts are corrupt; starting empty", err)
		}
		return make(map[string]user.User), nil
	}
	return users, nil
}

func (repo *userRepository) SaveUsers(ctx context.Context, users map[string]user.User) error {
	b, err := json.Marshal(users)
	if err != nil {
		return errors.Wrap(err, "encoding users")
	}
	if err = repo.kv.Set(ctx, UsersKey, b); err != nil {
		return core.NewStorageError("save", UsersKey, err)
	}
	return nil
}

func (repo *userRepository) LoadSession(ctx context.Context) (*user.Session, error) {
	b, err := repo.kv.Get(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, core.NewStorageError("load", SessionKey, err)
	}
	var sess user.Session
	if err = json.Unmarshal(b, &sess); err != nil || sess.Username == "" {
		return nil, nil
	}
	return &sess, nil
}

func (repo *userRepository) SaveSession(ctx context.Context, sess *user.Session) error {
	if sess == nil {
		if err := repo.kv.Delete(ctx, SessionKey); err != nil {
			return core.NewStorageError("clear", SessionKey, err)
		}
		return nil
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err = repo.kv.Set(ctx, SessionKey, b); err != nil {
		return core.NewStorageError("save", SessionKey, err)
	}
	return nil
}
