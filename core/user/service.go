package user

import (
	"context"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
)

var (
	// errors
	ErrNotFound         = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrUsernameExists   = errors.New("a user with this username already exists")
	ErrNotAuthenticated = errors.New("not authenticated")
)

type (
	// Repository persists the accounts map (keyed by normalized username) and the session pointer.
	Repository interface {
		LoadUsers(ctx context.Context) (map[string]User, error)
		SaveUsers(ctx context.Context, users map[string]User) error
		LoadSession(ctx context.Context) (*Session, error)
		// SaveSession persists the pointer; nil clears it.
		SaveSession(ctx context.Context, sess *Session) error
	}

	Service struct {
		repo       Repository
		validate   *validator.Validate
		translator ut.Translator
		log        core.Logger

		mu      sync.RWMutex
		current string // normalized username of the active account
	}
)

func NewService(repo Repository, validate *validator.Validate, translator ut.Translator, log core.Logger) *Service {
	return &Service{repo: repo, validate: validate, translator: translator, log: log}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname string) error {
	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return errors.Wrap(err, "loading users")
	}
	if _, ok := users[core.CleanString(uname, true /* lower */)]; ok {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	return nil
}

// Signup creates an account with an empty roster and default criteria, then starts its session.
func (svc *Service) Signup(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(ctx, svc); err != nil {
		return User{}, err
	}

	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return User{}, errors.Wrap(err, "loading users")
	}
	if users == nil {
		users = make(map[string]User)
	}
	usr := User{
		Username:    core.CleanString(nu.Username, true /* lower */),
		DisplayName: nu.Username,
		CreatedAt:   core.NowFunc(),
		Data:        roster.NewSnapshot(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	users[usr.Username] = usr
	if err := svc.repo.SaveUsers(ctx, users); err != nil {
		return User{}, errors.Wrap(err, "saving users")
	}
	if err := svc.startSession(ctx, usr.Username); err != nil {
		return User{}, err
	}
	return usr, nil
}

// Login checks the credentials and starts a session.
// Legacy verifiers are replaced with a bcrypt hash on success.
func (svc *Service) Login(ctx context.Context, creds Credentials) (User, error) {
	if err := creds.Validate(svc); err != nil {
		return User{}, err
	}

	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return User{}, errors.Wrap(err, "loading users")
	}
	usr, ok := users[core.CleanString(creds.Username, true /* lower */)]
	if !ok {
		return User{}, ErrNotFound
	}
	needsUpgrade, err := usr.CheckPassword(creds.Password)
	if err != nil {
		return User{}, err
	}
	if needsUpgrade {
		svc.upgradePassword(ctx, users, usr, creds.Password)
	}
	if err := svc.startSession(ctx, usr.Username); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) upgradePassword(ctx context.Context, users map[string]User, usr User, pwd string) {
	if err := usr.SetPassword(pwd); err != nil {
		svc.warn("upgrading password verifier failed", err, usr.Username)
		return
	}
	users[usr.Username] = usr
	if err := svc.repo.SaveUsers(ctx, users); err != nil {
		svc.warn("saving upgraded password verifier failed", err, usr.Username)
	}
}

// Logout ends the session. The account and its data are kept.
func (svc *Service) Logout(ctx context.Context) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.current = ""
	if err := svc.repo.SaveSession(ctx, nil); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return nil
}

// Resume restores the persisted session. A session pointing to a missing account is discarded
// and the service stays logged out; that is not an error.
func (svc *Service) Resume(ctx context.Context) (bool, error) {
	sess, err := svc.repo.LoadSession(ctx)
	if err != nil {
		return false, errors.Wrap(err, "loading session")
	}
	if sess == nil || sess.Username == "" {
		return false, nil
	}

	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return false, errors.Wrap(err, "loading users")
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	if _, ok := users[sess.Username]; !ok {
		svc.current = ""
		if err := svc.repo.SaveSession(ctx, nil); err != nil {
			svc.warn("discarding dangling session failed", err, sess.Username)
		}
		return false, nil
	}
	svc.current = sess.Username
	return true, nil
}

func (svc *Service) IsAuthenticated() bool {
	return svc.Current() != ""
}

// Current returns the normalized username of the active account, or "".
func (svc *Service) Current() string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.current
}

// UserData returns the snapshot of the active account; nil without one.
func (svc *Service) UserData(ctx context.Context) (*roster.Snapshot, error) {
	uname := svc.Current()
	if uname == "" {
		return nil, nil
	}
	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading users")
	}
	snap := roster.NewSnapshot()
	if usr, ok := users[uname]; ok {
		snap = usr.Data
		if snap.Classes == nil {
			snap.Classes = []roster.Class{}
		}
	}
	return &snap, nil
}

// SaveUserData replaces the snapshot of the active account. It is a no-op without one.
func (svc *Service) SaveUserData(ctx context.Context, snap roster.Snapshot) error {
	uname := svc.Current()
	if uname == "" {
		return nil
	}
	return svc.saveData(ctx, uname, snap)
}

func (svc *Service) saveData(ctx context.Context, uname string, snap roster.Snapshot) error {
	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return errors.Wrap(err, "loading users")
	}
	usr, ok := users[uname]
	if !ok {
		return nil
	}
	usr.Data = snap
	users[uname] = usr
	return svc.repo.SaveUsers(ctx, users)
}

// DisplayName returns the username as typed at signup, or "" without an active account.
func (svc *Service) DisplayName(ctx context.Context) (string, error) {
	uname := svc.Current()
	if uname == "" {
		return "", nil
	}
	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return "", errors.Wrap(err, "loading users")
	}
	if usr, ok := users[uname]; ok && usr.DisplayName != "" {
		return usr.DisplayName, nil
	}
	return uname, nil
}

// Delete removes an account and its data. Deleting the active account ends the session.
func (svc *Service) Delete(ctx context.Context, uname string) error {
	uname = core.CleanString(uname, true /* lower */)
	users, err := svc.repo.LoadUsers(ctx)
	if err != nil {
		return errors.Wrap(err, "loading users")
	}
	if _, ok := users[uname]; !ok {
		return ErrNotFound
	}
	delete(users, uname)
	if err := svc.repo.SaveUsers(ctx, users); err != nil {
		return errors.Wrap(err, "saving users")
	}
	if svc.Current() == uname {
		return svc.Logout(ctx)
	}
	return nil
}

// OpenBook builds a Book on the active account's data. The book stays bound to that account:
// its saves go to it even if another account logs in later.
func (svc *Service) OpenBook(ctx context.Context, deps roster.Deps) (*roster.Book, error) {
	uname := svc.Current()
	if uname == "" {
		return nil, ErrNotAuthenticated
	}
	snap, err := svc.UserData(ctx)
	if err != nil {
		return nil, err
	}
	deps.Saver = roster.SaverFunc(func(ctx context.Context, snap roster.Snapshot) error {
		return svc.saveData(ctx, uname, snap)
	})
	return roster.Open(*snap, deps), nil
}

func (svc *Service) startSession(ctx context.Context, uname string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.repo.SaveSession(ctx, &Session{Username: uname}); err != nil {
		return errors.Wrap(err, "saving session")
	}
	svc.current = uname
	return nil
}

func (svc *Service) warn(msg string, err error, uname string) {
	if svc.log != nil {
		svc.log.Warn(msg, err, map[string]interface{}{"username": uname})
	}
}
