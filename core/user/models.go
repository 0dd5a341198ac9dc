package user

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/scorebook/core"
	"github.com/trezcool/scorebook/core/roster"
)

var bcryptCost = bcrypt.DefaultCost // mockable

// User is one account of the device. Its roster data is nested in the record.
type User struct {
	Username     string          `json:"username"` // lowercase, unique
	DisplayName  string          `json:"displayName"`
	PasswordHash string          `json:"passwordHash"`
	CreatedAt    time.Time       `json:"createdAt"` // UTC
	Data         roster.Snapshot `json:"data"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcryptCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares `pwd` with the stored verifier.
// needsUpgrade is true when the verifier is a legacy checksum that matched and should be replaced.
func (u *User) CheckPassword(pwd string) (needsUpgrade bool, err error) {
	if u.hasBcryptHash() {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd)); err != nil {
			return false, ErrWrongPassword
		}
		return false, nil
	}
	if u.PasswordHash == "" || u.PasswordHash != legacyChecksum(pwd) {
		return false, ErrWrongPassword
	}
	return true, nil
}

func (u *User) hasBcryptHash() bool {
	return strings.HasPrefix(u.PasswordHash, "$2")
}

// Session points to the active account by its normalized username.
type Session struct {
	Username string `json:"username"`
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=4"`
}

func (nu *NewUser) Validate(ctx context.Context, svc *Service) error {
	nu.Username = core.CleanString(nu.Username)
	if err := core.ValidateStruct(svc.validate, svc.translator, nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Username)
}

// Credentials are the fields provided at login.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(svc *Service) error {
	c.Username = core.CleanString(c.Username)
	return core.ValidateStruct(svc.validate, svc.translator, c)
}
