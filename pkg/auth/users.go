package auth

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/db"
	"github.com/tectrixdev/unplayit/pkg/rand"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLength = 32
	tokenCost   = bcrypt.MinCost
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the user does not exist, so unknown and
// known names take the same time to reject.
var dummyHash = mustHash("unplayit-no-such-user")

func mustHash(token string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), tokenCost)
	if err != nil {
		panic(err)
	}
	return hash
}

// Users checks logins and decides whether an identified user may register.
type Users struct {
	db db.Database
}

func NewUsers(database db.Database) *Users {
	return &Users{db: database}
}

// Create stores a new user and returns the plaintext token, which is shown once.
func (u *Users) Create(name string) (db.User, string, error) {
	if name == "" {
		return db.User{}, "", fmt.Errorf("user name must be provided")
	}

	token, hash, err := createToken()
	if err != nil {
		return db.User{}, "", err
	}

	user, err := u.db.CreateUser(name, hash)
	if err != nil {
		return db.User{}, "", err
	}
	return user, token, nil
}

func (u *Users) Login(name, token string) (db.User, error) {
	user, err := u.db.GetUserByName(name)
	if err != nil {
		return db.User{}, err
	}

	hash := []byte(user.TokenHash)
	if user.ID == 0 {
		hash = dummyHash
	}
	err = bcrypt.CompareHashAndPassword(hash, []byte(token))
	if user.ID == 0 || user.Disabled || err != nil {
		return db.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Authorize reports whether the user exists and has not been disabled.
func (u *Users) Authorize(userID uint) (bool, error) {
	user, err := u.db.GetUser(userID)
	if err != nil {
		return false, err
	}
	if user.ID == 0 {
		logrus.Debugf("user %d not found", userID)
		return false, nil
	}
	return !user.Disabled, nil
}

func createToken() (string, string, error) {
	t := rand.StringWithAll(tokenLength)
	hash, err := bcrypt.GenerateFromPassword([]byte(t), tokenCost)
	if err != nil {
		return "", "", err
	}
	return t, string(hash), nil
}
