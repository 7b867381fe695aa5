// Package auth checks user credentials and supplies the authenticated user
// to request handlers.
package auth

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("invalid username")
)

// usernames become part of file names
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type User struct {
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
}

type account struct {
	User         `yaml:",inline"`
	PasswordHash string `yaml:"password_hash"`
}

type usersFile struct {
	Users []account `yaml:"users"`
}

// Users is a read-only set of accounts loaded from a YAML file.
type Users struct {
	byName map[string]account
}

// LoadUsers reads the users file at path.
//
//	users:
//	  - username: alice
//	    name: Alice
//	    password_hash: $2a$10$...
func LoadUsers(path string) (*Users, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	return ParseUsers(data)
}

func ParseUsers(data []byte) (*Users, error) {
	var f usersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}

	u := &Users{byName: make(map[string]account, len(f.Users))}
	for _, a := range f.Users {
		if !ValidUsername(a.Username) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, a.Username)
		}
		if _, dup := u.byName[a.Username]; dup {
			return nil, fmt.Errorf("duplicate user %q", a.Username)
		}
		if _, err := bcrypt.Cost([]byte(a.PasswordHash)); err != nil {
			return nil, fmt.Errorf("user %q: password_hash: %w", a.Username, err)
		}
		if a.Name == "" {
			a.Name = a.Username
		}
		u.byName[a.Username] = a
	}
	return u, nil
}

func ValidUsername(s string) bool {
	return usernameRe.MatchString(s) && s != "." && s != ".."
}

// Authenticate returns the user when password matches the stored hash.
func (u *Users) Authenticate(username, password string) (User, error) {
	a, ok := u.byName[username]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return a.User, nil
}

func (u *Users) Len() int { return len(u.byName) }

// HashPassword returns a bcrypt hash suitable for the users file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
