package main

import (
	"golang.org/x/crypto/bcrypt"
)

var _ Directory = (*bcryptDirectory)(nil) // ensure bcryptDirectory implements Directory.

// Directory is the credential directory consulted by login. Lookup returns
// the matching record when both the username and the password match.
type Directory interface {
	Lookup(username, password string) (User, bool)
}

// bcryptDirectory holds the seeded user records with their passwords
// replaced by bcrypt hashes, so no plaintext credential stays in memory
// past construction.
type bcryptDirectory struct {
	users []User
}

// NewDirectory builds a directory from seed records carrying plaintext
// passwords and hashes them on the way in.
func NewDirectory(seed []User) (Directory, error) {
	users := make([]User, 0, len(seed))
	for _, u := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.Password = string(hash)
		users = append(users, u)
	}
	return &bcryptDirectory{users: users}, nil
}

// Lookup scans the directory in order for an exact username match whose
// password verifies against the stored hash.
func (d *bcryptDirectory) Lookup(username, password string) (User, bool) {
	for _, u := range d.users {
		if u.Username != username {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil {
			return u, true
		}
	}
	return User{}, false
}
