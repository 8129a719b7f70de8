package auth

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is a desk operator allowed to call the API
type User struct {
	Username     string
	Role         string
	passwordHash []byte
}

// UserDirectory authenticates operators against bcrypt password hashes
type UserDirectory struct {
	users map[string]User
}

// ParseUsers reads "name:password:role" entries separated by commas.
// Malformed entries are skipped; the role defaults to trader.
func ParseUsers(value string) (*UserDirectory, error) {
	dir := &UserDirectory{users: make(map[string]User)}
	for _, entry := range strings.Split(value, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		role := RoleTrader
		if len(parts) > 2 && parts[2] != "" {
			role = strings.ToLower(parts[2])
		}
		if err := dir.Add(parts[0], parts[1], role); err != nil {
			return nil, err
		}
	}
	return dir, nil
}

// Add registers a user, hashing the password
func (d *UserDirectory) Add(username, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d.users[username] = User{Username: username, Role: role, passwordHash: hash}
	return nil
}

// Authenticate returns the user when the password matches
func (d *UserDirectory) Authenticate(username, password string) (User, bool) {
	user, ok := d.users[username]
	if !ok {
		return User{}, false
	}
	if bcrypt.CompareHashAndPassword(user.passwordHash, []byte(password)) != nil {
		return User{}, false
	}
	return user, true
}
