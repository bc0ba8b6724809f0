package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for every stored credential.
const PasswordCost = 10

// CredentialStore hashes and verifies passwords.
type CredentialStore struct {
	cost int
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{cost: PasswordCost}
}

func (c *CredentialStore) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), c.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (c *CredentialStore) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// Rehash returns a new hash only when plain is a real change. An empty
// password or one that already matches currentHash leaves the hash as is.
func (c *CredentialStore) Rehash(currentHash, plain string) (string, bool, error) {
	if plain == "" {
		return currentHash, false, nil
	}
	if currentHash != "" && c.Verify(plain, currentHash) {
		return currentHash, false, nil
	}
	hashed, err := c.Hash(plain)
	if err != nil {
		return "", false, err
	}
	return hashed, true, nil
}
