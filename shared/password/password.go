package password

//go:generate go run go.uber.org/mock/mockgen -source=./password.go -destination=./mocks/password_mock.go -package=mocks

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = bcrypt.DefaultCost
	// MaxLength is the bcrypt input limit in bytes.
	MaxLength = 72
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrHashingPassword = errors.New("error hashing password")
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Hasher hashes and verifies admin passwords.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) error
	NeedsRehash(hash string) bool
}

type bcryptHasher struct {
	cost int
}

func New() Hasher {
	return &bcryptHasher{cost: DefaultCost}
}

func NewWithCost(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}

	if len(plain) > MaxLength {
		return "", ErrPasswordTooLong
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashingPassword, err)
	}

	return string(bytes), nil
}

func (h *bcryptHasher) Verify(plain, hash string) error {
	if plain == "" || hash == "" {
		return ErrInvalidPassword
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}

		return fmt.Errorf("failed to verify password: %w", err)
	}

	return nil
}

// NeedsRehash reports whether hash was produced with a lower cost than the hasher's.
func (h *bcryptHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}

	return cost < h.cost
}

var defaultHasher = New()

// Hash generates a bcrypt hash of the password with the default cost.
func Hash(plain string) (string, error) {
	return defaultHasher.Hash(plain) //nolint:wrapcheck
}

// Verify checks if the provided password matches the hash.
func Verify(plain, hash string) error {
	return defaultHasher.Verify(plain, hash) //nolint:wrapcheck
}
