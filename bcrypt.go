package biblio

import (
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a configurable work factor. Production runs the
// configured cost; test suites install bcrypt.MinCost so hashing does not
// dominate the run time.
type Hasher struct {
	cost int
}

// NewHasher will create a Hasher with the given bcrypt cost. Out-of-range
// costs fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash will generate a password hash
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return string(out), nil
}

// Compare will validate the given cleartext password matches the stored
// hash. A mismatch is ErrInvalidCredentials; a stored hash bcrypt cannot
// parse is a configuration error and surfaces as internal.
func (h *Hasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, errors.CategoryInternal, "stored password hash is malformed")
	}
	return nil
}
