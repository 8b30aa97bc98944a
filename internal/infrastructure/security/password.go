package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordService is the opaque hash/verify contract used by registration,
// login and password reset.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptPasswordService implements PasswordService with bcrypt.
type BcryptPasswordService struct {
	cost int
}

func NewBcryptPasswordService(cost int) *BcryptPasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordService{cost: cost}
}

func (s *BcryptPasswordService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *BcryptPasswordService) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
