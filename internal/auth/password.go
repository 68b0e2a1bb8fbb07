package auth

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier hashes and checks account passwords.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Compare(hashed, plain string) error
}

// BcryptVerifier implements CredentialVerifier with bcrypt.
type BcryptVerifier struct {
	Cost int
}

// NewBcryptVerifier clamps cost into bcrypt's accepted range.
func NewBcryptVerifier(cost int) BcryptVerifier {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptVerifier{Cost: cost}
}

func (v BcryptVerifier) Hash(password string) (string, error) {
	return HashPassword(password, v.Cost)
}

func (v BcryptVerifier) Compare(hashed, plain string) error {
	return ComparePassword(hashed, plain)
}

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
