package authinfra

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher 以 bcrypt 雜湊與比對報表帳號密碼；Cost 為 0 時使用 bcrypt.DefaultCost。
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Compare(hashed, plain string) bool {
	if hashed == "" || plain == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

func (h BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty password")
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// HashPassword 以預設成本雜湊，供預設帳號 seed 使用。
func HashPassword(plain string) (string, error) {
	return BcryptHasher{}.Hash(plain)
}
