package utils

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is overridable via BCRYPT_COST so integration tests can use the
// minimum; production falls back to the library default.
func hashCost() int {
	if v, err := strconv.Atoi(os.Getenv("BCRYPT_COST")); err == nil && v >= bcrypt.MinCost && v <= bcrypt.MaxCost {
		return v
	}
	return bcrypt.DefaultCost
}

func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), hashCost())
}

func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
