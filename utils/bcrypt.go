package utils

import "golang.org/x/crypto/bcrypt"

// Cost 12 keeps a login check under ~300ms on the instances this runs on.
const passwordHashCost = 12

func HashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
}

func ComparePassword(hashed string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
