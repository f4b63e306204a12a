// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt hashes. Longer passwords are
// rejected instead of being silently truncated.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by [HashPassword] for inputs over [MaxPasswordBytes].
var ErrPasswordTooLong = errors.New("sec: password longer than 72 bytes")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: hash password: %w", err)
	}
	return string(hashed), nil
}

// PasswordMatches reports whether password produced hash.
func PasswordMatches(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// absentAccountHash is compared against when no account matches a login, so an
// unknown email costs as much as a wrong password.
var absentAccountHash = sync.OnceValue(func() []byte {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("absent-account"), bcrypt.DefaultCost)
	return hashed
})

// RejectPassword spends one bcrypt comparison and always reports false.
func RejectPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(absentAccountHash(), []byte(password))
	return false
}
