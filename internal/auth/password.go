// Pantry - Recipe Sharing and Nutrition Explorer
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pantry

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for stored password hashes. Tests lower it.
var bcryptCost = 12

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. The comparison is
// constant-time.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// PasswordPolicy defines requirements for sign-up passwords.
type PasswordPolicy struct {
	// MinLength counts characters, not bytes.
	MinLength int

	RequireLetter bool
	RequireDigit  bool

	// MaxConsecutiveRepeats is the longest allowed run of one character (0 = disabled).
	MaxConsecutiveRepeats int

	ForbidCommonPasswords bool

	// ForbidEmailSimilarity rejects passwords containing the email's local part.
	ForbidEmailSimilarity bool
}

// DefaultPasswordPolicy returns the sign-up policy: at least 8 characters,
// not a common password and not the user's email.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:             8,
		MaxConsecutiveRepeats: 4,
		ForbidCommonPasswords: true,
		ForbidEmailSimilarity: true,
	}
}

// Validate returns ErrWeakPassword wrapping every violated rule, or nil.
func (p PasswordPolicy) Validate(password, email string) error {
	var problems []string

	if n := len([]rune(password)); n < p.MinLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters (got %d)", p.MinLength, n))
	}
	if len(password) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if p.RequireLetter && !hasLetter {
		problems = append(problems, "password must contain at least one letter")
	}
	if p.RequireDigit && !hasDigit {
		problems = append(problems, "password must contain at least one digit")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		problems = append(problems,
			fmt.Sprintf("password cannot have more than %d consecutive repeated characters", p.MaxConsecutiveRepeats))
	}
	if p.ForbidCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "password is too common and easily guessable")
	}
	if p.ForbidEmailSimilarity && isSimilarToEmail(password, email) {
		problems = append(problems, "password is too similar to email")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrWeakPassword, errors.New(strings.Join(problems, "; ")))
}

func maxConsecutiveRepeats(password string) int {
	longest, current := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
		last = r
	}
	return longest
}

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "password123": true, "passw0rd": true, "p@ssw0rd": true,
	"12345678": true, "123456789": true, "1234567890": true, "87654321": true, "11111111": true,
	"00000000": true, "qwertyuiop": true, "qwerty123": true, "1q2w3e4r": true, "1qaz2wsx": true,
	"abcd1234": true, "iloveyou": true, "sunshine": true, "princess": true, "football": true,
	"baseball": true, "welcome1": true, "welcome123": true, "letmein123": true, "trustno1": true,
	"superman": true, "changeme": true, "testing123": true, "administrator": true,
	"pantry123": true, "recipes1": true, "cookbook": true, "delicious": true, "chocolate": true,
}

func isCommonPassword(password string) bool {
	return commonPasswords[strings.ToLower(password)]
}

func isSimilarToEmail(password, email string) bool {
	local, _, _ := strings.Cut(strings.ToLower(email), "@")
	if len(local) < 4 {
		return false
	}
	return strings.Contains(strings.ToLower(password), local)
}
