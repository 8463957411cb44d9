package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

var (
	passwordLower   = []rune("abcdefghijkmnopqrstuvwxyz")
	passwordUpper   = []rune("ABCDEFGHJKLMNPQRSTUVWXYZ")
	passwordDigits  = []rune("23456789")
	passwordSymbols = []rune("!@#$%^&*-_=+")
)

func RandomIntn(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("generating random number: %w", err)
	}
	return int(n.Int64()), nil
}

func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating random bytes: %w", err)
	}
	return b, nil
}

// RandomPassword generates a password of length n drawing from lowercase,
// uppercase, digit, and symbol classes, with at least one character from
// each class when n >= 4. Visually ambiguous characters are excluded.
func RandomPassword(n int) (string, error) {
	if n < 4 {
		return "", fmt.Errorf("password length must be at least 4")
	}

	classes := [][]rune{passwordLower, passwordUpper, passwordDigits, passwordSymbols}
	all := make([]rune, 0)
	for _, c := range classes {
		all = append(all, c...)
	}

	chars := make([]rune, 0, n)
	for _, c := range classes {
		idx, err := RandomIntn(len(c))
		if err != nil {
			return "", err
		}
		chars = append(chars, c[idx])
	}
	for len(chars) < n {
		idx, err := RandomIntn(len(all))
		if err != nil {
			return "", err
		}
		chars = append(chars, all[idx])
	}

	// Fisher-Yates so the mandatory class characters don't cluster at the front.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := RandomIntn(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}

	var sb strings.Builder
	for _, r := range chars {
		sb.WriteRune(r)
	}
	return sb.String(), nil
}
