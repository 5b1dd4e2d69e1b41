package rand

import (
	"crypto/rand"

	"github.com/sirupsen/logrus"
)

const (
	allLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// StringWithAll returns an n character string of letters and digits, suitable for API tokens.
func StringWithAll(n int) string {
	return secureRandomString(allLetters, n)
}

// secureRandomString draws from alphabet with crypto/rand. Bytes outside the largest
// multiple of len(alphabet) are rejected so every character is equally likely.
func secureRandomString(alphabet string, n int) string {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		panic("alphabet length must be between 1 and 256")
	}
	limit := 256 - 256%len(alphabet)

	result := make([]byte, 0, n)
	buf := make([]byte, n+n/2)
	for len(result) < n {
		if _, err := rand.Read(buf); err != nil {
			logrus.Fatal("Unable to generate random bytes")
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			result = append(result, alphabet[int(b)%len(alphabet)])
			if len(result) == n {
				break
			}
		}
	}

	return string(result)
}
