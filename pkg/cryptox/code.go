package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	MinCodeDigits = 4
	MaxCodeDigits = 9
)

// GenerateNumericCode returns a one-time numeric code of the given length.
// The code is the HOTP value (RFC 4226, counter 0) of a freshly drawn 160-bit
// secret, so every call is independent and uniformly spread over the code
// space.
func GenerateNumericCode(digits int) (string, error) {
	if digits < MinCodeDigits || digits > MaxCodeDigits {
		return "", fmt.Errorf("cryptox: code length %d outside [%d,%d]", digits, MinCodeDigits, MaxCodeDigits)
	}

	secret := make([]byte, 20)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("cryptox: read code secret: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(
		base32.StdEncoding.EncodeToString(secret),
		0,
		hotp.ValidateOpts{Digits: otp.Digits(digits), Algorithm: otp.AlgorithmSHA1},
	)
	if err != nil {
		return "", fmt.Errorf("cryptox: derive code: %w", err)
	}
	return code, nil
}
