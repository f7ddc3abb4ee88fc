package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateReferralCode generates a random referral code in the format
// HX-XXXXXXXX, easy to read aloud and paste into the signup form.
func GenerateReferralCode() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return "HX-" + strings.ToUpper(hex.EncodeToString(bytes)), nil
}
