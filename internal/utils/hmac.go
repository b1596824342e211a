package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateHMAC generates a hex HMAC-SHA256 over the given parts
func GenerateHMAC(secret string, parts ...string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMAC reports whether mac matches the parts under secret
func VerifyHMAC(mac, secret string, parts ...string) bool {
	expected := GenerateHMAC(secret, parts...)
	return hmac.Equal([]byte(mac), []byte(expected))
}
