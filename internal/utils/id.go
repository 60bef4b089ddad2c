package utils

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// GenerateID returns a run ID: a UTC timestamp plus a random suffix.
func GenerateID() string {
	b := make([]byte, 4)
	stamp := time.Now().UTC().Format("20060102-150405")
	if _, err := rand.Read(b); err != nil {
		return stamp
	}
	return stamp + "-" + hex.EncodeToString(b)
}
