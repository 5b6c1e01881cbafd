package handler

import (
	"crypto/rand"
	"encoding/hex"
)

// newRequestID returns a random 128-bit identifier used to correlate
// every log line of one inbound request across its racing attempts.
func newRequestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
