package id

import (
	"crypto/md5"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// fallbackCounter provides uniqueness when combined with timestamp.
	// Incremented atomically to ensure uniqueness across goroutines.
	fallbackCounter uint64

	// processID is cached at startup for fallback ID generation.
	processID = os.Getpid()
)

// Generate returns a random unique identifier (UUID v4). When the platform
// random source fails it falls back to a timestamp/counter/pid identifier
// instead of returning an error.
func Generate() string {
	u, err := uuid.NewRandom()
	if err != nil {
		return generateFallbackID()
	}
	return u.String()
}

// ForContent builds a message identifier from the canonical JSON encoding
// of the message body combined with a random unique value.
// Format: go-{md5_hex}-{uuid}
func ForContent(content []byte) string {
	sum := md5.Sum(content)
	return fmt.Sprintf("go-%x-%s", sum, Generate())
}

// generateFallbackID generates a unique ID without a random source.
// Format: fb-{timestamp_hex}-{counter_hex}-{pid}
func generateFallbackID() string {
	counter := atomic.AddUint64(&fallbackCounter, 1)
	return fmt.Sprintf("fb-%x-%08x-%d", time.Now().UnixNano(), counter, processID)
}

// IsFallbackID reports whether the ID was generated without a random
// source. Fallback IDs start with "fb-".
func IsFallbackID(id string) bool {
	return len(id) > 3 && id[0:3] == "fb-"
}
