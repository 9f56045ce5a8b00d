package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeTokenID computes a deterministic token id using SHA256.
// Formula: SHA256(lower(symbol)|lower(name)|creator|created_at)
// Returns hex-encoded hash (64 characters).
func ComputeTokenID(symbol, name, creatorAddress string, createdAt int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		strings.ToLower(symbol),
		strings.ToLower(name),
		creatorAddress,
		createdAt,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
