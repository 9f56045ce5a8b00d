package ledger

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// LaunchpadProgramID is the program that owns bonding curve accounts.
const LaunchpadProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// ValidateAddress checks that addr is a base58-encoded 32-byte ed25519
// public key on the curve (a regular wallet, not a PDA).
func ValidateAddress(addr string) error {
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", addr, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("address %q: expected 32 bytes, got %d", addr, len(raw))
	}
	if !isOnCurve(raw) {
		return fmt.Errorf("address %q is not on the ed25519 curve", addr)
	}
	return nil
}

// DeriveCurveAddress derives the program address of the bonding curve
// account for a mint: SHA256 over seeds plus a bump, searching down from
// 255 for the first off-curve point.
func DeriveCurveAddress(mint string) (string, error) {
	mintRaw, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint %q: %w", mint, err)
	}
	programRaw, err := base58.Decode(LaunchpadProgramID)
	if err != nil {
		return "", fmt.Errorf("decode program id: %w", err)
	}

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, len(mintRaw)+len(programRaw)+64)
		data = append(data, []byte("bonding-curve")...)
		data = append(data, mintRaw...)
		data = append(data, bump)
		data = append(data, programRaw...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		// Program addresses must be off the ed25519 curve.
		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), nil
		}
	}

	return "", fmt.Errorf("no valid bump seed for mint %q", mint)
}

// NewMintAddress derives a deterministic mint address from a seed string.
// The result is an on-curve point, like a real keypair account.
func NewMintAddress(seed string) string {
	for counter := byte(0); ; counter++ {
		data := append([]byte(seed), counter)
		hash := sha256.Sum256(data)
		if isOnCurve(hash[:]) {
			return base58.Encode(hash[:])
		}
	}
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
