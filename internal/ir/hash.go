package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainRoutine = "sparcsched/routine/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RoutineHash computes the content-addressed identity of a routine. Two
// routines built from the same description hash identically.
func RoutineHash(r *Routine) (string, error) {
	canonical, err := MarshalCanonical(CanonicalRoutine(r))
	if err != nil {
		return "", fmt.Errorf("RoutineHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRoutine, canonical), nil
}

