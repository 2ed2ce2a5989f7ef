package dataset

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainDataset   = "strata/dataset/v1"
	DomainPartition = "strata/partition/v1"
)

// Hash computes a SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content-addressed identity of a table. Two
// tables with the same schema and the same cell values in the same order
// have the same fingerprint, regardless of how they were loaded.
func Fingerprint(t *Table) string {
	return Hash(DomainDataset, canonicalBytes(t))
}

// RowsFingerprint computes the identity of a row selection within a table,
// used by split manifests to pin exactly which rows landed in a partition.
func RowsFingerprint(t *Table, rows []int) string {
	return Hash(DomainPartition, canonicalRowBytes(t, rows))
}
