package doc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTranslation = "odataq/translation/v1"
	DomainResult      = "odataq/result/v1"
)

// Hash computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func Hash(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TranslationID computes the content-addressed ID of a translation request.
// The same mode and input always produce the same ID.
func TranslationID(mode, input string) (string, error) {
	canonical, err := MarshalCanonical(Object{
		"mode":  String(mode),
		"input": String(input),
	})
	if err != nil {
		return "", fmt.Errorf("TranslationID: failed to marshal: %w", err)
	}
	return Hash(DomainTranslation, canonical), nil
}

// ValueHash computes the content-addressed hash of a document value.
func ValueHash(v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("ValueHash: failed to marshal: %w", err)
	}
	return Hash(DomainResult, canonical), nil
}
