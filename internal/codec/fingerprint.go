package codec

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"railgen/internal/domain"
)

// Fingerprint returns a hex BLAKE2b-256 digest of the compact RailJSON encoding.
// Equal documents always have equal fingerprints.
func Fingerprint(infra *domain.Infra) (string, error) {
	data, err := Marshal(infra)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
