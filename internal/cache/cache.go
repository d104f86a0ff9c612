// Package cache stores secondary-structure predictions so repeated runs
// over the same sequences do not resubmit them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// PredictionKey derives a key from the predictor name and the exact
// sequence submitted. Accessions are not part of the key: the same residues
// always get the same prediction.
func PredictionKey(provider, sequence string) string {
	hash := sha256.Sum256([]byte(strings.ToUpper(sequence)))
	return "foldswitch:v1:" + strings.ToLower(provider) + ":" + hex.EncodeToString(hash[:])
}
