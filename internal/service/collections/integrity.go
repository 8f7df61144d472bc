package collections

import (
	"crypto/sha256"
	"encoding/hex"
)

// payloadIntegritySHA256 fingerprints the serialized artifact set so
// tampering with a stored payload is detectable on read.
func payloadIntegritySHA256(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
