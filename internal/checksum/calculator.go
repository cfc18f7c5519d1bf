package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// SHA256 computes hex-encoded SHA-256 digests.
//
// SHA256 is a zero-size type and is safe for concurrent use by multiple
// goroutines. Using value semantics eliminates heap allocations.
type SHA256 struct{}

// New creates a new SHA-256 based calculator.
func New() SHA256 {
	return SHA256{}
}

// Calculate computes SHA-256 of the given content.
func (c SHA256) Calculate(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// CalculateReader computes SHA-256 of everything read from r without
// buffering the content in memory.
func (c SHA256) CalculateReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Tee returns a writer that feeds a running digest while data passes through.
// Call Sum on the returned hash once the copy is complete.
func (c SHA256) Tee() hash.Hash {
	return sha256.New()
}

// Encode converts a finished digest into its hex form.
func (c SHA256) Encode(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
