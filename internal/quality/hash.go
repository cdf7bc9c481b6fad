package quality

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ayurtrace/ayurtrace/internal/lederr"
)

// Err converts a failed check into a typed IntegrityError, for callers that
// treat tampering as a hard failure rather than a reportable result.
func (c AuthenticityCheck) Err() error {
	if c.Authentic {
		return nil
	}
	return lederr.IntegrityError{
		Kind:     "quality test",
		ID:       c.TestID,
		Stored:   c.StoredHash,
		Computed: c.ComputedHash,
	}
}

// computeHash produces the record's content hash: the record is serialized
// with the Hash field zeroed and the sha256 of those bytes is hex-encoded.
// encoding/json emits struct fields in declaration order and map keys
// sorted, so the serialization is canonical and the hash is re-derivable
// byte-for-byte at verification time.
func computeHash(r QualityTestRecord) (string, error) {
	r.Hash = ""
	raw, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("serialize test %s for hashing: %w", r.TestID, err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
