package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cnf/structhash"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/cscript/internal/transform"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with old rows.
const (
	DomainSource = "cscript/source/v1"
	DomainOutput = "cscript/output/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceHash hashes CScript source text. The text is NFC-normalized first
// so that differently composed but equal identifiers and strings hash the
// same.
func SourceHash(src string) string {
	return hashWithDomain(DomainSource, []byte(norm.NFC.String(src)))
}

// OutputHash hashes generated JavaScript.
func OutputHash(code string) string {
	return hashWithDomain(DomainOutput, []byte(code))
}

// FeaturesHash fingerprints a feature set, so history can tell which builds
// ran under the same toggles.
func FeaturesHash(f transform.Features) (string, error) {
	h, err := structhash.Hash(f, 1)
	if err != nil {
		return "", fmt.Errorf("hash features: %w", err)
	}
	return h, nil
}

// UUIDv7Generator generates time-sortable build ids.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
