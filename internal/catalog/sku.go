package catalog

import (
	"crypto/rand"
	"fmt"
	"time"
)

const skuSuffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSKU produces a stock keeping unit of the form PRD-YYYYMMDD-XXXXX,
// where the suffix is five random characters. Uniqueness is enforced by the
// database; callers retry on collision.
func GenerateSKU(now time.Time) (string, error) {
	suffix := make([]byte, 5)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate sku suffix: %w", err)
	}
	for i := range suffix {
		suffix[i] = skuSuffixCharset[int(suffix[i])%len(skuSuffixCharset)]
	}
	return fmt.Sprintf("PRD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}
