package orders

import (
	"crypto/rand"
	"fmt"
)

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const orderNumberLength = 12

// GenerateOrderNumber produces a human-readable identifier of the form
// ORD-XXXXXXXXXXXX. Uniqueness is enforced by the database; callers retry
// on collision.
func GenerateOrderNumber() (string, error) {
	suffix := make([]byte, orderNumberLength)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate order number: %w", err)
	}
	for i := range suffix {
		suffix[i] = orderNumberCharset[int(suffix[i])%len(orderNumberCharset)]
	}
	return "ORD-" + string(suffix), nil
}
