package orders

import (
	"regexp"
	"testing"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-[A-Z0-9]{12}$`)
	number, err := GenerateOrderNumber()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !pattern.MatchString(number) {
		t.Fatalf("order number %q does not match %s", number, pattern)
	}
}

func TestGenerateOrderNumberVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := GenerateOrderNumber()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		seen[number] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected generated order numbers to vary")
	}
}
