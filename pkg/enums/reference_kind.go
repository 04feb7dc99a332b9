package enums

import "fmt"

// ReferenceKind discriminates the document that originated a stock movement.
type ReferenceKind string

const (
	ReferenceKindPurchaseOrder ReferenceKind = "purchase_order"
	ReferenceKindServiceOrder  ReferenceKind = "service_order"
	ReferenceKindTicket        ReferenceKind = "ticket"
)

var validReferenceKinds = []ReferenceKind{
	ReferenceKindPurchaseOrder,
	ReferenceKindServiceOrder,
	ReferenceKindTicket,
}

// IsValid reports whether the value matches the canonical reference enum.
func (k ReferenceKind) IsValid() bool {
	for _, candidate := range validReferenceKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseReferenceKind converts raw input into ReferenceKind.
func ParseReferenceKind(value string) (ReferenceKind, error) {
	for _, candidate := range validReferenceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reference kind %q", value)
}
