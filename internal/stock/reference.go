package stock

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rmoralesp/fieldstock-backend/pkg/enums"
)

// ManualAdjustmentLabel is shown when a movement carries no reference.
const ManualAdjustmentLabel = "Manual Adjustment"

// Reference ties a movement to the document that originated it. Kind and ID
// always travel together; a movement either has both or neither.
type Reference struct {
	Kind enums.ReferenceKind
	ID   uuid.UUID
}

// Validate rejects half-filled or unknown references.
func (r *Reference) Validate() error {
	if r == nil {
		return nil
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("invalid reference kind %q", r.Kind)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("reference id required for kind %q", r.Kind)
	}
	return nil
}

// Label renders the human-readable origin of a movement. A nil reference is
// a manual adjustment; an unrecognized kind degrades to a generic label
// rather than failing the history read.
func (r *Reference) Label() string {
	if r == nil {
		return ManualAdjustmentLabel
	}
	short := shortID(r.ID)
	switch r.Kind {
	case enums.ReferenceKindPurchaseOrder:
		return fmt.Sprintf("Purchase Order #%s", short)
	case enums.ReferenceKindServiceOrder:
		return fmt.Sprintf("Service Order #%s", short)
	case enums.ReferenceKindTicket:
		return fmt.Sprintf("Ticket #%s", short)
	default:
		return fmt.Sprintf("Reference #%s", short)
	}
}

// ReferenceFrom rebuilds the tagged pair from nullable ledger columns.
// Rows written without a document yield nil.
func ReferenceFrom(kind *enums.ReferenceKind, id *uuid.UUID) *Reference {
	if kind == nil || id == nil {
		return nil
	}
	return &Reference{Kind: *kind, ID: *id}
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(strings.SplitN(id.String(), "-", 2)[0])
}
