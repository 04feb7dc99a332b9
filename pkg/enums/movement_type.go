package enums

import "fmt"

// MovementType maps to the movement_type_enum enum in Postgres.
// Direction is always carried by the type; quantities stay positive.
type MovementType string

const (
	MovementTypeEntry      MovementType = "entry"
	MovementTypeExit       MovementType = "exit"
	MovementTypeAdjustment MovementType = "adjustment"
)

var validMovementTypes = []MovementType{
	MovementTypeEntry,
	MovementTypeExit,
	MovementTypeAdjustment,
}

// IsValid reports whether the value matches the canonical movement enum.
func (t MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseMovementType converts raw input into MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
