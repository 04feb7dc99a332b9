package enums

import "fmt"

// ServiceOrderStatus maps to the service_order_status_enum enum in Postgres.
type ServiceOrderStatus string

const (
	ServiceOrderStatusScheduled  ServiceOrderStatus = "scheduled"
	ServiceOrderStatusInProgress ServiceOrderStatus = "in_progress"
	ServiceOrderStatusCompleted  ServiceOrderStatus = "completed"
	ServiceOrderStatusCanceled   ServiceOrderStatus = "canceled"
)

var validServiceOrderStatuses = []ServiceOrderStatus{
	ServiceOrderStatusScheduled,
	ServiceOrderStatusInProgress,
	ServiceOrderStatusCompleted,
	ServiceOrderStatusCanceled,
}

// IsValid reports whether the value matches the canonical status enum.
func (s ServiceOrderStatus) IsValid() bool {
	for _, candidate := range validServiceOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceOrderStatus converts raw input into ServiceOrderStatus.
func ParseServiceOrderStatus(value string) (ServiceOrderStatus, error) {
	for _, candidate := range validServiceOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service order status %q", value)
}
