package enums

import "fmt"

// ReturnStatus is the return axis carried on the order record, separate
// from the fulfillment status.
type ReturnStatus string

const (
	ReturnStatusNone      ReturnStatus = "none"
	ReturnStatusRequested ReturnStatus = "return_requested"
	ReturnStatusApproved  ReturnStatus = "return_approved"
	ReturnStatusRejected  ReturnStatus = "return_rejected"
)

var validReturnStatuses = []ReturnStatus{
	ReturnStatusNone,
	ReturnStatusRequested,
	ReturnStatusApproved,
	ReturnStatusRejected,
}

// String implements fmt.Stringer.
func (r ReturnStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnStatus.
func (r ReturnStatus) IsValid() bool {
	for _, candidate := range validReturnStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReturnStatus converts raw input into a ReturnStatus.
func ParseReturnStatus(value string) (ReturnStatus, error) {
	for _, candidate := range validReturnStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return status %q", value)
}
