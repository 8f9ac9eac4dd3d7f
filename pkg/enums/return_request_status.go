package enums

import "fmt"

// ReturnRequestStatus tracks the lifecycle of a return request record.
// Approved and rejected are terminal.
type ReturnRequestStatus string

const (
	ReturnRequestStatusPending  ReturnRequestStatus = "pending"
	ReturnRequestStatusApproved ReturnRequestStatus = "approved"
	ReturnRequestStatusRejected ReturnRequestStatus = "rejected"
)

var validReturnRequestStatuses = []ReturnRequestStatus{
	ReturnRequestStatusPending,
	ReturnRequestStatusApproved,
	ReturnRequestStatusRejected,
}

// String implements fmt.Stringer.
func (r ReturnRequestStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnRequestStatus.
func (r ReturnRequestStatus) IsValid() bool {
	for _, candidate := range validReturnRequestStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ReturnDecision is the admin resolution applied to a pending request.
type ReturnDecision string

const (
	ReturnDecisionApproved ReturnDecision = "approved"
	ReturnDecisionRejected ReturnDecision = "rejected"
)

// ParseReturnDecision converts raw input into a ReturnDecision.
func ParseReturnDecision(value string) (ReturnDecision, error) {
	switch ReturnDecision(value) {
	case ReturnDecisionApproved:
		return ReturnDecisionApproved, nil
	case ReturnDecisionRejected:
		return ReturnDecisionRejected, nil
	default:
		return "", fmt.Errorf("invalid return decision %q", value)
	}
}
