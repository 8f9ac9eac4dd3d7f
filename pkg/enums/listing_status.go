package enums

import "fmt"

// ListingStatus tracks moderation and availability of a listing.
type ListingStatus string

const (
	ListingStatusPendingReview ListingStatus = "pending_review"
	ListingStatusActive        ListingStatus = "active"
	ListingStatusRejected      ListingStatus = "rejected"
	ListingStatusSold          ListingStatus = "sold"
)

var validListingStatuses = []ListingStatus{
	ListingStatusPendingReview,
	ListingStatusActive,
	ListingStatusRejected,
	ListingStatusSold,
}

// String implements fmt.Stringer.
func (l ListingStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingStatus.
func (l ListingStatus) IsValid() bool {
	for _, candidate := range validListingStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingStatus converts raw input into a ListingStatus.
func ParseListingStatus(value string) (ListingStatus, error) {
	for _, candidate := range validListingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing status %q", value)
}
