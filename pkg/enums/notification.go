package enums

import "fmt"

// NotificationType maps to notifications.type.
type NotificationType string

const (
	NotificationTypeBookingConfirmed           NotificationType = "booking_confirmed"
	NotificationTypeBeauticianAssigned         NotificationType = "beautician_assigned"
	NotificationTypeCustomerBeauticianAssigned NotificationType = "customer_beautician_assigned"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeBookingConfirmed,
	NotificationTypeBeauticianAssigned,
	NotificationTypeCustomerBeauticianAssigned,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// RecipientType identifies which party table a notification recipient id refers to.
type RecipientType string

const (
	RecipientCustomer RecipientType = "customer"
	RecipientEmployee RecipientType = "employee"
	RecipientVendor   RecipientType = "vendor"
)
