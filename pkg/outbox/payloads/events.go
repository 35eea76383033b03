package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// BookingCreatedEvent announces a booking accepted at intake.
type BookingCreatedEvent struct {
	BookingID     uuid.UUID           `json:"bookingId"`
	CustomerID    uuid.UUID           `json:"customerId"`
	VendorID      *uuid.UUID          `json:"vendorId,omitempty"`
	BookingType   enums.BookingType   `json:"bookingType"`
	Status        enums.BookingStatus `json:"status"`
	ScheduledDate string              `json:"scheduledDate"`
	ScheduledTime string              `json:"scheduledTime"`
	Total         string              `json:"total"`
}

// BookingStatusChangedEvent mirrors every applied transition.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID           `json:"bookingId"`
	From       enums.BookingStatus `json:"from"`
	To         enums.BookingStatus `json:"to"`
	VendorID   *uuid.UUID          `json:"vendorId,omitempty"`
	EmployeeID *uuid.UUID          `json:"employeeId,omitempty"`
	ChangedAt  time.Time           `json:"changedAt"`
}

// InvoiceGeneratedEvent reports an issued invoice and its payout.
type InvoiceGeneratedEvent struct {
	InvoiceID     uuid.UUID  `json:"invoiceId"`
	BookingID     uuid.UUID  `json:"bookingId"`
	InvoiceNumber string     `json:"invoiceNumber"`
	TotalAmount   string     `json:"totalAmount"`
	PayoutID      *uuid.UUID `json:"payoutId,omitempty"`
	PayoutAmount  string     `json:"payoutAmount,omitempty"`
}

// NotificationRequestedEvent asks the notification worker to alert one party.
type NotificationRequestedEvent struct {
	Type           enums.NotificationType `json:"type"`
	RecipientType  enums.RecipientType    `json:"recipientType"`
	RecipientID    uuid.UUID              `json:"recipientId"`
	BookingID      uuid.UUID              `json:"bookingId"`
	ScheduledDate  string                 `json:"scheduledDate"`
	ScheduledTime  string                 `json:"scheduledTime"`
	BeauticianName string                 `json:"beauticianName,omitempty"`
}
