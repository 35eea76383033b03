package bookings

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowcall/glowcall-backend/internal/bookingevents"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
)

// BookingItemDTO is one service line as returned over HTTP.
type BookingItemDTO struct {
	ID               uuid.UUID  `json:"id"`
	CatalogServiceID *uuid.UUID `json:"catalogServiceId,omitempty"`
	ServiceID        *uuid.UUID `json:"serviceId,omitempty"`
	Name             string     `json:"name"`
	Quantity         int        `json:"quantity"`
	Price            string     `json:"price"`
	BasePrice        string     `json:"basePrice"`
	Duration         int        `json:"duration"`
	VendorPayout     *string    `json:"vendorPayout,omitempty"`
}

// BookingProductDTO is one merged product line.
type BookingProductDTO struct {
	ID               uuid.UUID `json:"id"`
	ProductCatalogID uuid.UUID `json:"productCatalogId"`
	Name             string    `json:"name"`
	Quantity         int       `json:"quantity"`
	UnitPrice        string    `json:"unitPrice"`
	LineTotal        string    `json:"lineTotal"`
	VendorPayout     string    `json:"vendorPayout"`
}

// BookingDTO is the public shape of a booking. Money is a fixed two-decimal
// string and the scheduled date is YYYY-MM-DD.
type BookingDTO struct {
	ID                   uuid.UUID           `json:"id"`
	CustomerID           uuid.UUID           `json:"customerId"`
	VendorID             *uuid.UUID          `json:"vendorId,omitempty"`
	ManagerID            *uuid.UUID          `json:"managerId,omitempty"`
	EmployeeID           *uuid.UUID          `json:"employeeId,omitempty"`
	AddressID            *uuid.UUID          `json:"addressId,omitempty"`
	CatalogServiceID     *uuid.UUID          `json:"catalogServiceId,omitempty"`
	BookingType          enums.BookingType   `json:"bookingType"`
	Status               enums.BookingStatus `json:"status"`
	ScheduledDate        string              `json:"scheduledDate"`
	ScheduledTime        string              `json:"scheduledTime"`
	Duration             int                 `json:"duration"`
	ServiceSubtotal      string              `json:"serviceSubtotal"`
	ProductSubtotal      string              `json:"productSubtotal"`
	Subtotal             string              `json:"subtotal"`
	Discount             string              `json:"discount"`
	Tax                  string              `json:"tax"`
	Total                string              `json:"total"`
	VendorPayout         *string             `json:"vendorPayout,omitempty"`
	PlatformRevenue      *string             `json:"platformRevenue,omitempty"`
	Notes                *string             `json:"notes,omitempty"`
	CancellationReason   *string             `json:"cancellationReason,omitempty"`
	ManagerAssignedAt    *time.Time          `json:"managerAssignedAt,omitempty"`
	VendorRespondedAt    *time.Time          `json:"vendorRespondedAt,omitempty"`
	BeauticianAssignedAt *time.Time          `json:"beauticianAssignedAt,omitempty"`
	CustomerNotifiedAt   *time.Time          `json:"customerNotifiedAt,omitempty"`
	Items                []BookingItemDTO    `json:"items,omitempty"`
	Products             []BookingProductDTO `json:"products,omitempty"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// BookingEventDTO is one audit fact.
type BookingEventDTO struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.BookingEventType `json:"type"`
	ActorID   *uuid.UUID             `json:"actorId,omitempty"`
	ActorRole *enums.ActorRole       `json:"actorRole,omitempty"`
	Data      json.RawMessage        `json:"data,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// BookingEventPage wraps one page of the audit trail.
type BookingEventPage struct {
	Events     []BookingEventDTO `json:"events"`
	NextCursor string            `json:"nextCursor,omitempty"`
}

// NewBookingDTO maps a stored booking to its public shape.
func NewBookingDTO(booking *models.Booking) BookingDTO {
	dto := BookingDTO{
		ID:                   booking.ID,
		CustomerID:           booking.CustomerID,
		VendorID:             booking.VendorID,
		ManagerID:            booking.ManagerID,
		EmployeeID:           booking.EmployeeID,
		AddressID:            booking.AddressID,
		CatalogServiceID:     booking.CatalogServiceID,
		BookingType:          booking.BookingType,
		Status:               booking.Status,
		ScheduledDate:        booking.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:        booking.ScheduledTime,
		Duration:             booking.Duration,
		ServiceSubtotal:      money(booking.ServiceSubtotal),
		ProductSubtotal:      money(booking.ProductSubtotal),
		Subtotal:             money(booking.Subtotal),
		Discount:             money(booking.Discount),
		Tax:                  money(booking.Tax),
		Total:                money(booking.Total),
		VendorPayout:         optionalMoney(booking.VendorPayout),
		PlatformRevenue:      optionalMoney(booking.PlatformRevenue),
		Notes:                booking.Notes,
		CancellationReason:   booking.CancellationReason,
		ManagerAssignedAt:    booking.ManagerAssignedAt,
		VendorRespondedAt:    booking.VendorRespondedAt,
		BeauticianAssignedAt: booking.BeauticianAssignedAt,
		CustomerNotifiedAt:   booking.CustomerNotifiedAt,
		CreatedAt:            booking.CreatedAt,
		UpdatedAt:            booking.UpdatedAt,
	}
	for _, item := range booking.Items {
		dto.Items = append(dto.Items, BookingItemDTO{
			ID:               item.ID,
			CatalogServiceID: item.CatalogServiceID,
			ServiceID:        item.ServiceID,
			Name:             item.Name,
			Quantity:         item.Quantity,
			Price:            money(item.Price),
			BasePrice:        money(item.BasePrice),
			Duration:         item.Duration,
			VendorPayout:     optionalMoney(item.VendorPayout),
		})
	}
	for _, product := range booking.Products {
		dto.Products = append(dto.Products, BookingProductDTO{
			ID:               product.ID,
			ProductCatalogID: product.ProductCatalogID,
			Name:             product.Name,
			Quantity:         product.Quantity,
			UnitPrice:        money(product.UnitPrice),
			LineTotal:        money(product.LineTotal()),
			VendorPayout:     money(product.VendorPayout),
		})
	}
	return dto
}

// NewBookingEventPage maps a page of audit rows.
func NewBookingEventPage(page *bookingevents.ListResult) BookingEventPage {
	out := BookingEventPage{Events: make([]BookingEventDTO, 0)}
	if page == nil {
		return out
	}
	out.NextCursor = page.NextCursor
	for _, event := range page.Events {
		dto := BookingEventDTO{
			ID:        event.ID,
			Type:      event.Type,
			ActorID:   event.ActorID,
			ActorRole: event.ActorRole,
			CreatedAt: event.CreatedAt,
		}
		if len(event.Data) > 0 {
			dto.Data = json.RawMessage(event.Data)
		}
		out.Events = append(out.Events, dto)
	}
	return out
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func optionalMoney(v *decimal.Decimal) *string {
	if v == nil {
		return nil
	}
	s := v.StringFixed(2)
	return &s
}
