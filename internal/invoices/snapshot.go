package invoices

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/glowcall/glowcall-backend/pkg/db/models"
)

// CustomerSnapshot freezes who was billed and where the service happened.
type CustomerSnapshot struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone,omitempty"`
	Address string  `json:"address,omitempty"`
}

// ServiceLine is one billed service.
type ServiceLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

// ProductLine is one billed product.
type ProductLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

// ItemsSnapshot freezes the billed lines.
type ItemsSnapshot struct {
	Services []ServiceLine `json:"services"`
	Products []ProductLine `json:"products"`
}

func snapshotCustomer(customer *models.Customer, address *models.Address) CustomerSnapshot {
	snapshot := CustomerSnapshot{
		Name:  customer.Name,
		Email: customer.Email,
		Phone: customer.Phone,
	}
	if address != nil {
		snapshot.Address = formatAddress(address)
	}
	return snapshot
}

func snapshotItems(booking *models.Booking) ItemsSnapshot {
	snapshot := ItemsSnapshot{
		Services: make([]ServiceLine, 0, len(booking.Items)),
		Products: make([]ProductLine, 0, len(booking.Products)),
	}
	for _, item := range booking.Items {
		snapshot.Services = append(snapshot.Services, ServiceLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    money(item.Price),
		})
	}
	for _, product := range booking.Products {
		snapshot.Products = append(snapshot.Products, ProductLine{
			Name:      product.Name,
			Quantity:  product.Quantity,
			UnitPrice: money(product.UnitPrice),
			LineTotal: money(product.LineTotal()),
		})
	}
	return snapshot
}

func formatAddress(address *models.Address) string {
	parts := []string{address.Street, address.City}
	if address.State != nil {
		parts = append(parts, *address.State)
	}
	if address.PostalCode != nil {
		parts = append(parts, *address.PostalCode)
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, ", ")
}

func money(v decimal.Decimal) string {
	return v.StringFixed(2)
}
