package intake

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowcall/glowcall-backend/internal/catalog"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
)

const (
	ReasonCatalogServiceNotFound   = "catalog_service_not_found"
	ReasonServiceNotFound          = "service_not_found"
	ReasonServiceSelectionRequired = "service_selection_required"
	ReasonProductNotFound          = "product_not_found"
	ReasonMixedVendorServices      = "mixed_vendor_services"
	ReasonCustomerNotFound         = "customer_not_found"
)

// serviceLines is the resolved service side of a booking.
type serviceLines struct {
	items    []models.BookingItem
	subtotal decimal.Decimal
	payout   decimal.Decimal
	duration int
	vendorID *uuid.UUID
	// catalogServiceID is the first catalog service, kept on the booking row.
	catalogServiceID *uuid.UUID
}

type productLines struct {
	products []models.BookingProduct
	subtotal decimal.Decimal
	payout   decimal.Decimal
}

func resolveCatalogServices(ctx context.Context, repo catalog.Repository, ids []uuid.UUID) (serviceLines, error) {
	unique := catalog.UniqueIDs(ids)
	rows, err := repo.ActiveCatalogServices(ctx, unique)
	if err != nil {
		return serviceLines{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog services")
	}
	if len(rows) != len(unique) {
		return serviceLines{}, pkgerrors.New(pkgerrors.CodeNotFound, "catalog service not found").
			WithReason(ReasonCatalogServiceNotFound)
	}

	byID := make(map[uuid.UUID]models.ServiceCatalog, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	lines := serviceLines{subtotal: decimal.Zero, payout: decimal.Zero}
	for _, id := range unique {
		row := byID[id]
		catalogID := row.ID
		payout := row.VendorPayout
		lines.items = append(lines.items, models.BookingItem{
			CatalogServiceID: &catalogID,
			Name:             row.Name,
			Quantity:         1,
			Price:            row.CustomerPrice,
			BasePrice:        row.BasePrice,
			Duration:         row.Duration,
			VendorPayout:     &payout,
		})
		lines.subtotal = lines.subtotal.Add(row.CustomerPrice)
		lines.payout = lines.payout.Add(row.VendorPayout)
		lines.duration += row.Duration
		if lines.catalogServiceID == nil {
			lines.catalogServiceID = &catalogID
		}
	}
	return lines, nil
}

func resolveServices(ctx context.Context, repo catalog.Repository, selections []ServiceSelection) (serviceLines, error) {
	if len(selections) == 0 {
		return serviceLines{}, pkgerrors.New(pkgerrors.CodeValidation, "select at least one service").
			WithReason(ReasonServiceSelectionRequired)
	}

	ids := make([]uuid.UUID, 0, len(selections))
	for _, selection := range selections {
		ids = append(ids, selection.ServiceID)
	}
	unique := catalog.UniqueIDs(ids)
	rows, err := repo.ActiveServices(ctx, unique)
	if err != nil {
		return serviceLines{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load services")
	}
	if len(rows) != len(unique) {
		return serviceLines{}, pkgerrors.New(pkgerrors.CodeNotFound, "service not found").
			WithReason(ReasonServiceNotFound)
	}

	byID := make(map[uuid.UUID]models.Service, len(rows))
	var vendorID *uuid.UUID
	for _, row := range rows {
		byID[row.ID] = row
		owner := row.VendorID
		if vendorID == nil {
			vendorID = &owner
			continue
		}
		if *vendorID != owner {
			return serviceLines{}, pkgerrors.New(pkgerrors.CodeValidation, "services belong to different vendors").
				WithReason(ReasonMixedVendorServices)
		}
	}

	lines := serviceLines{subtotal: decimal.Zero, payout: decimal.Zero, vendorID: vendorID}
	for _, selection := range selections {
		row := byID[selection.ServiceID]
		quantity := 1
		if selection.Quantity != nil && *selection.Quantity > 1 {
			quantity = *selection.Quantity
		}
		unit := row.Price
		if selection.Price != nil {
			unit = *selection.Price
		}
		price := roundMoney(unit.Mul(decimal.NewFromInt(int64(quantity))))
		serviceID := row.ID
		lines.items = append(lines.items, models.BookingItem{
			ServiceID: &serviceID,
			Name:      row.Name,
			Quantity:  quantity,
			Price:     price,
			BasePrice: row.Price,
			Duration:  row.Duration * quantity,
		})
		lines.subtotal = lines.subtotal.Add(price)
		lines.duration += row.Duration * quantity
	}
	return lines, nil
}

// resolveProducts merges repeated selections of one product by summing
// their quantities.
func resolveProducts(ctx context.Context, repo catalog.Repository, selections []ProductSelection) (productLines, error) {
	lines := productLines{subtotal: decimal.Zero, payout: decimal.Zero}
	if len(selections) == 0 {
		return lines, nil
	}

	quantities := make(map[uuid.UUID]int, len(selections))
	order := make([]uuid.UUID, 0, len(selections))
	for _, selection := range selections {
		quantity := selection.Quantity
		if quantity < 1 {
			quantity = 1
		}
		if _, ok := quantities[selection.ProductCatalogID]; !ok {
			order = append(order, selection.ProductCatalogID)
		}
		quantities[selection.ProductCatalogID] += quantity
	}

	rows, err := repo.ActiveProducts(ctx, order)
	if err != nil {
		return productLines{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(rows) != len(order) {
		return productLines{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
			WithReason(ReasonProductNotFound)
	}
	byID := make(map[uuid.UUID]models.ProductCatalog, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	for _, id := range order {
		row := byID[id]
		quantity := decimal.NewFromInt(int64(quantities[id]))
		line := models.BookingProduct{
			ProductCatalogID: row.ID,
			Name:             row.Name,
			Quantity:         quantities[id],
			UnitPrice:        row.UnitPrice,
			VendorPayout:     roundMoney(row.VendorPayout.Mul(quantity)),
		}
		lines.products = append(lines.products, line)
		lines.subtotal = lines.subtotal.Add(line.LineTotal())
		lines.payout = lines.payout.Add(line.VendorPayout)
	}
	return lines, nil
}

func roundMoney(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
