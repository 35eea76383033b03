package invoices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/glowcall/glowcall-backend/internal/address"
	"github.com/glowcall/glowcall-backend/internal/bookingevents"
	"github.com/glowcall/glowcall-backend/internal/bookings"
	"github.com/glowcall/glowcall-backend/internal/customers"
	"github.com/glowcall/glowcall-backend/internal/finance"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
	"github.com/glowcall/glowcall-backend/pkg/logger"
	"github.com/glowcall/glowcall-backend/pkg/metrics"
	"github.com/glowcall/glowcall-backend/pkg/outbox"
	"github.com/glowcall/glowcall-backend/pkg/outbox/payloads"
	"github.com/glowcall/glowcall-backend/pkg/types"
)

const defaultNumberPrefix = "INV"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service issues and renders booking invoices.
type Service interface {
	Generate(ctx context.Context, bookingID uuid.UUID) (*models.Invoice, error)
	Get(ctx context.Context, bookingID uuid.UUID) (*Details, error)
	RenderDocument(ctx context.Context, bookingID uuid.UUID) ([]byte, string, error)
}

// Details is an issued invoice with its payout, if any.
type Details struct {
	Invoice *models.Invoice `json:"invoice"`
	Payout  *models.Payout  `json:"payout,omitempty"`
}

// ServiceParams wires the invoice generator. Renderer defaults to HTML;
// Metrics and Logger are optional.
type ServiceParams struct {
	Repo         Repository
	Bookings     bookings.Repository
	Customers    customers.Repository
	Addresses    address.Repository
	Engine       *finance.Engine
	Tx           txRunner
	Events       bookingevents.Recorder
	Outbox       outboxPublisher
	Renderer     Renderer
	NumberPrefix string
	IssuerName   string
	Metrics      *metrics.BookingMetrics
	Logger       *logger.Logger
}

type service struct {
	repo      Repository
	bookings  bookings.Repository
	customers customers.Repository
	addresses address.Repository
	engine    *finance.Engine
	tx        txRunner
	events    bookingevents.Recorder
	outbox    outboxPublisher
	renderer  Renderer
	prefix    string
	issuer    string
	metrics   *metrics.BookingMetrics
	logg      *logger.Logger
	now       func() time.Time
	newNumber func(prefix string, now time.Time) string
}

// NewService builds the invoice generator.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invoice repository required")
	case params.Bookings == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "booking repository required")
	case params.Customers == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "customer repository required")
	case params.Addresses == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address repository required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	case params.Events == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "booking event recorder required")
	case params.Outbox == nil:
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}

	engine := params.Engine
	if engine == nil {
		engine = finance.NewEngine(finance.DefaultRates())
	}
	renderer := params.Renderer
	if renderer == nil {
		renderer = NewHTMLRenderer()
	}
	prefix := strings.TrimSpace(params.NumberPrefix)
	if prefix == "" {
		prefix = defaultNumberPrefix
	}

	return &service{
		repo:      params.Repo,
		bookings:  params.Bookings,
		customers: params.Customers,
		addresses: params.Addresses,
		engine:    engine,
		tx:        params.Tx,
		events:    params.Events,
		outbox:    params.Outbox,
		renderer:  renderer,
		prefix:    prefix,
		issuer:    params.IssuerName,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       time.Now,
		newNumber: invoiceNumber,
	}, nil
}

// invoiceNumber renders PREFIX-YYYYMMDD-XXXXXXXX with eight upper hex digits
// taken from a random uuid.
func invoiceNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix)
}

// Generate issues the invoice of a completed booking. An existing invoice is
// returned unchanged.
func (s *service) Generate(ctx context.Context, bookingID uuid.UUID) (*models.Invoice, error) {
	existing, err := s.findExisting(ctx, bookingID)
	if err != nil || existing != nil {
		return existing, err
	}

	var issued *models.Invoice
	var payout *models.Payout
	fresh := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.repo.WithTx(tx).FindByBooking(ctx, bookingID)
		if err == nil {
			issued = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
		}
		issued, payout, err = s.issue(ctx, tx, bookingID)
		fresh = err == nil
		return err
	})
	if err != nil {
		if isDuplicateInvoice(err) {
			winner, findErr := s.repo.FindByBooking(ctx, bookingID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load concurrent invoice")
			}
			return winner, nil
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invoice")
	}
	if !fresh {
		return issued, nil
	}

	s.metrics.IncInvoice()
	if s.logg != nil {
		fields := map[string]any{
			"booking_id":     bookingID.String(),
			"invoice_id":     issued.ID.String(),
			"invoice_number": issued.InvoiceNumber,
		}
		if payout != nil {
			fields["payout_provider"] = payout.ProviderType
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "invoice generated")
	}
	return issued, nil
}

func (s *service) findExisting(ctx context.Context, bookingID uuid.UUID) (*models.Invoice, error) {
	existing, err := s.repo.FindByBooking(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	return existing, nil
}

// issue writes the invoice, payout and audit rows. Raw insert errors are
// returned unwrapped so the caller can detect a concurrent winner.
func (s *service) issue(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Invoice, *models.Payout, error) {
	repo := s.repo.WithTx(tx)
	booking, err := s.bookings.WithTx(tx).FindWithLines(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.Status != enums.BookingStatusCompleted {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only completed bookings can be invoiced").
			WithDetails(map[string]any{
				"current_status": booking.Status,
				"target_status":  enums.BookingStatusCompleted,
			})
	}

	customer, err := s.customers.WithTx(tx).FindByID(ctx, booking.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	var addr *models.Address
	if booking.AddressID != nil {
		addr, err = s.addresses.WithTx(tx).FindByID(ctx, *booking.AddressID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
		}
	}

	breakdown := s.engine.CalculateFromTotal(booking.Total)
	customerJSON, err := json.Marshal(snapshotCustomer(customer, addr))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode customer snapshot")
	}
	itemsJSON, err := json.Marshal(snapshotItems(booking))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode items snapshot")
	}
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode financial breakdown")
	}

	now := s.now().UTC()
	invoice := &models.Invoice{
		ID:                 uuid.New(),
		BookingID:          booking.ID,
		InvoiceNumber:      s.newNumber(s.prefix, now),
		Status:             enums.InvoiceStatusIssued,
		CustomerSnapshot:   datatypes.JSON(customerJSON),
		ItemsSnapshot:      datatypes.JSON(itemsJSON),
		FinancialBreakdown: datatypes.JSON(breakdownJSON),
		IssuedAt:           now,
		CreatedAt:          now,
	}
	if err := repo.Create(ctx, invoice); err != nil {
		return nil, nil, err
	}

	payout := payoutFor(booking, invoice, breakdown, now)
	if payout != nil {
		if err := repo.CreatePayout(ctx, payout); err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payout")
		}
	}

	eventData := map[string]any{
		"invoice_id":     invoice.ID.String(),
		"invoice_number": invoice.InvoiceNumber,
		"total":          money(breakdown.TotalAmount),
	}
	if err := s.events.Record(ctx, tx, booking.ID, enums.BookingEventInvoiceGenerated, types.SystemActor(), eventData); err != nil {
		return nil, nil, err
	}

	data := payloads.InvoiceGeneratedEvent{
		InvoiceID:     invoice.ID,
		BookingID:     booking.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		TotalAmount:   money(breakdown.TotalAmount),
	}
	if payout != nil {
		data.PayoutID = &payout.ID
		data.PayoutAmount = money(payout.Amount)
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventInvoiceGenerated,
		AggregateType: enums.AggregateInvoice,
		AggregateID:   invoice.ID,
		Version:       1,
		Actor:         outbox.ActorFrom(types.SystemActor()),
		OccurredAt:    now,
		Data:          data,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit invoice generated event")
	}
	return invoice, payout, nil
}

// payoutFor credits the vendor when one is assigned, else the beautician.
func payoutFor(booking *models.Booking, invoice *models.Invoice, breakdown finance.Breakdown, now time.Time) *models.Payout {
	var providerType enums.PayoutProviderType
	var providerID uuid.UUID
	switch {
	case booking.VendorID != nil:
		providerType, providerID = enums.PayoutProviderVendor, *booking.VendorID
	case booking.EmployeeID != nil:
		providerType, providerID = enums.PayoutProviderBeautician, *booking.EmployeeID
	default:
		return nil
	}
	return &models.Payout{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		InvoiceID:    invoice.ID,
		ProviderType: providerType,
		ProviderID:   providerID,
		Amount:       breakdown.VendorPayout,
		Status:       enums.PayoutStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *service) Get(ctx context.Context, bookingID uuid.UUID) (*Details, error) {
	invoice, err := s.findExisting(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, notGenerated()
	}
	details := &Details{Invoice: invoice}
	payout, err := s.repo.FindPayoutByBooking(ctx, bookingID)
	switch {
	case err == nil:
		details.Payout = payout
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payout")
	}
	return details, nil
}

// RenderDocument renders the persisted invoice. It never issues one.
func (s *service) RenderDocument(ctx context.Context, bookingID uuid.UUID) ([]byte, string, error) {
	invoice, err := s.findExisting(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if invoice == nil {
		return nil, "", notGenerated()
	}
	doc, err := documentFrom(invoice, s.issuer)
	if err != nil {
		return nil, "", err
	}
	body, contentType, err := s.renderer.Render(ctx, doc)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice document")
	}
	return body, contentType, nil
}

func notGenerated() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not generated; generate it first")
}
