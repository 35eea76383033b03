package invoices

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"time"

	"github.com/glowcall/glowcall-backend/internal/finance"
	"github.com/glowcall/glowcall-backend/pkg/db/models"
	"github.com/glowcall/glowcall-backend/pkg/enums"
	pkgerrors "github.com/glowcall/glowcall-backend/pkg/errors"
)

// Document is the read model handed to a Renderer. It is decoded from the
// persisted snapshots only.
type Document struct {
	IssuerName    string
	InvoiceNumber string
	Status        enums.InvoiceStatus
	IssuedAt      time.Time
	Customer      CustomerSnapshot
	Items         ItemsSnapshot
	Breakdown     finance.Breakdown
}

// Renderer turns an invoice document into bytes plus a content type.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, string, error)
}

func documentFrom(invoice *models.Invoice, issuer string) (Document, error) {
	doc := Document{
		IssuerName:    issuer,
		InvoiceNumber: invoice.InvoiceNumber,
		Status:        invoice.Status,
		IssuedAt:      invoice.IssuedAt,
	}
	if err := json.Unmarshal(invoice.CustomerSnapshot, &doc.Customer); err != nil {
		return Document{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode customer snapshot")
	}
	if err := json.Unmarshal(invoice.ItemsSnapshot, &doc.Items); err != nil {
		return Document{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode items snapshot")
	}
	if err := json.Unmarshal(invoice.FinancialBreakdown, &doc.Breakdown); err != nil {
		return Document{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode financial breakdown")
	}
	return doc, nil
}

const htmlContentType = "text/html; charset=utf-8"

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.UTC().Format("2006-01-02") },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Invoice {{.InvoiceNumber}}</title></head>
<body>
<h1>{{if .IssuerName}}{{.IssuerName}} {{end}}Invoice {{.InvoiceNumber}}</h1>
<p>Issued {{date .IssuedAt}} · {{.Status}}</p>
<h2>Billed to</h2>
<p>{{.Customer.Name}}<br>{{.Customer.Email}}{{with .Customer.Phone}}<br>{{.}}{{end}}{{with .Customer.Address}}<br>{{.}}{{end}}</p>
<table>
<thead><tr><th>Item</th><th>Qty</th><th>Amount</th></tr></thead>
<tbody>
{{range .Items.Services}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.Price}}</td></tr>
{{end}}{{range .Items.Products}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.LineTotal}}</td></tr>
{{end}}</tbody>
</table>
<table>
<tr><td>Subtotal</td><td>{{.Breakdown.BaseAmount.StringFixed 2}}</td></tr>
<tr><td>VAT</td><td>{{.Breakdown.VatAmount.StringFixed 2}}</td></tr>
<tr><td>Total</td><td>{{.Breakdown.TotalAmount.StringFixed 2}}</td></tr>
</table>
</body>
</html>
`))

// HTMLRenderer renders invoices as standalone HTML pages.
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer returns the default renderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: invoiceTemplate}
}

func (r *HTMLRenderer) Render(_ context.Context, doc Document) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, doc); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), htmlContentType, nil
}
