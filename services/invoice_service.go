package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"tableside_server/lib"
	"tableside_server/structs"
	"tableside_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a read-only projection of an order for printing or email
type Invoice struct {
	StoreName     string          `json:"store_name"`
	Currency      string          `json:"currency"`
	OrderNumber   string          `json:"order_number"`
	IssuedAt      time.Time       `json:"issued_at"`
	Status        string          `json:"status"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	TableName     string          `json:"table_name"`
	Lines         []InvoiceLine   `json:"lines"`
	Total         decimal.Decimal `json:"total"`
}

type InvoiceLine struct {
	Name      string          `json:"name"`
	Notes     string          `json:"notes,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// TakeoutTableName labels invoices for orders without a table
const TakeoutTableName = "Takeout"

// GenerateInvoice projects an order into an invoice. It reads only the order's
// stored snapshot, never the current catalog.
func GenerateInvoice(order *tables.Order, tableName string, store *structs.StoreConfig) *Invoice {
	if order.IsTakeout() || tableName == "" {
		tableName = TakeoutTableName
	}

	invoice := &Invoice{
		StoreName:     store.Name,
		Currency:      store.Currency,
		OrderNumber:   order.OrderNumber,
		IssuedAt:      order.CreatedAt,
		Status:        string(order.Status),
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		TableName:     tableName,
		Lines:         make([]InvoiceLine, 0, len(order.Items)),
		Total:         order.Total,
	}

	for i := range order.Items {
		item := &order.Items[i]
		invoice.Lines = append(invoice.Lines, InvoiceLine{
			Name:      item.Name,
			Notes:     item.Notes,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}

	return invoice
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.StoreName}} - {{.OrderNumber}}</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 0 auto;">
	<h1>{{.StoreName}}</h1>
	<p>Order <strong>{{.OrderNumber}}</strong><br>
	{{.IssuedAt.Format "2006-01-02 15:04"}}<br>
	Table: {{.TableName}}</p>
	{{if .CustomerName}}<p>Customer: {{.CustomerName}}{{if .CustomerPhone}} ({{.CustomerPhone}}){{end}}</p>{{end}}
	<table style="width: 100%; border-collapse: collapse;">
		<thead><tr><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th><th align="right">Total</th></tr></thead>
		<tbody>
		{{range .Lines}}<tr>
			<td>{{.Name}}{{if .Notes}}<br><small>{{.Notes}}</small>{{end}}</td>
			<td align="right">{{.Quantity}}</td>
			<td align="right">{{money .UnitPrice}}</td>
			<td align="right">{{money .LineTotal}}</td>
		</tr>{{end}}
		</tbody>
		<tfoot><tr><td colspan="3" align="right"><strong>Total</strong></td><td align="right"><strong>{{.Currency}} {{money .Total}}</strong></td></tr></tfoot>
	</table>
</body>
</html>`))

// RenderInvoice renders the invoice as a standalone HTML document
func RenderInvoice(invoice *Invoice) ([]byte, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, invoice); err != nil {
		return nil, &lib.PresentationError{Sink: "invoice renderer", Err: err}
	}
	return buf.Bytes(), nil
}

type InvoiceService struct {
	logger *gecho.Logger
	cfg    *structs.Config
	orders OrderStore
	tables TableStore
	email  *EmailService
}

func NewInvoiceService(logger *gecho.Logger, cfg *structs.Config, orders OrderStore, tableStore TableStore, email *EmailService) *InvoiceService {
	return &InvoiceService{
		logger: logger,
		cfg:    cfg,
		orders: orders,
		tables: tableStore,
		email:  email,
	}
}

// GetInvoice builds the invoice for an order
func (is *InvoiceService) GetInvoice(ctx context.Context, orderId uuid.UUID) (*Invoice, error) {
	order, err := is.orders.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	var tableName string
	if order.TableId != nil {
		table, err := is.tables.GetTable(ctx, *order.TableId)
		if err != nil {
			// The invoice is still valid without the table label
			is.logger.Warn("Failed to resolve invoice table",
				gecho.Field("error", err),
				gecho.Field("table_id", *order.TableId))
			tableName = "Unknown table"
		} else {
			tableName = table.Name
		}
	}

	return GenerateInvoice(order, tableName, is.cfg.Store), nil
}

// RenderInvoiceHTML builds and renders the invoice for an order
func (is *InvoiceService) RenderInvoiceHTML(ctx context.Context, orderId uuid.UUID) ([]byte, error) {
	invoice, err := is.GetInvoice(ctx, orderId)
	if err != nil {
		return nil, err
	}
	return RenderInvoice(invoice)
}

// EmailInvoice renders the invoice and sends it to the given address
func (is *InvoiceService) EmailInvoice(ctx context.Context, orderId uuid.UUID, to string) error {
	invoice, err := is.GetInvoice(ctx, orderId)
	if err != nil {
		return err
	}

	body, err := RenderInvoice(invoice)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("%s receipt %s", invoice.StoreName, invoice.OrderNumber)
	if err := is.email.SendEmail([]string{to}, subject, string(body)); err != nil {
		return err
	}

	is.logger.Info("Invoice emailed", gecho.Field("order_number", invoice.OrderNumber))
	return nil
}
