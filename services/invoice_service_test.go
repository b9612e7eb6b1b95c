package services

import (
	"context"
	"errors"
	"strings"
	"tableside_server/lib"
	"tableside_server/structs/tables"
	"testing"
	"time"

	"github.com/google/uuid"
)

func invoiceOrder(tableId *uuid.UUID) tables.Order {
	id := uuid.New()
	return tables.Order{
		Id:            id,
		OrderNumber:   "BT-260314-ABCD",
		TableId:       tableId,
		CustomerName:  "Ada",
		CustomerPhone: "0612345678",
		Status:        tables.OrderStatusServed,
		Total:         dec("21.97"),
		CreatedAt:     time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC),
		Items: []tables.OrderItem{
			{OrderId: id, Name: "Burger", UnitPrice: dec("7.99"), Quantity: 2},
			{OrderId: id, Name: "Fries", UnitPrice: dec("5.99"), Quantity: 1, Notes: "extra salt"},
		},
	}
}

func TestGenerateInvoice(t *testing.T) {
	cfg := testConfig()
	tableId := uuid.New()

	tests := []struct {
		name      string
		tableId   *uuid.UUID
		tableName string
		want      string
	}{
		{name: "dine in", tableId: &tableId, tableName: "T4", want: "T4"},
		{name: "takeout", tableId: nil, tableName: "", want: TakeoutTableName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := invoiceOrder(tt.tableId)
			invoice := GenerateInvoice(&order, tt.tableName, cfg.Store)

			if invoice.TableName != tt.want {
				t.Errorf("table name = %q, want %q", invoice.TableName, tt.want)
			}
			if invoice.StoreName != "Bistro Test" || invoice.Currency != "EUR" {
				t.Errorf("store details = %q %q", invoice.StoreName, invoice.Currency)
			}
			if len(invoice.Lines) != 2 || !invoice.Lines[0].LineTotal.Equal(dec("15.98")) {
				t.Errorf("unexpected lines %+v", invoice.Lines)
			}
			if !invoice.Total.Equal(dec("21.97")) {
				t.Errorf("total = %s", invoice.Total)
			}
		})
	}
}

func TestRenderInvoice(t *testing.T) {
	order := invoiceOrder(nil)
	order.Items[0].Name = "<script>alert(1)</script>"
	invoice := GenerateInvoice(&order, "", testConfig().Store)

	html, err := RenderInvoice(invoice)
	if err != nil {
		t.Fatalf("RenderInvoice() error = %v", err)
	}
	body := string(html)

	for _, want := range []string{"BT-260314-ABCD", "EUR 21.97", "15.98", "extra salt", "Takeout", "2026-03-14 19:30"} {
		if !strings.Contains(body, want) {
			t.Errorf("rendered invoice is missing %q", want)
		}
	}
	if strings.Contains(body, "<script>") {
		t.Errorf("line names must be escaped")
	}
}

func TestEmailInvoice_NoApiKey(t *testing.T) {
	cfg := testConfig()
	orders := newFakeOrderStore(nil)
	tableStore := newFakeTableStore()
	table := tableStore.addTable("T4", tables.TableStatusOccupied)
	order := invoiceOrder(&table.Id)
	orders.put(order)

	service := NewInvoiceService(testLogger(), cfg, orders, tableStore, NewEmailService(testLogger(), cfg))

	err := service.EmailInvoice(context.Background(), order.Id, "ada@example.com")

	var pe *lib.PresentationError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PresentationError, got %v", err)
	}
	if pe.Sink != "email" {
		t.Errorf("sink = %q", pe.Sink)
	}

	stored, _ := orders.GetOrder(context.Background(), order.Id)
	if stored.Status != tables.OrderStatusServed {
		t.Errorf("a failed delivery must not touch the order")
	}

	invoice, err := service.GetInvoice(context.Background(), order.Id)
	if err != nil {
		t.Fatalf("GetInvoice() error = %v", err)
	}
	if invoice.TableName != "T4" {
		t.Errorf("table name = %q", invoice.TableName)
	}
}

func TestGetInvoice_UnknownOrder(t *testing.T) {
	cfg := testConfig()
	service := NewInvoiceService(testLogger(), cfg, newFakeOrderStore(nil), newFakeTableStore(), NewEmailService(testLogger(), cfg))

	if _, err := service.GetInvoice(context.Background(), uuid.New()); !errors.Is(err, lib.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
