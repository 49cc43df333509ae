// Package purchasebill provides the purchase bill document. Committing a
// purchase bill creates one inventory lot per line and records the bill
// total as a purchase expense.
package purchasebill

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/billing/totals"
)

// Status of a purchase bill.
type Status string

const (
	StatusPending   Status = "pending"
	StatusReceived  Status = "received"
	StatusCancelled Status = "cancelled"
)

// PurchaseBill represents a supplier purchase.
type PurchaseBill struct {
	ID      id.ID `db:"id" json:"id"`
	ActorID id.ID `db:"actor_id" json:"-"`

	// Number like PUR-20260115-001, unique per actor.
	Number string `db:"number" json:"number"`

	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// SupplierBillNumber is the number on the supplier's own document.
	SupplierBillNumber *string `db:"supplier_bill_number" json:"supplierBillNumber,omitempty"`

	Status   Status      `db:"status" json:"status"`
	BillDate time.Time   `db:"bill_date" json:"billDate"`
	TaxRate  types.Money `db:"tax_rate" json:"taxRate"`

	Subtotal          types.Money `db:"subtotal" json:"subtotal"`
	ExtraChargesTotal types.Money `db:"extra_charges_total" json:"extraChargesTotal"`
	Tax               types.Money `db:"tax" json:"tax"`
	Total             types.Money `db:"total" json:"total"`

	Notes *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Table parts.
	Lines   []Line        `db:"-" json:"lines"`
	Charges []ExtraCharge `db:"-" json:"extraCharges"`
}

// Line is one purchased position. Each line becomes an inventory lot.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	BillID id.ID `db:"bill_id" json:"-"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ItemID id.ID `db:"item_id" json:"itemId"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	LineTotal types.Money    `db:"line_total" json:"lineTotal"`

	BatchNumber *string    `db:"batch_number" json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`
}

// ExtraCharge is a flat amount added to a bill (freight, customs).
type ExtraCharge struct {
	ChargeID id.ID  `db:"charge_id" json:"chargeId"`
	BillID   id.ID  `db:"bill_id" json:"-"`
	Label    string `db:"label" json:"label"`

	Amount types.Money `db:"amount" json:"amount"`
}

// NewPurchaseBill creates a purchase bill with defaults: status received,
// today's date, zero tax.
func NewPurchaseBill(actorID id.ID) *PurchaseBill {
	now := time.Now().UTC()
	return &PurchaseBill{
		ID:        id.New(),
		ActorID:   actorID,
		Status:    StatusReceived,
		BillDate:  now,
		TaxRate:   totals.DefaultPurchaseTaxRate,
		CreatedAt: now,
		UpdatedAt: now,
		Lines:     make([]Line, 0),
		Charges:   make([]ExtraCharge, 0),
	}
}

// AddLine appends a purchased position and recalculates totals.
func (b *PurchaseBill) AddLine(itemID id.ID, quantity types.Quantity, unitPrice types.Money) *Line {
	b.Lines = append(b.Lines, Line{
		LineID:    id.New(),
		BillID:    b.ID,
		LineNo:    len(b.Lines) + 1,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: totals.LineTotal(totals.Line{Quantity: quantity, UnitPrice: unitPrice}),
	})
	b.RecalculateTotals()
	return &b.Lines[len(b.Lines)-1]
}

// AddCharge appends an extra charge and recalculates totals.
func (b *PurchaseBill) AddCharge(label string, amount types.Money) {
	b.Charges = append(b.Charges, ExtraCharge{
		ChargeID: id.New(),
		BillID:   b.ID,
		Label:    label,
		Amount:   amount,
	})
	b.RecalculateTotals()
}

// RecalculateTotals derives subtotal, tax and total from the table parts.
func (b *PurchaseBill) RecalculateTotals() {
	lines := make([]totals.Line, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = totals.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	charges := make([]types.Money, len(b.Charges))
	for i, c := range b.Charges {
		charges[i] = c.Amount
	}

	breakdown := totals.Compute(lines, charges, b.TaxRate)
	b.Subtotal = breakdown.Subtotal
	b.ExtraChargesTotal = breakdown.ExtraChargesTotal
	b.Tax = breakdown.Tax
	b.Total = breakdown.Total
}

// Validate implements domain.Validatable.
func (b *PurchaseBill) Validate(ctx context.Context) error {
	if id.IsNil(b.ActorID) {
		return apperror.NewValidation("bill actor is required").WithDetail("field", "actorId")
	}
	if b.Status != StatusPending && b.Status != StatusReceived && b.Status != StatusCancelled {
		return apperror.NewValidation("invalid bill status").
			WithDetail("field", "status").
			WithDetail("value", string(b.Status))
	}
	if b.TaxRate.IsNegative() || b.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewValidation("tax rate must be between 0 and 100").
			WithDetail("field", "taxRate")
	}
	if len(b.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, l := range b.Lines {
		if id.IsNil(l.ItemID) {
			return apperror.NewValidation("item is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !l.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	for i, c := range b.Charges {
		if c.Label == "" {
			return apperror.NewValidation("charge label is required").
				WithDetail("field", "extraCharges").
				WithDetail("chargeNo", i+1)
		}
		if c.Amount.IsNegative() {
			return apperror.NewValidation("charge amount cannot be negative").
				WithDetail("field", "extraCharges").
				WithDetail("chargeNo", i+1)
		}
	}

	return nil
}
