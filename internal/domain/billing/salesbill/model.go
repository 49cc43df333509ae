// Package salesbill provides the sales bill document. A sales bill sells
// stock out of inventory lots; committing one decrements lot availability,
// editing or deleting one restores it first.
package salesbill

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/billing/totals"
)

// Status of a sales bill.
type Status string

const (
	StatusDue  Status = "due"
	StatusPaid Status = "paid"
)

// SalesBill represents a sales invoice.
type SalesBill struct {
	ID      id.ID `db:"id" json:"id"`
	ActorID id.ID `db:"actor_id" json:"-"`

	// Number like INV-20260115-003, unique per actor.
	Number string `db:"number" json:"number"`

	// ClientID references the clients catalog; walk-in sales leave it nil
	// and may carry a free-text customer name instead.
	ClientID     *id.ID  `db:"client_id" json:"clientId,omitempty"`
	CustomerName *string `db:"customer_name" json:"customerName,omitempty"`

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

// Line is one sold position, drawn from a specific lot.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	BillID id.ID `db:"bill_id" json:"-"`
	LineNo int   `db:"line_no" json:"lineNo"`

	LotID  id.ID `db:"lot_id" json:"lotId"`
	ItemID id.ID `db:"item_id" json:"itemId"`

	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice types.Money    `db:"unit_price" json:"unitPrice"`
	LineTotal types.Money    `db:"line_total" json:"lineTotal"`
}

// ExtraCharge is a flat amount added to a bill (delivery, handling).
type ExtraCharge struct {
	ChargeID id.ID  `db:"charge_id" json:"chargeId"`
	BillID   id.ID  `db:"bill_id" json:"-"`
	Label    string `db:"label" json:"label"`

	Amount types.Money `db:"amount" json:"amount"`
}

// NewSalesBill creates a sales bill with defaults: status due, today's
// date, the standard sales tax rate.
func NewSalesBill(actorID id.ID) *SalesBill {
	now := time.Now().UTC()
	return &SalesBill{
		ID:        id.New(),
		ActorID:   actorID,
		Status:    StatusDue,
		BillDate:  now,
		TaxRate:   totals.DefaultSalesTaxRate,
		CreatedAt: now,
		UpdatedAt: now,
		Lines:     make([]Line, 0),
		Charges:   make([]ExtraCharge, 0),
	}
}

// AddLine appends a sold position and recalculates totals.
func (b *SalesBill) AddLine(lotID, itemID id.ID, quantity types.Quantity, unitPrice types.Money) {
	b.Lines = append(b.Lines, Line{
		LineID:    id.New(),
		BillID:    b.ID,
		LineNo:    len(b.Lines) + 1,
		LotID:     lotID,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: totals.LineTotal(totals.Line{Quantity: quantity, UnitPrice: unitPrice}),
	})
	b.RecalculateTotals()
}

// AddCharge appends an extra charge and recalculates totals.
func (b *SalesBill) AddCharge(label string, amount types.Money) {
	b.Charges = append(b.Charges, ExtraCharge{
		ChargeID: id.New(),
		BillID:   b.ID,
		Label:    label,
		Amount:   amount,
	})
	b.RecalculateTotals()
}

// RecalculateTotals derives subtotal, tax and total from the table parts.
func (b *SalesBill) RecalculateTotals() {
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

// Requirements returns the lot draws of this bill, one per line.
func (b *SalesBill) Requirements() []LotDraw {
	draws := make([]LotDraw, len(b.Lines))
	for i, l := range b.Lines {
		draws[i] = LotDraw{LotID: l.LotID, Quantity: l.Quantity}
	}
	return draws
}

// LotDraw pairs a lot with the quantity a bill takes from it.
type LotDraw struct {
	LotID    id.ID
	Quantity types.Quantity
}

// Validate implements domain.Validatable.
func (b *SalesBill) Validate(ctx context.Context) error {
	if id.IsNil(b.ActorID) {
		return apperror.NewValidation("bill actor is required").WithDetail("field", "actorId")
	}
	if b.Status != StatusDue && b.Status != StatusPaid {
		return apperror.NewValidation("invalid bill status").
			WithDetail("field", "status").
			WithDetail("value", string(b.Status))
	}
	// A bill is sold to a registered client or a named walk-in customer.
	if b.ClientID == nil && (b.CustomerName == nil || *b.CustomerName == "") {
		return apperror.NewValidation("client or customer name is required").
			WithDetail("field", "clientId")
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
		if id.IsNil(l.LotID) {
			return apperror.NewValidation("lot is required").
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
