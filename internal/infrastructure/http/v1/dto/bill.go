package dto

import (
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/billing/purchasebill"
	"stockbook/internal/domain/billing/salesbill"
)

// --- Sales bills ---

// SalesLineRequest is one line of a sales bill.
type SalesLineRequest struct {
	LotID    id.ID          `json:"lotId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`

	// UnitPrice overrides the lot's selling price when set.
	UnitPrice *types.Money `json:"unitPrice"`
}

// ChargeRequest is one extra charge on a bill.
type ChargeRequest struct {
	Label  string      `json:"label" binding:"required"`
	Amount types.Money `json:"amount"`
}

// SalesBillRequest carries the full content of a sales bill.
// POST creates from it; PUT replaces the bill with it wholesale.
type SalesBillRequest struct {
	ClientID     *id.ID           `json:"clientId"`
	CustomerName *string          `json:"customerName"`
	BillDate     time.Time        `json:"billDate"`
	Status       salesbill.Status `json:"status"`
	TaxRate      *types.Money     `json:"taxRate"`
	Notes        *string          `json:"notes"`

	Lines   []SalesLineRequest `json:"lines" binding:"required"`
	Charges []ChargeRequest    `json:"extraCharges"`
}

// ToInput converts the request to the service input.
func (r SalesBillRequest) ToInput() salesbill.BillInput {
	input := salesbill.BillInput{
		ClientID:     r.ClientID,
		CustomerName: r.CustomerName,
		BillDate:     r.BillDate,
		Status:       r.Status,
		TaxRate:      r.TaxRate,
		Notes:        r.Notes,
	}
	for _, l := range r.Lines {
		input.Lines = append(input.Lines, salesbill.LineInput{
			LotID:     l.LotID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	for _, c := range r.Charges {
		input.Charges = append(input.Charges, salesbill.ChargeInput{
			Label:  c.Label,
			Amount: c.Amount,
		})
	}
	return input
}

// SetStatusRequest changes a bill's payment status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- Purchase bills ---

// PurchaseLineRequest is one line of a purchase bill.
type PurchaseLineRequest struct {
	ItemID   id.ID          `json:"itemId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`

	// UnitPrice is the cost per unit paid to the supplier.
	UnitPrice types.Money `json:"unitPrice"`

	BatchNumber *string    `json:"batchNumber"`
	ExpiryDate  *time.Time `json:"expiryDate"`
}

// PurchaseBillRequest carries the full content of a purchase bill.
type PurchaseBillRequest struct {
	SupplierID         *id.ID              `json:"supplierId"`
	SupplierBillNumber *string             `json:"supplierBillNumber"`
	BillDate           time.Time           `json:"billDate"`
	Status             purchasebill.Status `json:"status"`
	TaxRate            *types.Money        `json:"taxRate"`
	Notes              *string             `json:"notes"`

	Lines   []PurchaseLineRequest `json:"lines" binding:"required"`
	Charges []ChargeRequest       `json:"extraCharges"`
}

// ToInput converts the request to the service input.
func (r PurchaseBillRequest) ToInput() purchasebill.BillInput {
	input := purchasebill.BillInput{
		SupplierID:         r.SupplierID,
		SupplierBillNumber: r.SupplierBillNumber,
		BillDate:           r.BillDate,
		Status:             r.Status,
		TaxRate:            r.TaxRate,
		Notes:              r.Notes,
	}
	for _, l := range r.Lines {
		input.Lines = append(input.Lines, purchasebill.LineInput{
			ItemID:      l.ItemID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
		})
	}
	for _, c := range r.Charges {
		input.Charges = append(input.Charges, purchasebill.ChargeInput{
			Label:  c.Label,
			Amount: c.Amount,
		})
	}
	return input
}
