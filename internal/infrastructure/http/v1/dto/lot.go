package dto

import (
	"time"

	"stockbook/internal/core/id"
	"stockbook/internal/core/types"
	"stockbook/internal/domain/ledger"
)

// CreateLotRequest enters an inventory lot by hand, outside a purchase bill.
type CreateLotRequest struct {
	ItemID       id.ID          `json:"itemId" binding:"required"`
	SupplierID   *id.ID         `json:"supplierId"`
	BatchNumber  *string        `json:"batchNumber"`
	Quantity     types.Quantity `json:"quantity" binding:"required"`
	CostPrice    types.Money    `json:"costPrice"`
	SellingPrice types.Money    `json:"sellingPrice"`
	PurchaseDate time.Time      `json:"purchaseDate"`
	ExpiryDate   *time.Time     `json:"expiryDate"`
	Location     *string        `json:"location"`
	Notes        *string        `json:"notes"`
}

func (r CreateLotRequest) ToInput() ledger.CreateLotInput {
	return ledger.CreateLotInput{
		ItemID:       r.ItemID,
		SupplierID:   r.SupplierID,
		BatchNumber:  r.BatchNumber,
		Quantity:     r.Quantity,
		CostPrice:    r.CostPrice,
		SellingPrice: r.SellingPrice,
		PurchaseDate: r.PurchaseDate,
		ExpiryDate:   r.ExpiryDate,
		Location:     r.Location,
		Notes:        r.Notes,
	}
}
