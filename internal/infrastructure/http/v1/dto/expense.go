package dto

import (
	"time"

	"stockbook/internal/core/types"
	"stockbook/internal/domain/finance/expense"
)

// ExpenseRequest records or replaces a manual expense. Bill-linked
// expenses are managed by their purchase bill and rejected here.
type ExpenseRequest struct {
	Category    string      `json:"category" binding:"required"`
	Amount      types.Money `json:"amount" binding:"required"`
	Description string      `json:"description"`
	SpentAt     time.Time   `json:"spentAt"`
}

func (r ExpenseRequest) ToCreateInput() expense.CreateInput {
	return expense.CreateInput{
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		SpentAt:     r.SpentAt,
	}
}

func (r ExpenseRequest) ToUpdateInput() expense.UpdateInput {
	return expense.UpdateInput{
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
		SpentAt:     r.SpentAt,
	}
}
