package models

import (
	"fmt"
	"math/rand"
	"time"

	"autocare-backend/apperrors"
	"autocare-backend/utils"

	"gorm.io/datatypes"
)

// Invoice is the finalized financial summary of a completed job card.
// Immutable once created except for the paid flag; the unique index on
// job_card_id enforces the one-invoice-per-job-card invariant in the store.
type Invoice struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	JobCardID     uint    `json:"job_card_id" gorm:"uniqueIndex;not null"`
	JobCard       JobCard `json:"-" gorm:"foreignKey:JobCardID"`
	InvoiceNumber string  `json:"invoice_number" gorm:"unique;not null"`

	LaborTotal  float64 `json:"labor_total" gorm:"type:numeric(12,2)"`
	PartsTotal  float64 `json:"parts_total" gorm:"type:numeric(12,2)"`
	Tax         float64 `json:"tax" gorm:"type:numeric(12,2)"`
	Discount    float64 `json:"discount" gorm:"type:numeric(12,2)"`
	TotalAmount float64 `json:"total_amount" gorm:"type:numeric(12,2)"`

	// Breakdown freezes the computation inputs (percentages, subtotal) as
	// issued, so the row stays self-describing.
	Breakdown datatypes.JSON `json:"breakdown" gorm:"type:jsonb"`

	Status   InvoiceStatus `json:"status" gorm:"type:varchar(10);not null"`
	IssuedAt time.Time     `json:"issued_at"`
}

// InvoiceAmounts is the computed money block of an invoice.
type InvoiceAmounts struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// ComputeInvoiceAmounts derives tax and discount amounts from the job card's
// accumulated costs. Percentages must be non-negative and the resulting
// total must not be negative.
func ComputeInvoiceAmounts(laborTotal, partsTotal, taxPercent, discountPercent float64) (InvoiceAmounts, error) {
	if taxPercent < 0 || discountPercent < 0 {
		return InvoiceAmounts{}, apperrors.E(apperrors.InvalidInput, "tax and discount percentages must be non-negative")
	}

	subtotal := laborTotal + partsTotal
	tax := utils.Round2(subtotal * taxPercent / 100)
	discount := utils.Round2(subtotal * discountPercent / 100)
	total := utils.Round2(subtotal + tax - discount)

	if total < 0 {
		return InvoiceAmounts{}, apperrors.E(apperrors.InvalidInput, "total amount cannot be negative")
	}

	return InvoiceAmounts{
		Subtotal: utils.Round2(subtotal),
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}, nil
}

// NewInvoiceNumber derives an invoice number from the issue time plus a
// random suffix, so two invoices issued in the same millisecond for
// different job cards cannot collide on the number's unique column.
func NewInvoiceNumber(t time.Time) string {
	return fmt.Sprintf("INV-%d-%08X", t.UnixMilli(), rand.Uint32())
}
