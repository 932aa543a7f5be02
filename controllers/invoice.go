package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"autocare-backend/apperrors"
	"autocare-backend/database"
	"autocare-backend/middlewares"
	"autocare-backend/models"
	"autocare-backend/notify"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InvoiceHandler finalizes job cards into immutable invoices and flips the
// paid flag afterwards.
type InvoiceHandler struct {
	notify notify.Publisher
}

func NewInvoiceHandler(p notify.Publisher) *InvoiceHandler {
	return &InvoiceHandler{notify: p}
}

type generateInvoiceRequest struct {
	TaxPercent      float64 `json:"tax_percent" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0"`
}

// Generate computes the invoice from the job card's accumulated costs,
// persists it and completes job card + booking, all in one transaction.
// A second call on an invoiced job card hits the unique index on
// job_card_id and surfaces as Conflict without a new row.
func (h *InvoiceHandler) Generate(c *fiber.Ctx) error {
	var req generateInvoiceRequest
	if len(c.Body()) > 0 {
		if err := middlewares.BindAndValidate(c, &req); err != nil {
			return err
		}
	}
	managerID := c.Locals("userID").(string)
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var jc *models.JobCard
	var invoice models.Invoice
	var amounts models.InvoiceAmounts
	err = database.WithTx(func(tx *gorm.DB) error {
		var err error
		jc, err = loadJobCardForWriter(tx, id, managerID, models.RoleManager)
		if err != nil {
			return err
		}

		amounts, err = models.ComputeInvoiceAmounts(
			jc.TotalLaborCost, jc.TotalPartsCost, req.TaxPercent, req.DiscountPercent)
		if err != nil {
			return err
		}

		now := time.Now()
		breakdown, err := json.Marshal(fiber.Map{
			"subtotal":         amounts.Subtotal,
			"tax_percent":      req.TaxPercent,
			"discount_percent": req.DiscountPercent,
		})
		if err != nil {
			return err
		}

		invoice = models.Invoice{
			JobCardID:     jc.ID,
			InvoiceNumber: models.NewInvoiceNumber(now),
			LaborTotal:    jc.TotalLaborCost,
			PartsTotal:    jc.TotalPartsCost,
			Tax:           amounts.Tax,
			Discount:      amounts.Discount,
			TotalAmount:   amounts.Total,
			Breakdown:     datatypes.JSON(breakdown),
			Status:        models.InvoiceUnpaid,
			IssuedAt:      now,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.E(apperrors.Conflict, "invoice already exists for this job card")
			}
			return err
		}

		// Finalize. Re-entry on an already-completed job card is tolerated;
		// the writes below are no-ops then.
		updates := map[string]any{"status": models.JobCompleted}
		if jc.EndTime == nil {
			updates["end_time"] = now
		}
		if err := tx.Model(jc).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Booking{}).
			Where("id = ? AND status <> ?", jc.BookingID, models.BookingCompleted).
			Update("status", models.BookingCompleted).Error
	})
	if err != nil {
		return err
	}

	h.notify.Publish(jc.CustomerID, notify.BookingStatusEvent{
		BookingID: jc.BookingID,
		Status:    string(models.BookingCompleted),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"invoice_id":       invoice.ID,
		"invoice_number":   invoice.InvoiceNumber,
		"subtotal":         amounts.Subtotal,
		"tax_percent":      req.TaxPercent,
		"discount_percent": req.DiscountPercent,
		"tax":              amounts.Tax,
		"discount":         amounts.Discount,
		"total_amount":     amounts.Total,
	})
}

// MarkPaid flips unpaid -> paid for an invoice of the manager's center.
func (h *InvoiceHandler) MarkPaid(c *fiber.Ctx) error {
	managerID := c.Locals("userID").(string)
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	err = database.WithTx(func(tx *gorm.DB) error {
		var invoice models.Invoice
		err := tx.
			Joins("JOIN job_cards ON job_cards.id = invoices.job_card_id").
			Joins("JOIN service_centers ON service_centers.id = job_cards.service_center_id").
			Where("invoices.id = ? AND service_centers.manager_id = ?", id, managerID).
			First(&invoice).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.E(apperrors.NotFound, "invoice not found")
			}
			return err
		}
		if invoice.Status == models.InvoicePaid {
			return apperrors.E(apperrors.Conflict, "invoice already paid")
		}
		return tx.Model(&invoice).Update("status", models.InvoicePaid).Error
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "invoice marked as paid successfully"})
}

// List returns the invoices of the manager's center, newest first.
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	managerID := c.Locals("userID").(string)

	var invoices []models.Invoice
	err := database.DB.
		Joins("JOIN job_cards ON job_cards.id = invoices.job_card_id").
		Joins("JOIN service_centers ON service_centers.id = job_cards.service_center_id").
		Where("service_centers.manager_id = ?", managerID).
		Order("invoices.issued_at DESC").
		Find(&invoices).Error
	if err != nil {
		return err
	}
	return c.JSON(invoices)
}

func (h *InvoiceHandler) Get(c *fiber.Ctx) error {
	managerID := c.Locals("userID").(string)
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var invoice models.Invoice
	err = database.DB.
		Joins("JOIN job_cards ON job_cards.id = invoices.job_card_id").
		Joins("JOIN service_centers ON service_centers.id = job_cards.service_center_id").
		Where("invoices.id = ? AND service_centers.manager_id = ?", id, managerID).
		First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.NotFound, "invoice not found")
		}
		return err
	}
	return c.JSON(invoice)
}
