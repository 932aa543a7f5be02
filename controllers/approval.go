package controllers

import (
	"errors"

	"autocare-backend/apperrors"
	"autocare-backend/database"
	"autocare-backend/middlewares"
	"autocare-backend/models"
	"autocare-backend/notify"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovalHandler turns pending bookings into job cards (or rejects them).
// All writes of an approval happen in one transaction: a booking marked
// approved without its job card would violate the 1:1 invariant.
type ApprovalHandler struct {
	notify notify.Publisher
}

func NewApprovalHandler(p notify.Publisher) *ApprovalHandler {
	return &ApprovalHandler{notify: p}
}

type approveBookingRequest struct {
	MechanicID *string `json:"mechanic_id"`
}

func (h *ApprovalHandler) Approve(c *fiber.Ctx) error {
	managerID := c.Locals("userID").(string)
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req approveBookingRequest
	if len(c.Body()) > 0 {
		if err := middlewares.BindAndValidate(c, &req); err != nil {
			return err
		}
	}

	var booking models.Booking
	var jobCard models.JobCard
	err = database.WithTx(func(tx *gorm.DB) error {
		// Pending and addressed to this manager's center, or it does not
		// exist as far as the caller is concerned.
		err := tx.
			Joins("JOIN service_centers ON service_centers.id = bookings.service_center_id").
			Where("bookings.id = ? AND service_centers.manager_id = ? AND bookings.status = ?",
				id, managerID, models.BookingPending).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.E(apperrors.NotFound, "booking not found")
			}
			return err
		}

		if req.MechanicID != nil {
			var mechanic models.User
			if err := tx.Where("id = ? AND role = ?", *req.MechanicID, models.RoleMechanic).
				First(&mechanic).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.E(apperrors.InvalidInput, "unknown mechanic")
				}
				return err
			}
		}

		if err := tx.Model(&booking).Updates(map[string]any{
			"status":      models.BookingApproved,
			"approved_by": managerID,
		}).Error; err != nil {
			return err
		}

		jobCard = models.JobCard{
			BookingID:        booking.ID,
			ServiceCenterID:  booking.ServiceCenterID,
			VehicleID:        booking.VehicleID,
			CustomerID:       booking.CustomerID,
			AssignedMechanic: req.MechanicID,
			Status:           models.JobOpen,
		}
		if err := tx.Create(&jobCard).Error; err != nil {
			return err
		}

		if req.MechanicID != nil {
			avail := models.MechanicAvailability{
				MechanicID: *req.MechanicID,
				Status:     models.MechanicBusy,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "mechanic_id"}},
				DoUpdates: clause.Assignments(map[string]any{"status": models.MechanicBusy}),
			}).Create(&avail).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.notify.Publish(booking.CustomerID, notify.BookingStatusEvent{
		BookingID: booking.ID,
		Status:    string(models.BookingApproved),
	})

	return c.JSON(fiber.Map{
		"message":     "booking approved & job card created",
		"job_card_id": jobCard.ID,
	})
}

func (h *ApprovalHandler) Reject(c *fiber.Ctx) error {
	managerID := c.Locals("userID").(string)
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var booking models.Booking
	err = database.WithTx(func(tx *gorm.DB) error {
		err := tx.
			Joins("JOIN service_centers ON service_centers.id = bookings.service_center_id").
			Where("bookings.id = ? AND service_centers.manager_id = ? AND bookings.status = ?",
				id, managerID, models.BookingPending).
			First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.E(apperrors.NotFound, "booking not found")
			}
			return err
		}
		return tx.Model(&booking).Update("status", models.BookingRejected).Error
	})
	if err != nil {
		return err
	}

	h.notify.Publish(booking.CustomerID, notify.BookingStatusEvent{
		BookingID: booking.ID,
		Status:    string(models.BookingRejected),
	})

	return c.JSON(fiber.Map{"message": "booking rejected"})
}

// PendingBookings is the manager's approval queue.
func (h *ApprovalHandler) PendingBookings(c *fiber.Ctx) error {
	managerID := c.Locals("userID").(string)

	var bookings []models.Booking
	err := database.DB.
		Preload("Customer").Preload("Vehicle").Preload("Services.Service").
		Joins("JOIN service_centers ON service_centers.id = bookings.service_center_id").
		Where("service_centers.manager_id = ? AND bookings.status = ?", managerID, models.BookingPending).
		Order("bookings.created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return err
	}
	return c.JSON(bookings)
}

// Mechanics lists the mechanics with their availability flag so the manager
// can pick an assignee.
func (h *ApprovalHandler) Mechanics(c *fiber.Ctx) error {
	type mechanicRow struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Availability string `json:"availability_status"`
	}

	var rows []mechanicRow
	err := database.DB.Table("users").
		Select("users.id, users.name, COALESCE(mechanic_availabilities.status, ?) AS availability", models.MechanicAvailable).
		Joins("LEFT JOIN mechanic_availabilities ON mechanic_availabilities.mechanic_id = users.id").
		Where("users.role = ?", models.RoleMechanic).
		Order("users.name").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	return c.JSON(rows)
}
