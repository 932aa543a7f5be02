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
)

// BookingHandler implements the booking gateway: create, list, fetch and
// cancel bookings on behalf of the authenticated customer.
type BookingHandler struct {
	notify notify.Publisher
}

func NewBookingHandler(p notify.Publisher) *BookingHandler {
	return &BookingHandler{notify: p}
}

type createBookingRequest struct {
	VehicleID       uint   `json:"vehicle_id" validate:"required"`
	ServiceCenterID uint   `json:"service_center_id" validate:"required"`
	PreferredDate   string `json:"preferred_date" validate:"required,datetime=2006-01-02"`
	PreferredTime   string `json:"preferred_time" validate:"required,datetime=15:04"`
	Remarks         string `json:"remarks"`
	ServiceIDs      []uint `json:"service_ids" validate:"required,min=1,unique,dive,required"`
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	userID := c.Locals("userID").(string)

	var booking models.Booking
	err := database.WithTx(func(tx *gorm.DB) error {
		// Vehicle must belong to the caller.
		var vehicle models.Vehicle
		if err := tx.Where("id = ? AND owner_id = ?", req.VehicleID, userID).
			First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.E(apperrors.Forbidden, "vehicle does not belong to caller")
			}
			return err
		}

		var center models.ServiceCenter
		if err := tx.First(&center, req.ServiceCenterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.E(apperrors.InvalidInput, "unknown service center")
			}
			return err
		}

		// Every selected catalog item must exist.
		var known int64
		if err := tx.Model(&models.Service{}).
			Where("id IN ?", req.ServiceIDs).Count(&known).Error; err != nil {
			return err
		}
		if known != int64(len(req.ServiceIDs)) {
			return apperrors.E(apperrors.InvalidInput, "invalid service selected")
		}

		booking = models.Booking{
			CustomerID:      userID,
			VehicleID:       req.VehicleID,
			ServiceCenterID: req.ServiceCenterID,
			PreferredDate:   req.PreferredDate,
			PreferredTime:   req.PreferredTime,
			Remarks:         req.Remarks,
			Status:          models.BookingPending,
		}
		for _, sid := range req.ServiceIDs {
			booking.Services = append(booking.Services, models.BookingService{ServiceID: sid})
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "booking created successfully",
		"booking_id": booking.ID,
	})
}

func (h *BookingHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)

	q := database.DB.
		Preload("Vehicle").Preload("ServiceCenter").Preload("Services.Service").
		Where("customer_id = ?", userID).
		Order("created_at DESC")

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			return apperrors.E(apperrors.InvalidInput, "unknown status filter")
		}
		q = q.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return err
	}
	return c.JSON(bookings)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var booking models.Booking
	err = database.DB.
		Preload("Vehicle").Preload("ServiceCenter").Preload("Services.Service").
		Where("id = ? AND customer_id = ?", id, userID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.E(apperrors.NotFound, "booking not found")
		}
		return err
	}
	return c.JSON(booking)
}

// Cancel hard-deletes a pending booking; an approved one with no job card yet
// is soft-cancelled. Once a job card exists the booking is on the completion
// path and cannot be cancelled.
func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var booking models.Booking
	var deleted bool
	err = database.WithTx(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND customer_id = ?", id, userID).
			First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.E(apperrors.NotFound, "booking not found")
			}
			return err
		}

		switch {
		case booking.Status == models.BookingPending:
			if err := tx.Where("booking_id = ?", booking.ID).
				Delete(&models.BookingService{}).Error; err != nil {
				return err
			}
			deleted = true
			return tx.Delete(&booking).Error

		case !booking.Status.CanTransition(models.BookingCancelled):
			return apperrors.E(apperrors.Conflict, "booking is already "+string(booking.Status))

		default:
			var jobCards int64
			if err := tx.Model(&models.JobCard{}).
				Where("booking_id = ?", booking.ID).Count(&jobCards).Error; err != nil {
				return err
			}
			if jobCards > 0 {
				return apperrors.E(apperrors.Conflict, "work has already started for this booking")
			}
			booking.Status = models.BookingCancelled
			return tx.Model(&booking).Update("status", models.BookingCancelled).Error
		}
	})
	if err != nil {
		return err
	}

	if !deleted {
		h.notify.Publish(booking.CustomerID, notify.BookingStatusEvent{
			BookingID: booking.ID,
			Status:    string(models.BookingCancelled),
		})
	}
	return c.JSON(fiber.Map{"message": "booking cancelled successfully"})
}
