package controllers

import (
	"errors"
	"time"

	"autocare-backend/apperrors"
	"autocare-backend/database"
	"autocare-backend/middlewares"
	"autocare-backend/models"
	"autocare-backend/notify"
	"autocare-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// JobCardHandler owns the job card ledgers (labor tasks, part consumption)
// and the status propagation paths that cascade job completion into the
// booking.
type JobCardHandler struct {
	notify notify.Publisher
}

func NewJobCardHandler(p notify.Publisher) *JobCardHandler {
	return &JobCardHandler{notify: p}
}

// loadJobCardForWriter fetches the job card and checks the caller may work
// it: the center's manager or the assigned mechanic. Foreign job cards look
// like they do not exist to managers; mechanics get an explicit refusal.
func loadJobCardForWriter(tx *gorm.DB, id uint, userID string, role models.Role) (*models.JobCard, error) {
	var jc models.JobCard
	if err := tx.First(&jc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.NotFound, "job card not found")
		}
		return nil, err
	}

	switch role {
	case models.RoleManager:
		var center models.ServiceCenter
		err := tx.Where("id = ? AND manager_id = ?", jc.ServiceCenterID, userID).
			First(&center).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.E(apperrors.NotFound, "job card not found")
			}
			return nil, err
		}
	case models.RoleMechanic:
		if jc.AssignedMechanic == nil || *jc.AssignedMechanic != userID {
			return nil, apperrors.E(apperrors.Forbidden, "not your job card")
		}
	default:
		return nil, apperrors.E(apperrors.Forbidden, "access denied")
	}
	return &jc, nil
}

// refreshCostTotals recomputes both running totals from their ledgers inside
// the caller's transaction. One shared accumulation path for tasks and parts
// keeps the totals from drifting against the ledger sums.
func refreshCostTotals(tx *gorm.DB, jobCardID uint) error {
	return tx.Model(&models.JobCard{}).Where("id = ?", jobCardID).
		Updates(map[string]any{
			"total_labor_cost": gorm.Expr(
				"(SELECT COALESCE(SUM(total_cost), 0) FROM tasks WHERE job_card_id = ?)", jobCardID),
			"total_parts_cost": gorm.Expr(
				"(SELECT COALESCE(SUM(total_price), 0) FROM part_usages WHERE job_card_id = ?)", jobCardID),
		}).Error
}

func taskProgress(tx *gorm.DB, jobCardID uint) (models.TaskProgress, error) {
	var p models.TaskProgress
	err := tx.Model(&models.Task{}).
		Select("COUNT(*) AS total, COUNT(*) FILTER (WHERE completed) AS completed").
		Where("job_card_id = ?", jobCardID).
		Scan(&p).Error
	return p, err
}

type addTaskRequest struct {
	Description string  `json:"description" validate:"required"`
	Hours       float64 `json:"hours" validate:"required,gt=0"`
	LaborRate   float64 `json:"labor_rate" validate:"required,gt=0"`
}

// AddTask appends a labor task and folds its cost into the running labor
// total, in one transaction.
func (h *JobCardHandler) AddTask(c *fiber.Ctx) error {
	var req addTaskRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	userID := c.Locals("userID").(string)
	role := models.Role(c.Locals("role").(string))

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var task models.Task
	err = database.WithTx(func(tx *gorm.DB) error {
		jc, err := loadJobCardForWriter(tx, id, userID, role)
		if err != nil {
			return err
		}
		if jc.Status == models.JobCompleted {
			return apperrors.E(apperrors.Conflict, "job card is already completed")
		}

		task = models.Task{
			JobCardID:   jc.ID,
			Description: req.Description,
			Hours:       req.Hours,
			LaborRate:   req.LaborRate,
			TotalCost:   utils.Round2(req.Hours * req.LaborRate),
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return refreshCostTotals(tx, jc.ID)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "task added successfully",
		"task_id":    task.ID,
		"total_cost": task.TotalCost,
	})
}

// CompleteTask flips the task's completed flag and, when it was the last
// open task, moves the job card to ready_for_completion. The progress event
// fires after commit.
func (h *JobCardHandler) CompleteTask(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	role := models.Role(c.Locals("role").(string))

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	taskID, err := paramID(c, "taskId")
	if err != nil {
		return err
	}

	var jc *models.JobCard
	var progress models.TaskProgress
	err = database.WithTx(func(tx *gorm.DB) error {
		var err error
		jc, err = loadJobCardForWriter(tx, id, userID, role)
		if err != nil {
			return err
		}
		if jc.Status == models.JobCompleted {
			return apperrors.E(apperrors.Conflict, "job card is already completed")
		}

		res := tx.Model(&models.Task{}).
			Where("id = ? AND job_card_id = ?", taskID, jc.ID).
			Update("completed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.E(apperrors.NotFound, "task not found")
		}

		progress, err = taskProgress(tx, jc.ID)
		if err != nil {
			return err
		}

		if progress.AllDone() && jc.Status.CanTransition(models.JobReadyForCompletion) {
			// Conditional on the status the check ran against: a concurrent
			// transition wins and this cascade backs off.
			res := tx.Model(&models.JobCard{}).
				Where("id = ? AND status = ?", jc.ID, jc.Status).
				Update("status", models.JobReadyForCompletion)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				jc.Status = models.JobReadyForCompletion
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.notify.Publish(jc.CustomerID, notify.TaskProgressEvent{
		BookingID: jc.BookingID,
		JobCardID: jc.ID,
		Completed: progress.Completed,
		Total:     progress.Total,
	})

	return c.JSON(fiber.Map{
		"message":             "task completed",
		"completed":           progress.Completed,
		"total":               progress.Total,
		"all_tasks_completed": progress.AllDone(),
	})
}

type addPartRequest struct {
	PartID   uint `json:"part_id" validate:"required"`
	Quantity int  `json:"quantity" validate:"required,gt=0"`
}

// AddPart consumes inventory stock for the job card. The decrement is
// conditional on sufficient stock and checked by affected-row count, so two
// concurrent requests can never both take the last unit; the usage insert
// and the parts total share the decrement's transaction.
func (h *JobCardHandler) AddPart(c *fiber.Ctx) error {
	var req addPartRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	userID := c.Locals("userID").(string)
	role := models.Role(c.Locals("role").(string))

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var usage models.PartUsage
	err = database.WithTx(func(tx *gorm.DB) error {
		jc, err := loadJobCardForWriter(tx, id, userID, role)
		if err != nil {
			return err
		}
		if jc.Status == models.JobCompleted {
			return apperrors.E(apperrors.Conflict, "job card is already completed")
		}

		var record models.InventoryRecord
		err = tx.Preload("Part").
			Where("service_center_id = ? AND part_id = ?", jc.ServiceCenterID, req.PartID).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.E(apperrors.NotFound, "part not available in inventory")
			}
			return err
		}

		res := tx.Model(&models.InventoryRecord{}).
			Where("service_center_id = ? AND part_id = ? AND quantity >= ?",
				jc.ServiceCenterID, req.PartID, req.Quantity).
			Update("quantity", gorm.Expr("quantity - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.E(apperrors.Conflict, "insufficient stock")
		}

		usage = models.PartUsage{
			JobCardID:    jc.ID,
			PartID:       req.PartID,
			QuantityUsed: req.Quantity,
			UnitPrice:    record.Part.UnitPrice,
			TotalPrice:   utils.Round2(record.Part.UnitPrice * float64(req.Quantity)),
		}
		if err := tx.Create(&usage).Error; err != nil {
			return err
		}
		return refreshCostTotals(tx, jc.ID)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "part added successfully",
		"usage_id":    usage.ID,
		"total_price": usage.TotalPrice,
	})
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus performs a manual status transition checked against the
// transition table. Entering completed sets end_time once and cascades the
// booking in the same transaction; the notification fires after commit.
func (h *JobCardHandler) UpdateStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	target, err := models.ParseJobStatus(req.Status)
	if err != nil {
		return apperrors.E(apperrors.InvalidInput, "invalid status")
	}
	userID := c.Locals("userID").(string)
	role := models.Role(c.Locals("role").(string))

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var jc *models.JobCard
	var completed bool
	err = database.WithTx(func(tx *gorm.DB) error {
		var err error
		jc, err = loadJobCardForWriter(tx, id, userID, role)
		if err != nil {
			return err
		}

		if !jc.Status.CanTransition(target) {
			return apperrors.E(apperrors.Conflict,
				"cannot transition from "+string(jc.Status)+" to "+string(target))
		}

		now := time.Now()
		updates := map[string]any{"status": target}
		if target == models.JobInProgress && jc.StartTime == nil {
			updates["start_time"] = now
		}
		if target == models.JobCompleted {
			if jc.EndTime == nil {
				updates["end_time"] = now
			}
			completed = true
		}
		// Conditional on the status the transition was checked against, so a
		// concurrent transition is refused instead of overwriting the newer
		// state (a terminal state must never regress).
		res := tx.Model(&models.JobCard{}).
			Where("id = ? AND status = ?", jc.ID, jc.Status).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.E(apperrors.Conflict, "job card status changed concurrently")
		}

		if completed {
			return tx.Model(&models.Booking{}).
				Where("id = ? AND status <> ?", jc.BookingID, models.BookingCompleted).
				Update("status", models.BookingCompleted).Error
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Exactly one event per completion cascade, not one per constituent write.
	if completed {
		h.notify.Publish(jc.CustomerID, notify.BookingStatusEvent{
			BookingID: jc.BookingID,
			Status:    string(models.BookingCompleted),
		})
	}

	return c.JSON(fiber.Map{"message": "status updated successfully"})
}

type saveNotesRequest struct {
	Notes string `json:"notes" validate:"required"`
}

func (h *JobCardHandler) SaveNotes(c *fiber.Ctx) error {
	var req saveNotesRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	userID := c.Locals("userID").(string)
	role := models.Role(c.Locals("role").(string))

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	err = database.WithTx(func(tx *gorm.DB) error {
		jc, err := loadJobCardForWriter(tx, id, userID, role)
		if err != nil {
			return err
		}
		return tx.Model(jc).Update("notes", req.Notes).Error
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "notes saved successfully"})
}

// Get returns the job card with its ledgers.
func (h *JobCardHandler) Get(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	role := models.Role(c.Locals("role").(string))

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := loadJobCardForWriter(database.DB, id, userID, role); err != nil {
		return err
	}

	var jc models.JobCard
	if err := database.DB.
		Preload("Tasks").Preload("Parts.Part").
		Preload("Booking.Vehicle").Preload("Booking.Services.Service").
		First(&jc, "id = ?", id).Error; err != nil {
		return err
	}
	return c.JSON(jc)
}

// AvailableParts lists the in-stock parts of the job card's center.
func (h *JobCardHandler) AvailableParts(c *fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	role := models.Role(c.Locals("role").(string))

	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	jc, err := loadJobCardForWriter(database.DB, id, userID, role)
	if err != nil {
		return err
	}

	var records []models.InventoryRecord
	if err := database.DB.Preload("Part").
		Where("service_center_id = ? AND quantity > 0", jc.ServiceCenterID).
		Find(&records).Error; err != nil {
		return err
	}
	return c.JSON(records)
}
