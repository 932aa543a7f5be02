package controllers

import (
	"errors"
	"fmt"
	"time"

	"autocare-backend/apperrors"
	"autocare-backend/database"
	"autocare-backend/middlewares"
	"autocare-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryHandler exposes the manager's view of center stock: listings,
// low-stock alerts, catalog/stock upserts and the usage log. Consumption
// itself goes through the job card parts path.
type InventoryHandler struct{}

func NewInventoryHandler() *InventoryHandler {
	return &InventoryHandler{}
}

func managerCenter(tx *gorm.DB, managerID string) (*models.ServiceCenter, error) {
	var center models.ServiceCenter
	if err := tx.Where("manager_id = ?", managerID).First(&center).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.E(apperrors.NotFound, "service center not found")
		}
		return nil, err
	}
	return &center, nil
}

func (h *InventoryHandler) List(c *fiber.Ctx) error {
	center, err := managerCenter(database.DB, c.Locals("userID").(string))
	if err != nil {
		return err
	}

	var records []models.InventoryRecord
	if err := database.DB.Preload("Part").
		Where("service_center_id = ?", center.ID).
		Joins("JOIN parts ON parts.id = inventory_records.part_id").
		Order("parts.name").
		Find(&records).Error; err != nil {
		return err
	}
	return c.JSON(records)
}

func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	center, err := managerCenter(database.DB, c.Locals("userID").(string))
	if err != nil {
		return err
	}

	var records []models.InventoryRecord
	if err := database.DB.Preload("Part").
		Where("service_center_id = ? AND quantity <= reorder_level", center.ID).
		Find(&records).Error; err != nil {
		return err
	}
	return c.JSON(records)
}

type upsertInventoryRequest struct {
	PartID       *uint    `json:"part_id"`
	PartCode     string   `json:"part_code"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	UnitPrice    *float64 `json:"unit_price" validate:"omitempty,gte=0"`
	Quantity     *int     `json:"quantity" validate:"required,gte=0"`
	ReorderLevel int      `json:"reorder_level" validate:"gte=0"`
	Location     string   `json:"location"`
}

// Upsert creates a catalog part if needed and sets the center's stock row
// for it, mirroring an ON CONFLICT DO UPDATE on (service_center, part).
func (h *InventoryHandler) Upsert(c *fiber.Ctx) error {
	var req upsertInventoryRequest
	if err := middlewares.BindAndValidate(c, &req); err != nil {
		return err
	}
	if req.PartID == nil && (req.Name == "" || req.UnitPrice == nil) {
		return apperrors.E(apperrors.InvalidInput, "part name and unit price are required for a new part")
	}

	var partID uint
	err := database.WithTx(func(tx *gorm.DB) error {
		center, err := managerCenter(tx, c.Locals("userID").(string))
		if err != nil {
			return err
		}

		if req.PartID == nil {
			code := req.PartCode
			if code == "" {
				code = fmt.Sprintf("P-%d", time.Now().UnixMilli())
			}
			part := models.Part{
				PartCode:  code,
				Name:      req.Name,
				Category:  req.Category,
				UnitPrice: *req.UnitPrice,
			}
			if err := tx.Create(&part).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperrors.E(apperrors.Conflict, "part code already exists")
				}
				return err
			}
			partID = part.ID
		} else {
			var part models.Part
			if err := tx.First(&part, *req.PartID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.E(apperrors.NotFound, "part not found")
				}
				return err
			}
			updates := map[string]any{}
			if req.Name != "" {
				updates["name"] = req.Name
			}
			if req.Category != "" {
				updates["category"] = req.Category
			}
			if req.UnitPrice != nil {
				updates["unit_price"] = *req.UnitPrice
			}
			if len(updates) > 0 {
				if err := tx.Model(&part).Updates(updates).Error; err != nil {
					return err
				}
			}
			partID = part.ID
		}

		record := models.InventoryRecord{
			ServiceCenterID: center.ID,
			PartID:          partID,
			Quantity:        *req.Quantity,
			ReorderLevel:    req.ReorderLevel,
			Location:        req.Location,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "service_center_id"}, {Name: "part_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":      *req.Quantity,
				"reorder_level": req.ReorderLevel,
				"location":      req.Location,
			}),
		}).Create(&record).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "part and inventory saved successfully",
		"part_id": partID,
	})
}

// UsageLogs returns the center's part consumption history, newest first.
func (h *InventoryHandler) UsageLogs(c *fiber.Ctx) error {
	center, err := managerCenter(database.DB, c.Locals("userID").(string))
	if err != nil {
		return err
	}

	type usageLog struct {
		PartName     string    `json:"part_name"`
		QuantityUsed int       `json:"quantity_used"`
		UnitPrice    float64   `json:"unit_price"`
		TotalPrice   float64   `json:"total_price"`
		JobCardID    uint      `json:"job_card_id"`
		CreatedAt    time.Time `json:"created_at"`
	}

	var logs []usageLog
	err = database.DB.Table("part_usages").
		Select(`parts.name AS part_name, part_usages.quantity_used,
			part_usages.unit_price, part_usages.total_price,
			part_usages.job_card_id, part_usages.created_at`).
		Joins("JOIN parts ON parts.id = part_usages.part_id").
		Joins("JOIN job_cards ON job_cards.id = part_usages.job_card_id").
		Where("job_cards.service_center_id = ?", center.ID).
		Order("part_usages.created_at DESC").
		Scan(&logs).Error
	if err != nil {
		return err
	}
	return c.JSON(logs)
}
