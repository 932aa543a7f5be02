package models

import "time"

// Part is the global parts catalog shared by all centers. unit_price here is
// the current list price; consumption snapshots it into PartUsage.
type Part struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	PartCode  string  `json:"part_code" gorm:"uniqueIndex;not null"`
	Name      string  `json:"name" gorm:"not null"`
	Category  string  `json:"category"`
	UnitPrice float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
}

// InventoryRecord is the per-center stock level of a catalog part, keyed by
// the (service_center, part) pair. Quantity never goes negative: the only
// decrement is the conditional UPDATE paired with a PartUsage insert, and a
// CHECK constraint backs it up at the store.
type InventoryRecord struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	ServiceCenterID uint   `json:"service_center_id" gorm:"not null;uniqueIndex:idx_inventory_center_part,priority:1"`
	PartID          uint   `json:"part_id" gorm:"not null;uniqueIndex:idx_inventory_center_part,priority:2"`
	Part            Part   `json:"part" gorm:"foreignKey:PartID"`
	Quantity        int    `json:"quantity" gorm:"not null;default:0"`
	ReorderLevel    int    `json:"reorder_level" gorm:"not null;default:0"`
	Location        string `json:"location"`

	UpdatedAt time.Time `json:"updated_at"`
}
