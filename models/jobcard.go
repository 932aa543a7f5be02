package models

import "time"

// JobCard is the operational work order created when a booking is approved.
// Exactly one exists per approved booking. Its cost totals always equal the
// aggregate of its tasks and part usages; both are recomputed inside the
// transaction that appends the underlying row.
type JobCard struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	BookingID        uint      `json:"booking_id" gorm:"uniqueIndex;not null"`
	Booking          Booking   `json:"-" gorm:"foreignKey:BookingID"`
	ServiceCenterID  uint      `json:"service_center_id" gorm:"not null;index"`
	VehicleID        uint      `json:"vehicle_id" gorm:"not null"`
	CustomerID       string    `json:"-" gorm:"not null;index"`
	AssignedMechanic *string   `json:"assigned_mechanic" gorm:"index"`
	Status           JobStatus `json:"status" gorm:"type:varchar(30);not null;index"`

	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	TotalLaborCost float64 `json:"total_labor_cost" gorm:"type:numeric(12,2)"`
	TotalPartsCost float64 `json:"total_parts_cost" gorm:"type:numeric(12,2)"`

	Notes string `json:"notes"`

	Tasks []Task      `json:"tasks,omitempty" gorm:"foreignKey:JobCardID"`
	Parts []PartUsage `json:"parts,omitempty" gorm:"foreignKey:JobCardID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Task is a billable unit of labor. Rows are append-only; flipping the
// completed flag is the only mutation.
type Task struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	JobCardID   uint    `json:"-" gorm:"index;not null"`
	Description string  `json:"description" gorm:"not null"`
	Hours       float64 `json:"hours" gorm:"not null"`
	LaborRate   float64 `json:"labor_rate" gorm:"type:numeric(12,2)"`
	TotalCost   float64 `json:"total_cost" gorm:"type:numeric(12,2)"`
	Completed   bool    `json:"completed"`

	CreatedAt time.Time `json:"created_at"`
}

// PartUsage is a billable consumption of inventory stock. Append-only; the
// unit price is snapshotted at time of use so later catalog edits never
// change a job card's history.
type PartUsage struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	JobCardID    uint    `json:"-" gorm:"index;not null"`
	PartID       uint    `json:"part_id" gorm:"not null"`
	Part         Part    `json:"part" gorm:"foreignKey:PartID"`
	QuantityUsed int     `json:"quantity_used" gorm:"not null"`
	UnitPrice    float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	TotalPrice   float64 `json:"total_price" gorm:"type:numeric(12,2)"`

	CreatedAt time.Time `json:"created_at"`
}

// TaskProgress is the {completed, total} pair driving the automatic
// ready_for_completion cascade and the task-progress notification.
type TaskProgress struct {
	Completed int64 `json:"completed"`
	Total     int64 `json:"total"`
}

// AllDone is true only when every task is completed and at least one task
// exists. A job card with zero tasks never auto-transitions.
func (p TaskProgress) AllDone() bool {
	return p.Total > 0 && p.Completed == p.Total
}
