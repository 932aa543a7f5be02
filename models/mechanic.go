package models

import "time"

// MechanicAvailability is the advisory busy/available flag flipped when a
// mechanic is assigned to a job card. Upserted, never deleted.
type MechanicAvailability struct {
	ID         uint               `json:"-" gorm:"primaryKey"`
	MechanicID string             `json:"mechanic_id" gorm:"uniqueIndex;not null"`
	Mechanic   User               `json:"-" gorm:"foreignKey:MechanicID;references:Id"`
	Status     AvailabilityStatus `json:"status" gorm:"type:varchar(20);not null"`

	UpdatedAt time.Time `json:"updated_at"`
}
