package models

// ServiceCenter is the workshop a booking is addressed to. One manager runs
// exactly one center.
type ServiceCenter struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Name          string `json:"name" gorm:"not null"`
	Address       string `json:"address" gorm:"not null"`
	City          string `json:"city" gorm:"not null"`
	ContactNumber string `json:"contact_number"`
	ManagerID     string `json:"-" gorm:"uniqueIndex;not null"`
	Manager       User   `json:"-" gorm:"foreignKey:ManagerID;references:Id"`
}

// Service is a bookable catalog item (oil change, brake inspection, ...).
type Service struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price" gorm:"type:numeric(12,2)"`
}
