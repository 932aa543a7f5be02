package models

import "time"

// Booking is a customer's request for service on a vehicle at a center.
// It is created pending and only the approval service and the status
// propagation paths mutate it afterwards. Pending bookings may be hard
// deleted by their owner; any other state survives as a row.
type Booking struct {
	ID              uint          `json:"id" gorm:"primaryKey"`
	CustomerID      string        `json:"-" gorm:"not null;index"`
	Customer        User          `json:"-" gorm:"foreignKey:CustomerID;references:Id"`
	VehicleID       uint          `json:"vehicle_id" gorm:"not null"`
	Vehicle         Vehicle       `json:"vehicle" gorm:"foreignKey:VehicleID"`
	ServiceCenterID uint          `json:"service_center_id" gorm:"not null;index"`
	ServiceCenter   ServiceCenter `json:"service_center" gorm:"foreignKey:ServiceCenterID"`

	PreferredDate string `json:"preferred_date" gorm:"size:10;not null"` // YYYY-MM-DD
	PreferredTime string `json:"preferred_time" gorm:"size:5;not null"`  // HH:MM
	Remarks       string `json:"remarks"`

	Status     BookingStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ApprovedBy *string       `json:"-"`

	Services []BookingService `json:"services" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingService attaches one selected catalog item to a booking.
type BookingService struct {
	ID        uint    `json:"-" gorm:"primaryKey"`
	BookingID uint    `json:"-" gorm:"index;not null"`
	ServiceID uint    `json:"service_id" gorm:"not null"`
	Service   Service `json:"service" gorm:"foreignKey:ServiceID"`
}
