package models

type Vehicle struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	OwnerID    string `json:"-" gorm:"not null;index"`
	Owner      User   `json:"-" gorm:"foreignKey:OwnerID;references:Id"`
	Make       string `json:"make" gorm:"not null"`
	Model      string `json:"model" gorm:"not null"`
	Year       int    `json:"year"`
	VIN        string `json:"vin" gorm:"column:vin;uniqueIndex"`
	EngineType string `json:"engine_type"`
	Mileage    int    `json:"mileage"`
}
