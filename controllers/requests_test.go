package controllers

import (
	"testing"

	"autocare-backend/middlewares"

	"github.com/stretchr/testify/assert"
)

func TestCreateBookingRequestValidation(t *testing.T) {
	valid := createBookingRequest{
		VehicleID:       1,
		ServiceCenterID: 2,
		PreferredDate:   "2026-09-01",
		PreferredTime:   "10:30",
		ServiceIDs:      []uint{1, 2},
	}
	assert.NoError(t, middlewares.ValidateStruct(valid))

	noServices := valid
	noServices.ServiceIDs = nil
	assert.Error(t, middlewares.ValidateStruct(noServices))

	emptyServices := valid
	emptyServices.ServiceIDs = []uint{}
	assert.Error(t, middlewares.ValidateStruct(emptyServices))

	dupServices := valid
	dupServices.ServiceIDs = []uint{3, 3}
	assert.Error(t, middlewares.ValidateStruct(dupServices))

	badDate := valid
	badDate.PreferredDate = "01-09-2026"
	assert.Error(t, middlewares.ValidateStruct(badDate))

	badTime := valid
	badTime.PreferredTime = "10:30pm"
	assert.Error(t, middlewares.ValidateStruct(badTime))
}

func TestAddTaskRequestValidation(t *testing.T) {
	valid := addTaskRequest{Description: "replace brake pads", Hours: 2, LaborRate: 500}
	assert.NoError(t, middlewares.ValidateStruct(valid))

	zeroHours := valid
	zeroHours.Hours = 0
	assert.Error(t, middlewares.ValidateStruct(zeroHours))

	negativeRate := valid
	negativeRate.LaborRate = -1
	assert.Error(t, middlewares.ValidateStruct(negativeRate))

	noDescription := valid
	noDescription.Description = ""
	assert.Error(t, middlewares.ValidateStruct(noDescription))
}

func TestAddPartRequestValidation(t *testing.T) {
	assert.NoError(t, middlewares.ValidateStruct(addPartRequest{PartID: 1, Quantity: 2}))
	assert.Error(t, middlewares.ValidateStruct(addPartRequest{PartID: 1, Quantity: 0}))
	assert.Error(t, middlewares.ValidateStruct(addPartRequest{PartID: 1, Quantity: -3}))
	assert.Error(t, middlewares.ValidateStruct(addPartRequest{Quantity: 2}))
}

func TestGenerateInvoiceRequestValidation(t *testing.T) {
	assert.NoError(t, middlewares.ValidateStruct(generateInvoiceRequest{TaxPercent: 18, DiscountPercent: 10}))
	assert.NoError(t, middlewares.ValidateStruct(generateInvoiceRequest{}))
	assert.Error(t, middlewares.ValidateStruct(generateInvoiceRequest{TaxPercent: -1}))
	assert.Error(t, middlewares.ValidateStruct(generateInvoiceRequest{DiscountPercent: -0.5}))
}

func TestUpsertInventoryRequestValidation(t *testing.T) {
	qty := 5
	price := 99.5
	assert.NoError(t, middlewares.ValidateStruct(upsertInventoryRequest{
		Name: "Air Filter", UnitPrice: &price, Quantity: &qty,
	}))

	assert.Error(t, middlewares.ValidateStruct(upsertInventoryRequest{Name: "Air Filter", UnitPrice: &price}))

	negative := -2
	assert.Error(t, middlewares.ValidateStruct(upsertInventoryRequest{Name: "Air Filter", UnitPrice: &price, Quantity: &negative}))
}
