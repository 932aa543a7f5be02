package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"autocare-backend/database"
	"autocare-backend/middlewares"
	"autocare-backend/models"
	"autocare-backend/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// These tests exercise the store-backed invariants (conditional stock
// decrement, ledger sums, conditional status writes) against a real
// Postgres. They are skipped unless TEST_DATABASE_DSN points at a disposable
// database.

func openTestDB(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	database.DB = db
	database.AutoMigrate()
	require.NoError(t, database.MigrateConstraints())

	// Children before parents so the FK constraints allow the wipe.
	for _, table := range []string{
		"invoices", "part_usages", "tasks", "job_cards",
		"booking_services", "bookings", "inventory_records", "parts",
		"mechanic_availabilities", "vehicles", "service_centers", "users",
	} {
		require.NoError(t, database.DB.Exec("DELETE FROM "+table).Error)
	}
}

type workshopFixture struct {
	manager models.User
	jobCard models.JobCard
	part    models.Part
}

func seedWorkshop(t *testing.T, stock int) workshopFixture {
	t.Helper()

	manager := models.User{Name: "Meera", Email: "manager@test.local", Password: []byte("x"), Role: models.RoleManager}
	customer := models.User{Name: "Asha", Email: "customer@test.local", Password: []byte("x"), Role: models.RoleCustomer}
	require.NoError(t, database.DB.Create(&manager).Error)
	require.NoError(t, database.DB.Create(&customer).Error)

	center := models.ServiceCenter{Name: "Test Works", Address: "1 Lane", City: "Pune", ManagerID: manager.Id}
	require.NoError(t, database.DB.Create(&center).Error)

	vehicle := models.Vehicle{OwnerID: customer.Id, Make: "Maruti", Model: "Swift", VIN: "TEST00000000001"}
	require.NoError(t, database.DB.Create(&vehicle).Error)

	booking := models.Booking{
		CustomerID: customer.Id, VehicleID: vehicle.ID, ServiceCenterID: center.ID,
		PreferredDate: "2026-09-01", PreferredTime: "10:00", Status: models.BookingApproved,
	}
	require.NoError(t, database.DB.Create(&booking).Error)

	jobCard := models.JobCard{
		BookingID: booking.ID, ServiceCenterID: center.ID, VehicleID: vehicle.ID,
		CustomerID: customer.Id, Status: models.JobOpen,
	}
	require.NoError(t, database.DB.Create(&jobCard).Error)

	part := models.Part{PartCode: "P-TST-001", Name: "Test Part", UnitPrice: 100}
	require.NoError(t, database.DB.Create(&part).Error)
	record := models.InventoryRecord{ServiceCenterID: center.ID, PartID: part.ID, Quantity: stock}
	require.NoError(t, database.DB.Create(&record).Error)

	return workshopFixture{manager: manager, jobCard: jobCard, part: part}
}

// workshopApp wires the job card handlers behind stubbed auth locals.
func workshopApp(userID string, role models.Role) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		c.Locals("role", string(role))
		return c.Next()
	})

	h := NewJobCardHandler(notify.NopPublisher{})
	app.Post("/job-cards/:id/tasks", h.AddTask)
	app.Post("/job-cards/:id/parts", h.AddPart)
	app.Patch("/job-cards/:id/tasks/:taskId/complete", h.CompleteTask)
	app.Patch("/job-cards/:id/status", h.UpdateStatus)
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestConcurrentAddPartLastUnit(t *testing.T) {
	openTestDB(t)
	fx := seedWorkshop(t, 1)
	app := workshopApp(fx.manager.Id, models.RoleManager)

	target := fmt.Sprintf("/job-cards/%d/parts", fx.jobCard.ID)
	body := fmt.Sprintf(`{"part_id": %d, "quantity": 1}`, fx.part.ID)

	statuses := make(chan int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := app.Test(jsonRequest("POST", target, body), -1)
			if !assert.NoError(t, err) {
				statuses <- 0
				return
			}
			statuses <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(statuses)

	var created, conflicted int
	for code := range statuses {
		switch code {
		case fiber.StatusCreated:
			created++
		case fiber.StatusConflict:
			conflicted++
		}
	}
	assert.Equal(t, 1, created, "exactly one caller may take the last unit")
	assert.Equal(t, 1, conflicted, "the loser gets a conflict, not a negative stock")

	var record models.InventoryRecord
	require.NoError(t, database.DB.
		Where("part_id = ?", fx.part.ID).First(&record).Error)
	assert.Equal(t, 0, record.Quantity)

	var usages int64
	require.NoError(t, database.DB.Model(&models.PartUsage{}).
		Where("job_card_id = ?", fx.jobCard.ID).Count(&usages).Error)
	assert.Equal(t, int64(1), usages)
}

func TestCostTotalsMatchLedgers(t *testing.T) {
	openTestDB(t)
	fx := seedWorkshop(t, 10)
	app := workshopApp(fx.manager.Id, models.RoleManager)

	target := fmt.Sprintf("/job-cards/%d", fx.jobCard.ID)
	for _, body := range []string{
		`{"description": "replace brake pads", "hours": 2, "labor_rate": 500}`,
		`{"description": "wheel alignment", "hours": 1, "labor_rate": 300}`,
	} {
		resp, err := app.Test(jsonRequest("POST", target+"/tasks", body), -1)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}
	resp, err := app.Test(jsonRequest("POST", target+"/parts",
		fmt.Sprintf(`{"part_id": %d, "quantity": 3}`, fx.part.ID)), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var jc models.JobCard
	require.NoError(t, database.DB.First(&jc, fx.jobCard.ID).Error)
	assert.Equal(t, 1300.0, jc.TotalLaborCost)
	assert.Equal(t, 300.0, jc.TotalPartsCost)

	var laborSum, partsSum float64
	require.NoError(t, database.DB.Model(&models.Task{}).
		Where("job_card_id = ?", jc.ID).
		Select("COALESCE(SUM(total_cost), 0)").Scan(&laborSum).Error)
	require.NoError(t, database.DB.Model(&models.PartUsage{}).
		Where("job_card_id = ?", jc.ID).
		Select("COALESCE(SUM(total_price), 0)").Scan(&partsSum).Error)
	assert.Equal(t, laborSum, jc.TotalLaborCost)
	assert.Equal(t, partsSum, jc.TotalPartsCost)
}

// Two racing manual transitions must never regress a terminal state: the
// status write is conditional on the status the transition check ran
// against, so the loser gets a conflict instead of overwriting.
func TestConcurrentStatusTransitions(t *testing.T) {
	openTestDB(t)
	fx := seedWorkshop(t, 0)
	app := workshopApp(fx.manager.Id, models.RoleManager)

	target := fmt.Sprintf("/job-cards/%d/status", fx.jobCard.ID)
	var wg sync.WaitGroup
	for _, body := range []string{
		`{"status": "completed"}`,
		`{"status": "in_progress"}`,
	} {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			resp, err := app.Test(jsonRequest("PATCH", target, body), -1)
			if assert.NoError(t, err) {
				assert.Contains(t, []int{fiber.StatusOK, fiber.StatusConflict}, resp.StatusCode)
			}
		}(body)
	}
	wg.Wait()

	var jc models.JobCard
	require.NoError(t, database.DB.First(&jc, fx.jobCard.ID).Error)
	var booking models.Booking
	require.NoError(t, database.DB.First(&booking, jc.BookingID).Error)

	// Whatever the interleaving, the job card moved off open, and the booking
	// is completed exactly when the job card is.
	assert.NotEqual(t, models.JobOpen, jc.Status)
	assert.Equal(t, jc.Status == models.JobCompleted, booking.Status == models.BookingCompleted)
	if booking.Status == models.BookingCompleted {
		assert.Equal(t, models.JobCompleted, jc.Status)
	}
}

func TestCompleteTaskOnCompletedJobCard(t *testing.T) {
	openTestDB(t)
	fx := seedWorkshop(t, 0)
	app := workshopApp(fx.manager.Id, models.RoleManager)

	task := models.Task{JobCardID: fx.jobCard.ID, Description: "final check", Hours: 1, LaborRate: 100, TotalCost: 100}
	require.NoError(t, database.DB.Create(&task).Error)
	require.NoError(t, database.DB.Model(&models.JobCard{}).
		Where("id = ?", fx.jobCard.ID).
		Update("status", models.JobCompleted).Error)

	resp, err := app.Test(jsonRequest("PATCH",
		fmt.Sprintf("/job-cards/%d/tasks/%d/complete", fx.jobCard.ID, task.ID), ""), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	require.NoError(t, database.DB.First(&task, task.ID).Error)
	assert.False(t, task.Completed, "a completed job card's ledger is frozen")
}
