package routes

import (
	"github.com/gofiber/fiber/v2"

	"autocare-backend/controllers"
	"autocare-backend/middlewares"
	"autocare-backend/models"
	"autocare-backend/notify"
)

// Register wires all HTTP routes and the realtime channel.
func Register(app *fiber.App, hub *notify.Hub) {
	// Realtime channel: clients join their room with ?customer_id=.
	// Unauthenticated by design; events carry only ids and status counters.
	app.Use("/ws", notify.Upgrade)
	app.Get("/ws", hub.Handler())

	bookings := controllers.NewBookingHandler(hub)
	approvals := controllers.NewApprovalHandler(hub)
	jobCards := controllers.NewJobCardHandler(hub)
	invoices := controllers.NewInvoiceHandler(hub)
	inventory := controllers.NewInventoryHandler()

	api := app.Group("/api")

	// All API endpoints require an authenticated, role-scoped caller.
	protected := api.Group("", middlewares.IsAuthenticatedHeader())

	customerOnly := middlewares.RequireRoles(models.RoleCustomer)
	managerOnly := middlewares.RequireRoles(models.RoleManager)
	workshop := middlewares.RequireRoles(models.RoleManager, models.RoleMechanic)

	// Bookings (customer)
	protected.Post("/bookings", customerOnly, bookings.Create)
	protected.Get("/bookings", customerOnly, bookings.List)
	protected.Get("/bookings/:id", customerOnly, bookings.Get)
	protected.Patch("/bookings/:id/cancel", customerOnly, bookings.Cancel)

	// Approval & assignment (manager)
	protected.Post("/bookings/:id/approve", managerOnly, approvals.Approve)
	protected.Post("/bookings/:id/reject", managerOnly, approvals.Reject)
	protected.Get("/manager/bookings/pending", managerOnly, approvals.PendingBookings)
	protected.Get("/manager/mechanics", managerOnly, approvals.Mechanics)

	// Job cards (manager or assigned mechanic)
	protected.Get("/job-cards/:id", workshop, jobCards.Get)
	protected.Post("/job-cards/:id/tasks", workshop, jobCards.AddTask)
	protected.Patch("/job-cards/:id/tasks/:taskId/complete", workshop, jobCards.CompleteTask)
	protected.Post("/job-cards/:id/parts", workshop, jobCards.AddPart)
	protected.Get("/job-cards/:id/parts/available", workshop, jobCards.AvailableParts)
	protected.Patch("/job-cards/:id/status", workshop, jobCards.UpdateStatus)
	protected.Patch("/job-cards/:id/notes", workshop, jobCards.SaveNotes)

	// Invoices (manager)
	protected.Post("/job-cards/:id/invoice", managerOnly, invoices.Generate)
	protected.Patch("/invoices/:id/pay", managerOnly, invoices.MarkPaid)
	protected.Get("/invoices", managerOnly, invoices.List)
	protected.Get("/invoices/:id", managerOnly, invoices.Get)

	// Inventory administration (manager)
	protected.Get("/manager/inventory", managerOnly, inventory.List)
	protected.Get("/manager/inventory/low-stock", managerOnly, inventory.LowStock)
	protected.Post("/manager/inventory", managerOnly, inventory.Upsert)
	protected.Get("/manager/inventory/logs", managerOnly, inventory.UsageLogs)
}
