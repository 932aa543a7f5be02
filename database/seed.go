package database

import (
	"os"

	"autocare-backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedDemo loads a small demo fixture when SEED_DEMO=1: one user per role,
// a center, a catalog and stocked inventory. Idempotent via FirstOrCreate.
func SeedDemo() {
	if os.Getenv("SEED_DEMO") != "1" {
		return
	}

	err := DB.Transaction(func(tx *gorm.DB) error {
		users := map[string]*models.User{}
		for _, u := range []struct {
			name, email string
			role        models.Role
		}{
			{"Asha Customer", "customer@demo.local", models.RoleCustomer},
			{"Meera Manager", "manager@demo.local", models.RoleManager},
			{"Ravi Mechanic", "mechanic@demo.local", models.RoleMechanic},
		} {
			user := models.User{Name: u.name, Email: u.email, Role: u.role}
			user.SetPassword("demo1234")
			if err := tx.Where(models.User{Email: u.email}).
				Attrs(user).FirstOrCreate(&user).Error; err != nil {
				return err
			}
			users[string(u.role)] = &user
		}

		center := models.ServiceCenter{
			Name: "Demo Auto Works", Address: "12 Workshop Lane", City: "Pune",
			ContactNumber: "020-5550123", ManagerID: users["manager"].Id,
		}
		if err := tx.Where(models.ServiceCenter{ManagerID: center.ManagerID}).
			Attrs(center).FirstOrCreate(&center).Error; err != nil {
			return err
		}

		vehicle := models.Vehicle{
			OwnerID: users["customer"].Id, Make: "Maruti", Model: "Swift",
			Year: 2019, VIN: "DEMO00000000001", EngineType: "petrol", Mileage: 42000,
		}
		if err := tx.Where(models.Vehicle{VIN: vehicle.VIN}).
			Attrs(vehicle).FirstOrCreate(&vehicle).Error; err != nil {
			return err
		}

		for _, s := range []models.Service{
			{Name: "General Service", Description: "Full periodic service", BasePrice: 2500},
			{Name: "Brake Inspection", Description: "Pads, discs and fluid", BasePrice: 800},
		} {
			if err := tx.Where(models.Service{Name: s.Name}).
				Attrs(s).FirstOrCreate(&s).Error; err != nil {
				return err
			}
		}

		for _, p := range []struct {
			part models.Part
			qty  int
		}{
			{models.Part{PartCode: "P-OIL-5W30", Name: "Engine Oil 5W30", Category: "fluids", UnitPrice: 100}, 24},
			{models.Part{PartCode: "P-BRK-PAD", Name: "Brake Pad Set", Category: "brakes", UnitPrice: 1200}, 6},
		} {
			part := p.part
			if err := tx.Where(models.Part{PartCode: part.PartCode}).
				Attrs(part).FirstOrCreate(&part).Error; err != nil {
				return err
			}
			rec := models.InventoryRecord{
				ServiceCenterID: center.ID, PartID: part.ID,
				Quantity: p.qty, ReorderLevel: 2, Location: "A1",
			}
			if err := tx.Where(models.InventoryRecord{ServiceCenterID: center.ID, PartID: part.ID}).
				Attrs(rec).FirstOrCreate(&rec).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		logrus.WithError(err).Error("demo seed failed")
		return
	}
	logrus.Info("demo fixtures loaded")
}
