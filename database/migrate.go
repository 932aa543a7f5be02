package database

import (
	"fmt"

	"gorm.io/gorm"
)

// MigrateConstraints applies the idempotent schema hardening AutoMigrate
// does not cover:
// - Money column types (NUMERIC(12,2))
// - CHECK constraints guarding the never-negative inventory quantity and
//   non-negative ledger rows
// The one-invoice-per-job-card and (service_center, part) uniqueness come
// from the model uniqueIndex tags and are created by AutoMigrate.
func MigrateConstraints() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE services          ALTER COLUMN base_price       TYPE numeric(12,2)`,
			`ALTER TABLE parts             ALTER COLUMN unit_price       TYPE numeric(12,2)`,
			`ALTER TABLE tasks             ALTER COLUMN labor_rate       TYPE numeric(12,2)`,
			`ALTER TABLE tasks             ALTER COLUMN total_cost       TYPE numeric(12,2)`,
			`ALTER TABLE part_usages       ALTER COLUMN unit_price       TYPE numeric(12,2)`,
			`ALTER TABLE part_usages       ALTER COLUMN total_price      TYPE numeric(12,2)`,
			`ALTER TABLE job_cards         ALTER COLUMN total_labor_cost TYPE numeric(12,2)`,
			`ALTER TABLE job_cards         ALTER COLUMN total_parts_cost TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN labor_total      TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN parts_total      TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN tax              TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN discount         TYPE numeric(12,2)`,
			`ALTER TABLE invoices          ALTER COLUMN total_amount     TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Basic CHECK constraints (idempotent) ---
		checks := []string{
			// Inventory stock can never go negative, even if application
			// code regresses to an unconditional decrement.
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'inventory_records'::regclass
					  AND conname  = 'chk_inventory_quantity_nonneg'
				) THEN
					ALTER TABLE inventory_records
					ADD CONSTRAINT chk_inventory_quantity_nonneg
					CHECK (quantity >= 0);
				END IF;
			END $$;`,
			// Part usage rows carry positive quantities.
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'part_usages'::regclass
					  AND conname  = 'chk_part_usages_quantity_pos'
				) THEN
					ALTER TABLE part_usages
					ADD CONSTRAINT chk_part_usages_quantity_pos
					CHECK (quantity_used > 0);
				END IF;
			END $$;`,
			// Tasks carry positive hours and rates.
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'tasks'::regclass
					  AND conname  = 'chk_tasks_hours_rate_pos'
				) THEN
					ALTER TABLE tasks
					ADD CONSTRAINT chk_tasks_hours_rate_pos
					CHECK (hours > 0 AND labor_rate > 0);
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
