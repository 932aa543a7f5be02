package database

import "gorm.io/gorm"

// WithTx runs fn inside a single database transaction: either every write in
// the closure commits or none do. All multi-row mutations (approval + job
// card + availability, the stock check-then-decrement, status cascades,
// invoice + completion) go through here so atomicity is structural rather
// than caller discipline.
func WithTx(fn func(tx *gorm.DB) error) error {
	return DB.Transaction(fn)
}
