package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// addClamped adds delta to an integer column and floors the result at zero.
func addClamped(db *gorm.DB, table interface{}, id uint, column string, delta int64) error {
	expr := gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", column), delta, delta)
	res := db.Model(table).Where("id = ?", id).UpdateColumn(column, expr)
	if res.Error != nil {
		return fmt.Errorf("adjust %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
