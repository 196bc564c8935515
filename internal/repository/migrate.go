package repository

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables of every model. Used in development and tests;
// other environments apply the SQL files under migrations/.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&RequestModel{},
		&ItemModel{},
		&BookingModel{},
		&CommentModel{},
	)
}
