package database

import "careerhub/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents come before the tables that reference them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.UserKeyword{},
		&models.Community{},
		&models.Comment{},
		&models.CommunityLike{},
		&models.CommentLike{},
		&models.MainCategory{},
		&models.SubCategory{},
		&models.Language{},
		&models.Qnet{},
	}
}
