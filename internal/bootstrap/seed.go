package bootstrap

import (
	"log"

	"github.com/inkwell-blog/inkwell/internal/config"
	"github.com/inkwell-blog/inkwell/internal/model"
	"github.com/inkwell-blog/inkwell/pkg/password"
	"gorm.io/gorm"
)

// SeedAdmin creates the privileged account from ADMIN_* env config when no
// admin exists yet. Registration already promotes the first-ever registrant,
// so this is a convenience for development databases.
func SeedAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.Model(&model.User{}).
		Where("role = ?", model.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        cfg.AdminEmail,
		Name:         cfg.AdminName,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("admin user seeded (%s)", cfg.AdminEmail)
	return nil
}
