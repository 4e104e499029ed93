package seeders

import (
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/msribeiro2010/napje-pje-proxy/model"
)

// UserSeeder provisions authorization flags for provider identities.
type UserSeeder struct {
	db *gorm.DB
}

func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

// GrantAccess upserts the grant row for one provider user id.
func (s *UserSeeder) GrantAccess(userID, email string, isAdmin bool) error {
	if err := s.db.AutoMigrate(&model.AppUser{}); err != nil {
		return err
	}

	user := model.AppUser{
		ID:          userID,
		Email:       email,
		CanQueryPJe: true,
		IsAdmin:     isAdmin,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "can_query_pje", "is_admin", "updated_at"}),
	}).Create(&user).Error
}

// DSNFromEnv mirrors the proxy's own database configuration.
func DSNFromEnv() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	dbname := envOr("DB_NAME", "napje_proxy")
	sslmode := envOr("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		host, user, password, dbname, port, sslmode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
