package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/msribeiro2010/napje-pje-proxy/seed/seeders"
)

// Provisions app users with their PJe query grants. Identity itself lives in
// the external provider; this only seeds the authorization flags the proxy
// checks.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		dsn     = flag.String("dsn", "", "Database DSN (overrides DATABASE_URL)")
		userID  = flag.String("user", "", "Provider user id to grant access to")
		email   = flag.String("email", "", "User email (informational)")
		isAdmin = flag.Bool("admin", false, "Grant the admin flag as well")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("Usage: seed -user=<provider-user-id> [-email=...] [-admin]")
	}

	database := *dsn
	if database == "" {
		database = seeders.DSNFromEnv()
	}

	db, err := gorm.Open(postgres.Open(database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	userSeeder := seeders.NewUserSeeder(db)
	if err := userSeeder.GrantAccess(*userID, *email, *isAdmin); err != nil {
		log.Fatalf("Failed to grant access: %v", err)
	}

	log.Printf("Granted PJe query access to %s (admin=%v)", *userID, *isAdmin)
}
