package db

import (
	"log"
	"os"

	"libris/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=libris port=5432 sslmode=disable TimeZone=UTC"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	err = DB.AutoMigrate(
		&models.Account{},
		&models.Role{},
		&models.ConfirmationToken{},
		&models.News{},
		&models.Article{},
		&models.Tip{},
		&models.Term{},
		&models.Comment{},
		&models.Notification{},
		&models.WireSource{},
		&models.WireItem{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedRoles()
	seedTerms()
}

// seedRoles creates the fixed role rows. Every name here must be one
// the permission evaluator knows.
func seedRoles() {
	var count int64
	DB.Model(&models.Role{}).Count(&count)
	if count > 0 {
		log.Println("Roles already seeded, skipping")
		return
	}

	roles := []models.Role{
		{Name: "administrator"},
		{Name: "moderator"},
		{Name: "librarian"},
	}

	for _, role := range roles {
		if err := DB.Create(&role).Error; err != nil {
			log.Printf("Failed to create role %s: %v", role.Name, err)
		}
	}
	log.Println("Initial roles created successfully")
}

// seedTerms gives the glossary a few starting entries so the page is
// never empty on a fresh install.
func seedTerms() {
	var count int64
	DB.Model(&models.Term{}).Count(&count)
	if count > 0 {
		log.Println("Terms already seeded, skipping")
		return
	}

	terms := []models.Term{
		{Name: "Colophon", Definition: "A note at the end of a book describing its production, often naming the printer and typefaces."},
		{Name: "Incunabula", Definition: "Books printed before 1501, during the first decades of movable type in Europe."},
		{Name: "Ex Libris", Definition: "A bookplate or inscription marking ownership, literally \"from the books of\"."},
		{Name: "Folio", Definition: "A book made from sheets folded once, producing the largest common format."},
	}

	for _, term := range terms {
		if err := DB.Create(&term).Error; err != nil {
			log.Printf("Failed to create term %s: %v", term.Name, err)
		}
	}
	log.Println("Initial glossary terms created successfully")
}
