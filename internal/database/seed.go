package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"brocante/internal/slug"
)

// defaultCategories is the starter taxonomy inserted on first run.
// Category order is 1-based; subcategory order restarts at 1 per category.
var defaultCategories = []struct {
	Name          string
	Slug          string
	Icon          string
	Subcategories []string
}{
	{"Véhicules", "vehicules", "🚗", []string{"Voitures", "Motos", "Vélos", "Utilitaires"}},
	{"Immobilier", "immobilier", "🏠", []string{"Vente", "Location", "Colocation", "Bureaux"}},
	{"Emploi", "emploi", "💼", []string{"CDI", "CDD", "Freelance", "Stage"}},
	{"Multimédia", "multimedia", "📱", []string{"Téléphones", "Ordinateurs", "TV/Audio", "Jeux vidéo"}},
	{"Mode", "mode", "👕", []string{"Vêtements femme", "Vêtements homme", "Chaussures", "Accessoires"}},
	{"Maison & Jardin", "maison-jardin", "🏡", []string{"Mobilier", "Électroménager", "Décoration", "Jardinage"}},
}

// Seed populates the database with the default taxonomy and an admin
// account. It is idempotent: nothing is inserted if categories or an
// admin already exist.
func Seed(db *sql.DB) error {
	if err := seedCategories(db); err != nil {
		return err
	}
	return seedAdmin(db)
}

func seedCategories(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin tx: %w", err)
	}
	defer tx.Rollback()

	for i, cat := range defaultCategories {
		var categoryID string
		err := tx.QueryRow(`
			INSERT INTO categories (name, slug, icon, order_index)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, cat.Name, cat.Slug, cat.Icon, i+1).Scan(&categoryID)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", cat.Slug, err)
		}

		for j, name := range cat.Subcategories {
			_, err := tx.Exec(`
				INSERT INTO subcategories (category_id, name, slug, order_index)
				VALUES ($1, $2, $3, $4)
			`, categoryID, name, slug.Generate(name), j+1)
			if err != nil {
				return fmt.Errorf("seed insert subcategory %q: %w", name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default categories", "count", len(defaultCategories))
	return nil
}

func seedAdmin(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count); err != nil {
		return fmt.Errorf("seed check admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), 12)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, first_name, last_name, role, email_verified)
		VALUES ($1, $2, $3, $4, 'admin', TRUE)
	`, "admin@brocante.local", string(hash), "Admin", "System")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@brocante.local",
	)
	return nil
}
