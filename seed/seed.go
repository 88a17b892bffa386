package seed

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"quickannonce-backend/config"
)

// Categories contient la liste des catégories d'annonces proposées sur la plateforme
var Categories = []string{
	"Immobilier",
	"Véhicules",
	"Électronique & High-tech",
	"Maison & Jardin",
	"Mode & Beauté",
	"Emploi",
	"Services",
	"Loisirs & Divertissement",
	"Animaux",
	"Autres",
}

// SeedDefaultAdmin crée le compte administrateur par défaut s'il n'existe pas encore.
// Les identifiants sont lus depuis ADMIN_EMAIL et ADMIN_PASSWORD.
func SeedDefaultAdmin() {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL ou ADMIN_PASSWORD non défini, aucun admin par défaut créé.")
		return
	}

	var exists bool
	err := config.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM utilisateurs WHERE email = $1)", adminEmail).Scan(&exists)
	if err != nil {
		log.Printf("Erreur lors de la vérification de l'admin par défaut: %v", err)
		return
	}
	if exists {
		log.Println("Le compte admin par défaut existe déjà.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Erreur lors du hachage du mot de passe admin: %v", err)
		return
	}

	_, err = config.DB.Exec(`
		INSERT INTO utilisateurs (nom, email, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (email) DO NOTHING
	`, "Administrateur", adminEmail, string(hashedPassword))
	if err != nil {
		log.Printf("Erreur lors de la création de l'admin par défaut: %v", err)
		return
	}

	log.Printf("Compte admin par défaut créé: %s", adminEmail)
}
