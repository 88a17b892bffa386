package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// Déclaration de la variable de la base de données
var DB *sql.DB

// InitDB initialise la connexion à la base de données
// en utilisant les variables d'environnement.
func InitDB() {
	var err error
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbHost := os.Getenv("DB_HOST")
	dbPortStr := os.Getenv("DB_PORT")
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		log.Fatalf("Le port de la base de données n'est pas un nombre valide : %s", err)
	}

	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=disable",
		dbUser, dbPassword, dbName, dbHost, dbPort)

	DB, err = sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Erreur de connexion à la base de données : %s", err)
	}

	err = DB.Ping()
	if err != nil {
		log.Fatalf("Impossible de se connecter à la base de données : %s", err)
	}

	fmt.Println("Connexion à la base de données établie avec succès !")

	createTables()
}

// createTables gère la création des tables dans la base de données
// si elles n'existent pas déjà.
func createTables() {
	// ========================================
	// TABLE UTILISATEURS (DOIT ÊTRE CRÉÉE EN PREMIER)
	// ========================================
	log.Println("Création de la table utilisateurs...")
	_, err := DB.Exec(`
		CREATE TABLE IF NOT EXISTS utilisateurs (
			id SERIAL PRIMARY KEY,
			nom VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
			nb_annonces INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL,

			-- Contrainte pour vérifier le format de l'email
			CONSTRAINT valid_email CHECK (email ~* '^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$')
		);
	`)
	if err != nil {
		log.Fatalf("Impossible de créer la table utilisateurs : %s", err)
	}

	// Index pour améliorer les performances de la table utilisateurs
	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_utilisateurs_email ON utilisateurs(email);
		CREATE INDEX IF NOT EXISTS idx_utilisateurs_role ON utilisateurs(role);
		CREATE INDEX IF NOT EXISTS idx_utilisateurs_created_at ON utilisateurs(created_at DESC);
	`)
	if err != nil {
		log.Fatalf("Impossible de créer les index pour utilisateurs : %s", err)
	}

	// Table des annonces
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS annonces (
			id SERIAL PRIMARY KEY,
			id_utilisateur INTEGER NOT NULL REFERENCES utilisateurs(id),
			titre VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			prix NUMERIC(12, 2) NOT NULL DEFAULT 0 CHECK (prix >= 0),
			ville VARCHAR(255) NOT NULL,
			categorie VARCHAR(255) NOT NULL,
			image_path VARCHAR(500),
			moderation_status VARCHAR(20) NOT NULL DEFAULT 'pending'
				CHECK (moderation_status IN ('pending', 'approved', 'rejected')),
			etat VARCHAR(20) NOT NULL DEFAULT 'active'
				CHECK (etat IN ('active', 'inactive')),
			date_publication TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		log.Fatalf("Impossible de créer la table des annonces : %s", err)
	}

	// Index pour améliorer les performances des recherches d'annonces
	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_annonces_moderation_status ON annonces(moderation_status);
		CREATE INDEX IF NOT EXISTS idx_annonces_ville ON annonces(ville);
		CREATE INDEX IF NOT EXISTS idx_annonces_categorie ON annonces(categorie);
		CREATE INDEX IF NOT EXISTS idx_annonces_date_publication ON annonces(date_publication DESC);
		CREATE INDEX IF NOT EXISTS idx_annonces_id_utilisateur ON annonces(id_utilisateur);
		CREATE INDEX IF NOT EXISTS idx_annonces_prix ON annonces(prix);
	`)
	if err != nil {
		log.Fatalf("Impossible de créer les index pour les annonces : %s", err)
	}

	// Table des annonces archivées (annonces de plus de 30 jours)
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS annonces_archive (
			id INTEGER PRIMARY KEY,
			id_utilisateur INTEGER NOT NULL,
			titre VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			prix NUMERIC(12, 2) NOT NULL DEFAULT 0,
			ville VARCHAR(255) NOT NULL,
			categorie VARCHAR(255) NOT NULL,
			image_path VARCHAR(500),
			moderation_status VARCHAR(20) NOT NULL,
			etat VARCHAR(20) NOT NULL,
			date_publication TIMESTAMP WITH TIME ZONE NOT NULL,
			archived_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		log.Fatalf("Impossible de créer la table annonces_archive : %s", err)
	}

	_, err = DB.Exec(`
		CREATE INDEX IF NOT EXISTS idx_annonces_archive_archived_at ON annonces_archive(archived_at DESC);
	`)
	if err != nil {
		log.Fatalf("Impossible de créer les index pour annonces_archive : %s", err)
	}

	// Commentaires sur les tables
	_, err = DB.Exec(`
		COMMENT ON TABLE utilisateurs IS 'Table des utilisateurs de la plateforme';
		COMMENT ON COLUMN utilisateurs.role IS 'Rôle de l''utilisateur: user ou admin';
		COMMENT ON COLUMN utilisateurs.nb_annonces IS 'Compteur dénormalisé du nombre d''annonces de l''utilisateur';
		COMMENT ON COLUMN annonces.moderation_status IS 'Statut de modération: pending, approved ou rejected';
		COMMENT ON COLUMN annonces.etat IS 'État d''activation: active ou inactive';
		COMMENT ON TABLE annonces_archive IS 'Annonces retirées de la table principale après 30 jours';
	`)
	if err != nil {
		log.Printf("Attention: Impossible d'ajouter les commentaires aux tables : %s", err)
	}

	log.Println("✓ Tables créées avec succès")
}
