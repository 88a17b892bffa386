package jobs

import (
	"log"
	"time"

	"quickannonce-backend/config"
)

// ArchiveOldAds déplace les annonces de plus de 30 jours vers la table d'archive
func ArchiveOldAds() {
	log.Println("Début de l'archivage des annonces anciennes...")

	tx, err := config.DB.Begin()
	if err != nil {
		log.Printf("Erreur lors du début de la transaction: %v", err)
		return
	}
	defer tx.Rollback()

	// 1. Copier les annonces anciennes dans la table d'archive
	insertQuery := `
		INSERT INTO annonces_archive
			(id, id_utilisateur, titre, description, prix, ville, categorie,
			 image_path, moderation_status, etat, date_publication)
		SELECT id, id_utilisateur, titre, description, prix, ville, categorie,
		       image_path, moderation_status, etat, date_publication
		FROM annonces
		WHERE date_publication < NOW() - INTERVAL '30 days'
		ON CONFLICT (id) DO NOTHING
	`
	result, err := tx.Exec(insertQuery)
	if err != nil {
		log.Printf("Erreur lors de la copie des annonces vers l'archive: %v", err)
		return
	}

	archived, _ := result.RowsAffected()
	log.Printf("%d annonces copiées vers l'archive", archived)

	// 2. Supprimer les annonces archivées de la table principale
	deleteQuery := `
		DELETE FROM annonces
		WHERE date_publication < NOW() - INTERVAL '30 days'
	`
	result, err = tx.Exec(deleteQuery)
	if err != nil {
		log.Printf("Erreur lors de la suppression des annonces archivées: %v", err)
		return
	}

	deleted, _ := result.RowsAffected()
	log.Printf("%d annonces retirées de la table principale", deleted)

	// Valider la transaction
	if err := tx.Commit(); err != nil {
		log.Printf("Erreur lors de la validation de la transaction: %v", err)
		return
	}

	log.Println("Archivage des annonces anciennes terminé avec succès")
}

// StartArchiveJob démarre un job périodique pour archiver les annonces de plus de 30 jours
func StartArchiveJob() {
	// Exécuter immédiatement au démarrage
	ArchiveOldAds()

	// Puis exécuter toutes les heures
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		for range ticker.C {
			ArchiveOldAds()
		}
	}()

	log.Println("Job d'archivage des annonces démarré (exécution toutes les heures)")
}
