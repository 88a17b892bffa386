package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"quickannonce-backend/config"
)

// DashboardStats définit la structure pour les statistiques du tableau de bord.
type DashboardStats struct {
	TotalUsers       int64          `json:"total_users"`
	NewUsersThisWeek int64          `json:"new_users_this_week"`
	TotalAds         int64          `json:"total_ads"`
	PendingAds       int64          `json:"pending_ads"`
	ApprovedAds      int64          `json:"approved_ads"`
	RejectedAds      int64          `json:"rejected_ads"`
	ActiveAds        int64          `json:"active_ads"`
	InactiveAds      int64          `json:"inactive_ads"`
	AdsThisWeek      int64          `json:"ads_this_week"`
	ArchivedAds      int64          `json:"archived_ads"`
	AdsPerCategory   []CategoryData `json:"ads_per_category"`
}

// CategoryData représente le nombre d'annonces approuvées pour une catégorie.
type CategoryData struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// GetDashboardStatsHandler récupère toutes les statistiques nécessaires pour le tableau de bord admin.
func GetDashboardStatsHandler(w http.ResponseWriter, r *http.Request) {
	var stats DashboardStats
	var wg sync.WaitGroup
	var errChan = make(chan error, 11)

	// 1. Total des utilisateurs
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM utilisateurs").Scan(&stats.TotalUsers)
		if err != nil {
			log.Printf("Erreur lors de la récupération du nombre total d'utilisateurs: %v", err)
			errChan <- err
		}
	}()

	// 2. Nouveaux utilisateurs cette semaine
	wg.Add(1)
	go func() {
		defer wg.Done()
		oneWeekAgo := time.Now().AddDate(0, 0, -7)
		err := config.DB.QueryRow("SELECT COUNT(*) FROM utilisateurs WHERE created_at >= $1", oneWeekAgo).Scan(&stats.NewUsersThisWeek)
		if err != nil {
			log.Printf("Erreur lors de la récupération des nouveaux utilisateurs: %v", err)
			errChan <- err
		}
	}()

	// 3. Total des annonces
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces").Scan(&stats.TotalAds)
		if err != nil {
			log.Printf("Erreur lors de la récupération du nombre total d'annonces: %v", err)
			errChan <- err
		}
	}()

	// 4. Annonces en attente de modération
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE moderation_status = 'pending'").Scan(&stats.PendingAds)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces en attente: %v", err)
			errChan <- err
		}
	}()

	// 5. Annonces approuvées
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE moderation_status = 'approved'").Scan(&stats.ApprovedAds)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces approuvées: %v", err)
			errChan <- err
		}
	}()

	// 6. Annonces rejetées
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE moderation_status = 'rejected'").Scan(&stats.RejectedAds)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces rejetées: %v", err)
			errChan <- err
		}
	}()

	// 7. Annonces actives
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE etat = 'active'").Scan(&stats.ActiveAds)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces actives: %v", err)
			errChan <- err
		}
	}()

	// 8. Annonces inactives
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE etat = 'inactive'").Scan(&stats.InactiveAds)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces inactives: %v", err)
			errChan <- err
		}
	}()

	// 9. Annonces publiées cette semaine
	wg.Add(1)
	go func() {
		defer wg.Done()
		oneWeekAgo := time.Now().AddDate(0, 0, -7)
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE date_publication >= $1", oneWeekAgo).Scan(&stats.AdsThisWeek)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces de la semaine: %v", err)
			errChan <- err
		}
	}()

	// 10. Annonces archivées
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := config.DB.QueryRow("SELECT COUNT(*) FROM annonces_archive").Scan(&stats.ArchivedAds)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces archivées: %v", err)
			errChan <- err
		}
	}()

	// 11. Répartition des annonces approuvées par catégorie
	wg.Add(1)
	go func() {
		defer wg.Done()
		query := `
            SELECT categorie, COUNT(*) AS total
            FROM annonces
            WHERE moderation_status = 'approved'
            GROUP BY categorie
            ORDER BY total DESC;
        `
		rows, err := config.DB.Query(query)
		if err != nil {
			log.Printf("Erreur lors de la récupération des annonces par catégorie: %v", err)
			errChan <- err
			return
		}
		defer rows.Close()

		var categories []CategoryData
		for rows.Next() {
			var data CategoryData
			if err := rows.Scan(&data.Category, &data.Total); err != nil {
				log.Printf("Erreur lors du scan des données de catégorie: %v", err)
				errChan <- err
				return
			}
			categories = append(categories, data)
		}
		stats.AdsPerCategory = categories
	}()

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		http.Error(w, "Erreur lors de la récupération des statistiques", http.StatusInternalServerError)
		return
	}

	if stats.AdsPerCategory == nil {
		stats.AdsPerCategory = []CategoryData{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		log.Printf("Erreur lors de l'encodage des statistiques: %v", err)
	}
}
