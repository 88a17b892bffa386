package handlers

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"quickannonce-backend/config"
	"quickannonce-backend/services"
)

// ExportDataHandler exporte les utilisateurs ou les annonces au format CSV.
// Le type d'export est choisi via le paramètre ?type=users|ads.
func ExportDataHandler(w http.ResponseWriter, r *http.Request) {
	exportType := r.URL.Query().Get("type")

	switch exportType {
	case "users":
		exportUsersCSV(w, r)
	case "ads":
		exportAdsCSV(w, r)
	default:
		http.Error(w, "Type d'export invalide. Doit être 'users' ou 'ads'", http.StatusBadRequest)
	}
}

func exportUsersCSV(w http.ResponseWriter, r *http.Request) {
	log.Println("Export CSV des utilisateurs demandé par un admin.")

	rows, err := config.DB.Query(`
		SELECT id, nom, email, role, nb_annonces, created_at
		FROM utilisateurs
		ORDER BY id
	`)
	if err != nil {
		log.Printf("Erreur lors de l'export des utilisateurs: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	filename := fmt.Sprintf("utilisateurs_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "nom", "email", "role", "nb_annonces", "created_at"}); err != nil {
		log.Printf("Erreur lors de l'écriture de l'en-tête CSV: %v", err)
		return
	}

	for rows.Next() {
		var (
			id, adCount int
			name, email string
			role        string
			createdAt   time.Time
		)
		if err := rows.Scan(&id, &name, &email, &role, &adCount, &createdAt); err != nil {
			log.Printf("Erreur lors du scan d'un utilisateur pour l'export: %v", err)
			return
		}
		record := []string{
			strconv.Itoa(id),
			name,
			email,
			role,
			strconv.Itoa(adCount),
			createdAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			log.Printf("Erreur lors de l'écriture d'une ligne CSV: %v", err)
			return
		}
	}
	if err = rows.Err(); err != nil {
		log.Printf("Erreur lors de l'itération des utilisateurs pour l'export: %v", err)
		return
	}

	if err := services.LogAction(adminActor(r), "export_users", map[string]interface{}{
		"filename": filename,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}
}

func exportAdsCSV(w http.ResponseWriter, r *http.Request) {
	log.Println("Export CSV des annonces demandé par un admin.")

	rows, err := config.DB.Query(`
		SELECT a.id, a.titre, a.prix, a.ville, a.categorie,
		       a.moderation_status, a.etat, a.date_publication, u.email
		FROM annonces a
		JOIN utilisateurs u ON a.id_utilisateur = u.id
		ORDER BY a.id
	`)
	if err != nil {
		log.Printf("Erreur lors de l'export des annonces: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	filename := fmt.Sprintf("annonces_%s.csv", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "titre", "prix", "ville", "categorie", "moderation_status", "etat", "date_publication", "email_auteur"}
	if err := writer.Write(header); err != nil {
		log.Printf("Erreur lors de l'écriture de l'en-tête CSV: %v", err)
		return
	}

	for rows.Next() {
		var (
			id              int
			title, city     string
			category        string
			status, etat    string
			ownerEmail      string
			price           float64
			publicationDate time.Time
		)
		if err := rows.Scan(&id, &title, &price, &city, &category, &status, &etat, &publicationDate, &ownerEmail); err != nil {
			log.Printf("Erreur lors du scan d'une annonce pour l'export: %v", err)
			return
		}
		record := []string{
			strconv.Itoa(id),
			title,
			strconv.FormatFloat(price, 'f', 2, 64),
			city,
			category,
			status,
			etat,
			publicationDate.Format(time.RFC3339),
			ownerEmail,
		}
		if err := writer.Write(record); err != nil {
			log.Printf("Erreur lors de l'écriture d'une ligne CSV: %v", err)
			return
		}
	}
	if err = rows.Err(); err != nil {
		log.Printf("Erreur lors de l'itération des annonces pour l'export: %v", err)
		return
	}

	if err := services.LogAction(adminActor(r), "export_ads", map[string]interface{}{
		"filename": filename,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}
}
