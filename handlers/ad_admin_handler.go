package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"quickannonce-backend/config"
	"quickannonce-backend/models"
	"quickannonce-backend/services"
)

// adminActor retourne l'identifiant lisible de l'admin connecté pour le journal d'actions.
func adminActor(r *http.Request) string {
	adminID, ok := r.Context().Value(userIDContextKey).(int)
	if !ok {
		return "admin:inconnu"
	}

	var email string
	err := config.DB.QueryRow("SELECT email FROM utilisateurs WHERE id = $1", adminID).Scan(&email)
	if err != nil {
		return fmt.Sprintf("admin:%d", adminID)
	}
	return email
}

// GetAllAdsForAdminHandler récupère toutes les annonces pour le panel admin,
// tous statuts confondus, avec les annonces en attente en premier.
func GetAllAdsForAdminHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Récupération de toutes les annonces pour l'admin...")

	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")
	statusFilter := r.URL.Query().Get("status")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}

	offset := (page - 1) * limit

	baseQuery := `
		SELECT
			a.id, a.titre, a.description, a.prix, a.ville, a.categorie,
			a.date_publication, a.moderation_status, a.etat, a.image_path,
			a.id_utilisateur, u.nom AS auteur
		FROM annonces a
		JOIN utilisateurs u ON a.id_utilisateur = u.id`
	baseCountQuery := `SELECT COUNT(*) FROM annonces a`

	whereClause := ""
	var args []interface{}
	var countArgs []interface{}
	argIndex := 1

	if statusFilter != "" {
		status, err := models.ParseModerationStatus(statusFilter)
		if err != nil {
			http.Error(w, "Statut de modération invalide", http.StatusBadRequest)
			return
		}
		whereClause = fmt.Sprintf(" WHERE a.moderation_status = $%d", argIndex)
		args = append(args, status)
		countArgs = append(countArgs, status)
		argIndex++
	}

	// Les annonces en attente de modération passent en premier
	orderBy := `
		ORDER BY
			CASE WHEN a.moderation_status = 'pending' THEN 0 ELSE 1 END,
			a.date_publication DESC`

	query := baseQuery + whereClause + orderBy + fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		log.Printf("Erreur lors de la récupération des annonces: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	ads := []models.Ad{}
	for rows.Next() {
		ad, err := scanAdRow(rows)
		if err != nil {
			log.Printf("Erreur lors du scan d'une annonce: %v", err)
			continue
		}
		ads = append(ads, ad)
	}

	if err = rows.Err(); err != nil {
		log.Printf("Erreur après l'itération des lignes: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	var totalAds int
	err = config.DB.QueryRow(baseCountQuery+whereClause, countArgs...).Scan(&totalAds)
	if err != nil {
		log.Printf("Erreur lors du comptage des annonces: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	response := struct {
		Ads        []models.Ad `json:"ads"`
		Pagination struct {
			CurrentPage  int `json:"current_page"`
			TotalItems   int `json:"total_items"`
			ItemsPerPage int `json:"items_per_page"`
			TotalPages   int `json:"total_pages"`
		} `json:"pagination"`
	}{
		Ads: ads,
	}
	response.Pagination.CurrentPage = page
	response.Pagination.TotalItems = totalAds
	response.Pagination.ItemsPerPage = limit
	response.Pagination.TotalPages = (totalAds + limit - 1) / limit

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// CreateAdForAdminHandler gère la création d'une annonce par un admin.
// Les annonces créées par un admin sont directement approuvées et actives.
func CreateAdForAdminHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Début de la création d'annonce par un admin.")

	adminID, ok := r.Context().Value(userIDContextKey).(int)
	if !ok {
		log.Println("ID admin non trouvé dans le contexte")
		http.Error(w, "Non autorisé", http.StatusUnauthorized)
		return
	}

	imagePath, ad, ok := parseAdForm(w, r)
	if !ok {
		return
	}

	tx, err := config.DB.Begin()
	if err != nil {
		log.Printf("Erreur lors du début de la transaction: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	var newAdID int
	err = tx.QueryRow(`
		INSERT INTO annonces (titre, description, prix, ville, categorie, image_path,
			moderation_status, etat, date_publication, id_utilisateur)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,
		ad.Title,
		ad.Description,
		ad.Price,
		ad.City,
		ad.Category,
		imagePath,
		models.ModerationApproved,
		models.EtatActive,
		time.Now(),
		adminID,
	).Scan(&newAdID)
	if err != nil {
		log.Printf("Erreur lors de l'insertion de l'annonce: %v", err)
		rollbackUploadedImage(imagePath)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	_, err = tx.Exec("UPDATE utilisateurs SET nb_annonces = nb_annonces + 1 WHERE id = $1", adminID)
	if err != nil {
		log.Printf("Erreur lors de l'incrémentation du compteur d'annonces: %v", err)
		rollbackUploadedImage(imagePath)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Erreur lors de la validation de la transaction: %v", err)
		rollbackUploadedImage(imagePath)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	if err := services.LogAction(adminActor(r), "create_ad", map[string]interface{}{
		"ad_id": newAdID,
		"title": ad.Title,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}

	log.Printf("Annonce %d créée et approuvée par l'admin %d", newAdID, adminID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":                newAdID,
		"message":           "Annonce créée avec succès",
		"moderation_status": models.ModerationApproved,
	})
}

// ModerateAdHandler applique une action de modération (approve ou reject) à une annonce.
// L'approbation rend l'annonce approuvée et active, le rejet la rend rejetée et
// inactive. Les deux colonnes changent dans un seul UPDATE.
func ModerateAdHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	adID, err := strconv.Atoi(vars["adID"])
	if err != nil {
		http.Error(w, "ID d'annonce invalide", http.StatusBadRequest)
		return
	}

	var payload struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("Erreur de décodage: %v", err)
		http.Error(w, "Données de la requête invalides", http.StatusBadRequest)
		return
	}

	status, etat, err := models.ApplyModerationAction(payload.Action)
	if err != nil {
		log.Printf("Action de modération invalide: %v", err)
		http.Error(w, "Action de modération invalide", http.StatusBadRequest)
		return
	}

	result, err := config.DB.Exec(`
		UPDATE annonces
		SET moderation_status = $1, etat = $2
		WHERE id = $3
	`, status, etat, adID)
	if err != nil {
		log.Printf("Erreur lors de la modération de l'annonce %d: %v", adID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		http.Error(w, "Annonce non trouvée", http.StatusNotFound)
		return
	}

	if err := services.LogAction(adminActor(r), "moderate_ad", map[string]interface{}{
		"ad_id":             adID,
		"action":            payload.Action,
		"moderation_status": status,
		"etat":              etat,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}

	log.Printf("Annonce %d modérée: %s", adID, payload.Action)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":           "Annonce modérée avec succès",
		"moderation_status": status,
		"etat":              etat,
	})
}

// UpdateAdStatusHandler permet à un admin de modifier directement le statut de
// modération et l'état d'une annonce, sans passer par une action de modération.
func UpdateAdStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	adID, err := strconv.Atoi(vars["adID"])
	if err != nil {
		http.Error(w, "ID d'annonce invalide", http.StatusBadRequest)
		return
	}

	var payload struct {
		ModerationStatus string `json:"moderation_status"`
		Etat             string `json:"etat"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("Erreur de décodage: %v", err)
		http.Error(w, "Données de la requête invalides", http.StatusBadRequest)
		return
	}

	status, err := models.ParseModerationStatus(payload.ModerationStatus)
	if err != nil {
		http.Error(w, "Statut de modération invalide", http.StatusBadRequest)
		return
	}

	etat, err := models.ParseEtat(payload.Etat)
	if err != nil {
		http.Error(w, "État invalide", http.StatusBadRequest)
		return
	}

	result, err := config.DB.Exec(`
		UPDATE annonces
		SET moderation_status = $1, etat = $2
		WHERE id = $3
	`, status, etat, adID)
	if err != nil {
		log.Printf("Erreur lors de la mise à jour du statut de l'annonce %d: %v", adID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		http.Error(w, "Annonce non trouvée", http.StatusNotFound)
		return
	}

	if err := services.LogAction(adminActor(r), "update_ad_status", map[string]interface{}{
		"ad_id":             adID,
		"moderation_status": status,
		"etat":              etat,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}

	log.Printf("Statut de l'annonce %d mis à jour: %s / %s", adID, status, etat)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":           "Statut mis à jour avec succès",
		"moderation_status": status,
		"etat":              etat,
	})
}

// EditAdForAdminHandler gère la modification des champs de contenu d'une annonce par un admin.
func EditAdForAdminHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	adID, err := strconv.Atoi(vars["adID"])
	if err != nil {
		http.Error(w, "ID d'annonce invalide", http.StatusBadRequest)
		return
	}

	var updateData struct {
		Title       *string  `json:"title,omitempty"`
		Description *string  `json:"description,omitempty"`
		Price       *float64 `json:"price,omitempty"`
		City        *string  `json:"city,omitempty"`
		Category    *string  `json:"category,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
		log.Printf("Erreur de décodage: %v", err)
		http.Error(w, "Données invalides", http.StatusBadRequest)
		return
	}

	// Construction dynamique de la requête SQL
	var setParts []string
	var args []interface{}
	argIndex := 1

	if updateData.Title != nil {
		setParts = append(setParts, fmt.Sprintf("titre = $%d", argIndex))
		args = append(args, *updateData.Title)
		argIndex++
	}
	if updateData.Description != nil {
		setParts = append(setParts, fmt.Sprintf("description = $%d", argIndex))
		args = append(args, *updateData.Description)
		argIndex++
	}
	if updateData.Price != nil {
		if *updateData.Price < 0 {
			http.Error(w, "Le prix ne peut pas être négatif", http.StatusBadRequest)
			return
		}
		setParts = append(setParts, fmt.Sprintf("prix = $%d", argIndex))
		args = append(args, *updateData.Price)
		argIndex++
	}
	if updateData.City != nil {
		setParts = append(setParts, fmt.Sprintf("ville = $%d", argIndex))
		args = append(args, *updateData.City)
		argIndex++
	}
	if updateData.Category != nil {
		setParts = append(setParts, fmt.Sprintf("categorie = $%d", argIndex))
		args = append(args, *updateData.Category)
		argIndex++
	}

	if len(setParts) == 0 {
		http.Error(w, "Aucun champ à mettre à jour", http.StatusBadRequest)
		return
	}

	args = append(args, adID)
	query := fmt.Sprintf("UPDATE annonces SET %s WHERE id = $%d", strings.Join(setParts, ", "), argIndex)

	result, err := config.DB.Exec(query, args...)
	if err != nil {
		log.Printf("Erreur lors de la mise à jour de l'annonce %d: %v", adID, err)
		http.Error(w, "Échec de la mise à jour de l'annonce", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		http.Error(w, "Annonce non trouvée", http.StatusNotFound)
		return
	}

	if err := services.LogAction(adminActor(r), "edit_ad", map[string]interface{}{
		"ad_id": adID,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}

	log.Printf("Annonce %d mise à jour par un admin", adID)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Annonce mise à jour avec succès"})
}

// DeleteAdForAdminHandler gère la suppression d'une annonce par un admin.
func DeleteAdForAdminHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	adID, err := strconv.Atoi(vars["adID"])
	if err != nil {
		http.Error(w, "ID d'annonce invalide", http.StatusBadRequest)
		return
	}

	tx, err := config.DB.Begin()
	if err != nil {
		log.Printf("Erreur lors du début de la transaction: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	var ownerID int
	var title string
	var imagePath sql.NullString
	err = tx.QueryRow("SELECT id_utilisateur, titre, image_path FROM annonces WHERE id = $1", adID).
		Scan(&ownerID, &title, &imagePath)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Annonce non trouvée", http.StatusNotFound)
			return
		}
		log.Printf("Erreur de base de données: %v", err)
		http.Error(w, "Erreur de base de données", http.StatusInternalServerError)
		return
	}

	if _, err = tx.Exec("DELETE FROM annonces WHERE id = $1", adID); err != nil {
		log.Printf("Erreur lors de la suppression de l'annonce %d: %v", adID, err)
		http.Error(w, "Erreur lors de la suppression de l'annonce", http.StatusInternalServerError)
		return
	}

	_, err = tx.Exec("UPDATE utilisateurs SET nb_annonces = GREATEST(nb_annonces - 1, 0) WHERE id = $1", ownerID)
	if err != nil {
		log.Printf("Erreur lors de la décrémentation du compteur d'annonces: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Erreur lors de la validation de la transaction: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// Nettoyage S3 en arrière-plan une fois la transaction validée
	if imagePath.Valid && imagePath.String != "" {
		go func(path string) {
			if err := awsService.DeleteImage(path); err != nil {
				log.Printf("Erreur lors de la suppression de l'image S3 %s: %v", path, err)
			}
		}(imagePath.String)
	}

	if err := services.LogAction(adminActor(r), "delete_ad", map[string]interface{}{
		"ad_id": adID,
		"title": title,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}

	log.Printf("Annonce %d supprimée par un admin", adID)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Annonce supprimée avec succès"})
}
