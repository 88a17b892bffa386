package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"quickannonce-backend/config"
	"quickannonce-backend/models"
	"quickannonce-backend/services"
)

// GetAllUsersHandler récupère tous les utilisateurs pour le panel admin avec pagination et recherche.
func GetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Début de la récupération des utilisateurs pour le panel admin.")

	// --- Pagination ---
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	// --- Filtres et Recherche ---
	query := r.URL.Query().Get("query")
	roleFilter := r.URL.Query().Get("role")

	var whereClauses []string
	var args []interface{}
	argID := 1

	if query != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(nom ILIKE $%d OR email ILIKE $%d)", argID, argID))
		args = append(args, "%"+query+"%")
		argID++
	}

	if roleFilter != "" {
		role, err := models.ParseRole(roleFilter)
		if err != nil {
			http.Error(w, "Rôle invalide", http.StatusBadRequest)
			return
		}
		whereClauses = append(whereClauses, fmt.Sprintf("role = $%d", argID))
		args = append(args, role)
		argID++
	}

	whereQuery := ""
	if len(whereClauses) > 0 {
		whereQuery = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	// --- Récupération des données ---
	var users []models.UserResponse
	var totalUsers int

	// 1. Compter le total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM utilisateurs %s", whereQuery)
	err = config.DB.QueryRow(countQuery, args...).Scan(&totalUsers)
	if err != nil {
		log.Printf("Erreur lors du comptage des utilisateurs admin: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// 2. Récupérer les utilisateurs
	limitOffsetQuery := fmt.Sprintf("ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argID, argID+1)
	args = append(args, limit, offset)

	dataQuery := fmt.Sprintf(`
		SELECT id, nom, email, role, nb_annonces, created_at
		FROM utilisateurs
		%s
		%s
	`, whereQuery, limitOffsetQuery)

	rows, err := config.DB.Query(dataQuery, args...)
	if err != nil {
		log.Printf("Erreur lors de la récupération des utilisateurs admin: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Role, &user.AdCount, &user.CreatedAt,
		); err != nil {
			log.Printf("Erreur lors du scan d'un utilisateur admin: %v", err)
			http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
			return
		}
		users = append(users, user.ToResponse())
	}
	if err = rows.Err(); err != nil {
		log.Printf("Erreur lors de l'itération des utilisateurs admin: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	if users == nil {
		users = []models.UserResponse{}
	}

	// --- Préparation de la réponse ---
	response := struct {
		Users      []models.UserResponse `json:"users"`
		Pagination struct {
			CurrentPage  int `json:"current_page"`
			TotalItems   int `json:"total_items"`
			ItemsPerPage int `json:"items_per_page"`
			TotalPages   int `json:"total_pages"`
		} `json:"pagination"`
	}{
		Users: users,
	}
	response.Pagination.CurrentPage = page
	response.Pagination.TotalItems = totalUsers
	response.Pagination.ItemsPerPage = limit
	response.Pagination.TotalPages = (totalUsers + limit - 1) / limit

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Erreur lors de l'encodage de la réponse JSON: %v", err)
	}
	log.Println("Utilisateurs pour le panel admin récupérés avec succès.")
}

// GetUserDetailsForAdminHandler récupère le profil d'un utilisateur avec la
// répartition de ses annonces par statut de modération.
func GetUserDetailsForAdminHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["userID"])
	if err != nil {
		http.Error(w, "ID utilisateur invalide", http.StatusBadRequest)
		return
	}

	log.Printf("Admin demande les détails de l'utilisateur ID: %d", userID)

	var user models.User
	err = config.DB.QueryRow(`
		SELECT id, nom, email, role, nb_annonces, created_at
		FROM utilisateurs
		WHERE id = $1
	`, userID).Scan(
		&user.ID, &user.Name, &user.Email, &user.Role, &user.AdCount, &user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Utilisateur non trouvé", http.StatusNotFound)
			return
		}
		log.Printf("Erreur admin: Récupération utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// Statistiques des annonces
	var adsStats struct {
		TotalAds    int `json:"total_ads"`
		PendingAds  int `json:"pending_ads"`
		ApprovedAds int `json:"approved_ads"`
		RejectedAds int `json:"rejected_ads"`
		ActiveAds   int `json:"active_ads"`
		InactiveAds int `json:"inactive_ads"`
	}

	config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE id_utilisateur = $1", userID).Scan(&adsStats.TotalAds)
	config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE id_utilisateur = $1 AND moderation_status = 'pending'", userID).Scan(&adsStats.PendingAds)
	config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE id_utilisateur = $1 AND moderation_status = 'approved'", userID).Scan(&adsStats.ApprovedAds)
	config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE id_utilisateur = $1 AND moderation_status = 'rejected'", userID).Scan(&adsStats.RejectedAds)
	config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE id_utilisateur = $1 AND etat = 'active'", userID).Scan(&adsStats.ActiveAds)
	config.DB.QueryRow("SELECT COUNT(*) FROM annonces WHERE id_utilisateur = $1 AND etat = 'inactive'", userID).Scan(&adsStats.InactiveAds)

	response := struct {
		User     models.UserResponse `json:"user"`
		AdsStats interface{}         `json:"ads_stats"`
	}{
		User:     user.ToResponse(),
		AdsStats: adsStats,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Erreur encodage réponse détails utilisateur %d: %v", userID, err)
	}

	log.Printf("Détails utilisateur %d récupérés avec succès par l'admin.", userID)
}

// AdminUpdateUserRequest définit la structure pour la mise à jour d'un utilisateur par un admin.
type AdminUpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UpdateUserForAdminHandler gère la modification des informations d'un utilisateur par un admin.
func UpdateUserForAdminHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["userID"])
	if err != nil {
		http.Error(w, "ID utilisateur invalide", http.StatusBadRequest)
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Erreur admin: Décodage JSON pour MAJ utilisateur %d: %v", userID, err)
		http.Error(w, "Données de requête invalides", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		http.Error(w, "Nom et email sont requis", http.StatusBadRequest)
		return
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		log.Printf("Erreur admin: Rôle invalide pour utilisateur %d: %s", userID, req.Role)
		http.Error(w, "Rôle invalide. Doit être 'user' ou 'admin'", http.StatusBadRequest)
		return
	}

	var exists bool
	err = config.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM utilisateurs WHERE email = $1 AND id != $2)",
		req.Email, userID,
	).Scan(&exists)
	if err != nil {
		log.Printf("Erreur admin: Vérification email pour MAJ utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if exists {
		http.Error(w, "Cet email est déjà utilisé par un autre compte", http.StatusConflict)
		return
	}

	result, err := config.DB.Exec(`
		UPDATE utilisateurs
		SET nom = $1, email = $2, role = $3
		WHERE id = $4
	`, req.Name, req.Email, role, userID)
	if err != nil {
		log.Printf("Erreur admin: MAJ utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur lors de la mise à jour de l'utilisateur", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		http.Error(w, "Utilisateur non trouvé", http.StatusNotFound)
		return
	}

	if err := services.LogAction(adminActor(r), "update_user", map[string]interface{}{
		"user_id": userID,
		"email":   req.Email,
		"role":    role,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}

	log.Printf("Utilisateur %d mis à jour avec succès par l'admin (rôle: %s)", userID, role)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Utilisateur mis à jour avec succès",
	})
}

// DeleteUserForAdminHandler supprime un utilisateur et toutes ses annonces dans une
// même transaction. Si la suppression des annonces échoue, l'utilisateur est conservé.
func DeleteUserForAdminHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["userID"])
	if err != nil {
		http.Error(w, "ID utilisateur invalide", http.StatusBadRequest)
		return
	}

	log.Printf("Admin initie la suppression de l'utilisateur ID: %d", userID)

	tx, err := config.DB.Begin()
	if err != nil {
		log.Printf("Erreur admin: Début de transaction pour suppression utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	var userEmail string
	err = tx.QueryRow("SELECT email FROM utilisateurs WHERE id = $1", userID).Scan(&userEmail)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Utilisateur non trouvé", http.StatusNotFound)
			return
		}
		log.Printf("Erreur admin: Récupération utilisateur %d pour suppression: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// Collecte des images à nettoyer sur S3 après le commit
	var adImages []string
	rows, err := tx.Query("SELECT image_path FROM annonces WHERE id_utilisateur = $1 AND image_path IS NOT NULL", userID)
	if err != nil {
		log.Printf("Erreur admin: Récupération images pour suppression utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	for rows.Next() {
		var imagePath string
		if err := rows.Scan(&imagePath); err != nil {
			rows.Close()
			log.Printf("Erreur admin: Scan image pour suppression utilisateur %d: %v", userID, err)
			http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
			return
		}
		if imagePath != "" {
			adImages = append(adImages, imagePath)
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		log.Printf("Erreur admin: Itération images pour suppression utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// Les annonces d'abord, l'utilisateur ensuite
	if _, err = tx.Exec("DELETE FROM annonces WHERE id_utilisateur = $1", userID); err != nil {
		log.Printf("Erreur admin: Suppression des annonces de l'utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	result, err := tx.Exec("DELETE FROM utilisateurs WHERE id = $1", userID)
	if err != nil {
		log.Printf("Erreur admin: Suppression utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		http.Error(w, "Utilisateur non trouvé", http.StatusNotFound)
		return
	}

	if err := tx.Commit(); err != nil {
		log.Printf("Erreur admin: Commit transaction pour suppression utilisateur %d: %v", userID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	log.Printf("Utilisateur %d supprimé de la BDD. Lancement du nettoyage S3...", userID)

	if len(adImages) > 0 {
		go func(paths []string) {
			for _, path := range paths {
				if err := awsService.DeleteImage(path); err != nil {
					log.Printf("ERREUR S3: Echec suppression image %s: %v", path, err)
				}
			}
			log.Printf("Nettoyage S3 terminé pour l'utilisateur %d (%d images).", userID, len(paths))
		}(adImages)
	}

	if err := services.LogAction(adminActor(r), "delete_user", map[string]interface{}{
		"user_id": userID,
		"email":   userEmail,
	}); err != nil {
		log.Printf("Erreur lors de l'écriture du journal d'actions: %v", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
