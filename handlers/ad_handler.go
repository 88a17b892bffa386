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
	"quickannonce-backend/seed"
	"quickannonce-backend/services"
)

var awsService *services.AWSService

// InitAWSService initialise le service AWS partagé par les handlers.
// À appeler depuis main.go au démarrage.
func InitAWSService() {
	var err error
	awsService, err = services.NewAWSService()
	if err != nil {
		log.Fatalf("Erreur d'initialisation du service AWS: %v", err)
	}
	log.Println("Service AWS initialisé avec succès.")
}

// Nombre d'annonces par page pour la recherche publique
const adsPerPage = 20

// adSearchParams regroupe les filtres de la recherche publique d'annonces.
type adSearchParams struct {
	Query    string
	Etat     models.Etat
	Category string
	City     string
	MinPrice float64
	MaxPrice float64
	Sort     string
	Page     int
}

// parseAdSearchParams extrait et normalise les paramètres de recherche de la requête.
// Une page invalide retombe sur 1, les prix non numériques sur 0 (donc ignorés),
// un état inconnu sur l'absence de filtre.
func parseAdSearchParams(r *http.Request) adSearchParams {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	minPrice, err := strconv.ParseFloat(q.Get("min"), 64)
	if err != nil {
		minPrice = 0
	}
	maxPrice, err := strconv.ParseFloat(q.Get("max"), 64)
	if err != nil {
		maxPrice = 0
	}

	var etat models.Etat
	if s := q.Get("etat"); s != "" {
		if parsed, err := models.ParseEtat(s); err == nil {
			etat = parsed
		}
	}

	return adSearchParams{
		Query:    strings.TrimSpace(q.Get("q")),
		Etat:     etat,
		Category: strings.TrimSpace(q.Get("category")),
		City:     strings.TrimSpace(q.Get("city")),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Sort:     q.Get("sort"),
		Page:     page,
	}
}

// orderByClause traduit le paramètre de tri en clause ORDER BY.
// Toute valeur inconnue retombe sur le tri par date décroissante.
func orderByClause(sort string) string {
	switch sort {
	case "date_asc":
		return "ORDER BY a.date_publication ASC"
	case "price_asc":
		return "ORDER BY a.prix ASC, a.date_publication DESC"
	case "price_desc":
		return "ORDER BY a.prix DESC, a.date_publication DESC"
	case "title_asc":
		return "ORDER BY a.titre ASC"
	case "date_desc":
		fallthrough
	default:
		return "ORDER BY a.date_publication DESC"
	}
}

// buildAdSearchQuery construit les requêtes SQL de recherche et de comptage.
// Seules les annonces approuvées sont visibles publiquement; les filtres
// s'accumulent en conjonction et les bornes de prix ne s'appliquent que si
// elles sont strictement positives.
func buildAdSearchQuery(p adSearchParams) (query string, countQuery string, args []interface{}, countArgs []interface{}) {
	baseQuery := `
		SELECT
			a.id, a.titre, a.description, a.prix, a.ville, a.categorie,
			a.date_publication, a.moderation_status, a.etat, a.image_path,
			a.id_utilisateur, u.nom AS auteur
		FROM annonces a
		JOIN utilisateurs u ON a.id_utilisateur = u.id
		WHERE a.moderation_status = 'approved'`

	baseCountQuery := `
		SELECT COUNT(*)
		FROM annonces a
		WHERE a.moderation_status = 'approved'`

	var whereClauses []string
	argIndex := 1

	// Filtre de recherche textuelle (recherche dans titre et description)
	if p.Query != "" {
		searchPattern := "%" + strings.ToLower(p.Query) + "%"
		whereClauses = append(whereClauses,
			fmt.Sprintf("(LOWER(a.titre) LIKE $%d OR LOWER(a.description) LIKE $%d)", argIndex, argIndex))
		args = append(args, searchPattern)
		countArgs = append(countArgs, searchPattern)
		argIndex++
	}

	// Filtre par état d'activation
	if p.Etat != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.etat = $%d", argIndex))
		args = append(args, p.Etat)
		countArgs = append(countArgs, p.Etat)
		argIndex++
	}

	// Filtre par catégorie (correspondance exacte)
	if p.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.categorie = $%d", argIndex))
		args = append(args, p.Category)
		countArgs = append(countArgs, p.Category)
		argIndex++
	}

	// Filtre par ville (correspondance exacte)
	if p.City != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("a.ville = $%d", argIndex))
		args = append(args, p.City)
		countArgs = append(countArgs, p.City)
		argIndex++
	}

	// Filtres de prix, appliqués uniquement si strictement positifs.
	// Un minimum supérieur au maximum produit simplement un résultat vide.
	if p.MinPrice > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("a.prix >= $%d", argIndex))
		args = append(args, p.MinPrice)
		countArgs = append(countArgs, p.MinPrice)
		argIndex++
	}
	if p.MaxPrice > 0 {
		whereClauses = append(whereClauses, fmt.Sprintf("a.prix <= $%d", argIndex))
		args = append(args, p.MaxPrice)
		countArgs = append(countArgs, p.MaxPrice)
		argIndex++
	}

	// Construire la clause WHERE
	whereClause := ""
	if len(whereClauses) > 0 {
		whereClause = " AND " + strings.Join(whereClauses, " AND ")
	}

	orderBy := orderByClause(p.Sort)

	offset := (p.Page - 1) * adsPerPage
	query = baseQuery + whereClause + " " + orderBy + fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	countQuery = baseCountQuery + whereClause
	args = append(args, adsPerPage, offset)

	return query, countQuery, args, countArgs
}

// scanAdRow lit une ligne d'annonce (avec auteur) dans un models.Ad.
func scanAdRow(rows *sql.Rows) (models.Ad, error) {
	var ad models.Ad
	var imagePath sql.NullString

	err := rows.Scan(
		&ad.ID, &ad.Title, &ad.Description, &ad.Price, &ad.City, &ad.Category,
		&ad.PublicationDate, &ad.ModerationStatus, &ad.Etat, &imagePath,
		&ad.UserID, &ad.Author,
	)
	if err != nil {
		return ad, err
	}

	if imagePath.Valid {
		ad.ImagePath = imagePath.String
	}
	return ad, nil
}

// SearchAdsHandler gère la recherche publique d'annonces avec filtres et pagination.
// En cas d'échec de la requête, la réponse dégrade vers une liste vide.
func SearchAdsHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Début du traitement de la requête de recherche d'annonces.")

	params := parseAdSearchParams(r)

	query, countQuery, args, countArgs := buildAdSearchQuery(params)

	emptyResponse := models.PaginatedAdsResponse{
		TotalCount: 0,
		Page:       params.Page,
		Limit:      adsPerPage,
		Ads:        []models.Ad{},
	}

	rows, err := config.DB.Query(query, args...)
	if err != nil {
		log.Printf("Erreur lors de la recherche d'annonces: %v", err)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(emptyResponse)
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
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(emptyResponse)
		return
	}

	// Compter le nombre total d'annonces pour la pagination, avec le même WHERE
	var totalAds int
	err = config.DB.QueryRow(countQuery, countArgs...).Scan(&totalAds)
	if err != nil {
		log.Printf("Erreur lors du comptage des annonces: %v", err)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(emptyResponse)
		return
	}

	response := models.PaginatedAdsResponse{
		TotalCount: totalAds,
		Page:       params.Page,
		Limit:      adsPerPage,
		Ads:        ads,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Erreur lors de l'encodage de la réponse JSON: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	log.Printf("Recherche traitée avec succès. Trouvé %d annonces sur %d total.", len(ads), totalAds)
}

// CreateAdHandler gère la création d'une nouvelle annonce par un utilisateur,
// y compris l'upload de la photo sur AWS S3. L'annonce créée est en attente de
// modération et active.
func CreateAdHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Début du traitement de la requête de création d'annonce.")

	// Récupérer l'ID utilisateur du contexte de la requête
	userID, ok := r.Context().Value(userIDContextKey).(int)
	if !ok {
		log.Println("Erreur: ID utilisateur non trouvé dans le contexte de la requête.")
		http.Error(w, "ID utilisateur manquant", http.StatusUnauthorized)
		return
	}
	log.Printf("ID utilisateur trouvé dans le contexte: %d", userID)

	imagePath, ad, ok := parseAdForm(w, r)
	if !ok {
		return
	}

	// Insérer l'annonce et incrémenter le compteur d'annonces de l'utilisateur
	// dans la même transaction.
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
		models.ModerationPending,
		models.EtatActive,
		time.Now(),
		userID,
	).Scan(&newAdID)
	if err != nil {
		log.Printf("Erreur lors de l'insertion de l'annonce dans la base de données : %v", err)
		rollbackUploadedImage(imagePath)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	_, err = tx.Exec("UPDATE utilisateurs SET nb_annonces = nb_annonces + 1 WHERE id = $1", userID)
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

	log.Printf("Annonce créée avec succès. ID: %d", newAdID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":                newAdID,
		"message":           "Annonce créée avec succès. Elle sera visible après modération.",
		"moderation_status": models.ModerationPending,
		"image_path":        imagePath,
	})
}

// parseAdForm analyse le formulaire multipart d'une annonce (création utilisateur
// ou admin) et uploade la photo vers S3. Retourne false si une réponse d'erreur
// a déjà été écrite.
func parseAdForm(w http.ResponseWriter, r *http.Request) (string, models.Ad, bool) {
	var ad models.Ad

	// Limiter la taille de la requête pour éviter les attaques DoS
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20) // 10 MB

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB
		log.Printf("Erreur lors de l'analyse du formulaire multipart : %v", err)
		http.Error(w, "La requête est trop grande", http.StatusRequestEntityTooLarge)
		return "", ad, false
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	priceStr := r.FormValue("price")
	city := strings.TrimSpace(r.FormValue("city"))
	category := strings.TrimSpace(r.FormValue("category"))

	log.Printf("Valeurs reçues: title='%s', price='%s', city='%s', category='%s'",
		title, priceStr, city, category)

	// Vérification des champs obligatoires
	if title == "" || description == "" || city == "" || category == "" {
		log.Println("Erreur: Les champs obligatoires sont manquants.")
		http.Error(w, "Les champs obligatoires sont manquants.", http.StatusBadRequest)
		return "", ad, false
	}

	// Le prix est optionnel mais doit être un nombre positif ou nul
	var price float64
	if priceStr != "" {
		var err error
		price, err = strconv.ParseFloat(priceStr, 64)
		if err != nil {
			log.Printf("Erreur: Le prix '%s' n'est pas un nombre valide. Détails: %v", priceStr, err)
			http.Error(w, "Le prix n'est pas un nombre valide", http.StatusBadRequest)
			return "", ad, false
		}
		if price < 0 {
			log.Printf("Erreur: Le prix '%s' est négatif.", priceStr)
			http.Error(w, "Le prix ne peut pas être négatif", http.StatusBadRequest)
			return "", ad, false
		}
	}

	// Récupérer le fichier image
	file, header, err := r.FormFile("image")
	if err != nil {
		log.Printf("Erreur: Aucune image n'a été fournie. Détails: %v", err)
		http.Error(w, "Une photo est requise", http.StatusBadRequest)
		return "", ad, false
	}
	defer file.Close()

	imagePath, err := awsService.UploadAdImage(file, header)
	if err != nil {
		log.Printf("Erreur lors de l'upload de l'image: %v", err)
		http.Error(w, "Erreur lors de l'upload de l'image", http.StatusInternalServerError)
		return "", ad, false
	}
	log.Printf("Image uploadée avec succès sur S3: %s", imagePath)

	ad.Title = title
	ad.Description = description
	ad.Price = price
	ad.City = city
	ad.Category = category

	return imagePath, ad, true
}

// rollbackUploadedImage supprime une image S3 après un échec d'insertion.
func rollbackUploadedImage(imagePath string) {
	if imagePath == "" {
		return
	}
	log.Println("Tentative de suppression de l'image uploadée suite à l'échec de l'insertion...")
	if err := awsService.DeleteImage(imagePath); err != nil {
		log.Printf("Erreur lors de la suppression de l'image: %v", err)
	}
}

// GetAdDetailsHandler récupère les détails d'une annonce.
// Une annonce non approuvée n'est visible que par son propriétaire ou un admin.
func GetAdDetailsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	adID, err := strconv.Atoi(vars["adID"])
	if err != nil {
		http.Error(w, "ID d'annonce invalide", http.StatusBadRequest)
		return
	}

	var ad models.Ad
	var imagePath sql.NullString
	err = config.DB.QueryRow(`
		SELECT
			a.id, a.titre, a.description, a.prix, a.ville, a.categorie,
			a.date_publication, a.moderation_status, a.etat, a.image_path,
			a.id_utilisateur, u.nom AS auteur
		FROM annonces a
		JOIN utilisateurs u ON a.id_utilisateur = u.id
		WHERE a.id = $1
	`, adID).Scan(
		&ad.ID, &ad.Title, &ad.Description, &ad.Price, &ad.City, &ad.Category,
		&ad.PublicationDate, &ad.ModerationStatus, &ad.Etat, &imagePath,
		&ad.UserID, &ad.Author,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Annonce non trouvée", http.StatusNotFound)
			return
		}
		log.Printf("Erreur lors de la récupération de l'annonce %d: %v", adID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	if imagePath.Valid {
		ad.ImagePath = imagePath.String
	}

	// Les annonces non approuvées restent invisibles pour le public
	if !ad.ModerationStatus.IsPubliclyVisible() {
		requesterID, role, authenticated := identityFromRequest(r)
		if !authenticated || (role != models.RoleAdmin && requesterID != ad.UserID) {
			http.Error(w, "Annonce non trouvée", http.StatusNotFound)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ad)
}

// GetUserAdsHandler récupère les annonces de l'utilisateur connecté, tous statuts confondus.
func GetUserAdsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(userIDContextKey).(int)
	if !ok {
		log.Println("ID utilisateur non trouvé dans le contexte")
		http.Error(w, "Non autorisé", http.StatusUnauthorized)
		return
	}

	rows, err := config.DB.Query(`
		SELECT
			a.id, a.titre, a.description, a.prix, a.ville, a.categorie,
			a.date_publication, a.moderation_status, a.etat, a.image_path,
			a.id_utilisateur, u.nom AS auteur
		FROM annonces a
		JOIN utilisateurs u ON a.id_utilisateur = u.id
		WHERE a.id_utilisateur = $1
		ORDER BY a.date_publication DESC
	`, userID)
	if err != nil {
		log.Printf("Erreur lors de la récupération des annonces de l'utilisateur %d: %v", userID, err)
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

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ads)
}

// EditAdHandler gère la modification d'une annonce par son propriétaire.
// Seuls les champs de contenu sont modifiables, jamais le statut de modération.
func EditAdHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(userIDContextKey).(int)
	if !ok {
		log.Println("ID utilisateur non trouvé dans le contexte")
		http.Error(w, "Non autorisé", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	adID, err := strconv.Atoi(vars["adID"])
	if err != nil {
		http.Error(w, "ID d'annonce invalide", http.StatusBadRequest)
		return
	}

	// Vérifier que l'annonce appartient bien à l'utilisateur
	var ownerID int
	err = config.DB.QueryRow("SELECT id_utilisateur FROM annonces WHERE id = $1", adID).Scan(&ownerID)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Annonce non trouvée", http.StatusNotFound)
			return
		}
		log.Printf("Erreur de base de données: %v", err)
		http.Error(w, "Erreur de base de données", http.StatusInternalServerError)
		return
	}
	if ownerID != userID {
		log.Printf("L'utilisateur %d a tenté de modifier l'annonce %d d'un autre utilisateur", userID, adID)
		http.Error(w, "Vous n'êtes pas autorisé à modifier cette annonce", http.StatusForbidden)
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
		log.Println("Aucun champ à mettre à jour")
		http.Error(w, "Aucun champ à mettre à jour", http.StatusBadRequest)
		return
	}

	args = append(args, adID)
	query := fmt.Sprintf("UPDATE annonces SET %s WHERE id = $%d", strings.Join(setParts, ", "), argIndex)

	_, err = config.DB.Exec(query, args...)
	if err != nil {
		log.Printf("Erreur lors de la mise à jour de l'annonce: %v", err)
		http.Error(w, "Échec de la mise à jour de l'annonce", http.StatusInternalServerError)
		return
	}

	log.Printf("Annonce %d mise à jour avec succès par l'utilisateur %d", adID, userID)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Annonce mise à jour avec succès"})
}

// DeleteAdHandler gère la suppression d'une annonce par son propriétaire.
func DeleteAdHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(userIDContextKey).(int)
	if !ok {
		log.Println("ID utilisateur non trouvé dans le contexte")
		http.Error(w, "Non autorisé", http.StatusUnauthorized)
		return
	}

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
	var imagePath sql.NullString
	err = tx.QueryRow("SELECT id_utilisateur, image_path FROM annonces WHERE id = $1", adID).Scan(&ownerID, &imagePath)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Annonce non trouvée", http.StatusNotFound)
			return
		}
		log.Printf("Erreur de base de données: %v", err)
		http.Error(w, "Erreur de base de données", http.StatusInternalServerError)
		return
	}

	if ownerID != userID {
		log.Printf("L'utilisateur %d a tenté de supprimer l'annonce %d d'un autre utilisateur", userID, adID)
		http.Error(w, "Vous n'êtes pas autorisé à supprimer cette annonce", http.StatusForbidden)
		return
	}

	if _, err = tx.Exec("DELETE FROM annonces WHERE id = $1", adID); err != nil {
		log.Printf("Erreur lors de la suppression de l'annonce: %v", err)
		http.Error(w, "Erreur lors de la suppression de l'annonce", http.StatusInternalServerError)
		return
	}

	_, err = tx.Exec("UPDATE utilisateurs SET nb_annonces = GREATEST(nb_annonces - 1, 0) WHERE id = $1", userID)
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

	// Supprimer l'image S3 en arrière-plan une fois la transaction validée
	if imagePath.Valid && imagePath.String != "" {
		go func(path string) {
			if err := awsService.DeleteImage(path); err != nil {
				log.Printf("Erreur lors de la suppression de l'image S3 %s: %v", path, err)
			}
		}(imagePath.String)
	}

	log.Printf("Annonce %d supprimée avec succès par l'utilisateur %d", adID, userID)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Annonce supprimée avec succès"})
}

// GetAvailableCitiesHandler renvoie les villes distinctes des annonces approuvées.
func GetAvailableCitiesHandler(w http.ResponseWriter, r *http.Request) {
	rows, err := config.DB.Query(`
		SELECT DISTINCT ville FROM annonces
		WHERE moderation_status = 'approved'
		ORDER BY ville
	`)
	if err != nil {
		log.Printf("Erreur lors de la récupération des villes: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	cities := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			log.Printf("Erreur lors du scan d'une ville: %v", err)
			continue
		}
		cities = append(cities, city)
	}

	if err = rows.Err(); err != nil {
		log.Printf("Erreur après l'itération des villes: %v", err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"cities": cities})
}

// GetCategoriesHandler renvoie la liste canonique des catégories.
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string][]string{"categories": seed.Categories})
}
