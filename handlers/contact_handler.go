package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"quickannonce-backend/config"
	"quickannonce-backend/services"
)

// ContactSellerRequest représente le message d'un visiteur au vendeur d'une annonce.
type ContactSellerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactSellerHandler transmet par email un message au vendeur d'une annonce.
// Seules les annonces approuvées peuvent être contactées.
func ContactSellerHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	adID, err := strconv.Atoi(vars["adID"])
	if err != nil {
		http.Error(w, "ID d'annonce invalide", http.StatusBadRequest)
		return
	}

	var req ContactSellerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Erreur de décodage du message de contact: %v", err)
		http.Error(w, "Données de la requête invalides", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Message == "" {
		http.Error(w, "Nom, email et message sont requis", http.StatusBadRequest)
		return
	}
	if !strings.Contains(req.Email, "@") {
		http.Error(w, "Adresse email invalide", http.StatusBadRequest)
		return
	}

	var adTitle, sellerName, sellerEmail string
	err = config.DB.QueryRow(`
		SELECT a.titre, u.nom, u.email
		FROM annonces a
		JOIN utilisateurs u ON a.id_utilisateur = u.id
		WHERE a.id = $1 AND a.moderation_status = 'approved'
	`, adID).Scan(&adTitle, &sellerName, &sellerEmail)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Annonce non trouvée", http.StatusNotFound)
			return
		}
		log.Printf("Erreur lors de la récupération de l'annonce %d pour contact: %v", adID, err)
		http.Error(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	if err := services.SendContactEmail(sellerEmail, sellerName, adTitle, req.Name, req.Email, req.Message); err != nil {
		http.Error(w, "Erreur lors de l'envoi du message", http.StatusInternalServerError)
		return
	}

	log.Printf("Message de contact transmis au vendeur de l'annonce %d", adID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Votre message a été transmis au vendeur",
	})
}
