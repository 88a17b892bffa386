package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"quickannonce-backend/config"
	"quickannonce-backend/models"
)

// Déclaration de la clé JWT à l'échelle du package, initialisée depuis main.go.
var jwtKey []byte

// SetJWTKey est utilisé pour définir la clé JWT au démarrage de l'application.
func SetJWTKey(key string) {
	jwtKey = []byte(key)
}

// Struct pour la requête de connexion
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Claims pour le token JWT
type claims struct {
	Email string      `json:"email"`
	ID    int         `json:"id"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Claims pour le token de rafraîchissement
type refreshClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Clés de contexte pour l'identité de l'utilisateur.
type contextKey string

const (
	userIDContextKey   contextKey = "userID"
	userRoleContextKey contextKey = "userRole"
)

// generateTokens crée un couple access/refresh token pour un utilisateur.
func generateTokens(user *models.User) (string, string, error) {
	accessTokenExpirationTime := time.Now().Add(7 * 24 * time.Hour)
	accessTokenClaims := &claims{
		Email: user.Email,
		ID:    user.ID,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(accessTokenExpirationTime),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims)
	accessTokenString, err := accessToken.SignedString(jwtKey)
	if err != nil {
		return "", "", err
	}

	refreshTokenExpirationTime := time.Now().Add(90 * 24 * time.Hour)
	refreshTokenClaims := &refreshClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(refreshTokenExpirationTime),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshTokenClaims)
	refreshTokenString, err := refreshToken.SignedString(jwtKey)
	if err != nil {
		return "", "", err
	}

	return accessTokenString, refreshTokenString, nil
}

// RegisterHandler gère l'inscription des nouveaux utilisateurs
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Début du traitement de l'inscription...")

	var req models.RegisterRequest

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Printf("Erreur lors du décodage de la requête: %v", err)
		http.Error(w, "Données de la requête invalides", http.StatusBadRequest)
		return
	}

	// Validation des champs obligatoires
	if req.Name == "" || req.Email == "" || req.Password == "" {
		log.Println("Champs obligatoires manquants")
		http.Error(w, "Veuillez remplir tous les champs obligatoires", http.StatusBadRequest)
		return
	}

	// Vérifier si l'email existe déjà
	var existingID int
	err = config.DB.QueryRow("SELECT id FROM utilisateurs WHERE email = $1", req.Email).Scan(&existingID)
	if err == nil {
		log.Printf("Email %s déjà utilisé", req.Email)
		http.Error(w, "Cet email est déjà utilisé", http.StatusConflict)
		return
	} else if err != sql.ErrNoRows {
		log.Printf("Erreur lors de la vérification de l'email: %v", err)
		http.Error(w, "Erreur de base de données", http.StatusInternalServerError)
		return
	}

	// Hachage du mot de passe
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Erreur lors du hachage du mot de passe: %v", err)
		http.Error(w, "Impossible de hacher le mot de passe", http.StatusInternalServerError)
		return
	}

	// Insertion dans la base de données
	query := `
		INSERT INTO utilisateurs (nom, email, password_hash, role, nb_annonces, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var userID int
	err = config.DB.QueryRow(
		query,
		req.Name,
		req.Email,
		string(hashedPassword),
		models.RoleUser,
		0,
		time.Now(),
	).Scan(&userID)

	if err != nil {
		log.Printf("Erreur lors de l'insertion dans la base de données: %v", err)

		// Vérifier si c'est une erreur de contrainte d'unicité
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			http.Error(w, "Cet email est déjà utilisé", http.StatusConflict)
			return
		}

		http.Error(w, "Erreur lors de l'insertion dans la base de données", http.StatusInternalServerError)
		return
	}

	log.Printf("Utilisateur créé avec succès - ID: %d, Email: %s", userID, req.Email)

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Inscription réussie. Vous pouvez maintenant vous connecter.",
		"id":      userID,
		"email":   req.Email,
	})
}

// LoginHandler gère la connexion des utilisateurs
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Début du traitement de la requête de connexion.")

	var creds credentials
	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		log.Printf("Erreur lors du décodage de la requête: %v", err)
		http.Error(w, "Données de la requête invalides", http.StatusBadRequest)
		return
	}

	var user models.User
	err = config.DB.QueryRow(`
		SELECT id, nom, email, password_hash, role, nb_annonces, created_at
		FROM utilisateurs WHERE email = $1
	`, creds.Email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.AdCount,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Println("Utilisateur non trouvé")
			http.Error(w, "Email ou mot de passe incorrect", http.StatusUnauthorized)
			return
		}
		log.Printf("Erreur de base de données: %v", err)
		http.Error(w, "Erreur de base de données", http.StatusInternalServerError)
		return
	}

	// Vérifier le mot de passe
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password))
	if err != nil {
		log.Printf("Mot de passe incorrect pour: %s", user.Email)
		http.Error(w, "Email ou mot de passe incorrect", http.StatusUnauthorized)
		return
	}

	// Créer les tokens
	accessTokenString, refreshTokenString, err := generateTokens(&user)
	if err != nil {
		log.Printf("Erreur lors de la création des tokens: %v", err)
		http.Error(w, "Impossible de créer le token d'accès", http.StatusInternalServerError)
		return
	}

	log.Printf("Connexion réussie pour: %s", user.Email)

	// Retourner la réponse avec expiresIn
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":         user.ToResponse(),
		"token":        accessTokenString,
		"refreshToken": refreshTokenString,
		"expiresIn":    int(7 * 24 * 3600), // 7 jours en secondes
	})
}

// RefreshHandler gère le rafraîchissement des tokens
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Début du rafraîchissement de token")

	var requestBody struct {
		RefreshToken string `json:"refreshToken"`
	}

	err := json.NewDecoder(r.Body).Decode(&requestBody)
	if err != nil {
		log.Printf("Erreur de décodage: %v", err)
		http.Error(w, "Données invalides", http.StatusBadRequest)
		return
	}

	// Valider le refresh token
	token, err := jwt.ParseWithClaims(requestBody.RefreshToken, &refreshClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})

	if err != nil || !token.Valid {
		log.Printf("Refresh token invalide: %v", err)
		http.Error(w, "Token de rafraîchissement invalide", http.StatusUnauthorized)
		return
	}

	refreshTokenData, ok := token.Claims.(*refreshClaims)
	if !ok {
		log.Println("Claims invalides")
		http.Error(w, "Token invalide", http.StatusUnauthorized)
		return
	}

	// Récupérer l'utilisateur
	var user models.User
	err = config.DB.QueryRow(`
		SELECT id, nom, email, role, nb_annonces, created_at
		FROM utilisateurs WHERE email = $1
	`, refreshTokenData.Email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.AdCount,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			log.Println("Utilisateur non trouvé")
			http.Error(w, "Utilisateur non trouvé", http.StatusNotFound)
			return
		}
		log.Printf("Erreur de BDD: %v", err)
		http.Error(w, "Erreur de base de données", http.StatusInternalServerError)
		return
	}

	// Créer de nouveaux tokens
	accessTokenString, newRefreshTokenString, err := generateTokens(&user)
	if err != nil {
		log.Printf("Erreur création des tokens: %v", err)
		http.Error(w, "Erreur lors de la création du token", http.StatusInternalServerError)
		return
	}

	log.Printf("Tokens rafraîchis pour: %s", user.Email)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"user":         user.ToResponse(),
		"token":        accessTokenString,
		"refreshToken": newRefreshTokenString,
		"expiresIn":    int(7 * 24 * 3600),
	})
}

// ValidateToken est un middleware qui valide le token JWT.
func ValidateToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tente de récupérer le jeton de l'en-tête 'Authorization'
		tokenString := r.Header.Get("Authorization")

		// Si l'en-tête d'autorisation est vide, vérifiez les paramètres de l'URL
		if tokenString == "" {
			tokenString = r.URL.Query().Get("token")
			if tokenString != "" {
				// Le jeton des paramètres de requête est déjà le jeton pur.
				goto validateToken
			}
		} else {
			// Le token est au format "Bearer <token>"
			parts := strings.Split(tokenString, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				http.Error(w, "Format d'en-tête d'autorisation invalide", http.StatusUnauthorized)
				return
			}
			tokenString = parts[1]
		}

	validateToken:

		// Si le jeton est toujours vide après les deux vérifications, il y a une erreur.
		if tokenString == "" {
			http.Error(w, "Jeton manquant", http.StatusUnauthorized)
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})

		if err != nil {
			if strings.Contains(err.Error(), "token is expired") {
				http.Error(w, "Token expiré", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Token invalide: "+err.Error(), http.StatusUnauthorized)
			return
		}

		if !token.Valid {
			http.Error(w, "Token invalide", http.StatusUnauthorized)
			return
		}

		// Extraire les revendications et l'identité de l'utilisateur
		claims, ok := token.Claims.(*claims)
		if !ok {
			http.Error(w, "Revendications de token invalides", http.StatusUnauthorized)
			return
		}

		// Ajouter l'ID et le rôle de l'utilisateur au contexte de la requête
		ctx := context.WithValue(r.Context(), userIDContextKey, claims.ID)
		ctx = context.WithValue(ctx, userRoleContextKey, claims.Role)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin est un middleware qui vérifie que l'utilisateur connecté est admin.
// À utiliser après ValidateToken.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(userRoleContextKey).(models.Role)
		if !ok {
			log.Println("Rôle non trouvé dans le contexte")
			http.Error(w, "Non autorisé", http.StatusUnauthorized)
			return
		}

		if role != models.RoleAdmin {
			log.Printf("Accès admin refusé pour le rôle: %s", role)
			http.Error(w, "Accès réservé aux administrateurs", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identityFromRequest tente d'extraire l'identité du porteur de jeton d'une
// requête sans exiger d'authentification. Utilisé pour les routes publiques
// dont la visibilité dépend du demandeur (propriétaire, admin).
func identityFromRequest(r *http.Request) (int, models.Role, bool) {
	tokenString := r.Header.Get("Authorization")
	if tokenString == "" {
		return 0, "", false
	}

	parts := strings.Split(tokenString, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return 0, "", false
	}

	token, err := jwt.ParseWithClaims(parts[1], &claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}

	c, ok := token.Claims.(*claims)
	if !ok {
		return 0, "", false
	}

	return c.ID, c.Role, true
}

// ProfileHandler renvoie le profil de l'utilisateur connecté.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(userIDContextKey).(int)
	if !ok {
		log.Println("ID utilisateur non trouvé dans le contexte")
		http.Error(w, "Non autorisé", http.StatusUnauthorized)
		return
	}

	var user models.User
	err := config.DB.QueryRow(`
		SELECT id, nom, email, role, nb_annonces, created_at
		FROM utilisateurs WHERE id = $1
	`, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.AdCount,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Utilisateur non trouvé", http.StatusNotFound)
			return
		}
		log.Printf("Erreur de base de données: %v", err)
		http.Error(w, "Erreur de base de données", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.ToResponse())
}
