package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"quickannonce-backend/handlers"
)

// SetupRoutes configure le routeur et définit les endpoints de l'API.
func SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Création d'un sous-routeur pour la version 1 de l'API
	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// Authentification
	apiV1.HandleFunc("/register", handlers.RegisterHandler).Methods("POST")
	apiV1.HandleFunc("/login", handlers.LoginHandler).Methods("POST")
	apiV1.HandleFunc("/refresh", handlers.RefreshHandler).Methods("POST")
	apiV1.Handle("/profile", handlers.ValidateToken(http.HandlerFunc(handlers.ProfileHandler))).Methods("GET")

	// Routes publiques des annonces. Les routes fixes doivent être déclarées
	// avant /ads/{adID} pour ne pas être capturées par le paramètre.
	apiV1.HandleFunc("/ads/search", handlers.SearchAdsHandler).Methods("GET")
	apiV1.HandleFunc("/ads/cities", handlers.GetAvailableCitiesHandler).Methods("GET")
	apiV1.HandleFunc("/categories", handlers.GetCategoriesHandler).Methods("GET")

	// Annonces de l'utilisateur connecté
	apiV1.Handle("/ads/me", handlers.ValidateToken(http.HandlerFunc(handlers.GetUserAdsHandler))).Methods("GET")

	// Détail d'une annonce (accès public, les annonces non approuvées sont
	// réservées au propriétaire et aux admins)
	apiV1.HandleFunc("/ads/{adID}", handlers.GetAdDetailsHandler).Methods("GET")

	// Contacter le vendeur d'une annonce (accès public)
	apiV1.HandleFunc("/ads/{adID}/contact", handlers.ContactSellerHandler).Methods("POST")

	// Route pour la création d'annonces, protégée par le middleware JWT
	apiV1.Handle("/ads", handlers.ValidateToken(http.HandlerFunc(handlers.CreateAdHandler))).Methods("POST")

	// Route pour modifier une annonce (protégée par le middleware JWT)
	apiV1.Handle("/ads/{adID}", handlers.ValidateToken(http.HandlerFunc(handlers.EditAdHandler))).Methods("PUT")

	// Route pour supprimer une annonce (protégée par le middleware JWT)
	apiV1.Handle("/ads/{adID}", handlers.ValidateToken(http.HandlerFunc(handlers.DeleteAdHandler))).Methods("DELETE")

	// Sous-routeur admin: toutes les routes exigent un token valide et le rôle admin
	adminRoutes := apiV1.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(handlers.ValidateToken, handlers.RequireAdmin)

	// Gestion des annonces
	adminRoutes.HandleFunc("/ads", handlers.GetAllAdsForAdminHandler).Methods("GET")
	adminRoutes.HandleFunc("/ads", handlers.CreateAdForAdminHandler).Methods("POST")
	adminRoutes.HandleFunc("/ads/{adID}/moderate", handlers.ModerateAdHandler).Methods("POST")
	adminRoutes.HandleFunc("/ads/{adID}/status", handlers.UpdateAdStatusHandler).Methods("PUT")
	adminRoutes.HandleFunc("/ads/{adID}", handlers.EditAdForAdminHandler).Methods("PUT")
	adminRoutes.HandleFunc("/ads/{adID}", handlers.DeleteAdForAdminHandler).Methods("DELETE")

	// Gestion des utilisateurs
	adminRoutes.HandleFunc("/users", handlers.GetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/users/{userID}/details", handlers.GetUserDetailsForAdminHandler).Methods("GET")
	adminRoutes.HandleFunc("/users/{userID}", handlers.UpdateUserForAdminHandler).Methods("PUT")
	adminRoutes.HandleFunc("/users/{userID}", handlers.DeleteUserForAdminHandler).Methods("DELETE")

	// Statistiques et exports
	adminRoutes.HandleFunc("/stats/dashboard", handlers.GetDashboardStatsHandler).Methods("GET")
	adminRoutes.HandleFunc("/export", handlers.ExportDataHandler).Methods("GET")

	return router
}
