package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"quickannonce-backend/config"
	"quickannonce-backend/handlers"
	jobs "quickannonce-backend/job"
	"quickannonce-backend/middleware"
	"quickannonce-backend/routes"
	"quickannonce-backend/seed"
)

func main() {
	// Charge les variables d'environnement depuis le fichier .env
	if err := godotenv.Load(); err != nil {
		log.Println("Aucun fichier .env trouvé, utilisation des variables d'environnement du système")
	}

	// Initialise le service AWS (upload des photos d'annonces)
	handlers.InitAWSService()

	// Définit la clé JWT dans le package handlers
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Variable d'environnement 'JWT_SECRET' non définie")
	}
	handlers.SetJWTKey(jwtSecret)

	// Initialise la connexion à la base de données et crée les tables
	config.InitDB()

	// Crée le compte admin par défaut si nécessaire
	seed.SeedDefaultAdmin()

	// Démarrer le job d'archivage des annonces de plus de 30 jours
	jobs.StartArchiveJob()

	// Configure le routeur
	router := routes.SetupRoutes()

	// Configuration du middleware CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://quickannonce.example.com"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	})

	// Journalisation des requêtes puis CORS
	handler := c.Handler(middleware.LogRequests(router))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Utilise le port 8080 par défaut si non spécifié dans le .env
	}

	fmt.Printf("Serveur démarré sur le port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
