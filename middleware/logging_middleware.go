package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// statusRecorder capture le code de statut écrit par le handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// LogRequests journalise chaque requête HTTP avec sa méthode, son chemin,
// le code de statut et la durée de traitement.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %d %s (%s)", r.Method, r.URL.Path, rec.status, time.Since(start), getClientIP(r))
	})
}

// getClientIP récupère l'adresse IP du client
func getClientIP(r *http.Request) string {
	// Vérifier les headers de proxy
	ip := r.Header.Get("X-Real-IP")
	if ip != "" {
		return ip
	}

	ip = r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// X-Forwarded-For peut contenir plusieurs IPs séparées par des virgules
		// Prendre la première
		ips := strings.Split(ip, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Sinon, utiliser RemoteAddr
	ip = r.RemoteAddr
	// Supprimer le port si présent
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}

	return ip
}
