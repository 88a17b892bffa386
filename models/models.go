package models

import (
	"fmt"
	"time"
)

// ModerationStatus représente le statut de modération d'une annonce
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// ParseModerationStatus valide et convertit une chaîne en ModerationStatus
func ParseModerationStatus(s string) (ModerationStatus, error) {
	switch ModerationStatus(s) {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return ModerationStatus(s), nil
	}
	return "", fmt.Errorf("statut de modération inconnu : %q", s)
}

// IsPubliclyVisible indique si une annonce avec ce statut est visible publiquement
func (s ModerationStatus) IsPubliclyVisible() bool {
	return s == ModerationApproved
}

// Etat représente l'état d'activation d'une annonce
type Etat string

const (
	EtatActive   Etat = "active"
	EtatInactive Etat = "inactive"
)

// ParseEtat valide et convertit une chaîne en Etat
func ParseEtat(s string) (Etat, error) {
	switch Etat(s) {
	case EtatActive, EtatInactive:
		return Etat(s), nil
	}
	return "", fmt.Errorf("état inconnu : %q", s)
}

// ApplyModerationAction retourne le couple (statut, état) résultant d'une action
// de modération. "approve" rend l'annonce approuvée et active, "reject" la rend
// rejetée et inactive.
func ApplyModerationAction(action string) (ModerationStatus, Etat, error) {
	switch action {
	case "approve":
		return ModerationApproved, EtatActive, nil
	case "reject":
		return ModerationRejected, EtatInactive, nil
	}
	return "", "", fmt.Errorf("action de modération inconnue : %q", action)
}

// Ad représente une annonce
type Ad struct {
	ID               int              `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Price            float64          `json:"price"`
	City             string           `json:"city"`
	Category         string           `json:"category"`
	PublicationDate  time.Time        `json:"publication_date"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	Etat             Etat             `json:"etat"`
	ImagePath        string           `json:"image_path"`
	UserID           int              `json:"user_id"`
	// Nom de l'auteur, joint depuis la table utilisateurs
	Author string `json:"author"`
}

// PaginatedAdsResponse contient les résultats de la recherche avec les métadonnées de pagination
type PaginatedAdsResponse struct {
	TotalCount int  `json:"total_count"` // Nombre total d'annonces correspondantes
	Page       int  `json:"page"`        // Numéro de la page actuelle
	Limit      int  `json:"limit"`       // Nombre d'annonces par page
	Ads        []Ad `json:"ads"`         // La liste des annonces pour la page actuelle
}
