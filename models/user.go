package models

import (
	"fmt"
	"time"
)

// Role représente le rôle d'un utilisateur sur la plateforme
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole valide et convertit une chaîne en Role
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("rôle inconnu : %q", s)
}

// User représente la structure des données d'un utilisateur
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Ne jamais exposer le hash
	Role         Role      `json:"role"`
	AdCount      int       `json:"ad_count"` // Compteur dénormalisé d'annonces
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin indique si l'utilisateur a les droits d'administration
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse représente la structure pour les réponses JSON
type UserResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AdCount   int       `json:"ad_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse convertit un User en UserResponse pour l'API
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		AdCount:   u.AdCount,
		CreatedAt: u.CreatedAt,
	}
}

// RegisterRequest représente les données d'inscription
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
