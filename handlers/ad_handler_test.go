package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"quickannonce-backend/models"
)

func TestParseAdSearchParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/ads/search", nil)
	p := parseAdSearchParams(r)

	assert.Equal(t, "", p.Query)
	assert.Equal(t, "", p.Category)
	assert.Equal(t, "", p.City)
	assert.Equal(t, float64(0), p.MinPrice)
	assert.Equal(t, float64(0), p.MaxPrice)
	assert.Equal(t, 1, p.Page)
}

func TestParseAdSearchParamsInvalidValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/ads/search?page=abc&min=xyz&max=-", nil)
	p := parseAdSearchParams(r)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, float64(0), p.MinPrice)
	assert.Equal(t, float64(0), p.MaxPrice)

	r = httptest.NewRequest("GET", "/api/v1/ads/search?page=0", nil)
	assert.Equal(t, 1, parseAdSearchParams(r).Page)

	r = httptest.NewRequest("GET", "/api/v1/ads/search?page=-3", nil)
	assert.Equal(t, 1, parseAdSearchParams(r).Page)
}

func TestParseAdSearchParamsTrimsWhitespace(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/ads/search?q=+v%C3%A9lo+&city=+Paris+&category=+Immobilier+", nil)
	p := parseAdSearchParams(r)

	assert.Equal(t, "vélo", p.Query)
	assert.Equal(t, "Paris", p.City)
	assert.Equal(t, "Immobilier", p.Category)
}

func TestParseAdSearchParamsEtat(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/ads/search?etat=inactive", nil)
	assert.Equal(t, models.EtatInactive, parseAdSearchParams(r).Etat)

	r = httptest.NewRequest("GET", "/api/v1/ads/search?etat=active", nil)
	assert.Equal(t, models.EtatActive, parseAdSearchParams(r).Etat)

	// Un état inconnu est ignoré plutôt que de faire échouer la recherche
	r = httptest.NewRequest("GET", "/api/v1/ads/search?etat=archived", nil)
	assert.Equal(t, models.Etat(""), parseAdSearchParams(r).Etat)

	r = httptest.NewRequest("GET", "/api/v1/ads/search", nil)
	assert.Equal(t, models.Etat(""), parseAdSearchParams(r).Etat)
}

func TestOrderByClause(t *testing.T) {
	assert.Equal(t, "ORDER BY a.date_publication DESC", orderByClause("date_desc"))
	assert.Equal(t, "ORDER BY a.date_publication ASC", orderByClause("date_asc"))
	assert.Equal(t, "ORDER BY a.prix ASC, a.date_publication DESC", orderByClause("price_asc"))
	assert.Equal(t, "ORDER BY a.prix DESC, a.date_publication DESC", orderByClause("price_desc"))
	assert.Equal(t, "ORDER BY a.titre ASC", orderByClause("title_asc"))

	// Toute valeur inconnue retombe sur le tri par date décroissante
	assert.Equal(t, "ORDER BY a.date_publication DESC", orderByClause(""))
	assert.Equal(t, "ORDER BY a.date_publication DESC", orderByClause("popularity"))
}

func TestBuildAdSearchQueryBasePredicate(t *testing.T) {
	query, countQuery, args, countArgs := buildAdSearchQuery(adSearchParams{Page: 1})

	// Seules les annonces approuvées sont visibles publiquement
	assert.Contains(t, query, "a.moderation_status = 'approved'")
	assert.Contains(t, countQuery, "a.moderation_status = 'approved'")

	// Sans filtre, seuls LIMIT et OFFSET sont paramétrés
	assert.Equal(t, []interface{}{adsPerPage, 0}, args)
	assert.Empty(t, countArgs)
}

func TestBuildAdSearchQueryKeywordFilter(t *testing.T) {
	query, countQuery, args, countArgs := buildAdSearchQuery(adSearchParams{Query: "Vélo", Page: 1})

	// Recherche insensible à la casse sur titre et description
	assert.Contains(t, query, "LOWER(a.titre) LIKE $1")
	assert.Contains(t, query, "LOWER(a.description) LIKE $1")
	assert.Contains(t, countQuery, "LOWER(a.titre) LIKE $1")

	assert.Equal(t, "%vélo%", args[0])
	assert.Equal(t, []interface{}{"%vélo%"}, countArgs)
}

func TestBuildAdSearchQueryEtatFilter(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/ads/search?etat=inactive", nil)
	query, countQuery, args, countArgs := buildAdSearchQuery(parseAdSearchParams(r))

	// Le filtre d'état apparaît dans la requête de page ET dans le comptage
	assert.Contains(t, query, "a.etat = $1")
	assert.Contains(t, countQuery, "a.etat = $1")
	assert.Equal(t, []interface{}{models.EtatInactive, adsPerPage, 0}, args)
	assert.Equal(t, []interface{}{models.EtatInactive}, countArgs)
}

func TestBuildAdSearchQueryAllFilters(t *testing.T) {
	p := adSearchParams{
		Query:    "table",
		Etat:     models.EtatActive,
		Category: "Maison & Jardin",
		City:     "Lyon",
		MinPrice: 10,
		MaxPrice: 200,
		Page:     3,
	}
	query, countQuery, args, countArgs := buildAdSearchQuery(p)

	assert.Contains(t, query, "a.etat = $2")
	assert.Contains(t, query, "a.categorie = $3")
	assert.Contains(t, query, "a.ville = $4")
	assert.Contains(t, query, "a.prix >= $5")
	assert.Contains(t, query, "a.prix <= $6")
	assert.Contains(t, query, "LIMIT $7 OFFSET $8")

	// Les filtres s'accumulent en conjonction et les deux requêtes partagent le même WHERE
	assert.Equal(t, strings.Count(query, " AND "), strings.Count(countQuery, " AND "))
	assert.Contains(t, countQuery, "a.prix <= $6")

	assert.Equal(t, []interface{}{"%table%", models.EtatActive, "Maison & Jardin", "Lyon", float64(10), float64(200), adsPerPage, 40}, args)
	assert.Equal(t, []interface{}{"%table%", models.EtatActive, "Maison & Jardin", "Lyon", float64(10), float64(200)}, countArgs)
}

func TestBuildAdSearchQueryIgnoresNonPositivePrices(t *testing.T) {
	query, _, args, _ := buildAdSearchQuery(adSearchParams{MinPrice: 0, MaxPrice: -5, Page: 1})

	assert.NotContains(t, query, "a.prix >=")
	assert.NotContains(t, query, "a.prix <=")
	assert.Equal(t, []interface{}{adsPerPage, 0}, args)
}

func TestBuildAdSearchQueryMinAboveMax(t *testing.T) {
	// Un minimum supérieur au maximum est conservé tel quel: les deux bornes
	// sont émises et la requête produit un résultat vide
	query, _, args, _ := buildAdSearchQuery(adSearchParams{MinPrice: 500, MaxPrice: 100, Page: 1})

	assert.Contains(t, query, "a.prix >= $1")
	assert.Contains(t, query, "a.prix <= $2")
	assert.Equal(t, []interface{}{float64(500), float64(100), adsPerPage, 0}, args)
}

func TestBuildAdSearchQueryPagination(t *testing.T) {
	_, _, args, _ := buildAdSearchQuery(adSearchParams{Page: 1})
	assert.Equal(t, adsPerPage, args[len(args)-2])
	assert.Equal(t, 0, args[len(args)-1])

	_, _, args, _ = buildAdSearchQuery(adSearchParams{Page: 5})
	assert.Equal(t, adsPerPage, args[len(args)-2])
	assert.Equal(t, 80, args[len(args)-1])
}
