package handler

import (
	"errors"
	"net/http"

	"github.com/critics-hub/yamdb/internal/middleware"
	"github.com/critics-hub/yamdb/internal/service"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves categories and genres. The two resources share a
// shape (name + slug) and a permission model, so they share a handler.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

type ClassifierRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req ClassifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	category, err := h.catalogService.CreateCategory(middleware.Actor(c), req.Name, req.Slug)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, categoryJSON(category))
}

// GET /api/v1/categories?search=
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	page, pageSize := pagination(c)

	categories, total, err := h.catalogService.ListCategories(c.Query("search"), page, pageSize)
	if err != nil {
		logger.Log.Error("Failed to list categories", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	items := make([]gin.H, 0, len(categories))
	for i := range categories {
		items = append(items, categoryJSON(&categories[i]))
	}

	c.JSON(http.StatusOK, listResponse(items, total))
}

// DELETE /api/v1/categories/:slug
// Titles in the category survive with their category cleared.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	err := h.catalogService.DeleteCategory(middleware.Actor(c), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	c.Status(http.StatusNoContent)
}

// POST /api/v1/genres
func (h *CatalogHandler) CreateGenre(c *gin.Context) {
	var req ClassifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	genre, err := h.catalogService.CreateGenre(middleware.Actor(c), req.Name, req.Slug)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, genreJSON(genre))
}

// GET /api/v1/genres?search=
func (h *CatalogHandler) ListGenres(c *gin.Context) {
	page, pageSize := pagination(c)

	genres, total, err := h.catalogService.ListGenres(c.Query("search"), page, pageSize)
	if err != nil {
		logger.Log.Error("Failed to list genres", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch genres"})
		return
	}

	items := make([]gin.H, 0, len(genres))
	for i := range genres {
		items = append(items, genreJSON(&genres[i]))
	}

	c.JSON(http.StatusOK, listResponse(items, total))
}

// DELETE /api/v1/genres/:slug
func (h *CatalogHandler) DeleteGenre(c *gin.Context) {
	err := h.catalogService.DeleteGenre(middleware.Actor(c), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrGenreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete genre"})
		return
	}

	c.Status(http.StatusNoContent)
}
