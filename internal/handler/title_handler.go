package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/critics-hub/yamdb/internal/middleware"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/internal/service"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TitleHandler struct {
	catalogService *service.CatalogService
}

func NewTitleHandler(catalogService *service.CatalogService) *TitleHandler {
	return &TitleHandler{
		catalogService: catalogService,
	}
}

type TitleRequest struct {
	Name        string   `json:"name"`
	Year        int      `json:"year"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genre       []string `json:"genre"`
}

func (r *TitleRequest) input() service.TitleInput {
	return service.TitleInput{
		Name:        r.Name,
		Year:        r.Year,
		Description: r.Description,
		Category:    r.Category,
		Genres:      r.Genre,
	}
}

// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == "" || req.Year == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and year are required"})
		return
	}

	view, err := h.catalogService.CreateTitle(middleware.Actor(c), req.input())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, titleJSON(view))
}

// GET /api/v1/titles with optional category/genre/name/year filters.
func (h *TitleHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
	}
	if yearStr := c.Query("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year filter"})
			return
		}
		filter.Year = year
	}

	views, total, err := h.catalogService.ListTitles(filter, page, pageSize)
	if err != nil {
		logger.Log.Error("Failed to list titles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch titles"})
		return
	}

	items := make([]gin.H, 0, len(views))
	for i := range views {
		items = append(items, titleJSON(&views[i]))
	}

	c.JSON(http.StatusOK, listResponse(items, total))
}

// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	view, err := h.catalogService.GetTitle(id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, titleJSON(view))
}

// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	var req TitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	view, err := h.catalogService.UpdateTitle(middleware.Actor(c), id, req.input())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, titleJSON(view))
}

// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid title ID"})
		return
	}

	if err := h.catalogService.DeleteTitle(middleware.Actor(c), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TitleHandler) writeError(c *gin.Context, err error) {
	statusCode := http.StatusBadRequest
	if errors.Is(err, service.ErrTitleNotFound) {
		statusCode = http.StatusNotFound
	}

	c.JSON(statusCode, gin.H{"error": err.Error()})
}
