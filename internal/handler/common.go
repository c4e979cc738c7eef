package handler

import (
	"strconv"

	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// pagination parses ?page and ?page_size with sane bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return page, pageSize
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func userJSON(user *models.User) gin.H {
	return gin.H{
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"bio":        user.Bio,
		"role":       user.Role,
	}
}

func categoryJSON(category *models.Category) gin.H {
	return gin.H{
		"name": category.Name,
		"slug": category.Slug,
	}
}

func genreJSON(genre *models.Genre) gin.H {
	return gin.H{
		"name": genre.Name,
		"slug": genre.Slug,
	}
}

func titleJSON(view *service.TitleView) gin.H {
	genres := make([]gin.H, 0, len(view.Title.Genres))
	for i := range view.Title.Genres {
		genres = append(genres, genreJSON(&view.Title.Genres[i]))
	}

	var category any
	if view.Title.Category != nil {
		category = categoryJSON(view.Title.Category)
	}

	return gin.H{
		"id":          view.Title.ID,
		"name":        view.Title.Name,
		"year":        view.Title.Year,
		"rating":      view.Rating,
		"description": view.Title.Description,
		"category":    category,
		"genre":       genres,
	}
}

func reviewJSON(review *models.Review) gin.H {
	return gin.H{
		"id":       review.ID,
		"text":     review.Text,
		"author":   review.Author.Username,
		"score":    review.Score,
		"pub_date": review.PubDate,
	}
}

func commentJSON(comment *models.Comment) gin.H {
	return gin.H{
		"id":       comment.ID,
		"text":     comment.Text,
		"author":   comment.Author.Username,
		"pub_date": comment.PubDate,
	}
}

func listResponse(items []gin.H, total int64) gin.H {
	return gin.H{
		"count":   total,
		"results": items,
	}
}
