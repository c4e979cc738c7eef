package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/critics-hub/yamdb/internal/handler"
	"github.com/critics-hub/yamdb/internal/middleware"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/internal/service"
	"github.com/critics-hub/yamdb/internal/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// newTestRouter wires the full route table against an in-memory database,
// mirroring the production wiring minus redis and the audit trail.
func newTestRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *testutil.MailRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := testutil.NewMailRecorder()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, recorder, testutil.TestJWTSecret, time.Hour, "development")
	userService := service.NewUserService(userRepo, nil)
	catalogService := service.NewCatalogService(categoryRepo, genreRepo, titleRepo, nil)
	reviewService := service.NewReviewService(reviewRepo, titleRepo, nil, nil)
	commentService := service.NewCommentService(commentRepo, reviewRepo, nil, nil)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	titleHandler := handler.NewTitleHandler(catalogService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	commentHandler := handler.NewCommentHandler(commentService)

	router := gin.New()
	api := router.Group("/api/v1")

	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/token", authHandler.Token)

	public := api.Group("")
	public.Use(middleware.OptionalAuthMiddleware(testutil.TestJWTSecret))
	{
		public.GET("/categories", catalogHandler.ListCategories)
		public.GET("/genres", catalogHandler.ListGenres)
		public.GET("/titles", titleHandler.List)
		public.GET("/titles/:title_id", titleHandler.Get)
		public.GET("/titles/:title_id/reviews", reviewHandler.List)
		public.GET("/titles/:title_id/reviews/:review_id", reviewHandler.Get)
		public.GET("/titles/:title_id/reviews/:review_id/comments", commentHandler.List)
		public.GET("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Get)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(testutil.TestJWTSecret))
	{
		authed.GET("/users/me", userHandler.Me)
		authed.PATCH("/users/me", userHandler.UpdateMe)

		authed.POST("/titles/:title_id/reviews", reviewHandler.Create)
		authed.PATCH("/titles/:title_id/reviews/:review_id", reviewHandler.Update)
		authed.DELETE("/titles/:title_id/reviews/:review_id", reviewHandler.Delete)

		authed.POST("/titles/:title_id/reviews/:review_id/comments", commentHandler.Create)
		authed.PATCH("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Update)
		authed.DELETE("/titles/:title_id/reviews/:review_id/comments/:comment_id", commentHandler.Delete)
	}

	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(testutil.TestJWTSecret), middleware.AdminMiddleware())
	{
		admin.GET("/users", userHandler.List)
		admin.POST("/users", userHandler.Create)
		admin.GET("/users/:username", userHandler.Get)
		admin.PATCH("/users/:username", userHandler.Update)
		admin.DELETE("/users/:username", userHandler.Delete)

		admin.POST("/categories", catalogHandler.CreateCategory)
		admin.DELETE("/categories/:slug", catalogHandler.DeleteCategory)
		admin.POST("/genres", catalogHandler.CreateGenre)
		admin.DELETE("/genres/:slug", catalogHandler.DeleteGenre)

		admin.POST("/titles", titleHandler.Create)
		admin.PATCH("/titles/:title_id", titleHandler.Update)
		admin.DELETE("/titles/:title_id", titleHandler.Delete)
	}

	return router, recorder
}

// doRequest performs a JSON request, optionally authenticated.
func doRequest(router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		buf = bytes.NewBuffer(bodyBytes)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return response
}
