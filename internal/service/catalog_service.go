package service

import (
	"errors"
	"math"

	"github.com/critics-hub/yamdb/internal/audit"
	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/internal/validators"
	"github.com/critics-hub/yamdb/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrSlugTaken        = errors.New("a record with this slug already exists")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrUnknownCategory  = errors.New("unknown category slug")
	ErrUnknownGenre     = errors.New("unknown genre slug")
)

// TitleInput is the write payload: category and genres referenced by slug
// and translated to relational references here.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Category    string
	Genres      []string
}

// TitleView is a title with its computed rating: the rounded mean of review
// scores, nil when the title has no reviews.
type TitleView struct {
	Title  models.Title
	Rating *int
}

type CatalogService struct {
	categoryRepo *repository.CategoryRepository
	genreRepo    *repository.GenreRepository
	titleRepo    *repository.TitleRepository
	trail        *audit.Trail
}

func NewCatalogService(
	categoryRepo *repository.CategoryRepository,
	genreRepo *repository.GenreRepository,
	titleRepo *repository.TitleRepository,
	trail *audit.Trail,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		titleRepo:    titleRepo,
		trail:        trail,
	}
}

// --- Categories ---

func (s *CatalogService) CreateCategory(actor *models.User, name, slug string) (*models.Category, error) {
	if err := validators.ValidateSlug(slug); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	category := &models.Category{Name: name, Slug: slug}
	if err := s.categoryRepo.Create(category); err != nil {
		logger.Log.Error("Failed to create category", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	s.record(actor, "category.create", slug)
	return category, nil
}

func (s *CatalogService) ListCategories(search string, page, pageSize int) ([]models.Category, int64, error) {
	return s.categoryRepo.List(search, page, pageSize)
}

func (s *CatalogService) DeleteCategory(actor *models.User, slug string) error {
	if err := s.categoryRepo.DeleteBySlug(slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	s.record(actor, "category.delete", slug)
	return nil
}

// --- Genres ---

func (s *CatalogService) CreateGenre(actor *models.User, name, slug string) (*models.Genre, error) {
	if err := validators.ValidateSlug(slug); err != nil {
		return nil, err
	}

	existing, err := s.genreRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	genre := &models.Genre{Name: name, Slug: slug}
	if err := s.genreRepo.Create(genre); err != nil {
		logger.Log.Error("Failed to create genre", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}

	s.record(actor, "genre.create", slug)
	return genre, nil
}

func (s *CatalogService) ListGenres(search string, page, pageSize int) ([]models.Genre, int64, error) {
	return s.genreRepo.List(search, page, pageSize)
}

func (s *CatalogService) DeleteGenre(actor *models.User, slug string) error {
	if err := s.genreRepo.DeleteBySlug(slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}

	s.record(actor, "genre.delete", slug)
	return nil
}

// --- Titles ---

func (s *CatalogService) CreateTitle(actor *models.User, input TitleInput) (*TitleView, error) {
	if err := validators.ValidateYear(input.Year); err != nil {
		return nil, err
	}

	category, genres, err := s.resolveReferences(input)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        input.Name,
		Year:        input.Year,
		Description: input.Description,
		Genres:      genres,
	}
	if category != nil {
		title.CategoryID = &category.ID
		title.Category = category
	}

	if err := s.titleRepo.Create(title); err != nil {
		logger.Log.Error("Failed to create title", zap.String("name", input.Name), zap.Error(err))
		return nil, err
	}

	s.record(actor, "title.create", title.Name)
	return &TitleView{Title: *title}, nil
}

func (s *CatalogService) GetTitle(id int64) (*TitleView, error) {
	title, err := s.titleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, ErrTitleNotFound
	}

	rating, err := s.rating(id)
	if err != nil {
		return nil, err
	}

	return &TitleView{Title: *title, Rating: rating}, nil
}

func (s *CatalogService) ListTitles(filter repository.TitleFilter, page, pageSize int) ([]TitleView, int64, error) {
	titles, total, err := s.titleRepo.List(filter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	views := make([]TitleView, 0, len(titles))
	for _, title := range titles {
		rating, err := s.rating(title.ID)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, TitleView{Title: title, Rating: rating})
	}

	return views, total, nil
}

// UpdateTitle applies a partial update; zero-valued input fields keep the
// stored values, except Category/Genres which are replaced when provided.
func (s *CatalogService) UpdateTitle(actor *models.User, id int64, input TitleInput) (*TitleView, error) {
	title, err := s.titleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, ErrTitleNotFound
	}

	if input.Name != "" {
		title.Name = input.Name
	}
	if input.Year != 0 {
		if err := validators.ValidateYear(input.Year); err != nil {
			return nil, err
		}
		title.Year = input.Year
	}
	if input.Description != "" {
		title.Description = input.Description
	}

	genres := title.Genres
	if input.Category != "" {
		category, err := s.categoryRepo.GetBySlug(input.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, ErrUnknownCategory
		}
		title.CategoryID = &category.ID
		title.Category = category
	}
	if input.Genres != nil {
		resolved, missing, err := s.genreRepo.GetBySlugs(input.Genres)
		if err != nil {
			return nil, err
		}
		if missing != "" {
			return nil, ErrUnknownGenre
		}
		genres = resolved
	}

	if err := s.titleRepo.Update(title, genres); err != nil {
		logger.Log.Error("Failed to update title", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	title.Genres = genres

	rating, err := s.rating(id)
	if err != nil {
		return nil, err
	}

	s.record(actor, "title.update", title.Name)
	return &TitleView{Title: *title, Rating: rating}, nil
}

func (s *CatalogService) DeleteTitle(actor *models.User, id int64) error {
	title, err := s.titleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if title == nil {
		return ErrTitleNotFound
	}

	if err := s.titleRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}

	s.record(actor, "title.delete", title.Name)
	return nil
}

func (s *CatalogService) resolveReferences(input TitleInput) (*models.Category, []models.Genre, error) {
	var category *models.Category
	if input.Category != "" {
		found, err := s.categoryRepo.GetBySlug(input.Category)
		if err != nil {
			return nil, nil, err
		}
		if found == nil {
			return nil, nil, ErrUnknownCategory
		}
		category = found
	}

	genres, missing, err := s.genreRepo.GetBySlugs(input.Genres)
	if err != nil {
		return nil, nil, err
	}
	if missing != "" {
		return nil, nil, ErrUnknownGenre
	}

	return category, genres, nil
}

func (s *CatalogService) rating(titleID int64) (*int, error) {
	avg, hasReviews, err := s.titleRepo.AverageScore(titleID)
	if err != nil {
		return nil, err
	}
	if !hasReviews {
		return nil, nil
	}

	rounded := int(math.Round(avg))
	return &rounded, nil
}

func (s *CatalogService) record(actor *models.User, action, resource string) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Write(audit.Record{
		Actor:    actor.Username,
		Action:   action,
		Resource: resource,
	}); err != nil {
		logger.Log.Warn("Audit write failed", zap.String("action", action), zap.Error(err))
	}
}
