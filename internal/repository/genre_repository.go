package repository

import (
	"errors"

	"github.com/critics-hub/yamdb/internal/models"
	"gorm.io/gorm"
)

type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) Create(genre *models.Genre) error {
	return r.db.Create(genre).Error
}

func (r *GenreRepository) GetBySlug(slug string) (*models.Genre, error) {
	var genre models.Genre
	err := r.db.Where("slug = ?", slug).First(&genre).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &genre, nil
}

// GetBySlugs resolves every slug or reports the first unknown one.
func (r *GenreRepository) GetBySlugs(slugs []string) ([]models.Genre, string, error) {
	genres := make([]models.Genre, 0, len(slugs))
	for _, slug := range slugs {
		genre, err := r.GetBySlug(slug)
		if err != nil {
			return nil, "", err
		}
		if genre == nil {
			return nil, slug, nil
		}
		genres = append(genres, *genre)
	}
	return genres, "", nil
}

func (r *GenreRepository) List(search string, page, pageSize int) ([]models.Genre, int64, error) {
	var genres []models.Genre
	var total int64

	query := r.db.Model(&models.Genre{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("slug").Limit(pageSize).Offset(offset).Find(&genres).Error
	if err != nil {
		return nil, 0, err
	}

	return genres, total, nil
}

func (r *GenreRepository) DeleteBySlug(slug string) error {
	genre, err := r.GetBySlug(slug)
	if err != nil {
		return err
	}
	if genre == nil {
		return gorm.ErrRecordNotFound
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		// Clear join rows first; titles themselves stay untouched.
		if err := tx.Exec("DELETE FROM title_genres WHERE genre_id = ?", genre.ID).Error; err != nil {
			return err
		}

		return tx.Delete(genre).Error
	})
}
