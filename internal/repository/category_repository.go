package repository

import (
	"errors"

	"github.com/critics-hub/yamdb/internal/models"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &category, nil
}

func (r *CategoryRepository) List(search string, page, pageSize int) ([]models.Category, int64, error) {
	var categories []models.Category
	var total int64

	query := r.db.Model(&models.Category{})
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("slug").Limit(pageSize).Offset(offset).Find(&categories).Error
	if err != nil {
		return nil, 0, err
	}

	return categories, total, nil
}

// DeleteBySlug removes exactly one category. Titles referencing it keep
// their row with category set to NULL (ON DELETE SET NULL).
func (r *CategoryRepository) DeleteBySlug(slug string) error {
	category, err := r.GetBySlug(slug)
	if err != nil {
		return err
	}
	if category == nil {
		return gorm.ErrRecordNotFound
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		// Detach titles explicitly so the behavior holds even on databases
		// where automigrate did not install the FK constraint.
		if err := tx.Model(&models.Title{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(category).Error
	})
}
