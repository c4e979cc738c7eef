package models

import "time"

type Title struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Year        int       `gorm:"not null" json:"year"`
	Description string    `gorm:"type:text" json:"description"`
	CategoryID  *int64    `gorm:"index" json:"-"`
	CreatedAt   time.Time `json:"-"`

	// Associations. Deleting a category keeps the title with category NULL.
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category"`
	Genres   []Genre   `gorm:"many2many:title_genres;constraint:OnDelete:CASCADE" json:"genre"`
}

func (Title) TableName() string {
	return "titles"
}
