package models

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	Name string `gorm:"type:varchar(256);not null" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

func (Category) TableName() string {
	return "categories"
}
