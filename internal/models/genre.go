package models

type Genre struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	Name string `gorm:"type:varchar(256);not null" json:"name"`
	Slug string `gorm:"type:varchar(50);uniqueIndex;not null" json:"slug"`
}

func (Genre) TableName() string {
	return "genres"
}
