package models

import "time"

type Comment struct {
	ID       int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ReviewID int64     `gorm:"not null;index" json:"-"`
	AuthorID string    `gorm:"type:uuid;not null;index" json:"-"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`

	Review Review `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"-"`
	Author User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
