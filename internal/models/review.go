package models

import "time"

type Review struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	TitleID  int64  `gorm:"not null;uniqueIndex:idx_reviews_title_author" json:"-"`
	AuthorID string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_title_author" json:"-"`
	Text     string `gorm:"type:text;not null" json:"text"`
	// The unique index on (title_id, author_id) is the authority for the
	// one-review-per-author rule; the service pre-check only shapes the error.
	Score   int       `gorm:"not null;check:score >= 1 AND score <= 10" json:"score"`
	PubDate time.Time `gorm:"autoCreateTime;index" json:"pub_date"`

	Title  Title `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE" json:"-"`
	Author User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
