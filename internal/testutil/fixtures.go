package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestJWTSecret signs every token used in tests.
const TestJWTSecret = "test-secret-key"

// TestConfirmationCode is the plain code stored (hashed) on fixture users.
const TestConfirmationCode = "fixture-confirmation-code"

// CreateTestUser persists a user with the fixture confirmation code
// already issued.
func CreateTestUser(t *testing.T, db *gorm.DB, username, email string, role models.Role) *models.User {
	hash, err := utils.HashConfirmationCode(TestConfirmationCode)
	if err != nil {
		t.Fatalf("Failed to hash confirmation code: %v", err)
	}

	user := &models.User{
		ID:               uuid.New().String(),
		Username:         username,
		Email:            email,
		Role:             role,
		ConfirmationHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}

	return user
}

// TokenFor issues a valid bearer token for the given user.
func TokenFor(t *testing.T, user *models.User) string {
	token, err := utils.GenerateToken(user, TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token for %s: %v", user.Username, err)
	}
	return token
}

func CreateTestCategory(t *testing.T, db *gorm.DB, name, slug string) *models.Category {
	category := &models.Category{Name: name, Slug: slug}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("Failed to create test category %s: %v", slug, err)
	}
	return category
}

func CreateTestGenre(t *testing.T, db *gorm.DB, name, slug string) *models.Genre {
	genre := &models.Genre{Name: name, Slug: slug}
	if err := db.Create(genre).Error; err != nil {
		t.Fatalf("Failed to create test genre %s: %v", slug, err)
	}
	return genre
}

func CreateTestTitle(t *testing.T, db *gorm.DB, name string, year int, category *models.Category, genres ...models.Genre) *models.Title {
	title := &models.Title{
		Name:   name,
		Year:   year,
		Genres: genres,
	}
	if category != nil {
		title.CategoryID = &category.ID
	}
	if err := db.Create(title).Error; err != nil {
		t.Fatalf("Failed to create test title %s: %v", name, err)
	}
	return title
}

func CreateTestReview(t *testing.T, db *gorm.DB, title *models.Title, author *models.User, text string, score int) *models.Review {
	review := &models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     text,
		Score:    score,
	}
	if err := db.Create(review).Error; err != nil {
		t.Fatalf("Failed to create test review: %v", err)
	}
	return review
}

func CreateTestComment(t *testing.T, db *gorm.DB, review *models.Review, author *models.User, text string) *models.Comment {
	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}
	return comment
}

// SentMail is one recorded confirmation-code delivery.
type SentMail struct {
	Email    string
	Username string
	Code     string
}

// MailRecorder implements mailer.Sender and captures every delivery so
// tests can read the code back.
type MailRecorder struct {
	mu   sync.Mutex
	sent []SentMail
}

func NewMailRecorder() *MailRecorder {
	return &MailRecorder{}
}

func (r *MailRecorder) Send(_ context.Context, email, username, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, SentMail{Email: email, Username: username, Code: code})
	return nil
}

// Last returns the most recent delivery, or nil when nothing was sent.
func (r *MailRecorder) Last() *SentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return nil
	}
	last := r.sent[len(r.sent)-1]
	return &last
}

func (r *MailRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}
