package service_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/critics-hub/yamdb/internal/audit"
	"github.com/critics-hub/yamdb/internal/broker"
	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/internal/service"
	"github.com/critics-hub/yamdb/internal/testutil"
	"github.com/critics-hub/yamdb/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// ReviewServiceIntegrationTestSuite exercises the review lifecycle against
// a real database, a real redis broker (miniredis) and a real audit file.
type ReviewServiceIntegrationTestSuite struct {
	suite.Suite
	testDB    *testutil.TestDatabase
	testRedis *testutil.TestRedis
	broker    *broker.RedisEventBroker
	trail     *audit.Trail

	reviewService *service.ReviewService
	reviewRepo    *repository.ReviewRepository
}

func (s *ReviewServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.testRedis = testutil.SetupTestRedis(s.T())

	var err error
	s.broker, err = broker.NewRedisEventBroker(s.testRedis.URL)
	if err != nil {
		s.T().Fatalf("Failed to connect event broker: %v", err)
	}

	s.trail, err = audit.NewTrail(filepath.Join(s.T().TempDir(), "audit.log"))
	if err != nil {
		s.T().Fatalf("Failed to open audit trail: %v", err)
	}

	s.reviewRepo = repository.NewReviewRepository(s.testDB.DB)
	titleRepo := repository.NewTitleRepository(s.testDB.DB)
	s.reviewService = service.NewReviewService(s.reviewRepo, titleRepo, s.broker, s.trail)
}

func (s *ReviewServiceIntegrationTestSuite) TearDownSuite() {
	s.broker.Close()
	s.trail.Close()
	s.testRedis.Teardown(s.T())
	s.testDB.Teardown(s.T())
}

func (s *ReviewServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *ReviewServiceIntegrationTestSuite) TestCreatePublishesActivityEvent() {
	events, err := s.broker.Subscribe()
	s.Require().NoError(err)

	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Broadcast", 1990, nil)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "author", "author@example.com", models.RoleUser)

	review, err := s.reviewService.Create(author, title.ID, "worth a read", 9)
	s.Require().NoError(err)

	select {
	case event := <-events:
		assert.Equal(s.T(), "review_created", event.Type)
		assert.Equal(s.T(), title.ID, event.TitleID)
		assert.Equal(s.T(), review.ID, event.ReviewID)
		assert.Equal(s.T(), "author", event.Author)
		assert.Equal(s.T(), 9, event.Score)
		assert.NotEmpty(s.T(), event.Timestamp)
	case <-time.After(2 * time.Second):
		s.T().Fatal("no activity event received")
	}
}

func (s *ReviewServiceIntegrationTestSuite) TestDuplicateReviewRejected() {
	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Once Only", 1990, nil)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "author", "author@example.com", models.RoleUser)

	_, err := s.reviewService.Create(author, title.ID, "first", 5)
	s.Require().NoError(err)

	_, err = s.reviewService.Create(author, title.ID, "second", 7)
	assert.ErrorIs(s.T(), err, service.ErrReviewExists)

	reviews, total, err := s.reviewRepo.ListByTitle(title.ID, 1, 10)
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(1), total)
	assert.Equal(s.T(), "first", reviews[0].Text)
}

func (s *ReviewServiceIntegrationTestSuite) TestUniqueIndexBacksPreCheck() {
	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Indexed", 1990, nil)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "author", "author@example.com", models.RoleUser)

	_, err := s.reviewService.Create(author, title.ID, "first", 5)
	s.Require().NoError(err)

	// A write that skips the service pre-check lands on the composite
	// index directly.
	err = s.reviewRepo.Create(&models.Review{
		TitleID:  title.ID,
		AuthorID: author.ID,
		Text:     "again",
		Score:    6,
	})
	s.Require().Error(err)
	assert.Contains(s.T(), err.Error(), "UNIQUE constraint")

	_, total, err := s.reviewRepo.ListByTitle(title.ID, 1, 10)
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(1), total)
}

func (s *ReviewServiceIntegrationTestSuite) TestConcurrentDuplicateLosesRace() {
	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Contested", 1990, nil)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "author", "author@example.com", models.RoleUser)

	start := make(chan struct{})
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func(text string) {
			<-start
			_, err := s.reviewService.Create(author, title.ID, text, 8)
			results <- err
		}(fmt.Sprintf("attempt %d", i))
	}
	close(start)

	var created, rejected int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			created++
		case errors.Is(err, service.ErrReviewExists):
			rejected++
		default:
			s.T().Fatalf("unexpected error: %v", err)
		}
	}

	// Whichever submission loses, it maps to the same sentinel and exactly
	// one row survives.
	assert.Equal(s.T(), 1, created)
	assert.Equal(s.T(), 1, rejected)

	_, total, err := s.reviewRepo.ListByTitle(title.ID, 1, 10)
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(1), total)
}

func (s *ReviewServiceIntegrationTestSuite) TestScoreBounds() {
	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Scored", 1990, nil)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "author", "author@example.com", models.RoleUser)

	_, err := s.reviewService.Create(author, title.ID, "too low", 0)
	assert.ErrorIs(s.T(), err, service.ErrScoreOutOfRange)

	_, err = s.reviewService.Create(author, title.ID, "too high", 11)
	assert.ErrorIs(s.T(), err, service.ErrScoreOutOfRange)
}

func (s *ReviewServiceIntegrationTestSuite) TestModeratorDeleteIsAudited() {
	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Moderated", 1990, nil)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "author", "author@example.com", models.RoleUser)
	moderator := testutil.CreateTestUser(s.T(), s.testDB.DB, "mod", "mod@example.com", models.RoleModerator)

	review, err := s.reviewService.Create(author, title.ID, "to be removed", 2)
	s.Require().NoError(err)

	err = s.reviewService.Delete(moderator, title.ID, review.ID)
	s.Require().NoError(err)

	records, err := s.trail.ReadAll()
	s.Require().NoError(err)

	var found bool
	for _, record := range records {
		if record.Action == "review.delete" && record.Actor == "mod" {
			found = true
		}
	}
	assert.True(s.T(), found, "moderator delete should land in the audit trail")
}

func (s *ReviewServiceIntegrationTestSuite) TestAuthorDeleteIsNotAudited() {
	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Self Service", 1990, nil)
	author := testutil.CreateTestUser(s.T(), s.testDB.DB, "selfauthor", "selfauthor@example.com", models.RoleUser)

	review, err := s.reviewService.Create(author, title.ID, "regretted", 3)
	s.Require().NoError(err)

	err = s.reviewService.Delete(author, title.ID, review.ID)
	s.Require().NoError(err)

	records, err := s.trail.ReadAll()
	s.Require().NoError(err)
	for _, record := range records {
		if record.Actor == "selfauthor" {
			s.T().Fatalf("author deleting own review must not be audited: %+v", record)
		}
	}
}

func (s *ReviewServiceIntegrationTestSuite) TestListOrderedNewestFirst() {
	title := testutil.CreateTestTitle(s.T(), s.testDB.DB, "Ordered", 1990, nil)

	for i := 0; i < 3; i++ {
		author := testutil.CreateTestUser(s.T(), s.testDB.DB,
			fmt.Sprintf("critic%d", i), fmt.Sprintf("critic%d@example.com", i), models.RoleUser)
		_, err := s.reviewService.Create(author, title.ID, fmt.Sprintf("review %d", i), 5)
		s.Require().NoError(err)
	}

	reviews, total, err := s.reviewService.ListByTitle(title.ID, 1, 10)
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(3), total)
	// Newest first; same-timestamp rows fall back to id order.
	assert.Equal(s.T(), "review 2", reviews[0].Text)
	assert.Equal(s.T(), "review 0", reviews[2].Text)
}

func TestReviewServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ReviewServiceIntegrationTestSuite))
}
