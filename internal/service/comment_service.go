package service

import (
	"errors"
	"time"

	"github.com/critics-hub/yamdb/internal/audit"
	"github.com/critics-hub/yamdb/internal/broker"
	"github.com/critics-hub/yamdb/internal/models"
	"github.com/critics-hub/yamdb/internal/permissions"
	"github.com/critics-hub/yamdb/internal/repository"
	"github.com/critics-hub/yamdb/pkg/logger"
	"go.uber.org/zap"
)

var ErrCommentNotFound = errors.New("comment not found")

type CommentService struct {
	commentRepo *repository.CommentRepository
	reviewRepo  *repository.ReviewRepository
	broker      broker.EventBroker
	trail       *audit.Trail
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	reviewRepo *repository.ReviewRepository,
	eventBroker broker.EventBroker,
	trail *audit.Trail,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
		broker:      eventBroker,
		trail:       trail,
	}
}

// Create attaches a comment to a review. The title/review pair is resolved
// first so a comment can never land under a review of a different title.
func (s *CommentService) Create(actor *models.User, titleID, reviewID int64, text string) (*models.Comment, error) {
	review, err := s.resolveReview(titleID, reviewID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReviewID: review.ID,
		AuthorID: actor.ID,
		Text:     text,
	}

	if err := s.commentRepo.Create(comment); err != nil {
		logger.Log.Error("Failed to create comment",
			zap.Int64("review_id", reviewID),
			zap.String("author", actor.Username),
			zap.Error(err),
		)
		return nil, err
	}
	comment.Author = *actor

	s.publish(broker.Event{
		Type:      "comment_created",
		TitleID:   titleID,
		ReviewID:  reviewID,
		CommentID: comment.ID,
		Author:    actor.Username,
	})

	return comment, nil
}

func (s *CommentService) Get(titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.resolveReview(titleID, reviewID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

func (s *CommentService) ListByReview(titleID, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	if _, err := s.resolveReview(titleID, reviewID); err != nil {
		return nil, 0, err
	}

	return s.commentRepo.ListByReview(reviewID, page, pageSize)
}

func (s *CommentService) Update(actor *models.User, titleID, reviewID, commentID int64, text string) (*models.Comment, error) {
	comment, err := s.Get(titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if !permissions.CanModify(actor, comment.AuthorID) {
		return nil, ErrForbidden
	}

	comment.Text = text
	if err := s.commentRepo.Save(comment); err != nil {
		logger.Log.Error("Failed to update comment",
			zap.Int64("comment_id", commentID),
			zap.Error(err),
		)
		return nil, err
	}

	if actor.ID != comment.AuthorID {
		s.record(actor, "comment.update", comment)
	}

	return comment, nil
}

func (s *CommentService) Delete(actor *models.User, titleID, reviewID, commentID int64) error {
	comment, err := s.Get(titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !permissions.CanModify(actor, comment.AuthorID) {
		return ErrForbidden
	}

	if err := s.commentRepo.Delete(comment); err != nil {
		logger.Log.Error("Failed to delete comment",
			zap.Int64("comment_id", commentID),
			zap.Error(err),
		)
		return err
	}

	if actor.ID != comment.AuthorID {
		s.record(actor, "comment.delete", comment)
	}

	s.publish(broker.Event{
		Type:      "comment_deleted",
		TitleID:   titleID,
		ReviewID:  reviewID,
		CommentID: commentID,
		Author:    actor.Username,
	})

	return nil
}

func (s *CommentService) resolveReview(titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *CommentService) publish(event broker.Event) {
	if s.broker == nil {
		return
	}
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if err := s.broker.Publish(event); err != nil {
		logger.Log.Warn("Failed to publish activity event",
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

func (s *CommentService) record(actor *models.User, action string, comment *models.Comment) {
	if s.trail == nil {
		return
	}
	if err := s.trail.Write(audit.Record{
		Actor:    actor.Username,
		Action:   action,
		Resource: comment.Author.Username,
	}); err != nil {
		logger.Log.Warn("Audit write failed", zap.String("action", action), zap.Error(err))
	}
}
