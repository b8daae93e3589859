package services

import (
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/policy"
	"github.com/yukikurage/task-service/internal/repository"
	"github.com/yukikurage/task-service/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound     = apierrors.New(apierrors.KindNotFound, "comment not found")
	ErrCommentAccessDenied = apierrors.New(apierrors.KindAccessDenied, "no access to this comment")
	ErrCommentTextRequired = apierrors.New(apierrors.KindValidation, "text can't be blank")
)

// CommentService handles comment business logic
type CommentService struct {
	store repository.Store
}

// NewCommentService creates a new CommentService
func NewCommentService(store repository.Store) *CommentService {
	return &CommentService{store: store}
}

// CommentSlice is one page of a task's comments.
type CommentSlice struct {
	Comments []models.Comment
	Page     int
	Size     int
	HasNext  bool
}

// ListComments returns one page of comments on a task in creation order
func (s *CommentService) ListComments(taskID uint64, page utils.PaginationParams) (*CommentSlice, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.Tasks().Exists(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if !exists {
		return nil, ErrTaskNotFound
	}

	comments, err := s.store.Comments().ListByTaskID(taskID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments, hasNext := utils.TrimPage(comments, page.Size)
	return &CommentSlice{
		Comments: comments,
		Page:     page.Page,
		Size:     page.Size,
		HasNext:  hasNext,
	}, nil
}

// CreateComment adds a comment owned by the principal to an existing task
func (s *CommentService) CreateComment(p models.Principal, taskID uint64, text string) (*models.Comment, error) {
	if p.IsAnonymous() {
		return nil, ErrAuthenticationRequired
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentTextRequired
	}

	var created *models.Comment
	err := s.store.Transaction(func(tx repository.Store) error {
		if err := lockTaskRow(tx, taskID); err != nil {
			return err
		}

		comment := &models.Comment{
			Text:    text,
			OwnerID: p.ID,
			TaskID:  taskID,
		}
		if err := tx.Comments().Create(comment); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		reloaded, err := tx.Comments().FindByID(comment.ID)
		if err != nil {
			return fmt.Errorf("failed to reload comment: %w", err)
		}
		created = reloaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateComment overwrites a comment's text. Only the owner may update.
func (s *CommentService) UpdateComment(p models.Principal, taskID, commentID uint64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentTextRequired
	}

	var updated *models.Comment
	err := s.store.Transaction(func(tx repository.Store) error {
		comment, err := lockComment(tx, taskID, commentID)
		if err != nil {
			return err
		}

		if !policy.CanModifyComment(p, comment) {
			return ErrCommentAccessDenied
		}

		comment.Text = text
		if err := tx.Comments().Update(comment); err != nil {
			return fmt.Errorf("failed to update comment: %w", err)
		}

		updated = comment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteComment removes a comment. Only the owner may delete.
// The comment as it was before deletion is returned.
func (s *CommentService) DeleteComment(p models.Principal, taskID, commentID uint64) (*models.Comment, error) {
	var deleted *models.Comment
	err := s.store.Transaction(func(tx repository.Store) error {
		comment, err := lockComment(tx, taskID, commentID)
		if err != nil {
			return err
		}

		if !policy.CanDeleteComment(p, comment) {
			return ErrCommentAccessDenied
		}

		if err := tx.Comments().Delete(comment.ID); err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}

		deleted = comment
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func lockTaskRow(tx repository.Store, taskID uint64) error {
	if err := tx.Tasks().LockByID(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}
	return nil
}

// lockComment resolves a comment through its task. A comment that belongs to another task is not found.
func lockComment(tx repository.Store, taskID, commentID uint64) (*models.Comment, error) {
	if err := lockTaskRow(tx, taskID); err != nil {
		return nil, err
	}

	comment, err := tx.Comments().FindByIDForUpdate(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	if comment.TaskID != taskID {
		return nil, ErrCommentNotFound
	}

	return comment, nil
}
