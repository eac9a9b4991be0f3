package services

import (
	"context"
	"drawshare/core"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

type Comments struct {
	store core.Store
}

// Create inserts the comment and appends it to the drawing in one
// transaction.
func (s *Comments) Create(ctx context.Context, caller *core.User, body, drawingID string) (*core.Comment, error) {
	if caller == nil {
		return nil, core.Unauthorized("Not authorized, please log in.")
	}
	if blank(body) || blank(drawingID) {
		return nil, core.Validation("Invalid inputs passed, please check your data.")
	}

	comment := &core.Comment{
		Body:      strings.TrimSpace(body),
		DrawingID: drawingID,
		AuthorID:  caller.ID,
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		drawing, err := tx.FindDrawingByID(ctx, drawingID)
		if err != nil {
			return core.Lookup(err, "Could not find drawing for provided id.", "Creating comment failed, try again.")
		}
		if err := tx.InsertComment(ctx, comment); err != nil {
			return err
		}
		drawing.Comments = core.PushID(drawing.Comments, comment.ID)
		return tx.SaveDrawing(ctx, drawing)
	})
	if err != nil {
		return nil, failed(err, "Creating comment failed, try again.")
	}

	logrus.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"drawing_id": drawingID,
	}).Info("Comment posted")
	return comment, nil
}

// ListByDrawing returns the drawing's comments in creation order with their
// authors populated.
func (s *Comments) ListByDrawing(ctx context.Context, drawingID string) ([]*core.CommentDetail, error) {
	if _, err := s.store.FindDrawingByID(ctx, drawingID); err != nil {
		return nil, core.Lookup(err, "Could not find drawing for provided id.", "Fetching comments failed, try again.")
	}
	return populateComments(ctx, s.store, newUserCache(s.store), drawingID)
}

// Delete removes the comment and its reference on the drawing in one
// transaction. Only the author may delete a comment.
func (s *Comments) Delete(ctx context.Context, caller *core.User, id string) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		comment, err := tx.FindCommentByID(ctx, id)
		if err != nil {
			return core.Lookup(err, "Could not find a comment for the provided id.", "Something went wrong, could not delete comment.")
		}
		if err := AssertOwner(comment, caller, "Sorry, you are not allowed to delete this comment."); err != nil {
			return err
		}
		if err := tx.DeleteComment(ctx, id); err != nil {
			return err
		}

		drawing, err := tx.FindDrawingByID(ctx, comment.DrawingID)
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		drawing.Comments = core.PullID(drawing.Comments, id)
		return tx.SaveDrawing(ctx, drawing)
	})
	if err != nil {
		return failed(err, "Deleting comment from database failed, try again.")
	}

	logrus.WithField("comment_id", id).Info("Comment removed")
	return nil
}

func populateComments(ctx context.Context, repo core.Repository, users *userCache, drawingID string) ([]*core.CommentDetail, error) {
	comments, err := repo.ListComments(ctx, core.CommentFilter{DrawingID: drawingID})
	if err != nil {
		return nil, core.Upstream("Fetching comments failed, try again.", err)
	}
	details := make([]*core.CommentDetail, 0, len(comments))
	for _, c := range comments {
		author, err := users.get(ctx, c.AuthorID)
		if err != nil {
			return nil, core.Upstream("Fetching comments failed, try again.", err)
		}
		details = append(details, core.NewCommentDetail(c, author))
	}
	return details, nil
}
