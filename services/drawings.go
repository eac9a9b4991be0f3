package services

import (
	"context"
	"drawshare/core"
	"drawshare/media"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	drawingNotFound = "Could not find a drawing for the provided id."
	notDrawingOwner = "Sorry, you are not allowed to modify this drawing."
)

type Drawings struct {
	store core.Store
	media *media.Coordinator
	now   func() time.Time
}

type DrawingInput struct {
	Title       string
	Description string
	ImgJSON     string
	Image       *core.Image
}

func (in DrawingInput) validate() error {
	if blank(in.Title) || blank(in.Description) {
		return core.Validation("Invalid inputs passed, please check your data.")
	}
	return nil
}

// clock stamps drawing dates in UTC so every store returns the same offset.
func (s *Drawings) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// Create uploads the image, then inserts the drawing and links it to the
// caller in one transaction. The image is removed again when the
// transaction fails.
func (s *Drawings) Create(ctx context.Context, caller *core.User, in DrawingInput) (*core.Drawing, error) {
	if caller == nil {
		return nil, core.Unauthorized("Not authorized, please log in.")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var imgURL string
	if in.Image != nil {
		url, err := s.media.Upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		imgURL = url
	}

	drawing := &core.Drawing{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Date:        s.clock(),
		ImgURL:      imgURL,
		ImgJSON:     in.ImgJSON,
		ArtistID:    caller.ID,
		LikeCount:   0,
		Comments:    []string{},
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		artist, err := tx.FindUserByID(ctx, caller.ID)
		if err != nil {
			return core.Lookup(err, "Could not find user for the provided id.", "Creating drawing failed, please try again.")
		}
		if err := tx.InsertDrawing(ctx, drawing); err != nil {
			return err
		}
		artist.Drawings = core.PushID(artist.Drawings, drawing.ID)
		return tx.SaveUser(ctx, artist)
	})
	if err != nil {
		s.media.DiscardQuietly(ctx, imgURL)
		return nil, failed(err, "Creating drawing failed, please try again.")
	}

	logrus.WithFields(logrus.Fields{
		"drawing_id": drawing.ID,
		"user_id":    caller.ID,
	}).Info("Drawing published")
	return drawing, nil
}

// Get returns the drawing with its artist and comments populated.
func (s *Drawings) Get(ctx context.Context, id string) (*core.DrawingDetail, error) {
	drawing, err := s.store.FindDrawingByID(ctx, id)
	if err != nil {
		return nil, core.Lookup(err, drawingNotFound, "Fetching drawing failed, please try again later.")
	}

	users := newUserCache(s.store)
	artist, err := users.get(ctx, drawing.ArtistID)
	if err != nil {
		return nil, core.Upstream("Fetching drawing failed, please try again later.", err)
	}
	comments, err := populateComments(ctx, s.store, users, drawing.ID)
	if err != nil {
		return nil, err
	}
	return core.NewDrawingDetail(drawing, artist, comments), nil
}

// List returns every drawing whose title contains search, ignoring case.
func (s *Drawings) List(ctx context.Context, search string) ([]*core.Drawing, error) {
	drawings, err := s.store.ListDrawings(ctx, core.DrawingFilter{Search: strings.TrimSpace(search)})
	if err != nil {
		return nil, core.Upstream("Fetching drawings failed, please try again later.", err)
	}
	if drawings == nil {
		drawings = []*core.Drawing{}
	}
	return drawings, nil
}

func (s *Drawings) ListByArtist(ctx context.Context, userID string) ([]*core.Drawing, error) {
	if _, err := s.store.FindUserByID(ctx, userID); err != nil {
		return nil, core.Lookup(err, "Could not find a drawing for the provided user id.", "Fetching drawings failed, please try again later.")
	}
	drawings, err := s.store.ListDrawings(ctx, core.DrawingFilter{ArtistID: userID})
	if err != nil {
		return nil, core.Upstream("Fetching drawings failed, please try again later.", err)
	}
	if drawings == nil {
		drawings = []*core.Drawing{}
	}
	return drawings, nil
}

// Update overwrites title, description and imgJSON and stamps the date.
// The image is replaced only when a new one is attached; the old blob is
// removed after the save.
func (s *Drawings) Update(ctx context.Context, caller *core.User, id string, in DrawingInput) (*core.Drawing, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	current, err := s.store.FindDrawingByID(ctx, id)
	if err != nil {
		return nil, core.Lookup(err, drawingNotFound, "Updating drawing failed, please try again.")
	}
	if err := AssertOwner(current, caller, notDrawingOwner); err != nil {
		return nil, err
	}

	var newImage string
	if in.Image != nil {
		url, err := s.media.Upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		newImage = url
	}

	var updated *core.Drawing
	var oldImage string
	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		drawing, err := tx.FindDrawingByID(ctx, id)
		if err != nil {
			return core.Lookup(err, drawingNotFound, "Updating drawing failed, please try again.")
		}
		if err := AssertOwner(drawing, caller, notDrawingOwner); err != nil {
			return err
		}
		drawing.Title = strings.TrimSpace(in.Title)
		drawing.Description = strings.TrimSpace(in.Description)
		drawing.ImgJSON = in.ImgJSON
		drawing.Date = s.clock()
		if newImage != "" {
			oldImage = drawing.ImgURL
			drawing.ImgURL = newImage
		}
		if err := tx.SaveDrawing(ctx, drawing); err != nil {
			return err
		}
		updated = drawing
		return nil
	})
	if err != nil {
		s.media.DiscardQuietly(ctx, newImage)
		return nil, failed(err, "Updating drawing failed, please try again.")
	}

	logrus.WithField("drawing_id", id).Info("Drawing updated")
	if oldImage != "" {
		if err := s.media.Discard(ctx, oldImage); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete removes the drawing, its comments and the artist's reference to it
// in one transaction, then removes the image blob.
func (s *Drawings) Delete(ctx context.Context, caller *core.User, id string) error {
	var imgURL string
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		drawing, err := tx.FindDrawingByID(ctx, id)
		if err != nil {
			return core.Lookup(err, drawingNotFound, "Deleting drawing failed, please try again.")
		}
		if err := AssertOwner(drawing, caller, "Sorry, you are not allowed to delete this drawing."); err != nil {
			return err
		}

		comments, err := tx.ListComments(ctx, core.CommentFilter{DrawingID: id})
		if err != nil {
			return err
		}
		for _, c := range comments {
			if err := tx.DeleteComment(ctx, c.ID); err != nil {
				return err
			}
		}
		if err := tx.DeleteDrawing(ctx, id); err != nil {
			return err
		}

		artist, err := tx.FindUserByID(ctx, drawing.ArtistID)
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return err
		}
		if artist != nil {
			artist.Drawings = core.PullID(artist.Drawings, id)
			if err := tx.SaveUser(ctx, artist); err != nil {
				return err
			}
		}
		imgURL = drawing.ImgURL
		return nil
	})
	if err != nil {
		return failed(err, "Deleting drawing failed, please try again.")
	}

	logrus.WithField("drawing_id", id).Info("Drawing and its comments removed")
	return s.media.Discard(ctx, imgURL)
}

// Like adds one like. Likes are anonymous and cannot be withdrawn.
func (s *Drawings) Like(ctx context.Context, id string) (*core.Drawing, error) {
	drawing, err := s.store.IncrementLikeCount(ctx, id)
	if err != nil {
		return nil, core.Lookup(err, drawingNotFound, "Liking drawing failed, please try again.")
	}
	return drawing, nil
}
